// Package httpapi exposes the dashboard over HTTP: JSON page data for the
// dashboard views and form endpoints for invoice mutations.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/acmelabs/invoice_dashboard/internal/actions"
	"github.com/acmelabs/invoice_dashboard/internal/auth"
	"github.com/acmelabs/invoice_dashboard/internal/data"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
	"github.com/acmelabs/invoice_dashboard/internal/metrics"
	"github.com/acmelabs/invoice_dashboard/internal/middleware"
	"github.com/acmelabs/invoice_dashboard/internal/revalidate"
)

// Queries are the read use cases behind the dashboard pages.
type Queries interface {
	FetchRevenue(ctx context.Context) ([]data.Revenue, error)
	FetchLatestInvoices(ctx context.Context) ([]data.LatestInvoice, error)
	FetchCardData(ctx context.Context) (*data.CardData, error)
	FetchFilteredInvoices(ctx context.Context, query string, page int) ([]data.InvoicesTable, error)
	FetchInvoicesPages(ctx context.Context, query string) (int, error)
	FetchInvoiceByID(ctx context.Context, id string) (*data.InvoiceForm, error)
	FetchCustomers(ctx context.Context) ([]data.CustomerField, error)
	FetchFilteredCustomers(ctx context.Context, query string) ([]data.FormattedCustomersTable, error)
}

// Authorizer verifies login credentials.
type Authorizer interface {
	Authorize(ctx context.Context, creds auth.Credentials) (*data.User, error)
}

// Config wires the server dependencies.
type Config struct {
	Service        string
	Queries        Queries
	Mutations      *actions.Service
	Authorizer     Authorizer
	Sessions       *auth.Sessions
	Revalidator    revalidate.Revalidator
	Versions       *revalidate.Registry
	LoginLimiter   *middleware.RateLimiter
	AllowedOrigins []string
	Logger         *logging.Logger
}

// Server serves the dashboard HTTP API.
type Server struct {
	service     string
	queries     Queries
	mutations   *actions.Service
	authorizer  Authorizer
	sessions    *auth.Sessions
	revalidator revalidate.Revalidator
	versions    *revalidate.Registry
	limiter     *middleware.RateLimiter
	origins     []string
	logger      *logging.Logger
}

// NewServer creates a server. A nil Revalidator falls back to Versions.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewDiscard()
	}
	if cfg.Service == "" {
		cfg.Service = "dashboard"
	}
	if cfg.Versions == nil {
		cfg.Versions = revalidate.NewRegistry()
	}
	if cfg.Revalidator == nil {
		cfg.Revalidator = cfg.Versions
	}
	if cfg.LoginLimiter == nil {
		cfg.LoginLimiter = middleware.NewRateLimiter(1, 5, cfg.Logger)
	}
	return &Server{
		service:     cfg.Service,
		queries:     cfg.Queries,
		mutations:   cfg.Mutations,
		authorizer:  cfg.Authorizer,
		sessions:    cfg.Sessions,
		revalidator: cfg.Revalidator,
		versions:    cfg.Versions,
		limiter:     cfg.LoginLimiter,
		origins:     cfg.AllowedOrigins,
		logger:      cfg.Logger,
	}
}

// Router returns the route table with per-route middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware(s.service))

	authed := middleware.NewAuthMiddleware(s.sessions, s.logger).Handler

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.Handle("/login", s.limiter.Handler(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	r.Handle("/dashboard", authed(http.HandlerFunc(s.handleOverview))).Methods(http.MethodGet)
	r.Handle("/dashboard/invoices", authed(http.HandlerFunc(s.handleInvoices))).Methods(http.MethodGet)
	r.Handle("/dashboard/invoices", authed(http.HandlerFunc(s.handleCreateInvoice))).Methods(http.MethodPost)
	r.Handle("/dashboard/invoices/create", authed(http.HandlerFunc(s.handleCreateForm))).Methods(http.MethodGet)
	r.Handle("/dashboard/invoices/{id}/edit", authed(http.HandlerFunc(s.handleEditForm))).Methods(http.MethodGet)
	r.Handle("/dashboard/invoices/{id}", authed(http.HandlerFunc(s.handleUpdateInvoice))).Methods(http.MethodPost)
	r.Handle("/dashboard/invoices/{id}/delete", authed(http.HandlerFunc(s.handleDeleteInvoice))).Methods(http.MethodPost)
	r.Handle("/dashboard/customers", authed(http.HandlerFunc(s.handleCustomers))).Methods(http.MethodGet)

	return r
}

// Handler returns the complete HTTP handler including CORS and request tracing.
func (s *Server) Handler() http.Handler {
	tracing := middleware.NewTracingMiddleware(s.logger)
	cors := middleware.NewCORSMiddleware(s.origins)
	return cors.Handler(tracing.Handler(s.Router()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": s.service})
}
