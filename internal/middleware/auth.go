package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/acmelabs/invoice_dashboard/internal/auth"
	"github.com/acmelabs/invoice_dashboard/internal/errors"
	internalhttputil "github.com/acmelabs/invoice_dashboard/internal/httputil"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

type requestUserKey struct{}

// requestUser lets the tracing middleware learn the user id set further down the chain.
type requestUser struct {
	id string
}

func withRequestUser(ctx context.Context, u *requestUser) context.Context {
	return context.WithValue(ctx, requestUserKey{}, u)
}

// SessionParser verifies session tokens.
type SessionParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware requires a valid session cookie or bearer token
type AuthMiddleware struct {
	sessions SessionParser
	logger   *logging.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(sessions SessionParser, logger *logging.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		logger:   logger,
	}
}

// Handler returns the middleware handler
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			m.reject(w, r, errors.Unauthorized("Missing session"))
			return
		}

		claims, err := m.sessions.Parse(token)
		if err != nil {
			m.logger.WithContext(r.Context()).WithError(err).Warn("Session validation failed")
			m.reject(w, r, errors.InvalidToken(err))
			return
		}

		ctx := logging.WithUserID(r.Context(), claims.Subject)
		if holder, ok := ctx.Value(requestUserKey{}).(*requestUser); ok {
			holder.id = claims.Subject
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionToken reads the session cookie, falling back to an Authorization bearer token.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// reject redirects browsers to the login page and answers API clients with JSON.
func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, serviceErr *errors.ServiceError) {
	m.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
	}).Debug("Unauthenticated request")

	if r.Method == http.MethodGet && !internalhttputil.WantsJSON(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	internalhttputil.WriteErrorResponse(w, r, serviceErr.HTTPStatus, string(serviceErr.Code), serviceErr.Message, serviceErr.Details)
}
