package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/acmelabs/invoice_dashboard/internal/data"
	"github.com/acmelabs/invoice_dashboard/internal/format"
)

type overviewPage struct {
	Revenue        []data.Revenue       `json:"revenue"`
	LatestInvoices []data.LatestInvoice `json:"latest_invoices"`
	Cards          *data.CardData       `json:"cards"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	var page overviewPage
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		page.Revenue, err = s.queries.FetchRevenue(ctx)
		return err
	})
	g.Go(func() (err error) {
		page.LatestInvoices, err = s.queries.FetchLatestInvoices(ctx)
		return err
	})
	g.Go(func() (err error) {
		page.Cards, err = s.queries.FetchCardData(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writePage(w, "/dashboard", page)
}

// invoiceRow adds display strings to an invoices table row.
type invoiceRow struct {
	data.InvoicesTable
	AmountDisplay string `json:"amount_display"`
	DateDisplay   string `json:"date_display"`
}

type invoicesPage struct {
	Query       string       `json:"query"`
	CurrentPage int          `json:"current_page"`
	TotalPages  int          `json:"total_pages"`
	Pagination  []string     `json:"pagination"`
	Invoices    []invoiceRow `json:"invoices"`
}

func (s *Server) handleInvoices(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	current := pageParam(r)

	var (
		rows  []data.InvoicesTable
		total int
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		rows, err = s.queries.FetchFilteredInvoices(ctx, query, current)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.queries.FetchInvoicesPages(ctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	page := invoicesPage{
		Query:       query,
		CurrentPage: current,
		TotalPages:  total,
		Pagination:  format.GeneratePagination(current, total),
		Invoices:    make([]invoiceRow, 0, len(rows)),
	}
	for _, inv := range rows {
		page.Invoices = append(page.Invoices, invoiceRow{
			InvoicesTable: inv,
			AmountDisplay: format.FormatCurrency(inv.Amount),
			DateDisplay:   format.FormatDateToLocal(inv.Date),
		})
	}
	s.writePage(w, "/dashboard/invoices", page)
}

type invoiceFormPage struct {
	Invoice   *data.InvoiceForm    `json:"invoice,omitempty"`
	Customers []data.CustomerField `json:"customers"`
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	customers, err := s.queries.FetchCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writePage(w, "/dashboard/invoices", invoiceFormPage{Customers: customers})
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var page invoiceFormPage
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		page.Invoice, err = s.queries.FetchInvoiceByID(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		page.Customers, err = s.queries.FetchCustomers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writePage(w, "/dashboard/invoices", page)
}

type customersPage struct {
	Query     string                         `json:"query"`
	Customers []data.FormattedCustomersTable `json:"customers"`
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	customers, err := s.queries.FetchFilteredCustomers(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writePage(w, "/dashboard/customers", customersPage{Query: query, Customers: customers})
}

// pageParam reads ?page=, defaulting to the first page.
// Positive values too large for an int saturate, so they still land past the last page.
func pageParam(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	page, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return math.MaxInt
	}
	if err != nil || page < 1 {
		return 1
	}
	return page
}
