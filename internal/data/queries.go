package data

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/acmelabs/invoice_dashboard/internal/format"
)

// =============================================================================
// Overview
// =============================================================================

// FetchRevenue returns the monthly revenue series.
func (s *Store) FetchRevenue(ctx context.Context) ([]Revenue, error) {
	const op, msg = "FetchRevenue", "Failed to fetch revenue data."

	resp, err := checked(s.client.From("revenue").Select("*").Execute(ctx))
	if err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}
	revenue := []Revenue{}
	if err := decode(resp, &revenue); err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}
	return revenue, nil
}

type latestInvoiceRow struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Customers struct {
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
		Email    string `json:"email"`
	} `json:"customers"`
}

// FetchLatestInvoices returns the five most recent invoices with their customer.
func (s *Store) FetchLatestInvoices(ctx context.Context) ([]LatestInvoice, error) {
	const op, msg = "FetchLatestInvoices", "Failed to fetch the latest invoices."

	resp, err := checked(s.client.From("invoices").
		Select("amount,id,customers(name,image_url,email)").
		Order("date", false).
		Limit(5).
		Execute(ctx))
	if err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}

	var rows []latestInvoiceRow
	if err := decode(resp, &rows); err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}

	latest := make([]LatestInvoice, 0, len(rows))
	for _, r := range rows {
		latest = append(latest, LatestInvoice{
			ID:       r.ID,
			Name:     r.Customers.Name,
			ImageURL: s.resolveImage(r.Customers.ImageURL),
			Email:    r.Customers.Email,
			Amount:   format.FormatCurrency(r.Amount),
		})
	}
	return latest, nil
}

// FetchCardData returns invoice and customer counts with paid and pending totals.
func (s *Store) FetchCardData(ctx context.Context) (*CardData, error) {
	const op, msg = "FetchCardData", "Failed to fetch card data."

	resp, err := checked(s.client.RPC(ctx, "get_card_data", map[string]any{}))
	if err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}

	row := gjson.ParseBytes(resp.Body)
	if row.IsArray() {
		row = row.Get("0")
	}
	if !row.IsObject() {
		return nil, s.fail(ctx, op, msg, fmt.Errorf("unexpected get_card_data result: %s", resp.Body))
	}

	var counts [4]int64
	for i, field := range []string{"number_of_invoices", "number_of_customers", "total_paid_invoices", "total_pending_invoices"} {
		v, err := intField(row, field)
		if err != nil {
			return nil, s.fail(ctx, op, msg, err)
		}
		counts[i] = v
	}

	return &CardData{
		NumberOfInvoices:     counts[0],
		NumberOfCustomers:    counts[1],
		TotalPaidInvoices:    format.FormatCurrency(counts[2]),
		TotalPendingInvoices: format.FormatCurrency(counts[3]),
	}, nil
}

// =============================================================================
// Invoices
// =============================================================================

// FetchFilteredInvoices returns one page of invoices matching query.
// Pages past the last return an empty list.
func (s *Store) FetchFilteredInvoices(ctx context.Context, query string, page int) ([]InvoicesTable, error) {
	const op, msg = "FetchFilteredInvoices", "Failed to fetch invoices."

	if page > MaxPage {
		return []InvoicesTable{}, nil
	}

	resp, err := checked(s.client.RPC(ctx, "get_invoices", map[string]any{
		"query":          query,
		"items_per_page": ItemsPerPage,
		"offset_val":     Offset(page),
	}))
	if err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}

	invoices := []InvoicesTable{}
	if err := decode(resp, &invoices); err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}
	if invoices == nil {
		invoices = []InvoicesTable{}
	}
	for i := range invoices {
		invoices[i].ImageURL = s.resolveImage(invoices[i].ImageURL)
	}
	return invoices, nil
}

// FetchInvoicesPages returns the number of pages of invoices matching query.
func (s *Store) FetchInvoicesPages(ctx context.Context, query string) (int, error) {
	const op, msg = "FetchInvoicesPages", "Failed to fetch total number of invoices."

	resp, err := checked(s.client.RPC(ctx, "get_invoice_count", map[string]any{"query": query}))
	if err != nil {
		return 0, s.fail(ctx, op, msg, err)
	}

	count, err := scalarInt(gjson.ParseBytes(resp.Body))
	if err != nil {
		return 0, s.fail(ctx, op, msg, fmt.Errorf("get_invoice_count: %w", err))
	}
	return TotalPages(count), nil
}

type invoiceFormRow struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
}

// FetchInvoiceByID returns the edit form values of one invoice.
// A missing invoice or an id that is not a UUID yields an error wrapping ErrInvoiceNotFound.
func (s *Store) FetchInvoiceByID(ctx context.Context, id string) (*InvoiceForm, error) {
	const op, msg = "FetchInvoiceByID", "Failed to fetch invoice."

	uid, ok := canonicalID(id)
	if !ok {
		return nil, &DataFetchError{Op: op, Message: msg, Err: fmt.Errorf("%w: %q", ErrInvoiceNotFound, id)}
	}

	resp, err := checked(s.client.From("invoices").
		Select("id,customer_id,amount,status").
		Eq("id", uid).
		Execute(ctx))
	if err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}

	var rows []invoiceFormRow
	if err := decode(resp, &rows); err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}
	if len(rows) == 0 {
		return nil, &DataFetchError{Op: op, Message: msg, Err: fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)}
	}

	r := rows[0]
	return &InvoiceForm{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		Amount:     format.CentsToDollars(r.Amount),
		Status:     r.Status,
	}, nil
}

// =============================================================================
// Customers
// =============================================================================

// FetchCustomers returns every customer as a select option, ordered by name.
func (s *Store) FetchCustomers(ctx context.Context) ([]CustomerField, error) {
	const op, msg = "FetchCustomers", "Failed to fetch all customers."

	resp, err := checked(s.client.From("customers").
		Select("id,name").
		Order("name", true).
		Execute(ctx))
	if err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}

	customers := []CustomerField{}
	if err := decode(resp, &customers); err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}
	return customers, nil
}

// FetchFilteredCustomers returns customers whose name or email matches query, with invoice totals.
func (s *Store) FetchFilteredCustomers(ctx context.Context, query string) ([]FormattedCustomersTable, error) {
	const op, msg = "FetchFilteredCustomers", "Failed to fetch customer table."

	resp, err := checked(s.client.RPC(ctx, "get_filtered_customers", map[string]any{"query": query}))
	if err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}

	var rows []CustomersTableType
	if err := decode(resp, &rows); err != nil {
		return nil, s.fail(ctx, op, msg, err)
	}

	customers := make([]FormattedCustomersTable, 0, len(rows))
	for _, c := range rows {
		customers = append(customers, FormattedCustomersTable{
			ID:            c.ID,
			Name:          c.Name,
			Email:         c.Email,
			ImageURL:      s.resolveImage(c.ImageURL),
			TotalInvoices: c.TotalInvoices,
			TotalPending:  format.FormatCurrency(c.TotalPending),
			TotalPaid:     format.FormatCurrency(c.TotalPaid),
		})
	}
	return customers, nil
}

// =============================================================================
// Result parsing
// =============================================================================

// scalarInt reads a procedure result that is a bare number, a numeric string
// or a single-column row.
func scalarInt(r gjson.Result) (int64, error) {
	if r.IsArray() {
		r = r.Get("0")
	}
	if r.IsObject() {
		var first gjson.Result
		r.ForEach(func(_, v gjson.Result) bool {
			first = v
			return false
		})
		r = first
	}
	switch r.Type {
	case gjson.Number:
		return r.Int(), nil
	case gjson.String:
		n, err := strconv.ParseInt(r.Str, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric result %q", r.Str)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected result %q", r.Raw)
	}
}

// intField reads a numeric field; SQL sums of no rows come back as null and count as zero.
func intField(row gjson.Result, field string) (int64, error) {
	v := row.Get(field)
	if !v.Exists() {
		return 0, fmt.Errorf("missing field %q", field)
	}
	if v.Type == gjson.Null {
		return 0, nil
	}
	return scalarInt(v)
}
