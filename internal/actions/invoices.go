// Package actions implements the invoice mutations behind the dashboard forms.
package actions

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/acmelabs/invoice_dashboard/internal/data"
	"github.com/acmelabs/invoice_dashboard/internal/format"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
	"github.com/acmelabs/invoice_dashboard/internal/metrics"
)

// InvoicesPath is the invoice list route refreshed after every mutation.
const InvoicesPath = "/dashboard/invoices"

// InvoiceWriter is the remote store of invoices.
type InvoiceWriter interface {
	InsertInvoice(ctx context.Context, v data.InvoiceValues, date string) error
	UpdateInvoice(ctx context.Context, id string, v data.InvoiceValues) error
	DeleteInvoice(ctx context.Context, id string) error
}

// Service runs invoice mutations.
type Service struct {
	invoices InvoiceWriter
	logger   *logging.Logger
	validate *validator.Validate
	now      func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the clock used to date new invoices.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the mutation service.
func NewService(invoices InvoiceWriter, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	s := &Service{
		invoices: invoices,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInvoice validates the form and inserts a new invoice dated today.
// On success the invoice list is revalidated and the caller redirected to it.
func (s *Service) CreateInvoice(rc RequestContext, form Form) Result {
	in, fields := parseInvoiceForm(s.validate, form)
	if len(fields) > 0 {
		return s.record("create", ValidationFailed("Missing Fields. Failed to Create Invoice.", fields))
	}

	values := data.InvoiceValues{CustomerID: in.CustomerID, Amount: in.AmountCents, Status: in.Status}
	if err := s.invoices.InsertInvoice(rc.Context(), values, format.Today(s.now())); err != nil {
		return s.databaseFailed(rc.Context(), "create", "Database Error: Failed to Create Invoice.", err)
	}

	rc.Revalidate(InvoicesPath)
	rc.Redirect(InvoicesPath)
	return s.record("create", OK(InvoicesPath))
}

// UpdateInvoice validates the form and overwrites invoice id.
func (s *Service) UpdateInvoice(rc RequestContext, id string, form Form) Result {
	const summary = "Missing Fields. Failed to Update Invoice."

	id = strings.TrimSpace(id)
	in, fields := parseInvoiceForm(s.validate, form)
	if id == "" {
		if fields == nil {
			fields = make(map[string][]string)
		}
		fields["id"] = []string{msgID}
	}
	if len(fields) > 0 {
		return s.record("update", ValidationFailed(summary, fields))
	}

	values := data.InvoiceValues{CustomerID: in.CustomerID, Amount: in.AmountCents, Status: in.Status}
	if err := s.invoices.UpdateInvoice(rc.Context(), id, values); err != nil {
		if data.IsNotFound(err) {
			return s.record("update", ValidationFailed(summary, map[string][]string{"id": {msgNotFound}}))
		}
		return s.databaseFailed(rc.Context(), "update", "Database Error: Failed to Update Invoice.", err)
	}

	rc.Revalidate(InvoicesPath)
	rc.Redirect(InvoicesPath)
	return s.record("update", OK(InvoicesPath))
}

// DeleteInvoice removes invoice id and revalidates the list. It does not redirect.
// Deleting an invoice that does not exist succeeds.
func (s *Service) DeleteInvoice(rc RequestContext, id string) Result {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.record("delete", ValidationFailed("Missing Fields. Failed to Delete Invoice.", map[string][]string{"id": {msgID}}))
	}

	if err := s.invoices.DeleteInvoice(rc.Context(), id); err != nil {
		return s.databaseFailed(rc.Context(), "delete", "Database Error: Failed to Delete Invoice.", err)
	}

	rc.Revalidate(InvoicesPath)
	return s.record("delete", OK(""))
}

func (s *Service) databaseFailed(ctx context.Context, action, message string, err error) Result {
	s.logger.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
		"action": action,
	}).Error("Database Error")
	return s.record(action, DatabaseFailed(message, err))
}

func (s *Service) record(action string, r Result) Result {
	metrics.RecordMutation(action, r.Kind.String())
	return r
}
