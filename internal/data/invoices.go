package data

import (
	"context"
	"fmt"
)

// InvoiceValues are the user-editable columns of an invoice.
type InvoiceValues struct {
	CustomerID string `json:"customer_id"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
}

// InsertInvoice stores a new invoice dated date.
func (s *Store) InsertInvoice(ctx context.Context, v InvoiceValues, date string) error {
	row := Invoice{CustomerID: v.CustomerID, Amount: v.Amount, Status: v.Status, Date: date}
	if _, err := checked(s.client.From("invoices").ExecuteInsert(ctx, row)); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// UpdateInvoice overwrites the editable columns of invoice id.
// An id that is not a UUID returns an error wrapping ErrInvoiceNotFound without a remote call.
func (s *Store) UpdateInvoice(ctx context.Context, id string, v InvoiceValues) error {
	uid, ok := canonicalID(id)
	if !ok {
		return fmt.Errorf("update invoice %q: %w", id, ErrInvoiceNotFound)
	}
	if _, err := checked(s.client.From("invoices").Eq("id", uid).ExecuteUpdate(ctx, v)); err != nil {
		return fmt.Errorf("update invoice %s: %w", id, err)
	}
	return nil
}

// DeleteInvoice removes invoice id. Deleting a missing invoice succeeds, and so does
// deleting an id that is not a UUID, which cannot match a row.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	uid, ok := canonicalID(id)
	if !ok {
		return nil
	}
	if _, err := checked(s.client.From("invoices").Eq("id", uid).ExecuteDelete(ctx)); err != nil {
		return fmt.Errorf("delete invoice %s: %w", id, err)
	}
	return nil
}
