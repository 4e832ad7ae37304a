// Package data implements the read use cases of the dashboard and the invoice writes
// they are paired with. Every function issues exactly one call to the hosted store.
package data

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/acmelabs/invoice_dashboard/internal/logging"
	"github.com/acmelabs/invoice_dashboard/supabase/client"
)

// ItemsPerPage is the page size of the invoices table.
const ItemsPerPage = 6

// MaxPage is the last page whose offset fits the INT offset_val of get_invoices.
const MaxPage = math.MaxInt32/ItemsPerPage + 1

// CustomerImagesBucket holds customer avatars in storage.
const CustomerImagesBucket = "customers"

// Store runs dashboard queries against Supabase.
type Store struct {
	client *client.Client
	images *client.BucketClient
	logger *logging.Logger
}

// NewStore creates a store. A nil logger discards log output.
func NewStore(c *client.Client, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Store{
		client: c,
		images: c.Storage().From(CustomerImagesBucket),
		logger: logger,
	}
}

// fail logs the cause and returns the use-case error.
func (s *Store) fail(ctx context.Context, op, message string, err error) error {
	s.logger.WithContext(ctx).WithError(err).WithField("op", op).Error("Database Error")
	return &DataFetchError{Op: op, Message: message, Err: err}
}

// resolveImage turns a stored avatar path into a public URL.
// Absolute URLs and the public asset paths used by seed data pass through unchanged.
func (s *Store) resolveImage(path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	case strings.HasPrefix(path, "/"):
		return path
	default:
		return s.images.GetPublicURL(path)
	}
}

// checked folds a transport error and a PostgREST error reply into one error.
func checked(resp *client.Response, err error) (*client.Response, error) {
	if err != nil {
		return nil, err
	}
	if apiErr := resp.Error(); apiErr != nil {
		return nil, apiErr
	}
	return resp, nil
}

func decode(resp *client.Response, v any) error {
	if err := resp.JSON(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// clampPage maps pages below 1 to the first page.
func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Offset returns the row offset of a 1-based page, saturating at the offset of MaxPage.
func Offset(page int) int {
	page = clampPage(page)
	if page > MaxPage {
		page = MaxPage
	}
	return (page - 1) * ItemsPerPage
}

// canonicalID returns id in canonical UUID form, or false when id is not a UUID.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// TotalPages returns the number of pages needed for count rows.
func TotalPages(count int64) int {
	if count <= 0 {
		return 0
	}
	return int((count + ItemsPerPage - 1) / ItemsPerPage)
}
