package data

import "errors"

// ErrInvoiceNotFound is wrapped by the error of FetchInvoiceByID when no row matches.
var ErrInvoiceNotFound = errors.New("invoice not found")

// DataFetchError is returned by every query function.
// Message is safe to show to users; Err is the underlying cause.
type DataFetchError struct {
	Op      string
	Message string
	Err     error
}

func (e *DataFetchError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + " " + e.Op + ": " + e.Err.Error()
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a missing-invoice lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound)
}
