package actions

import "context"

// RequestContext is what a mutation may do to the request that triggered it.
type RequestContext interface {
	Context() context.Context
	// Revalidate marks a route's cached rendering as stale.
	Revalidate(path string)
	// Redirect sends the caller to path once the mutation returns.
	Redirect(path string)
}

// Form is submitted form data, e.g. url.Values.
type Form interface {
	Get(key string) string
}

// ResultKind tags a Result.
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultValidationFailed
	ResultDatabaseFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultValidationFailed:
		return "validation_failed"
	case ResultDatabaseFailed:
		return "database_failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a mutation.
type Result struct {
	Kind        ResultKind
	RedirectTo  string
	FieldErrors map[string][]string
	Message     string
	// Err is the remote cause of a ResultDatabaseFailed.
	Err error
}

// OK is a successful mutation; redirectTo may be empty.
func OK(redirectTo string) Result {
	return Result{Kind: ResultOK, RedirectTo: redirectTo}
}

// ValidationFailed reports rejected form input.
func ValidationFailed(message string, fields map[string][]string) Result {
	return Result{Kind: ResultValidationFailed, Message: message, FieldErrors: fields}
}

// DatabaseFailed reports a failed remote write.
func DatabaseFailed(message string, err error) Result {
	return Result{Kind: ResultDatabaseFailed, Message: message, Err: err}
}

// Succeeded reports whether the mutation went through.
func (r Result) Succeeded() bool {
	return r.Kind == ResultOK
}
