// Package httputil provides HTTP helpers shared by the dashboard handlers
// and the Supabase client.
package httputil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/acmelabs/invoice_dashboard/internal/logging"
)

const maxJSONBodyBytes = 1 << 20 // 1 MiB

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	TraceID string                 `json:"trace_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErrorResponse writes a structured error carrying the request trace id.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	resp := ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
	if r != nil {
		resp.TraceID = logging.GetTraceID(r.Context())
	}
	WriteJSON(w, status, resp)
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	writeSimpleError(w, http.StatusBadRequest, "BAD_REQUEST", message, "bad request")
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	writeSimpleError(w, http.StatusUnauthorized, "UNAUTHORIZED", message, "unauthorized")
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	writeSimpleError(w, http.StatusNotFound, "NOT_FOUND", message, "not found")
}

// InternalError writes a 500 response.
func InternalError(w http.ResponseWriter, message string) {
	writeSimpleError(w, http.StatusInternalServerError, "INTERNAL_ERROR", message, "internal error")
}

func writeSimpleError(w http.ResponseWriter, status int, code, message, fallback string) {
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	WriteJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// DecodeJSON decodes a bounded JSON request body into v.
// It writes a 400 and returns false when the body is invalid.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		BadRequest(w, "invalid request body")
		return false
	}
	return true
}

// WantsJSON reports whether the client asked for a JSON reply rather than a page redirect.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") || r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}
