// Package testutil provides a fake PostgREST server for package tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/acmelabs/invoice_dashboard/supabase/client"
)

// Call is one request received by the fake server.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSONBody decodes the request body into v.
func (c Call) JSONBody(v any) error {
	return json.Unmarshal(c.Body, v)
}

// Reply is a canned response.
type Reply struct {
	Status  int
	Body    string
	Headers map[string]string
}

// MockPostgREST records requests and answers them from canned replies keyed by method and path.
// Unregistered routes answer 404 with a PostgREST-shaped error body.
type MockPostgREST struct {
	mu      sync.Mutex
	server  *httptest.Server
	replies map[string]Reply
	calls   []Call
}

// NewMockPostgREST starts a fake server that is closed when the test ends.
func NewMockPostgREST(t testing.TB) *MockPostgREST {
	t.Helper()
	m := &MockPostgREST{replies: make(map[string]Reply)}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.server.Close)
	return m
}

// URL returns the base URL of the fake server.
func (m *MockPostgREST) URL() string {
	return m.server.URL
}

// Client returns a data client pointed at the fake server.
func (m *MockPostgREST) Client(t testing.TB) *client.Client {
	t.Helper()
	c, err := client.New(client.Config{URL: m.server.URL, APIKey: "test-anon-key"})
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return c
}

// On registers a reply for method and path, e.g. On("GET", "/rest/v1/invoices", ...).
func (m *MockPostgREST) On(method, path string, r Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Status == 0 {
		r.Status = http.StatusOK
	}
	m.replies[method+" "+path] = r
}

// OnJSON registers a reply whose body is v encoded as JSON.
func (m *MockPostgREST) OnJSON(method, path string, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal reply: %v", err))
	}
	m.On(method, path, Reply{Status: status, Body: string(body)})
}

// OnError registers a PostgREST error reply.
func (m *MockPostgREST) OnError(method, path string, status int, code, message string) {
	m.OnJSON(method, path, status, map[string]string{"code": code, "message": message})
}

// Calls returns every request received so far.
func (m *MockPostgREST) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsTo returns the requests received for method and path.
func (m *MockPostgREST) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockPostgREST) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.calls = append(m.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	reply, ok := m.replies[r.Method+" "+r.URL.Path]
	m.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"code":"PGRST202","message":"no mock for %s %s"}`, r.Method, r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	for k, v := range reply.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(reply.Status)
	io.WriteString(w, reply.Body)
}
