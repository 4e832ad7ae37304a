package httpapi

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmelabs/invoice_dashboard/internal/actions"
	"github.com/acmelabs/invoice_dashboard/internal/auth"
	"github.com/acmelabs/invoice_dashboard/internal/data"
	"github.com/acmelabs/invoice_dashboard/internal/revalidate"
	"github.com/acmelabs/invoice_dashboard/pkg/testutil"
)

type stubAuthorizer struct {
	user *data.User
	err  error
}

func (s stubAuthorizer) Authorize(context.Context, auth.Credentials) (*data.User, error) {
	return s.user, s.err
}

type testEnv struct {
	mock     *testutil.MockPostgREST
	versions *revalidate.Registry
	sessions *auth.Sessions
	handler  http.Handler
	token    string
}

const (
	invoiceID = "cc27c14a-0acf-4f4a-a6c9-d45682c144b9"
	missingID = "3958dc9e-712f-4377-85e9-fec4b6a6442a"
)

func newTestEnv(t *testing.T, authorizer Authorizer) *testEnv {
	t.Helper()
	mock := testutil.NewMockPostgREST(t)
	store := data.NewStore(mock.Client(t), nil)
	sessions, err := auth.NewSessions([]byte(strings.Repeat("x", auth.MinSecretLength)), time.Hour, false)
	require.NoError(t, err)
	token, _, err := sessions.Issue(&data.User{ID: "u1", Email: "user@nextmail.com"})
	require.NoError(t, err)

	versions := revalidate.NewRegistry()
	srv := NewServer(Config{
		Service:    "test",
		Queries:    store,
		Mutations:  actions.NewService(store, nil),
		Authorizer: authorizer,
		Sessions:   sessions,
		Versions:   versions,
	})
	return &testEnv{mock: mock, versions: versions, sessions: sessions, handler: srv.Handler(), token: token}
}

func (e *testEnv) do(method, target string, body url.Values, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: e.token})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	rec := env.do("GET", "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestDashboard_RequiresSession(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, env.mock.Calls())
}

func TestOverview(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.OnJSON("GET", "/rest/v1/revenue", 200, []data.Revenue{{Month: "Jan", Revenue: 2000}})
	env.mock.On("GET", "/rest/v1/invoices", testutil.Reply{Body: `[{"id":"i1","amount":500,"customers":{"name":"Amy","image_url":"/customers/amy.png","email":"amy@burns.com"}}]`})
	env.mock.On("POST", "/rest/v1/rpc/get_card_data", testutil.Reply{Body: `{"number_of_invoices":1,"number_of_customers":1,"total_paid_invoices":500,"total_pending_invoices":0}`})

	rec := env.do("GET", "/dashboard", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page overviewPage
	decodeBody(t, rec, &page)
	assert.Len(t, page.Revenue, 1)
	assert.Equal(t, "$5.00", page.LatestInvoices[0].Amount)
	assert.Equal(t, "$5.00", page.Cards.TotalPaidInvoices)
	assert.Equal(t, "0", rec.Header().Get(VersionHeader))
}

func TestOverview_FailureShowsUseCaseMessage(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.OnJSON("GET", "/rest/v1/revenue", 200, []data.Revenue{})
	env.mock.On("GET", "/rest/v1/invoices", testutil.Reply{Body: `[]`})
	// get_card_data not registered: the fake answers 404.

	rec := env.do("GET", "/dashboard", nil, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Failed to fetch card data.", body["message"])
}

func TestInvoicesPage(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.On("POST", "/rest/v1/rpc/get_invoices", testutil.Reply{Body: `[{"id":"i1","customer_id":"c1","name":"Lee","email":"lee@robinson.com","image_url":"","date":"2022-12-06","amount":123456,"status":"paid"}]`})
	env.mock.On("POST", "/rest/v1/rpc/get_invoice_count", testutil.Reply{Body: `50`})

	rec := env.do("GET", "/dashboard/invoices?query=lee&page=5", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page invoicesPage
	decodeBody(t, rec, &page)
	assert.Equal(t, 9, page.TotalPages)
	assert.Equal(t, 5, page.CurrentPage)
	assert.Equal(t, []string{"1", "...", "4", "5", "6", "...", "9"}, page.Pagination)
	require.Len(t, page.Invoices, 1)
	assert.Equal(t, "$1,234.56", page.Invoices[0].AmountDisplay)
	assert.Equal(t, "Dec 6, 2022", page.Invoices[0].DateDisplay)
}

func TestEditForm_NotFound(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.On("GET", "/rest/v1/invoices", testutil.Reply{Body: `[]`})
	env.mock.On("GET", "/rest/v1/customers", testutil.Reply{Body: `[]`})

	rec := env.do("GET", "/dashboard/invoices/"+missingID+"/edit", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditForm_MalformedIDIs404(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.OnError("GET", "/rest/v1/invoices", http.StatusBadRequest, "22P02", "invalid input syntax for type uuid")
	env.mock.On("GET", "/rest/v1/customers", testutil.Reply{Body: `[]`})

	rec := env.do("GET", "/dashboard/invoices/abc/edit", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Empty(t, env.mock.CallsTo("GET", "/rest/v1/invoices"))
}

func TestEditForm(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.On("GET", "/rest/v1/invoices", testutil.Reply{Body: `[{"id":"` + invoiceID + `","customer_id":"c1","amount":4999,"status":"paid"}]`})
	env.mock.On("GET", "/rest/v1/customers", testutil.Reply{Body: `[{"id":"c1","name":"Amy"}]`})

	rec := env.do("GET", "/dashboard/invoices/"+invoiceID+"/edit", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page invoiceFormPage
	decodeBody(t, rec, &page)
	assert.Equal(t, 49.99, page.Invoice.Amount)
	assert.Len(t, page.Customers, 1)
}

func TestCustomersPage(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.On("POST", "/rest/v1/rpc/get_filtered_customers", testutil.Reply{Body: `[{"id":"c1","name":"Amy","email":"amy@burns.com","image_url":"","total_invoices":1,"total_pending":0,"total_paid":100}]`})

	rec := env.do("GET", "/dashboard/customers?query=amy", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var page customersPage
	decodeBody(t, rec, &page)
	assert.Equal(t, "$1.00", page.Customers[0].TotalPaid)
}

func TestCreateInvoice_RedirectsAndRevalidates(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.On("POST", "/rest/v1/invoices", testutil.Reply{Status: http.StatusCreated, Body: `[]`})

	rec := env.do("POST", "/dashboard/invoices", url.Values{"customerId": {"c1"}, "amount": {"49.99"}, "status": {"paid"}}, true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/invoices", rec.Header().Get("Location"))
	assert.Equal(t, uint64(1), env.versions.Version("/dashboard/invoices"))

	inserts := env.mock.CallsTo("POST", "/rest/v1/invoices")
	require.Len(t, inserts, 1)
	var row data.Invoice
	require.NoError(t, inserts[0].JSONBody(&row))
	assert.Equal(t, int64(4999), row.Amount)
}

func TestCreateInvoice_ValidationIs422(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})

	rec := env.do("POST", "/dashboard/invoices", url.Values{"customerId": {"c1"}, "amount": {"0"}, "status": {"paid"}}, true)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var state formState
	decodeBody(t, rec, &state)
	assert.Equal(t, "Missing Fields. Failed to Create Invoice.", state.Message)
	assert.Equal(t, []string{"Please enter an amount greater than $0."}, state.Errors["amount"])
	assert.Empty(t, env.mock.Calls())
}

func TestUpdateInvoice_DatabaseFailureIs500(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.OnError("PATCH", "/rest/v1/invoices", http.StatusServiceUnavailable, "PGRST000", "could not connect to database")

	rec := env.do("POST", "/dashboard/invoices/"+invoiceID, url.Values{"customerId": {"c1"}, "amount": {"1"}, "status": {"pending"}}, true)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Database Error: Failed to Update Invoice.", body["message"])
	assert.Equal(t, uint64(0), env.versions.Version("/dashboard/invoices"))
}

func TestDeleteInvoice_RedirectsBack(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.On("DELETE", "/rest/v1/invoices", testutil.Reply{Body: `[]`})

	req := httptest.NewRequest("POST", "/dashboard/invoices/"+invoiceID+"/delete", nil)
	req.Header.Set("Referer", "http://example.com/dashboard/invoices?page=2")
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: env.token})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/invoices?page=2", rec.Header().Get("Location"))
	assert.Equal(t, uint64(1), env.versions.Version("/dashboard/invoices"))
}

func TestUpdateInvoice_MalformedIDIs422(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})

	rec := env.do("POST", "/dashboard/invoices/abc", url.Values{"customerId": {"c1"}, "amount": {"1"}, "status": {"pending"}}, true)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var state formState
	decodeBody(t, rec, &state)
	assert.Equal(t, []string{"Invoice not found."}, state.Errors["id"])
	assert.Empty(t, env.mock.Calls())
}

func TestDeleteInvoice_MalformedIDIsNoop(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})
	env.mock.OnError("DELETE", "/rest/v1/invoices", http.StatusBadRequest, "22P02", "invalid input syntax for type uuid")

	rec := env.do("POST", "/dashboard/invoices/abc/delete", nil, true)

	assert.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/dashboard/invoices", rec.Header().Get("Location"))
	assert.Empty(t, env.mock.Calls())
}

func TestInvoicesPage_HugePageIsEmpty(t *testing.T) {
	for _, page := range []string{"400000000", "9223372036854775807", "99999999999999999999999"} {
		env := newTestEnv(t, stubAuthorizer{})
		env.mock.OnError("POST", "/rest/v1/rpc/get_invoices", http.StatusBadRequest, "22003", "integer out of range")
		env.mock.On("POST", "/rest/v1/rpc/get_invoice_count", testutil.Reply{Body: `13`})

		rec := env.do("GET", "/dashboard/invoices?page="+page, nil, true)
		require.Equal(t, http.StatusOK, rec.Code, "page=%s: %s", page, rec.Body.String())

		var body invoicesPage
		decodeBody(t, rec, &body)
		assert.Empty(t, body.Invoices, page)
		assert.Equal(t, 3, body.TotalPages, page)
		assert.Empty(t, env.mock.CallsTo("POST", "/rest/v1/rpc/get_invoices"), page)
	}
}

func TestPageParam(t *testing.T) {
	tests := map[string]int{
		"":                      1,
		"0":                     1,
		"-4":                    1,
		"x":                     1,
		"7":                     7,
		"99999999999999999999":  math.MaxInt,
		"-99999999999999999999": 1,
	}
	for raw, want := range tests {
		r := httptest.NewRequest("GET", "/dashboard/invoices?page="+url.QueryEscape(raw), nil)
		assert.Equal(t, want, pageParam(r), "page=%q", raw)
	}
}

func TestBackTo(t *testing.T) {
	mk := func(ref string) *http.Request {
		r := httptest.NewRequest("POST", "/dashboard/invoices/i1/delete", nil)
		r.Header.Set("Referer", ref)
		return r
	}
	assert.Equal(t, "/dashboard/invoices", backTo(mk(""), "/dashboard/invoices"))
	assert.Equal(t, "/dashboard/invoices", backTo(mk("https://evil.test/dashboard"), "/dashboard/invoices"))
	assert.Equal(t, "/dashboard/invoices", backTo(mk("/login"), "/dashboard/invoices"))
	assert.Equal(t, "/dashboard/customers", backTo(mk("/dashboard/customers"), "/dashboard/invoices"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{user: &data.User{ID: "u1", Email: "user@nextmail.com"}})

	rec := env.do("POST", "/login", url.Values{"email": {"user@nextmail.com"}, "password": {"123456"}}, false)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	claims, err := env.sessions.Parse(session.Value)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})

	rec := env.do("POST", "/login", url.Values{"email": {"user@nextmail.com"}, "password": {"nope-nope"}}, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Invalid credentials.", body["message"])
}

func TestLogin_JSONBody(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{user: &data.User{ID: "u1"}})

	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"email":"user@nextmail.com","password":"123456","redirectTo":"/dashboard/customers"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/customers", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, stubAuthorizer{})

	rec := env.do("POST", "/logout", nil, true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}
