package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMutation(t *testing.T) {
	before := testutil.ToFloat64(invoiceMutations.WithLabelValues("create", "ok"))
	RecordMutation("create", "ok")
	after := testutil.ToFloat64(invoiceMutations.WithLabelValues("create", "ok"))
	if after != before+1 {
		t.Errorf("invoice_mutations_total = %v, want %v", after, before+1)
	}
}

func TestObserveRemoteCall_Outcomes(t *testing.T) {
	tests := []struct {
		status  int
		err     error
		outcome string
	}{
		{200, nil, "ok"},
		{404, nil, "http_404"},
		{0, errors.New("dial tcp: refused"), "transport_error"},
	}
	for _, tt := range tests {
		c := remoteCalls.WithLabelValues("select", "invoices", tt.outcome)
		before := testutil.ToFloat64(c)
		ObserveRemoteCall("select", "invoices", tt.status, tt.err, 10*time.Millisecond)
		if got := testutil.ToFloat64(c); got != before+1 {
			t.Errorf("outcome %s = %v, want %v", tt.outcome, got, before+1)
		}
	}
}

func TestInFlight(t *testing.T) {
	IncInFlight()
	if got := testutil.ToFloat64(httpInFlight); got < 1 {
		t.Errorf("inflight = %v, want >= 1", got)
	}
	DecInFlight()
}

func TestHandler_ExposesCollectors(t *testing.T) {
	RecordHTTPRequest("dashboard", "GET", "/healthz", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invoice_dashboard_http_requests_total") {
		t.Error("metrics output missing invoice_dashboard_http_requests_total")
	}
}
