package logging

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHookedLogger() (*Logger, *test.Hook) {
	l := New("dashboard-test", "debug", "json")
	hook := test.NewLocal(l.Logger)
	l.SetOutput(io.Discard)
	return l, hook
}

func TestNew_FallsBackToInfo(t *testing.T) {
	l := New("svc", "not-a-level", "text")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.Equal(t, "svc", l.Service())
}

func TestWithContext_AddsTraceAndUser(t *testing.T) {
	l, hook := newHookedLogger()

	ctx := WithTraceID(context.Background(), "trace-42")
	ctx = WithUserID(ctx, "user-7")
	l.WithContext(ctx).Info("hello")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "trace-42", entry.Data["trace_id"])
	assert.Equal(t, "user-7", entry.Data["user_id"])
	assert.Equal(t, "dashboard-test", entry.Data["service"])
}

func TestLogRequest_LevelByStatus(t *testing.T) {
	l, hook := newHookedLogger()
	ctx := context.Background()

	l.LogRequest(ctx, http.MethodGet, "/dashboard", 200, time.Millisecond)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)

	l.LogRequest(ctx, http.MethodPost, "/login", 401, time.Millisecond)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	l.LogRequest(ctx, http.MethodGet, "/dashboard/invoices", 500, time.Millisecond)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, 500, hook.LastEntry().Data["status"])
}

func TestLogSecurityEvent(t *testing.T) {
	l, hook := newHookedLogger()
	l.LogSecurityEvent(context.Background(), "rate_limit_exceeded", map[string]interface{}{"key": "1.2.3.4"})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "rate_limit_exceeded", entry.Data["security_event"])
	assert.Equal(t, "1.2.3.4", entry.Data["key"])
}

func TestTraceIDHelpers(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetUserID(context.Background()))
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}
