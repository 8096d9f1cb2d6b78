package admin_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadwatch/internal/admin"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthz(t *testing.T) {
	s := admin.NewServer(":0", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	admin.RecordReviewCycle(2)
	admin.RecordCRMRequest("lead.list", true)
	admin.RecordAction("postpone", "not_found")

	s := admin.NewServer(":0", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "leadwatch_review_cycles_total"))
	assert.True(t, strings.Contains(body, "leadwatch_leads_presented_total"))
	assert.True(t, strings.Contains(body, `leadwatch_crm_requests_total{op="lead.list",status="ok"}`))
	assert.True(t, strings.Contains(body, `leadwatch_actions_total{kind="postpone",outcome="not_found"}`))
}
