package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.IncLogin(OutcomeOK)
	m.IncSubmission("apply", OutcomeOK)
	m.IncApplicationsCreated()
	m.AddStagedFilesRemoved(3)
	m.IncHousekeepingRun(OutcomeOK)
	require.Nil(t, m.Registry())

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	m.Instrument("/x", h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCountersAndExposition(t *testing.T) {
	m := New()

	m.IncLogin(OutcomeOK)
	m.IncLogin(OutcomeOK)
	m.IncSubmission("confirm", OutcomeValidation)
	m.AddStagedFilesRemoved(2)
	m.AddStagedFilesRemoved(0)

	require.InDelta(t, 2, testutil.ToFloat64(m.Logins.WithLabelValues(OutcomeOK)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.Submissions.WithLabelValues("confirm", OutcomeValidation)), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.StagedFilesRemoved), 0)

	h := m.Instrument("/api/auth/login", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "{}")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	require.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodPost, "/api/auth/login", "200")), 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "loanapply_logins_total"))
	require.True(t, strings.Contains(body, "go_goroutines"))
}
