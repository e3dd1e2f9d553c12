package diag

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viewtouch/posk/internal/persistence"
)

func TestHealthEndpointIsAlwaysOpen(t *testing.T) {
	s := New(nil, func() persistence.IntegrityReport { return persistence.IntegrityReport{} }, func() Metrics { return Metrics{} })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpointReturnsInjectedSnapshot(t *testing.T) {
	s := New(nil, func() persistence.IntegrityReport { return persistence.IntegrityReport{} }, func() Metrics {
		return Metrics{ConnectedTerminals: 3, OpenChecks: 5}
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ConnectedTerminals":3`)
}
