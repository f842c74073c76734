package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledWithoutDSN(t *testing.T) {
	require.NoError(t, SetupErrorReporting("", "test"))
	require.False(t, Enabled())

	// no-ops when disabled
	ReportError(errors.New("boom"))

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	NewErrorReportingHandler(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}

func TestInvalidDSN(t *testing.T) {
	require.Error(t, SetupErrorReporting("::not a dsn", "test"))
	require.False(t, Enabled())
}
