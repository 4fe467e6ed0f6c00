package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "albumsvc/internal/errors"
	"albumsvc/internal/services"
	"albumsvc/pkg/contracts"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(services.NewHealthService(contracts.Version, stubPinger{}, nil, discardLogger()), discardLogger())

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus string
	}{
		{name: "health", handler: h.HealthCheck, wantStatus: services.StatusOK},
		{name: "live", handler: h.LivenessCheck, wantStatus: services.StatusAlive},
		{name: "ready", handler: h.ReadinessCheck, wantStatus: services.StatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantStatus, decodeJSON(t, w)["status"])
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	svc := services.NewHealthService(contracts.Version, stubPinger{err: errors.New("sql: database is closed")}, nil, discardLogger())
	h := NewHealthHandler(svc, discardLogger())

	w := httptest.NewRecorder()
	h.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, services.StatusNotReady, body["status"])

	checks := body["checks"].(map[string]any)
	db := checks["database"].(map[string]any)
	assert.Equal(t, "sql: database is closed", db["error"])
}

func TestHealthHandler_Version(t *testing.T) {
	h := NewHealthHandler(services.NewHealthService(contracts.Version, stubPinger{}, nil, discardLogger()), discardLogger())

	w := httptest.NewRecorder()
	h.Version(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contracts.Version, decodeJSON(t, w)["version"])
}

func TestMetricsHandler(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(discardLogger(), false)

	t.Run("delegates to exporter", func(t *testing.T) {
		exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# HELP up\n"))
		})

		w := httptest.NewRecorder()
		NewMetricsHandler(exporter, errorHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "# HELP up\n", w.Body.String())
	})

	t.Run("disabled exporter", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewMetricsHandler(nil, errorHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, apierrors.CodeServiceUnavailable, decodeJSON(t, w)["error_code"])
	})
}
