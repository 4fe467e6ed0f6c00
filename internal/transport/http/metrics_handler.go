package http

import (
	"errors"
	"net/http"

	apierrors "albumsvc/internal/errors"
)

// MetricsHandler serves the Prometheus exposition endpoint
type MetricsHandler struct {
	exporter     http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the registry handler. A nil exporter means metrics
// are disabled and GET /metrics answers 503.
func NewMetricsHandler(exporter http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		exporter:     exporter,
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errorHandler.HandleError(w, r,
			apierrors.ServiceUnavailableWithError("metrics", errors.New("metric exporter disabled")))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
