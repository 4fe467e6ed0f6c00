package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"albumsvc/internal/infrastructure"
)

// hiddenStoreError replaces store error text when exposure is disabled
const hiddenStoreError = "database error"

// respondText writes body as text/plain with status
func respondText(w http.ResponseWriter, r *http.Request, status int, body string) {
	render.Status(r, status)
	render.PlainText(w, r, body)
}

// respondStoreError logs err and answers 500 with its description, or with
// hiddenStoreError when expose is false.
func respondStoreError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, operation string, err error, expose bool) {
	infrastructure.WithError(logger, err).ErrorContext(r.Context(), "Album store operation failed",
		slog.String("operation", operation))

	body := hiddenStoreError
	if expose {
		body = err.Error()
	}
	respondText(w, r, http.StatusInternalServerError, body)
}
