package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"albumsvc/internal/middleware"
	apiv1 "albumsvc/pkg/contracts/api/v1"
	"albumsvc/pkg/contracts/domain"
)

// Confirmation bodies of the album write endpoints
const (
	InsertOK = "insert-ok"
	UpdateOK = "update-ok"
	DeleteOK = "delete-ok"
)

// AlbumHandler passes album requests through to the store
type AlbumHandler struct {
	store        AlbumStore
	validation   *middleware.ValidationMiddleware
	logger       *slog.Logger
	exposeErrors bool
}

// NewAlbumHandler creates a new album handler. exposeErrors controls whether
// store error text is returned to the client.
func NewAlbumHandler(store AlbumStore, validation *middleware.ValidationMiddleware, logger *slog.Logger, exposeErrors bool) *AlbumHandler {
	return &AlbumHandler{
		store:        store,
		validation:   validation,
		logger:       logger.With(slog.String("handler", "album")),
		exposeErrors: exposeErrors,
	}
}

// TotalRows handles GET /db/total_rows
func (h *AlbumHandler) TotalRows(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Count(r.Context())
	if err != nil {
		respondStoreError(w, r, h.logger, "count", err, h.exposeErrors)
		return
	}
	respondText(w, r, http.StatusOK, strconv.FormatInt(n, 10))
}

// QueryAll handles GET /db/query_all
func (h *AlbumHandler) QueryAll(w http.ResponseWriter, r *http.Request) {
	albums, err := h.store.List(r.Context())
	if err != nil {
		respondStoreError(w, r, h.logger, "list", err, h.exposeErrors)
		return
	}
	if albums == nil {
		albums = []domain.Album{}
	}
	render.JSON(w, r, albums)
}

// Insert handles GET /db/insert
func (h *AlbumHandler) Insert(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Insert(r.Context(), domain.InsertedAlbumTitle); err != nil {
		respondStoreError(w, r, h.logger, "insert", err, h.exposeErrors)
		return
	}
	respondText(w, r, http.StatusOK, InsertOK)
}

// Update handles POST /db/update/:id
func (h *AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.validation.ValidateIDParam(w, r, "id")
	if !ok {
		return
	}

	var req apiv1.UpdateAlbumRequest
	if !h.validation.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.store.Update(r.Context(), id, *req.Title); err != nil {
		respondStoreError(w, r, h.logger, "update", err, h.exposeErrors)
		return
	}
	respondText(w, r, http.StatusOK, UpdateOK)
}

// Delete handles GET /db/delete/:id
func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.validation.ValidateIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondStoreError(w, r, h.logger, "delete", err, h.exposeErrors)
		return
	}
	respondText(w, r, http.StatusOK, DeleteOK)
}
