package http

import (
	"log/slog"
	"net/http"
)

// Fixed response bodies of the basic endpoints
const (
	IndexBody  = "Hello, World!"
	Hello2Body = "Hello, World! 2"
	FooBody    = "Hi from `POST /foo`"
	NoAuthBody = "no_data"
)

// BasicHandler serves the static endpoints
type BasicHandler struct {
	logger *slog.Logger
}

// NewBasicHandler creates a new basic handler
func NewBasicHandler(logger *slog.Logger) *BasicHandler {
	return &BasicHandler{
		logger: logger.With(slog.String("handler", "basic")),
	}
}

// Index handles GET /
func (h *BasicHandler) Index(w http.ResponseWriter, r *http.Request) {
	respondText(w, r, http.StatusOK, IndexBody)
}

// Hello2 handles GET /hello2
func (h *BasicHandler) Hello2(w http.ResponseWriter, r *http.Request) {
	respondText(w, r, http.StatusOK, Hello2Body)
}

// Foo handles POST /foo
func (h *BasicHandler) Foo(w http.ResponseWriter, r *http.Request) {
	respondText(w, r, http.StatusOK, FooBody)
}

// InfoHeader handles GET /info_header. It echoes the Authorization header
// and performs no authentication.
func (h *BasicHandler) InfoHeader(w http.ResponseWriter, r *http.Request) {
	auth, ok := r.Header["Authorization"]
	if !ok || len(auth) == 0 {
		respondText(w, r, http.StatusOK, NoAuthBody)
		return
	}
	respondText(w, r, http.StatusOK, auth[0])
}

// FooBar handles GET /foo/bar with an empty response
func (h *BasicHandler) FooBar(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
