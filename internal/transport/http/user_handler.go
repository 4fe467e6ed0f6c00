package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"albumsvc/internal/middleware"
	"albumsvc/internal/router"
	apiv1 "albumsvc/pkg/contracts/api/v1"
	"albumsvc/pkg/contracts/domain"
)

// UserHandler serves the stub user endpoints. Users are not stored.
type UserHandler struct {
	validation *middleware.ValidationMiddleware
	logger     *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(validation *middleware.ValidationMiddleware, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		validation: validation,
		logger:     logger.With(slog.String("handler", "user")),
	}
}

// Create handles POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req apiv1.CreateUserRequest
	if !h.validation.DecodeAndValidate(w, r, &req) {
		return
	}

	user := domain.User{ID: domain.StubUserID, Username: *req.Username}
	h.logger.DebugContext(r.Context(), "User created", slog.String("username", user.Username))

	render.Status(r, http.StatusCreated)
	_ = render.Render(w, r, apiv1.NewUserResponse(user))
}

// Get handles GET /users/:id. The id is echoed as given.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondText(w, r, http.StatusOK, "user_id = "+router.Param(r, "id"))
}
