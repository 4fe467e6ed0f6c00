package api

import (
	"net/http"

	"albumsvc/pkg/contracts/domain"
)

// UserResponse is returned by POST /users
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// NewUserResponse converts a domain user
func NewUserResponse(u domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Username: u.Username}
}

// Render implements render.Renderer
func (u *UserResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// HealthResponse is returned by the /api/health endpoints
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version,omitempty"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one readiness probe
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Render implements render.Renderer
func (h *HealthResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
