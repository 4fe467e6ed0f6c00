// Package api contains API contract definitions for albumsvc.
// Version v1 represents the current stable API version.
package api

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Username *string `json:"username" validate:"required"`
}

// UpdateAlbumRequest is the body of POST /db/update/:id. The id comes from
// the path; an id in the body is accepted and ignored.
type UpdateAlbumRequest struct {
	ID    *int64  `json:"id,omitempty"`
	Title *string `json:"title" validate:"required"`
}
