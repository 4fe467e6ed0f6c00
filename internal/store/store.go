package store

import (
	"context"

	"albumsvc/pkg/contracts/domain"
)

// AlbumStore defines the album operations used by the HTTP layer.
// Update and Delete succeed when no row has the given id.
type AlbumStore interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]domain.Album, error)
	Insert(ctx context.Context, title string) error
	Update(ctx context.Context, id int64, title string) error
	Delete(ctx context.Context, id int64) error
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
