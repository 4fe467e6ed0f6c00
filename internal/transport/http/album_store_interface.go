package http

import (
	"context"

	"albumsvc/pkg/contracts/domain"
)

// AlbumStore defines the album operations the handlers depend on
type AlbumStore interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]domain.Album, error)
	Insert(ctx context.Context, title string) error
	Update(ctx context.Context, id int64, title string) error
	Delete(ctx context.Context, id int64) error
}
