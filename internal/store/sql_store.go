package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"albumsvc/internal/config"
	"albumsvc/pkg/contracts/domain"
)

// DriverSQLite3 is the only supported database/sql driver name.
const DriverSQLite3 = "sqlite3"

// Open opens and pings the database described by cfg. File databases get
// their parent directory created; in-memory databases are pinned to one
// connection so every query sees the same data.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if cfg.Driver != DriverSQLite3 {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	filePath := config.SQLiteFilePath(cfg.DSN)
	if err := config.EnsureParentDir(filePath); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if filePath == "" {
		maxOpen = 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database opened",
		slog.String("driver", cfg.Driver),
		slog.String("file", filePath),
		slog.Int("max_open_conns", maxOpen),
	)

	return db, nil
}

// SQLStore implements AlbumStore on a *sql.DB holding the album table.
type SQLStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLStore wraps an open database. The album table must already exist.
func NewSQLStore(db *sql.DB, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{
		db:     db,
		logger: logger.With(slog.String("component", "album_store")),
	}
}

// Count returns the number of albums
func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM album`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count albums: %w", err)
	}
	return n, nil
}

// List returns every album ordered by id
func (s *SQLStore) List(ctx context.Context) ([]domain.Album, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM album ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	albums := make([]domain.Album, 0)
	for rows.Next() {
		var a domain.Album
		if err := rows.Scan(&a.ID, &a.Title); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}

	return albums, nil
}

// Insert adds an album with the given title
func (s *SQLStore) Insert(ctx context.Context, title string) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO album (title) VALUES (?)`, title)
	if err != nil {
		return fmt.Errorf("insert album: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		s.logger.DebugContext(ctx, "album inserted", slog.Int64("id", id))
	}
	return nil
}

// Update sets the title of album id
func (s *SQLStore) Update(ctx context.Context, id int64, title string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE album SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("update album %d: %w", id, err)
	}
	s.logAffected(ctx, "album updated", id, res)
	return nil
}

// Delete removes album id
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM album WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete album %d: %w", id, err)
	}
	s.logAffected(ctx, "album deleted", id, res)
	return nil
}

// Ping checks that the database is reachable
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (s *SQLStore) logAffected(ctx context.Context, msg string, id int64, res sql.Result) {
	n, err := res.RowsAffected()
	if err != nil {
		return
	}
	s.logger.DebugContext(ctx, msg, slog.Int64("id", id), slog.Int64("rows_affected", n))
}
