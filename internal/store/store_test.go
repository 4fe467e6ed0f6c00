package store

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"albumsvc/internal/config"
	"albumsvc/internal/infrastructure"
	"albumsvc/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memoryConfig() config.DatabaseConfig {
	cfg := config.Default().Database
	cfg.DSN = ":memory:"
	return cfg
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), memoryConfig(), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, MigrateUp(db, discardLogger()))
	return db
}

func titles(albums []domain.Album) []string {
	out := make([]string, 0, len(albums))
	for _, a := range albums {
		out = append(out, a.Title)
	}
	return out
}

func TestSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t), discardLogger())

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	albums, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, albums)
	assert.Empty(t, albums)

	require.NoError(t, s.Insert(ctx, domain.InsertedAlbumTitle))

	albums, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, domain.InsertedAlbumTitle, albums[0].Title)
	id := albums[0].ID

	require.NoError(t, s.Update(ctx, id, "new"))
	albums, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Album{{ID: id, Title: "new"}}, albums)

	require.NoError(t, s.Delete(ctx, id))
	albums, err = s.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, titles(albums), "new")

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLStore_CountAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t), discardLogger())

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, s.Insert(ctx, title))
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	albums, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, titles(albums))
	assert.Less(t, albums[0].ID, albums[2].ID)
}

func TestSQLStore_MissingIDIsNotAnError(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t), discardLogger())

	assert.NoError(t, s.Update(ctx, 999, "ghost"))
	assert.NoError(t, s.Delete(ctx, 999))
}

func TestSQLStore_ErrorsAfterClose(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, memoryConfig(), discardLogger())
	require.NoError(t, err)
	require.NoError(t, MigrateUp(db, discardLogger()))
	s := NewSQLStore(db, discardLogger())
	require.NoError(t, db.Close())

	_, err = s.Count(ctx)
	assert.ErrorContains(t, err, "count albums")
	_, err = s.List(ctx)
	assert.Error(t, err)
	assert.Error(t, s.Insert(ctx, "x"))
	assert.ErrorContains(t, s.Update(ctx, 1, "x"), "update album 1")
	assert.ErrorContains(t, s.Delete(ctx, 1), "delete album 1")
	assert.Error(t, s.Ping(ctx))
}

func TestSQLStore_MissingTable(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, memoryConfig(), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = NewSQLStore(db, discardLogger()).Count(ctx)
	assert.ErrorContains(t, err, "no such table")
}

func TestOpen(t *testing.T) {
	t.Run("file database creates parent directory", func(t *testing.T) {
		cfg := config.Default().Database
		cfg.DSN = "file:" + filepath.Join(t.TempDir(), "nested", "albums.db") + "?_foreign_keys=on"

		db, err := Open(context.Background(), cfg, discardLogger())
		require.NoError(t, err)
		defer db.Close()

		assert.True(t, config.FileExists(filepath.Dir(config.SQLiteFilePath(cfg.DSN))))
		assert.Equal(t, cfg.MaxOpenConns, db.Stats().MaxOpenConnections)
	})

	t.Run("memory database uses one connection", func(t *testing.T) {
		db, err := Open(context.Background(), memoryConfig(), discardLogger())
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Driver = "postgres"

		_, err := Open(context.Background(), cfg, discardLogger())
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}

func TestMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, memoryConfig(), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	version, _, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, MigrateUp(db, discardLogger()))
	// second run is a no-op
	require.NoError(t, MigrateUp(db, discardLogger()))

	version, dirty, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, MigrateDown(db, discardLogger()))
	_, err = NewSQLStore(db, discardLogger()).Count(ctx)
	assert.Error(t, err)
}

type failingStore struct{ err error }

func (f failingStore) Count(context.Context) (int64, error)         { return 0, f.err }
func (f failingStore) List(context.Context) ([]domain.Album, error) { return nil, f.err }
func (f failingStore) Insert(context.Context, string) error         { return f.err }
func (f failingStore) Update(context.Context, int64, string) error  { return f.err }
func (f failingStore) Delete(context.Context, int64) error          { return f.err }

func newTestMetrics(t *testing.T) (*infrastructure.BusinessMetrics, *infrastructure.OTelProviders) {
	t.Helper()

	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    "albumsvc-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1.0,
	}, prometheus.NewRegistry(), discardLogger())
	require.NoError(t, err)

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	return metrics, providers
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Body.String()
}

func TestInstrumentedStore_PassesThrough(t *testing.T) {
	ctx := context.Background()
	metrics, providers := newTestMetrics(t)

	s := NewInstrumentedStore(NewSQLStore(newTestDB(t), discardLogger()), tracenoop.NewTracerProvider().Tracer("test"), metrics)

	require.NoError(t, s.Insert(ctx, domain.InsertedAlbumTitle))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, s.Ping(ctx))

	body := scrape(t, providers.PrometheusHTTP)
	assert.Contains(t, body, "album_store_operations_total")
	assert.Contains(t, body, `operation="insert"`)
}

func TestInstrumentedStore_RecordsErrors(t *testing.T) {
	ctx := context.Background()
	metrics, providers := newTestMetrics(t)
	boom := errors.New("database is locked")

	s := NewInstrumentedStore(failingStore{err: boom}, tracenoop.NewTracerProvider().Tracer("test"), metrics)

	_, err := s.Count(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Update(ctx, 1, "x"), boom)
	assert.ErrorIs(t, s.Delete(ctx, 1), boom)
	// failingStore has no Ping
	assert.NoError(t, s.Ping(ctx))

	body := scrape(t, providers.PrometheusHTTP)
	assert.Contains(t, body, "album_store_errors_total")
	assert.Contains(t, body, `status="failure"`)
}

func TestRegisterDBStats(t *testing.T) {
	db := newTestDB(t)
	reg := prometheus.NewRegistry()

	require.NoError(t, RegisterDBStats(reg, db))
	require.NoError(t, RegisterDBStats(reg, db))

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
		if f.GetName() != "go_sql_max_open_connections" {
			continue
		}
		require.Len(t, f.GetMetric(), 1)
		labels := f.GetMetric()[0].GetLabel()
		require.Len(t, labels, 1)
		assert.Equal(t, "db_name", labels[0].GetName())
		assert.Equal(t, "albums", labels[0].GetValue())
		assert.Equal(t, float64(1), f.GetMetric()[0].GetGauge().GetValue())
	}
	assert.Contains(t, names, "go_sql_max_open_connections")
}
