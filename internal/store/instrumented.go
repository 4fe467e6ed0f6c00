package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"albumsvc/internal/infrastructure"
	"albumsvc/pkg/contracts/domain"
)

// InstrumentedStore wraps an AlbumStore with a span and store metrics per
// call. Errors pass through unchanged.
type InstrumentedStore struct {
	next    AlbumStore
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// NewInstrumentedStore decorates next. A nil metrics disables metrics.
func NewInstrumentedStore(next AlbumStore, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, tracer: tracer, metrics: metrics}
}

func (s *InstrumentedStore) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "album_store."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs,
			semconv.DBSystemKey.String("sqlite"),
			semconv.DBOperationNameKey.String(operation),
			semconv.DBCollectionNameKey.String("album"),
		)...),
	)
	start := time.Now()

	return ctx, func(err error) {
		infrastructure.RecordStoreOperation(ctx, s.metrics, operation, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// Count implements AlbumStore
func (s *InstrumentedStore) Count(ctx context.Context) (int64, error) {
	ctx, done := s.start(ctx, "count")
	n, err := s.next.Count(ctx)
	done(err)
	return n, err
}

// List implements AlbumStore
func (s *InstrumentedStore) List(ctx context.Context) ([]domain.Album, error) {
	ctx, done := s.start(ctx, "list")
	albums, err := s.next.List(ctx)
	done(err)
	return albums, err
}

// Insert implements AlbumStore
func (s *InstrumentedStore) Insert(ctx context.Context, title string) error {
	ctx, done := s.start(ctx, "insert")
	err := s.next.Insert(ctx, title)
	done(err)
	return err
}

// Update implements AlbumStore
func (s *InstrumentedStore) Update(ctx context.Context, id int64, title string) error {
	ctx, done := s.start(ctx, "update", attribute.Int64("album.id", id))
	err := s.next.Update(ctx, id, title)
	done(err)
	return err
}

// Delete implements AlbumStore
func (s *InstrumentedStore) Delete(ctx context.Context, id int64) error {
	ctx, done := s.start(ctx, "delete", attribute.Int64("album.id", id))
	err := s.next.Delete(ctx, id)
	done(err)
	return err
}

// Ping forwards to the wrapped store when it supports Ping.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// RegisterDBStats exports sql.DBStats for db on reg under db_name="albums".
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB) error {
	err := reg.Register(collectors.NewDBStatsCollector(db, "albums"))
	var already prometheus.AlreadyRegisteredError
	if err != nil && !errors.As(err, &already) {
		return err
	}
	return nil
}
