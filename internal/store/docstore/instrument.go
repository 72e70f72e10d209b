package docstore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/metrics"
	"github.com/dropDatabas3/docuser/internal/observability/logger"
)

const tracerName = "github.com/dropDatabas3/docuser/internal/store/docstore"

// Instrument envuelve s con métricas, logs de debug y spans.
// No altera resultados ni errores. m puede ser nil (solo logs y spans).
func Instrument(s Store, m *metrics.Store) Store {
	if s == nil {
		return nil
	}
	return &instrumentedStore{inner: s, m: m, tracer: otel.Tracer(tracerName)}
}

type instrumentedStore struct {
	inner  Store
	m      *metrics.Store
	tracer trace.Tracer
}

func (s *instrumentedStore) Name() string                   { return s.inner.Name() }
func (s *instrumentedStore) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }
func (s *instrumentedStore) Close() error                   { return s.inner.Close() }

// Unwrap retorna el store envuelto.
func (s *instrumentedStore) Unwrap() Store { return s.inner }

func (s *instrumentedStore) Collection(name string) Collection {
	return &instrumentedCollection{store: s, name: name, inner: s.inner.Collection(name)}
}

type instrumentedCollection struct {
	store *instrumentedStore
	name  string
	inner Collection
}

func (c *instrumentedCollection) Get(ctx context.Context, key string) (*Snapshot, error) {
	ctx, done := c.begin(ctx, "get", key)
	snap, err := c.inner.Get(ctx, key)
	found := err == nil && snap != nil && snap.Exists
	done(err, found)
	return snap, err
}

func (c *instrumentedCollection) Update(ctx context.Context, key string, fields Document) error {
	ctx, done := c.begin(ctx, "update", key)
	err := c.inner.Update(ctx, key, fields)
	done(err, err == nil)
	return err
}

func (c *instrumentedCollection) Set(ctx context.Context, key string, doc Document) error {
	ctx, done := c.begin(ctx, "set", key)
	err := c.inner.Set(ctx, key, doc)
	done(err, true)
	return err
}

func (c *instrumentedCollection) begin(ctx context.Context, op, key string) (context.Context, func(err error, found bool)) {
	storeName := c.store.inner.Name()
	start := time.Now()
	ctx, span := c.store.tracer.Start(ctx, "docstore."+op, trace.WithAttributes(
		attribute.String("docstore.store", storeName),
		attribute.String("docstore.collection", c.name),
		attribute.String("docstore.key", key),
	))

	return ctx, func(err error, found bool) {
		elapsed := time.Since(start)
		result := metrics.ResultOK
		switch {
		case err != nil && repository.IsNotFound(err):
			result = metrics.ResultNotFound
		case err != nil:
			result = metrics.ResultError
		case !found:
			result = metrics.ResultNotFound
		}

		if c.store.m != nil {
			c.store.m.Ops.WithLabelValues(storeName, c.name, op, result).Inc()
			c.store.m.Duration.WithLabelValues(storeName, op).Observe(elapsed.Seconds())
		}

		log := logger.From(ctx).With(
			logger.Store(storeName), logger.Collection(c.name), logger.Key(key),
			logger.Op(op), logger.Duration(elapsed),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Debug("docstore op failed", logger.Err(err))
		} else {
			log.Debug("docstore op", logger.Found(found))
		}
		span.End()
	}
}
