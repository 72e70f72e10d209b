package docstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/metrics"
	"github.com/dropDatabas3/docuser/internal/observability/logger"
	"github.com/dropDatabas3/docuser/internal/store/adapters/memory"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

func newInstrumented(t *testing.T) (docstore.Store, *metrics.Store) {
	t.Helper()
	m, err := metrics.NewStore(prometheus.NewRegistry())
	require.NoError(t, err)
	s := docstore.Instrument(memory.New(), m)
	t.Cleanup(func() { _ = s.Close() })
	return s, m
}

func TestInstrument_CountsOnePerCall(t *testing.T) {
	ctx := context.Background()
	s, m := newInstrumented(t)
	col := s.Collection("user")

	require.NoError(t, col.Set(ctx, "u1", docstore.Document{"email": "a@x.com"}))
	_, err := col.Get(ctx, "u1")
	require.NoError(t, err)
	_, err = col.Get(ctx, "missing")
	require.NoError(t, err)
	require.NoError(t, col.Update(ctx, "u1", docstore.Document{"email": "b@x.com"}))

	ops := m.Ops
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("memory", "user", "set", metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("memory", "user", "get", metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("memory", "user", "get", metrics.ResultNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("memory", "user", "update", metrics.ResultOK)))
}

func TestInstrument_PassesErrorsThrough(t *testing.T) {
	ctx := context.Background()
	s, m := newInstrumented(t)
	col := s.Collection("user")

	err := col.Update(ctx, "ghost", docstore.Document{"email": "x"})
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("memory", "user", "update", metrics.ResultNotFound)))

	_, err = col.Get(ctx, "")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("memory", "user", "get", metrics.ResultError)))
}

func TestInstrument_LogsFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core))

	s, _ := newInstrumented(t)
	_, err := s.Collection("user").Get(ctx, "u1")
	require.NoError(t, err)

	entries := logs.FilterMessage("docstore op").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "get", entries[0].ContextMap()["op"])
	assert.Equal(t, false, entries[0].ContextMap()["found"])
}

func TestInstrument_NilMetricsAndUnwrap(t *testing.T) {
	inner := memory.New()
	s := docstore.Instrument(inner, nil)
	require.NoError(t, s.Collection("user").Set(context.Background(), "u1", docstore.Document{}))

	u, ok := s.(interface{ Unwrap() docstore.Store })
	require.True(t, ok)
	assert.Same(t, inner, u.Unwrap())
	assert.Nil(t, docstore.Instrument(nil, nil))
	assert.False(t, errors.Is(s.Ping(context.Background()), docstore.ErrClosed))
}
