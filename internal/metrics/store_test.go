package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewStore_ReusesExistingCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	a, err := NewStore(reg)
	require.NoError(t, err)
	b, err := NewStore(reg)
	require.NoError(t, err)

	a.Ops.WithLabelValues("memory", "user", "get", ResultOK).Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(b.Ops.WithLabelValues("memory", "user", "get", ResultOK)))
}

func TestRegisterRaft_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterRaft(reg))
	require.NoError(t, RegisterRaft(reg))
}
