package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del adapter raft. Viven en un paquete propio para evitar ciclos
// entre cluster y store.

var (
	RaftApplyLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "docuser_raft_apply_latency_ms",
		Help:    "Latencia de raft.Apply en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	RaftLeadershipChanges = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docuser_raft_leadership_changes_total",
		Help: "Cambios de rol a leader",
	})

	RaftIsLeader = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "docuser_raft_is_leader",
		Help: "1 si este nodo es leader, 0 si no",
	})
)

// RegisterRaft registra las métricas de raft en reg (o el default si es nil).
func RegisterRaft(reg prometheus.Registerer) error {
	return registerAll(reg, RaftApplyLatency, RaftLeadershipChanges, RaftIsLeader)
}

func registerAll(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
