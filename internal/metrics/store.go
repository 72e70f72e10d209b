package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados posibles de una operación de store.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Store agrupa las métricas de operaciones sobre docstore.
// Se crea una instancia por registry para que los tests no compartan estado.
type Store struct {
	Ops      *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewStore crea y registra las métricas de store en reg (o el default si es nil).
func NewStore(reg prometheus.Registerer) (*Store, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ops, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docuser_docstore_ops_total",
		Help: "Operaciones sobre el store de documentos",
	}, []string{"store", "collection", "op", "result"}))
	if err != nil {
		return nil, err
	}
	dur, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docuser_docstore_op_duration_seconds",
		Help:    "Duración de operaciones sobre el store de documentos",
		Buckets: prometheus.DefBuckets,
	}, []string{"store", "op"}))
	if err != nil {
		return nil, err
	}
	return &Store{Ops: ops, Duration: dur}, nil
}

// register registra c o, si ya estaba, retorna el collector existente.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
