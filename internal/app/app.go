// Package app es el composition root: abre el store y arma
// Driver → Repository → UseCase una sola vez por proceso.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/dropDatabas3/docuser/internal/cluster"
	"github.com/dropDatabas3/docuser/internal/config"
	domainuc "github.com/dropDatabas3/docuser/internal/domain/usecase"
	"github.com/dropDatabas3/docuser/internal/driver"
	"github.com/dropDatabas3/docuser/internal/metrics"
	"github.com/dropDatabas3/docuser/internal/observability/logger"
	"github.com/dropDatabas3/docuser/internal/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
	"github.com/dropDatabas3/docuser/internal/usecase"

	_ "github.com/dropDatabas3/docuser/internal/store/adapters/all"
)

// Container agrupa lo que main necesita. Users es el único punto de entrada
// para operar sobre usuarios; Store queda expuesto para seeding y readiness.
type Container struct {
	Config   *config.Config
	Store    docstore.Store
	Registry *prometheus.Registry
	HTTP     *metrics.HTTP
	Users    domainuc.UserUseCase
}

// New abre el store configurado, lo instrumenta y arma el pipeline de usuario.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.RegisterRaft(reg); err != nil {
		return nil, fmt.Errorf("app: register raft metrics: %w", err)
	}
	storeMetrics, err := metrics.NewStore(reg)
	if err != nil {
		return nil, fmt.Errorf("app: register store metrics: %w", err)
	}

	raw, err := docstore.Open(ctx, cfg.ToDocstore())
	if err != nil {
		return nil, fmt.Errorf("app: open store %q: %w", cfg.Store.Driver, err)
	}
	if ps, ok := raw.(interface{ Pool() *pgxpool.Pool }); ok {
		if err := metrics.RegisterPool(reg, ps.Pool); err != nil {
			_ = raw.Close()
			return nil, fmt.Errorf("app: register pool metrics: %w", err)
		}
	}
	httpMetrics, err := metrics.NewHTTP(reg)
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("app: register http metrics: %w", err)
	}
	store := docstore.Instrument(raw, storeMetrics)

	fields := []zap.Field{logger.Store(store.Name()), zap.Strings("available", docstore.ListAdapters())}
	if rs, ok := raw.(interface{ Node() *cluster.Node }); ok {
		n := rs.Node()
		fields = append(fields, zap.String("raft_node", n.NodeID()), zap.String("raft_addr", n.RaftAddr()))
	}
	logger.L().Info("store opened", fields...)

	return &Container{
		Config:   cfg,
		Store:    store,
		Registry: reg,
		HTTP:     httpMetrics,
		Users:    Wire(store),
	}, nil
}

// Wire arma el pipeline sobre un store ya abierto.
func Wire(store docstore.Store) domainuc.UserUseCase {
	return usecase.NewUserUseCase(
		repository.NewUserRepository(
			driver.NewUserDriver(store),
		),
	)
}

// Ready verifica el backend (readiness probe).
func (c *Container) Ready(ctx context.Context) error {
	return c.Store.Ping(ctx)
}

// Close libera el store.
func (c *Container) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
