// Package pg implementa un store de documentos sobre PostgreSQL usando pgxpool.
// Los documentos viven en la tabla documents con el payload en JSONB.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

func init() {
	docstore.RegisterAdapter(&postgresAdapter{})
}

// schema se aplica con IF NOT EXISTS al conectar. No hay versionado de migraciones.
const schema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	doc_key    TEXT        NOT NULL,
	data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, doc_key)
)`

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Open(ctx context.Context, cfg docstore.Config) (docstore.Store, error) {
	return Connect(ctx, cfg.Postgres)
}

// Store persiste documentos en PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Connect crea el pool, verifica la conexión y asegura la tabla.
func Connect(ctx context.Context, cfg docstore.PostgresConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("pg: DSN is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ensure schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Name() string { return "postgres" }

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{pool: s.pool, name: name}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Pool expone el pool para métricas.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type collection struct {
	pool *pgxpool.Pool
	name string
}

func (c *collection) validate(key string) error {
	if err := docstore.ValidateCollection(c.name); err != nil {
		return err
	}
	return docstore.ValidateKey(key)
}

func (c *collection) Get(ctx context.Context, key string) (*docstore.Snapshot, error) {
	if err := c.validate(key); err != nil {
		return nil, err
	}
	const query = `SELECT data FROM documents WHERE collection = $1 AND doc_key = $2`

	var doc docstore.Document
	err := c.pool.QueryRow(ctx, query, c.name, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return &docstore.Snapshot{Key: key}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get %s/%s: %w", c.name, key, err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	return &docstore.Snapshot{Key: key, Exists: true, Data: doc}, nil
}

func (c *collection) Update(ctx context.Context, key string, fields docstore.Document) error {
	if err := c.validate(key); err != nil {
		return err
	}
	patch, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}
	// jsonb || jsonb sobreescribe solo las claves de primer nivel del patch.
	const query = `UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND doc_key = $2`

	tag, err := c.pool.Exec(ctx, query, c.name, key, map[string]any(patch))
	if err != nil {
		return fmt.Errorf("pg: update %s/%s: %w", c.name, key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pg: update %s/%s: %w", c.name, key, repository.ErrNotFound)
	}
	return nil
}

func (c *collection) Set(ctx context.Context, key string, doc docstore.Document) error {
	if err := c.validate(key); err != nil {
		return err
	}
	data, err := docstore.Normalize(doc)
	if err != nil {
		return err
	}
	const query = `INSERT INTO documents (collection, doc_key, data, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (collection, doc_key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`

	if _, err := c.pool.Exec(ctx, query, c.name, key, map[string]any(data)); err != nil {
		return fmt.Errorf("pg: set %s/%s: %w", c.name, key, err)
	}
	return nil
}
