// Package sqlite implementa un store de documentos sobre SQLite (modernc, sin cgo).
// Cada documento es una fila de la tabla documents con el payload en JSON.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

func init() {
	docstore.RegisterAdapter(&sqliteAdapter{})
}

const schema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	doc_key    TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (collection, doc_key)
)`

type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string { return "sqlite" }

func (a *sqliteAdapter) Open(ctx context.Context, cfg docstore.Config) (docstore.Store, error) {
	return Open(ctx, cfg.SQLitePath)
}

// Store persiste documentos en SQLite.
type Store struct {
	db *sql.DB
}

// Open abre (o crea) la base y asegura la tabla documents.
// path ":memory:" crea una base efímera.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Una sola conexión: ":memory:" es por-conexión y SQLite serializa escrituras igual.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Name() string { return "sqlite" }

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{s: s, name: name}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type collection struct {
	s    *Store
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
	var raw string
	err := c.s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND doc_key = ?`,
		c.name, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return &docstore.Snapshot{Key: key}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %s/%s: %w", c.name, key, err)
	}
	var doc docstore.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("sqlite: decode %s/%s: %w", c.name, key, err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	return &docstore.Snapshot{Key: key, Exists: true, Data: doc}, nil
}

// Update lee, mezcla campo a campo y reescribe dentro de una transacción.
// Cada campo top-level se reemplaza entero (null incluido), igual que docstore.Merge.
func (c *collection) Update(ctx context.Context, key string, fields docstore.Document) error {
	if err := c.validate(key); err != nil {
		return err
	}
	patch, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}

	tx, err := c.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: update %s/%s: begin: %w", c.name, key, err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND doc_key = ?`,
		c.name, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: update %s/%s: %w", c.name, key, repository.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("sqlite: update %s/%s: %w", c.name, key, err)
	}
	var cur docstore.Document
	if err := json.Unmarshal([]byte(raw), &cur); err != nil {
		return fmt.Errorf("sqlite: decode %s/%s: %w", c.name, key, err)
	}

	data, err := encode(docstore.Merge(cur, patch))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND doc_key = ?`,
		data, time.Now().UnixMilli(), c.name, key,
	); err != nil {
		return fmt.Errorf("sqlite: update %s/%s: %w", c.name, key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: update %s/%s: commit: %w", c.name, key, err)
	}
	return nil
}

func (c *collection) Set(ctx context.Context, key string, doc docstore.Document) error {
	if err := c.validate(key); err != nil {
		return err
	}
	data, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = c.s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, doc_key, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, doc_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		c.name, key, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: set %s/%s: %w", c.name, key, err)
	}
	return nil
}

func encode(doc docstore.Document) (string, error) {
	norm, err := docstore.Normalize(doc)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(norm)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode document: %w", err)
	}
	return string(b), nil
}
