// Package fs implementa un store de documentos sobre el filesystem:
// un archivo JSON por documento en <root>/<collection>/<key>.json.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
	"github.com/dropDatabas3/docuser/internal/util/atomicwrite"
)

func init() {
	docstore.RegisterAdapter(&fsAdapter{})
}

const filePerm = 0o600

type fsAdapter struct{}

func (a *fsAdapter) Name() string { return "fs" }

func (a *fsAdapter) Open(ctx context.Context, cfg docstore.Config) (docstore.Store, error) {
	return New(cfg.FSRoot)
}

// Store guarda documentos como archivos JSON.
// El mutex serializa read-modify-write dentro del proceso; no coordina
// múltiples procesos sobre el mismo root.
type Store struct {
	root string
	mu   sync.RWMutex
}

// New crea el root si no existe.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("fs: root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("fs: mkdir root: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Name() string { return "fs" }

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{s: s, name: name}
}

func (s *Store) Ping(ctx context.Context) error {
	st, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("fs: stat root: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("fs: root %s is not a directory", s.root)
	}
	return nil
}

func (s *Store) Close() error { return nil }

type collection struct {
	s    *Store
	name string
}

func (c *collection) path(key string) (string, error) {
	if err := docstore.ValidateCollection(c.name); err != nil {
		return "", err
	}
	if err := docstore.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(c.s.root, c.name, key+".json"), nil
}

// read asume que el lock ya está tomado.
func (c *collection) read(path string) (docstore.Document, bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fs: read %s: %w", path, err)
	}
	var doc docstore.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, false, fmt.Errorf("fs: decode %s: %w", path, err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	return doc, true, nil
}

func (c *collection) Get(ctx context.Context, key string) (*docstore.Snapshot, error) {
	path, err := c.path(key)
	if err != nil {
		return nil, err
	}
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	doc, ok, err := c.read(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &docstore.Snapshot{Key: key}, nil
	}
	return &docstore.Snapshot{Key: key, Exists: true, Data: doc}, nil
}

func (c *collection) Update(ctx context.Context, key string, fields docstore.Document) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	patch, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	doc, ok, err := c.read(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("fs: update %s/%s: %w", c.name, key, repository.ErrNotFound)
	}
	if err := atomicwrite.WriteJSON(path, docstore.Merge(doc, patch), filePerm); err != nil {
		return fmt.Errorf("fs: write %s: %w", path, err)
	}
	return nil
}

func (c *collection) Set(ctx context.Context, key string, doc docstore.Document) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	data, err := docstore.Normalize(doc)
	if err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if err := atomicwrite.WriteJSON(path, data, filePerm); err != nil {
		return fmt.Errorf("fs: write %s: %w", path, err)
	}
	return nil
}
