// Package memory implementa un store de documentos in-process sobre go-cache.
// Útil para desarrollo y tests; no persiste nada.
package memory

import (
	"context"
	"fmt"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

func init() {
	docstore.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Open(ctx context.Context, cfg docstore.Config) (docstore.Store, error) {
	return New(), nil
}

// Store guarda documentos normalizados en un go-cache sin expiración.
// El mutex serializa read-modify-write de Update.
type Store struct {
	mu     sync.Mutex
	c      *gocache.Cache
	closed bool
}

// New crea un store vacío.
func New() *Store {
	return &Store{c: gocache.New(gocache.NoExpiration, 0)}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{s: s, name: name}
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return docstore.ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.c.Flush()
	return nil
}

type collection struct {
	s    *Store
	name string
}

func (c *collection) cacheKey(key string) (string, error) {
	if err := docstore.ValidateCollection(c.name); err != nil {
		return "", err
	}
	if err := docstore.ValidateKey(key); err != nil {
		return "", err
	}
	return c.name + "/" + key, nil
}

func (c *collection) Get(ctx context.Context, key string) (*docstore.Snapshot, error) {
	k, err := c.cacheKey(key)
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.closed {
		return nil, docstore.ErrClosed
	}

	v, ok := c.s.c.Get(k)
	if !ok {
		return &docstore.Snapshot{Key: key}, nil
	}
	// copia para que el llamador no mute lo guardado
	data, err := docstore.Normalize(v.(docstore.Document))
	if err != nil {
		return nil, fmt.Errorf("memory: copy document: %w", err)
	}
	return &docstore.Snapshot{Key: key, Exists: true, Data: data}, nil
}

func (c *collection) Update(ctx context.Context, key string, fields docstore.Document) error {
	k, err := c.cacheKey(key)
	if err != nil {
		return err
	}
	patch, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.closed {
		return docstore.ErrClosed
	}

	v, ok := c.s.c.Get(k)
	if !ok {
		return fmt.Errorf("memory: update %s/%s: %w", c.name, key, repository.ErrNotFound)
	}
	cur, err := docstore.Normalize(v.(docstore.Document))
	if err != nil {
		return fmt.Errorf("memory: copy document: %w", err)
	}
	c.s.c.Set(k, docstore.Merge(cur, patch), gocache.NoExpiration)
	return nil
}

func (c *collection) Set(ctx context.Context, key string, doc docstore.Document) error {
	k, err := c.cacheKey(key)
	if err != nil {
		return err
	}
	data, err := docstore.Normalize(doc)
	if err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.closed {
		return docstore.ErrClosed
	}
	c.s.c.Set(k, data, gocache.NoExpiration)
	return nil
}
