// Package firestore implementa el store de documentos sobre Cloud Firestore,
// el backend nativo de colecciones/documentos. Respeta FIRESTORE_EMULATOR_HOST.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

func init() {
	docstore.RegisterAdapter(&firestoreAdapter{})
}

type firestoreAdapter struct{}

func (a *firestoreAdapter) Name() string { return "firestore" }

func (a *firestoreAdapter) Open(ctx context.Context, cfg docstore.Config) (docstore.Store, error) {
	return Connect(ctx, cfg.Firestore)
}

// Store envuelve un *firestore.Client.
type Store struct {
	client *firestore.Client
}

// Connect crea el cliente. Con DatabaseID vacío usa la base "(default)".
func Connect(ctx context.Context, cfg docstore.FirestoreConfig) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore: project id is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var (
		client *firestore.Client
		err    error
	)
	if cfg.DatabaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.DatabaseID, opts...)
	} else {
		client, err = firestore.NewClient(ctx, cfg.ProjectID, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("firestore: new client: %w", err)
	}
	return New(client), nil
}

// New envuelve un cliente existente.
func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Name() string { return "firestore" }

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{s: s, name: name}
}

// Ping lee un documento centinela; NotFound cuenta como backend sano.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Collection("_ping").Doc("_ping").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("firestore: ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.client.Close() }

type collection struct {
	s    *Store
	name string
}

func (c *collection) doc(key string) (*firestore.DocumentRef, error) {
	if err := docstore.ValidateCollection(c.name); err != nil {
		return nil, err
	}
	if err := docstore.ValidateKey(key); err != nil {
		return nil, err
	}
	return c.s.client.Collection(c.name).Doc(key), nil
}

func (c *collection) Get(ctx context.Context, key string) (*docstore.Snapshot, error) {
	ref, err := c.doc(key)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return &docstore.Snapshot{Key: key}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("firestore: get %s/%s: %w", c.name, key, err)
	}
	if !snap.Exists() {
		return &docstore.Snapshot{Key: key}, nil
	}
	data, err := docstore.Normalize(snap.Data())
	if err != nil {
		return nil, fmt.Errorf("firestore: decode %s/%s: %w", c.name, key, err)
	}
	return &docstore.Snapshot{Key: key, Exists: true, Data: data}, nil
}

// Update usa el update parcial nativo, que ya falla con NotFound si el documento no existe.
func (c *collection) Update(ctx context.Context, key string, fields docstore.Document) error {
	ref, err := c.doc(key)
	if err != nil {
		return err
	}
	patch, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}
	updates := make([]firestore.Update, 0, len(patch))
	for path, v := range patch {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{path}, Value: v})
	}
	if len(updates) == 0 {
		// Firestore rechaza updates vacíos; solo verificamos existencia.
		snap, err := c.Get(ctx, key)
		if err != nil {
			return err
		}
		if !snap.Exists {
			return fmt.Errorf("firestore: update %s/%s: %w", c.name, key, repository.ErrNotFound)
		}
		return nil
	}

	_, err = ref.Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("firestore: update %s/%s: %w", c.name, key, repository.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("firestore: update %s/%s: %w", c.name, key, err)
	}
	return nil
}

func (c *collection) Set(ctx context.Context, key string, doc docstore.Document) error {
	ref, err := c.doc(key)
	if err != nil {
		return err
	}
	data, err := docstore.Normalize(doc)
	if err != nil {
		return err
	}
	if _, err := ref.Set(ctx, map[string]any(data)); err != nil {
		return fmt.Errorf("firestore: set %s/%s: %w", c.name, key, err)
	}
	return nil
}
