// Package driver contiene el acceso crudo al store de documentos.
package driver

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/observability/logger"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

// UserDriver lee y escribe documentos de la colección "user".
// Hace exactamente una llamada al store por operación y devuelve sus errores tal cual.
type UserDriver struct {
	store docstore.Store
}

var _ repository.UserDriver = (*UserDriver)(nil)

// NewUserDriver crea el driver sobre un store ya abierto.
func NewUserDriver(store docstore.Store) *UserDriver {
	return &UserDriver{store: store}
}

func (d *UserDriver) users() docstore.Collection {
	return d.store.Collection(repository.UserCollection)
}

// Find busca el documento uid. Si no existe retorna nil, nil.
func (d *UserDriver) Find(ctx context.Context, uid string) (*repository.UserRecord, error) {
	snap, err := d.users().Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if snap == nil || !snap.Exists {
		logger.From(ctx).Debug("user not found", logger.Layer("driver"), logger.UserID(uid))
		return nil, nil
	}
	return decodeUser(snap)
}

// Update sobreescribe solo el campo email.
func (d *UserDriver) Update(ctx context.Context, uid, email string) error {
	return d.users().Update(ctx, uid, docstore.Document{"email": email})
}

// decodeUser arma el record desde el payload. La key del documento es el uid,
// así que se usa como fallback cuando el payload no lo trae.
func decodeUser(snap *docstore.Snapshot) (*repository.UserRecord, error) {
	email, ok := snap.Data["email"].(string)
	if !ok {
		return nil, fmt.Errorf("driver: user %q: email missing or not a string: %w", snap.Key, repository.ErrInvalidRecord)
	}
	rec := &repository.UserRecord{UID: snap.Key, Email: email}
	if uid, ok := snap.Data["uid"].(string); ok && uid != "" {
		rec.UID = uid
	}
	return rec, nil
}
