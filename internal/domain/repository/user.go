package repository

import (
	"context"

	"github.com/dropDatabas3/docuser/internal/domain/entity"
)

// UserCollection es la colección lógica donde viven los documentos de usuario.
const UserCollection = "user"

// UserRecord es la forma cruda del documento en el store.
// Es estructuralmente igual a entity.User pero es otro tipo a propósito.
type UserRecord struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// UserDriver habla con el store usando su forma nativa.
type UserDriver interface {
	// Find busca el documento keyed por uid.
	// Retorna nil, nil si no existe.
	Find(ctx context.Context, uid string) (*UserRecord, error)

	// Update sobreescribe el campo email del documento.
	// Retorna ErrNotFound si el documento no existe; nunca lo crea.
	Update(ctx context.Context, uid, email string) error
}

// UserRepository traduce registros crudos a entidades.
type UserRepository interface {
	// Find retorna el usuario o nil, nil si no existe.
	Find(ctx context.Context, uid string) (*entity.User, error)

	// Update delega en el driver sin validar ni releer.
	Update(ctx context.Context, uid, email string) error
}
