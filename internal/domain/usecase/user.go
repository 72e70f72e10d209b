// Package usecase define el puerto que consumen los llamadores externos (CLI, UI, etc).
package usecase

import (
	"context"

	"github.com/dropDatabas3/docuser/internal/domain/entity"
)

// UserUseCase es el único punto de entrada sancionado para operar sobre usuarios.
type UserUseCase interface {
	Find(ctx context.Context, uid string) (*entity.User, error)
	Update(ctx context.Context, uid, email string) error
}
