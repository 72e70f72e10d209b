// Package usecase implementa las operaciones que consumen los llamadores externos.
package usecase

import (
	"context"

	"github.com/dropDatabas3/docuser/internal/domain/entity"
	domainrepo "github.com/dropDatabas3/docuser/internal/domain/repository"
	domainuc "github.com/dropDatabas3/docuser/internal/domain/usecase"
)

// UserUseCase delega en el repositorio. Es el punto donde irían reglas de
// validación o autorización; hoy no agrega ninguna.
type UserUseCase struct {
	repo domainrepo.UserRepository
}

var _ domainuc.UserUseCase = (*UserUseCase)(nil)

func NewUserUseCase(repo domainrepo.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

func (uc *UserUseCase) Find(ctx context.Context, uid string) (*entity.User, error) {
	return uc.repo.Find(ctx, uid)
}

func (uc *UserUseCase) Update(ctx context.Context, uid, email string) error {
	return uc.repo.Update(ctx, uid, email)
}
