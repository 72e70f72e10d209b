// Package repository traduce los records del driver a entidades del dominio.
package repository

import (
	"context"

	"github.com/dropDatabas3/docuser/internal/domain/entity"
	domainrepo "github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/observability/logger"
)

// UserRepository implementa domainrepo.UserRepository sobre un UserDriver.
type UserRepository struct {
	driver domainrepo.UserDriver
}

var _ domainrepo.UserRepository = (*UserRepository)(nil)

func NewUserRepository(driver domainrepo.UserDriver) *UserRepository {
	return &UserRepository{driver: driver}
}

// Find retorna nil, nil si el driver no encuentra el documento.
// Cada llamada produce un User nuevo.
func (r *UserRepository) Find(ctx context.Context, uid string) (*entity.User, error) {
	rec, err := r.driver.Find(ctx, uid)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	u, err := entity.NewUser(rec.UID, rec.Email)
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Debug("user loaded", logger.Layer("repository"), logger.UserID(u.UID()))
	return &u, nil
}

// Update delega en el driver sin validar ni releer.
func (r *UserRepository) Update(ctx context.Context, uid, email string) error {
	return r.driver.Update(ctx, uid, email)
}
