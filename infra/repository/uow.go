package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vdyakov/account-manager/pkg/repository"
)

// UoW implements repository.UnitOfWork on top of a gorm database handle.
// Do wraps the callback in one database transaction, so FOR UPDATE locks
// taken inside last until the transaction commits or rolls back and any
// error from the callback discards every pending mutation.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a unit of work for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do implements repository.UnitOfWork. A nested Do joins the transaction
// already in progress.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// AccountRepository implements repository.UnitOfWork.
func (u *UoW) AccountRepository() repository.AccountRepository {
	return NewAccountRepository(u.session())
}

// UserRepository implements repository.UnitOfWork.
func (u *UoW) UserRepository() repository.UserRepository {
	return NewUserRepository(u.session())
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}
