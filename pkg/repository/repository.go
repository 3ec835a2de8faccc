// Package repository defines the data access contracts consumed by the
// ledger service. Implementations live under infra/repository.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/vdyakov/account-manager/pkg/domain/account"
	"github.com/vdyakov/account-manager/pkg/domain/user"
)

// AccountRepository defines data access for bank accounts.
//
// LockForUpdate acquires an exclusive per-row lock that stays held until the
// enclosing unit of work commits or rolls back. Every read with intent to
// mutate must go through it; Get is a plain read with no lock.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	Create(ctx context.Context, a *account.Account) error
	Update(ctx context.Context, a *account.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]*account.Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error)
}

// UserRepository defines data access for account owners.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	ListAll(ctx context.Context) ([]*user.User, error)
}
