package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/vdyakov/account-manager/pkg/domain/account"
)

// ErrNoUnitOfWork is returned when LockForUpdate is called outside Do; a row
// lock with nothing to scope its release to would never be freed.
var ErrNoUnitOfWork = errors.New("LockForUpdate requires an enclosing unit of work")

type accountRepository struct {
	store *Store
	tx    *txState
}

// Get implements repository.AccountRepository. Inside a unit of work it
// reads the staged state; everywhere else it reads the committed state.
func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if r.tx != nil {
		if row, ok := r.tx.staged(id); ok {
			if row == nil {
				return nil, account.ErrNotFound
			}
			a := *row
			return &a, nil
		}
	}
	a, ok := r.store.getAccount(id)
	if !ok {
		return nil, account.ErrNotFound
	}
	return &a, nil
}

// LockForUpdate implements repository.AccountRepository. It blocks until the
// row lock is free or ctx ends; the lock is released when the enclosing unit
// of work finishes.
func (r *accountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if r.tx == nil {
		return nil, ErrNoUnitOfWork
	}
	if !r.tx.holds(id) {
		l := r.store.lockFor(id)
		if err := l.acquire(ctx); err != nil {
			return nil, err
		}
		r.tx.held = append(r.tx.held, heldRow{id: id, lock: l})
		r.tx.heldIDs[id] = struct{}{}
	}
	return r.Get(ctx, id)
}

// Create implements repository.AccountRepository. Inside a unit of work the
// new row becomes visible to others only on commit.
func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	row := *a
	if r.tx != nil {
		r.tx.stage(row.ID, &row)
		return nil
	}
	r.store.putAccount(row)
	return nil
}

// Update implements repository.AccountRepository.
func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	row := *a
	if r.tx != nil {
		r.tx.stage(row.ID, &row)
		return nil
	}
	r.store.putAccount(row)
	return nil
}

// Delete implements repository.AccountRepository.
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.tx != nil {
		r.tx.stage(id, nil)
		return nil
	}
	r.store.deleteAccount(id)
	return nil
}

// ListAll implements repository.AccountRepository.
func (r *accountRepository) ListAll(ctx context.Context) ([]*account.Account, error) {
	r.store.mu.Lock()
	rows := make(map[uuid.UUID]account.Account, len(r.store.accounts))
	for id, a := range r.store.accounts {
		rows[id] = a
	}
	r.store.mu.Unlock()

	if r.tx != nil {
		for id, row := range r.tx.pending {
			if row == nil {
				delete(rows, id)
				continue
			}
			rows[id] = *row
		}
	}

	result := make([]*account.Account, 0, len(rows))
	for id := range rows {
		a := rows[id]
		result = append(result, &a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ListByOwner implements repository.AccountRepository.
func (r *accountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*account.Account, 0, len(all))
	for _, a := range all {
		if a.OwnerID == ownerID {
			result = append(result, a)
		}
	}
	return result, nil
}
