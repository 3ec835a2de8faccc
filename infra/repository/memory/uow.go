package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/vdyakov/account-manager/pkg/domain/account"
	"github.com/vdyakov/account-manager/pkg/repository"
)

// UoW implements repository.UnitOfWork over the in-memory store. Row locks
// acquired through LockForUpdate are held until Do returns. Account writes
// inside the unit of work are staged, not written through: readers outside
// the unit of work keep seeing the last committed state until every staged
// write is published in a single critical section on commit. A failed or
// panicking callback publishes nothing.
type UoW struct {
	store *Store
	tx    *txState
}

type txState struct {
	held    []heldRow
	heldIDs map[uuid.UUID]struct{}
	pending map[uuid.UUID]*account.Account // nil entry: row deleted in tx
}

type heldRow struct {
	id   uuid.UUID
	lock rowLock
}

// NewUoW creates a unit of work for the given store.
func NewUoW(store *Store) *UoW {
	return &UoW{store: store}
}

// Do implements repository.UnitOfWork. A nested Do joins the unit of work
// already in progress.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	tx := &txState{
		heldIDs: make(map[uuid.UUID]struct{}),
		pending: make(map[uuid.UUID]*account.Account),
	}
	// Released in a defer so a panic inside fn cannot leak row locks; the
	// staged writes are simply never published in that case.
	defer func() {
		for i := len(tx.held) - 1; i >= 0; i-- {
			tx.held[i].lock.release()
		}
	}()
	if err := fn(&UoW{store: u.store, tx: tx}); err != nil {
		return err
	}
	tx.commit(u.store)
	return nil
}

// AccountRepository implements repository.UnitOfWork.
func (u *UoW) AccountRepository() repository.AccountRepository {
	return &accountRepository{store: u.store, tx: u.tx}
}

// UserRepository implements repository.UnitOfWork.
func (u *UoW) UserRepository() repository.UserRepository {
	return &userRepository{store: u.store}
}

func (tx *txState) holds(id uuid.UUID) bool {
	_, ok := tx.heldIDs[id]
	return ok
}

// stage records a pending write. row == nil marks the row as deleted.
func (tx *txState) stage(id uuid.UUID, row *account.Account) {
	tx.pending[id] = row
}

// staged returns the pending state of a row, if the unit of work wrote it.
func (tx *txState) staged(id uuid.UUID) (*account.Account, bool) {
	row, ok := tx.pending[id]
	return row, ok
}

// commit publishes every staged write atomically with respect to readers,
// which all go through store.mu.
func (tx *txState) commit(store *Store) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for id, row := range tx.pending {
		if row == nil {
			delete(store.accounts, id)
			continue
		}
		store.accounts[id] = *row
	}
}
