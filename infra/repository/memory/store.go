// Package memory implements the data access contracts of pkg/repository in
// process memory. Each account row carries its own exclusive lock, keyed by
// account id, giving the same observable locking behavior as the database
// store: LockForUpdate blocks until the row is free, the lock stays held
// until the unit of work ends, and a failed unit of work leaves no trace.
// It backs local runs and the concurrency test suite.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vdyakov/account-manager/pkg/domain/account"
	"github.com/vdyakov/account-manager/pkg/domain/user"
)

// rowLock is a mutex that can give up waiting when the context ends.
type rowLock chan struct{}

func newRowLock() rowLock { return make(rowLock, 1) }

func (l rowLock) acquire(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l rowLock) release() { <-l }

// Store holds accounts and users in memory.
type Store struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]account.Account
	users    map[uuid.UUID]user.User
	locks    map[uuid.UUID]rowLock
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]account.Account),
		users:    make(map[uuid.UUID]user.User),
		locks:    make(map[uuid.UUID]rowLock),
	}
}

// lockFor returns the lock guarding the given account row, creating it on
// first use. Locks are kept after account deletion so a concurrent waiter
// wakes up and observes the row as gone.
func (s *Store) lockFor(id uuid.UUID) rowLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = newRowLock()
		s.locks[id] = l
	}
	return l
}

func (s *Store) getAccount(id uuid.UUID) (account.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	return a, ok
}

func (s *Store) putAccount(a account.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}

func (s *Store) deleteAccount(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
}
