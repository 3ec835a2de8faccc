package repository

import "context"

// UnitOfWork is the transaction boundary for ledger operations.
//
// Do runs fn inside one transaction: repositories obtained from the UnitOfWork
// passed to fn share that transaction's session, row locks taken through
// LockForUpdate are held until Do returns, and any error from fn rolls the
// whole transaction back so no partial effect is persisted. A nested Do joins
// the transaction already in progress.
//
// Repositories obtained outside Do operate on the base session with the
// store's standard read semantics.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() AccountRepository
	UserRepository() UserRepository
}
