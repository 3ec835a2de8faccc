// Package ledger owns every balance-affecting operation on bank accounts:
// create, delete, deposit, withdraw, transfer, block and activate. Each
// operation runs inside a unit of work; accounts read with intent to mutate
// are fetched through LockForUpdate so their rows stay exclusively locked
// until the unit of work ends. Two invariants hold at every committed state:
// a balance is never negative, and no operation other than Activate touches
// a blocked account.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vdyakov/account-manager/pkg/domain/account"
	"github.com/vdyakov/account-manager/pkg/domain/user"
	"github.com/vdyakov/account-manager/pkg/repository"
)

// DefaultTransferTimeout bounds how long a transfer may hold account locks
// before it fails with account.ErrTransferTimeout.
const DefaultTransferTimeout = 10 * time.Second

// Service implements the account ledger. It performs no internal threading;
// the store's per-row exclusive lock is the sole synchronization primitive.
type Service struct {
	uow             repository.UnitOfWork
	logger          *slog.Logger
	transferTimeout time.Duration
}

// New creates a ledger service on top of the given unit of work.
// A transferTimeout of zero selects DefaultTransferTimeout.
func New(uow repository.UnitOfWork, logger *slog.Logger, transferTimeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if transferTimeout <= 0 {
		transferTimeout = DefaultTransferTimeout
	}
	return &Service{
		uow:             uow,
		logger:          logger,
		transferTimeout: transferTimeout,
	}
}

// CreateAccount opens an Active account with a zero balance for the given
// owner. Fails with user.ErrNotFound when the owner does not exist. The new
// row is not yet visible to concurrent operations, so no lock is taken.
func (s *Service) CreateAccount(ctx context.Context, ownerID uuid.UUID) (*account.Account, error) {
	var created *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.UserRepository().Get(ctx, ownerID); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return fmt.Errorf("%w with id:%s", user.ErrNotFound, ownerID)
			}
			return err
		}
		created = account.New(ownerID)
		return uow.AccountRepository().Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account created",
		"accountId", created.ID, "ownerId", ownerID)
	return created, nil
}

// DeleteAccount removes the account unconditionally once it exists.
func (s *Service) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts := uow.AccountRepository()
		if _, err := s.lockAccount(ctx, accounts, accountID); err != nil {
			return err
		}
		return accounts.Delete(ctx, accountID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("bank account deleted", "accountId", accountID)
	return nil
}

// Deposit adds amount to the account balance. Fails with account.ErrNotFound
// or account.ErrBlocked. The amount is caller-validated as non-negative.
func (s *Service) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*account.Account, error) {
	var updated *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts := uow.AccountRepository()
		acct, err := s.lockAccount(ctx, accounts, accountID)
		if err != nil {
			return err
		}
		if acct.Blocked() {
			return fmt.Errorf("%w, id:%s", account.ErrBlocked, accountID)
		}
		acct.Balance = acct.Balance.Add(amount)
		acct.UpdatedAt = time.Now().UTC()
		if err := accounts.Update(ctx, acct); err != nil {
			return err
		}
		updated = acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit money to bank account",
		"accountId", accountID, "amount", amount)
	return updated, nil
}

// Withdraw subtracts amount from the account balance. In addition to the
// deposit failure modes it fails with account.ErrInsufficientFunds when the
// balance is smaller than amount, keeping the balance non-negative.
func (s *Service) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*account.Account, error) {
	var updated *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts := uow.AccountRepository()
		acct, err := s.lockAccount(ctx, accounts, accountID)
		if err != nil {
			return err
		}
		if acct.Blocked() {
			return fmt.Errorf("%w, id:%s", account.ErrBlocked, accountID)
		}
		if acct.Balance.LessThan(amount) {
			return fmt.Errorf("%w on account id:%s, amount:%s",
				account.ErrInsufficientFunds, accountID, amount)
		}
		acct.Balance = acct.Balance.Sub(amount)
		acct.UpdatedAt = time.Now().UTC()
		if err := accounts.Update(ctx, acct); err != nil {
			return err
		}
		updated = acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("withdraw money from bank account",
		"accountId", accountID, "amount", amount)
	return updated, nil
}

// Transfer atomically moves amount between two accounts inside one bounded
// transaction. Both accounts must exist and be Active, and the debited
// account must hold at least amount. On success the debit and the credit
// become visible together; on any failure, including the transaction timeout,
// no balance change is visible.
//
// Locks over the pair are always acquired in identifier order, independent of
// transfer direction, so two opposing transfers over the same accounts can
// never hold locks in a cycle.
func (s *Service) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, s.transferTimeout)
	defer cancel()

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts := uow.AccountRepository()

		if fromID == toID {
			// A single lock suffices; the net balance change is zero.
			acct, err := s.lockAccount(ctx, accounts, fromID)
			if err != nil {
				return err
			}
			if acct.Blocked() {
				return fmt.Errorf("%w, id:%s", account.ErrBlocked, fromID)
			}
			if acct.Balance.LessThan(amount) {
				return fmt.Errorf("%w on account id:%s, amount:%s",
					account.ErrInsufficientFunds, fromID, amount)
			}
			return nil
		}

		first, second := fromID, toID
		if bytes.Compare(second[:], first[:]) < 0 {
			first, second = second, first
		}
		locked := make(map[uuid.UUID]*account.Account, 2)
		for _, id := range [...]uuid.UUID{first, second} {
			acct, err := s.lockAccount(ctx, accounts, id)
			if err != nil {
				return err
			}
			locked[id] = acct
		}
		from, to := locked[fromID], locked[toID]

		if from.Blocked() {
			return fmt.Errorf("%w, id:%s", account.ErrBlocked, fromID)
		}
		if to.Blocked() {
			return fmt.Errorf("%w, id:%s", account.ErrBlocked, toID)
		}
		if from.Balance.LessThan(amount) {
			return fmt.Errorf("%w on account id:%s, amount:%s",
				account.ErrInsufficientFunds, fromID, amount)
		}

		now := time.Now().UTC()
		from.Balance = from.Balance.Sub(amount)
		from.UpdatedAt = now
		to.Balance = to.Balance.Add(amount)
		to.UpdatedAt = now
		if err := accounts.Update(ctx, from); err != nil {
			return err
		}
		return accounts.Update(ctx, to)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: from id:%s to id:%s", account.ErrTransferTimeout, fromID, toID)
		}
		return err
	}
	s.logger.Info("money transferred between bank accounts",
		"fromId", fromID, "toId", toID, "amount", amount)
	return nil
}

// BlockAccount sets the account status to Blocked unconditionally. Whether
// the transition is allowed from the caller's point of view is decided by the
// caller, not here.
func (s *Service) BlockAccount(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	acct, err := s.setStatus(ctx, accountID, account.StatusBlocked)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account blocked", "accountId", accountID)
	return acct, nil
}

// ActivateAccount sets the account status to Active unconditionally.
func (s *Service) ActivateAccount(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	acct, err := s.setStatus(ctx, accountID, account.StatusActive)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account activated", "accountId", accountID)
	return acct, nil
}

func (s *Service) setStatus(ctx context.Context, accountID uuid.UUID, status account.Status) (*account.Account, error) {
	var updated *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts := uow.AccountRepository()
		acct, err := s.lockAccount(ctx, accounts, accountID)
		if err != nil {
			return err
		}
		acct.Status = status
		acct.UpdatedAt = time.Now().UTC()
		if err := accounts.Update(ctx, acct); err != nil {
			return err
		}
		updated = acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) lockAccount(ctx context.Context, accounts repository.AccountRepository, id uuid.UUID) (*account.Account, error) {
	acct, err := accounts.LockForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, fmt.Errorf("%w with id:%s", account.ErrNotFound, id)
		}
		return nil, err
	}
	return acct, nil
}
