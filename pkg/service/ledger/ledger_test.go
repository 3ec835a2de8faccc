package ledger_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdyakov/account-manager/infra/repository/memory"
	"github.com/vdyakov/account-manager/pkg/domain/account"
	"github.com/vdyakov/account-manager/pkg/domain/user"
	"github.com/vdyakov/account-manager/pkg/repository"
	"github.com/vdyakov/account-manager/pkg/service/ledger"
)

func newTestLedger(t *testing.T, transferTimeout time.Duration) (*ledger.Service, repository.UnitOfWork) {
	t.Helper()
	uow := memory.NewUoW(memory.NewStore())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ledger.New(uow, logger, transferTimeout), uow
}

func createOwner(t *testing.T, uow repository.UnitOfWork) *user.User {
	t.Helper()
	u := user.New("Vladimir", "Dyakov")
	require.NoError(t, uow.UserRepository().Create(context.Background(), u))
	return u
}

func createAccountWithBalance(t *testing.T, svc *ledger.Service, uow repository.UnitOfWork, balance string) *account.Account {
	t.Helper()
	owner := createOwner(t, uow)
	acct, err := svc.CreateAccount(context.Background(), owner.ID)
	require.NoError(t, err)
	if balance != "0" {
		acct, err = svc.Deposit(context.Background(), acct.ID, decimal.RequireFromString(balance))
		require.NoError(t, err)
	}
	return acct
}

func storedBalance(t *testing.T, uow repository.UnitOfWork, id uuid.UUID) string {
	t.Helper()
	acct, err := uow.AccountRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return acct.Balance.StringFixed(2)
}

func TestCreateAccount(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	owner := createOwner(t, uow)

	acct, err := svc.CreateAccount(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, acct.OwnerID)
	assert.Equal(t, account.StatusActive, acct.Status)
	assert.Equal(t, "0.00", acct.Balance.StringFixed(2))
}

func TestCreateAccount_OwnerNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newTestLedger(t, 0)
	missing := uuid.New()

	acct, err := svc.CreateAccount(context.Background(), missing)
	require.ErrorIs(t, err, user.ErrNotFound)
	assert.Contains(t, err.Error(), missing.String())
	assert.Nil(t, acct)
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "0")

	require.NoError(t, svc.DeleteAccount(context.Background(), acct.ID))

	_, err := uow.AccountRepository().Get(context.Background(), acct.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestDeleteAccount_NotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newTestLedger(t, 0)

	err := svc.DeleteAccount(context.Background(), uuid.New())
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestDeposit(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "0")

	updated, err := svc.Deposit(context.Background(), acct.ID, decimal.RequireFromString("20.20"))
	require.NoError(t, err)
	assert.Equal(t, "20.20", updated.Balance.StringFixed(2))
	assert.Equal(t, "20.20", storedBalance(t, uow, acct.ID))
}

func TestDeposit_NotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newTestLedger(t, 0)
	missing := uuid.New()

	_, err := svc.Deposit(context.Background(), missing, decimal.RequireFromString("10.50"))
	require.ErrorIs(t, err, account.ErrNotFound)
	assert.Contains(t, err.Error(), missing.String())
}

func TestDeposit_Blocked(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "20.20")
	_, err := svc.BlockAccount(context.Background(), acct.ID)
	require.NoError(t, err)

	_, err = svc.Deposit(context.Background(), acct.ID, decimal.RequireFromString("10.50"))
	require.ErrorIs(t, err, account.ErrBlocked)
	assert.Equal(t, "20.20", storedBalance(t, uow, acct.ID))
}

func TestWithdraw(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "20.20")

	updated, err := svc.Withdraw(context.Background(), acct.ID, decimal.RequireFromString("10.10"))
	require.NoError(t, err)
	assert.Equal(t, "10.10", updated.Balance.StringFixed(2))
	assert.Equal(t, "10.10", storedBalance(t, uow, acct.ID))
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "20.20")

	_, err := svc.Withdraw(context.Background(), acct.ID, decimal.RequireFromString("25.00"))
	require.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), acct.ID.String())
	assert.Equal(t, "20.20", storedBalance(t, uow, acct.ID))
}

func TestWithdraw_Blocked(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "20.20")
	_, err := svc.BlockAccount(context.Background(), acct.ID)
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), acct.ID, decimal.RequireFromString("10.10"))
	require.ErrorIs(t, err, account.ErrBlocked)
	assert.Equal(t, "20.20", storedBalance(t, uow, acct.ID))
}

func TestTransfer(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	from := createAccountWithBalance(t, svc, uow, "20.10")
	to := createAccountWithBalance(t, svc, uow, "0")

	err := svc.Transfer(context.Background(), from.ID, to.ID, decimal.RequireFromString("10.30"))
	require.NoError(t, err)
	assert.Equal(t, "9.80", storedBalance(t, uow, from.ID))
	assert.Equal(t, "10.30", storedBalance(t, uow, to.ID))
}

func TestTransfer_NamesMissingAccount(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	from := createAccountWithBalance(t, svc, uow, "20.10")
	missing := uuid.New()

	err := svc.Transfer(context.Background(), from.ID, missing, decimal.RequireFromString("5.00"))
	require.ErrorIs(t, err, account.ErrNotFound)
	assert.Contains(t, err.Error(), missing.String())
	assert.Equal(t, "20.10", storedBalance(t, uow, from.ID))
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	from := createAccountWithBalance(t, svc, uow, "5.00")
	to := createAccountWithBalance(t, svc, uow, "1.00")

	err := svc.Transfer(context.Background(), from.ID, to.ID, decimal.RequireFromString("5.01"))
	require.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), from.ID.String())
	assert.Equal(t, "5.00", storedBalance(t, uow, from.ID))
	assert.Equal(t, "1.00", storedBalance(t, uow, to.ID))
}

func TestTransfer_BlockedAccounts(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)

	t.Run("blocked source is rejected", func(t *testing.T) {
		from := createAccountWithBalance(t, svc, uow, "10.00")
		to := createAccountWithBalance(t, svc, uow, "0")
		_, err := svc.BlockAccount(context.Background(), from.ID)
		require.NoError(t, err)

		err = svc.Transfer(context.Background(), from.ID, to.ID, decimal.RequireFromString("1.00"))
		require.ErrorIs(t, err, account.ErrBlocked)
		assert.Contains(t, err.Error(), from.ID.String())
		assert.Equal(t, "10.00", storedBalance(t, uow, from.ID))
		assert.Equal(t, "0.00", storedBalance(t, uow, to.ID))
	})

	t.Run("blocked target is rejected", func(t *testing.T) {
		from := createAccountWithBalance(t, svc, uow, "10.00")
		to := createAccountWithBalance(t, svc, uow, "0")
		_, err := svc.BlockAccount(context.Background(), to.ID)
		require.NoError(t, err)

		err = svc.Transfer(context.Background(), from.ID, to.ID, decimal.RequireFromString("1.00"))
		require.ErrorIs(t, err, account.ErrBlocked)
		assert.Contains(t, err.Error(), to.ID.String())
		assert.Equal(t, "10.00", storedBalance(t, uow, from.ID))
	})

	t.Run("source is named when both are blocked", func(t *testing.T) {
		from := createAccountWithBalance(t, svc, uow, "10.00")
		to := createAccountWithBalance(t, svc, uow, "0")
		_, err := svc.BlockAccount(context.Background(), from.ID)
		require.NoError(t, err)
		_, err = svc.BlockAccount(context.Background(), to.ID)
		require.NoError(t, err)

		err = svc.Transfer(context.Background(), from.ID, to.ID, decimal.RequireFromString("1.00"))
		require.ErrorIs(t, err, account.ErrBlocked)
		assert.Contains(t, err.Error(), from.ID.String())
	})
}

func TestTransfer_ToSelf(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "20.20")

	err := svc.Transfer(context.Background(), acct.ID, acct.ID, decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	assert.Equal(t, "20.20", storedBalance(t, uow, acct.ID))
}

func TestTransfer_ToSelfInsufficientFunds(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "20.20")

	err := svc.Transfer(context.Background(), acct.ID, acct.ID, decimal.RequireFromString("20.21"))
	require.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Equal(t, "20.20", storedBalance(t, uow, acct.ID))
}

func TestTransfer_Timeout(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 100*time.Millisecond)
	from := createAccountWithBalance(t, svc, uow, "20.00")
	to := createAccountWithBalance(t, svc, uow, "0")

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
			if _, err := txUow.AccountRepository().LockForUpdate(context.Background(), from.ID); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := svc.Transfer(context.Background(), from.ID, to.ID, decimal.RequireFromString("1.00"))
	require.ErrorIs(t, err, account.ErrTransferTimeout)
	assert.Contains(t, err.Error(), from.ID.String())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "20.00", storedBalance(t, uow, from.ID))
	assert.Equal(t, "0.00", storedBalance(t, uow, to.ID))
}

func TestBlockAndActivate(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "0")

	blocked, err := svc.BlockAccount(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusBlocked, blocked.Status)

	activated, err := svc.ActivateAccount(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusActive, activated.Status)

	// Transitions are unconditional at the ledger layer.
	again, err := svc.ActivateAccount(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusActive, again.Status)
}

func TestTransfer_ConcurrentOppositeDirections(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	a := createAccountWithBalance(t, svc, uow, "1000.00")
	b := createAccountWithBalance(t, svc, uow, "1000.00")

	const rounds = 200
	one := decimal.RequireFromString("1.00")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			assert.NoError(t, svc.Transfer(context.Background(), a.ID, b.ID, one))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			assert.NoError(t, svc.Transfer(context.Background(), b.ID, a.ID, one))
		}
	}()
	wg.Wait()

	// Equal traffic in both directions nets out to the starting balances.
	assert.Equal(t, "1000.00", storedBalance(t, uow, a.ID))
	assert.Equal(t, "1000.00", storedBalance(t, uow, b.ID))
}

func TestWithdraw_ConcurrentNeverNegative(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "100.00")

	amount := decimal.RequireFromString("3.00")
	var succeeded atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(context.Background(), acct.ID, amount)
			if err == nil {
				succeeded.Add(1)
				return
			}
			assert.ErrorIs(t, err, account.ErrInsufficientFunds)
		}()
	}
	wg.Wait()

	// 33 withdrawals of 3.00 fit into 100.00; the rest must be rejected.
	require.EqualValues(t, 33, succeeded.Load())
	assert.Equal(t, "1.00", storedBalance(t, uow, acct.ID))
}

func TestTransfer_ReadersNeverSeeHalfApplied(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	a := createAccountWithBalance(t, svc, uow, "1000.00")
	b := createAccountWithBalance(t, svc, uow, "1000.00")

	one := decimal.RequireFromString("1.00")
	writersDone := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(backwards bool) {
			defer wg.Done()
			from, to := a.ID, b.ID
			if backwards {
				from, to = to, from
			}
			for j := 0; j < 100; j++ {
				assert.NoError(t, svc.Transfer(context.Background(), from, to, one))
			}
		}(i%2 == 0)
	}
	go func() {
		wg.Wait()
		close(writersDone)
	}()

	// An unlocked reader must only ever observe fully committed transfers:
	// the sum across both accounts stays constant.
	for done := false; !done; {
		select {
		case <-writersDone:
			done = true
		default:
		}
		accounts, err := uow.AccountRepository().ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		total := accounts[0].Balance.Add(accounts[1].Balance)
		require.Equal(t, "2000.00", total.StringFixed(2))
	}
}

func TestDeposit_AdvancesUpdatedAt(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)
	acct := createAccountWithBalance(t, svc, uow, "0")
	created := acct.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	updated, err := svc.Deposit(context.Background(), acct.ID, decimal.RequireFromString("1.00"))
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(created),
		"UpdatedAt %s not after creation time %s", updated.UpdatedAt, created)

	stored, err := uow.AccountRepository().Get(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(updated.UpdatedAt))
	assert.True(t, stored.CreatedAt.Equal(acct.CreatedAt))
}

func TestTransfer_ConcurrentConservation(t *testing.T) {
	t.Parallel()
	svc, uow := newTestLedger(t, 0)

	accounts := make([]*account.Account, 4)
	for i := range accounts {
		accounts[i] = createAccountWithBalance(t, svc, uow, "250.00")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			amount := decimal.New(int64(seed%5+1), 0)
			for j := 0; j < 100; j++ {
				from := accounts[(seed+j)%len(accounts)]
				to := accounts[(seed+j+1+j%3)%len(accounts)]
				err := svc.Transfer(context.Background(), from.ID, to.ID, amount)
				if err != nil {
					assert.ErrorIs(t, err, account.ErrInsufficientFunds)
				}
			}
		}(i)
	}
	wg.Wait()

	total := decimal.Zero
	for _, acct := range accounts {
		got, err := uow.AccountRepository().Get(context.Background(), acct.ID)
		require.NoError(t, err)
		assert.False(t, got.Balance.IsNegative(), "balance of %s went negative: %s", acct.ID, got.Balance)
		total = total.Add(got.Balance)
	}
	assert.Equal(t, "1000.00", total.StringFixed(2))
}
