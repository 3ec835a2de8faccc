// Package account exposes the bank account routes. The handlers translate
// ledger results into transport responses; the block/activate preconditions
// on the current status live here, on the caller side, while the ledger
// applies those transitions unconditionally.
package account

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	domain "github.com/vdyakov/account-manager/pkg/domain/account"
	"github.com/vdyakov/account-manager/pkg/repository"
	"github.com/vdyakov/account-manager/pkg/service/ledger"
	"github.com/vdyakov/account-manager/webapi/common"
)

// Routes registers the bank account route family:
//
//   - GET    /bank/accounts                      : list all accounts
//   - POST   /bank/accounts                      : create an account for an owner
//   - PUT    /bank/accounts                      : transfer between two accounts
//   - GET    /bank/accounts/:id                  : fetch one account
//   - PUT    /bank/accounts/:id/deposit/money    : deposit
//   - PUT    /bank/accounts/:id/withdraw/money   : withdraw
//   - DELETE /bank/accounts/:id/block            : block (only from ACTIVE)
//   - PUT    /bank/accounts/:id/activate         : activate (only from BLOCKED)
//   - DELETE /bank/accounts/:id/delete           : delete
func Routes(app *fiber.App, svc *ledger.Service, uow repository.UnitOfWork, logger *slog.Logger) {
	app.Get("/bank/accounts", ListAccounts(uow))
	app.Post("/bank/accounts", CreateAccount(svc, logger))
	app.Put("/bank/accounts", Transfer(svc, logger))
	app.Get("/bank/accounts/:id", GetAccount(uow))
	app.Put("/bank/accounts/:id/deposit/money", Deposit(svc, logger))
	app.Put("/bank/accounts/:id/withdraw/money", Withdraw(svc, logger))
	app.Delete("/bank/accounts/:id/block", Block(svc, uow, logger))
	app.Put("/bank/accounts/:id/activate", Activate(svc, uow, logger))
	app.Delete("/bank/accounts/:id/delete", DeleteAccount(svc, logger))
}

// ListAccounts returns every account. Reads go straight through the store,
// outside the ledger core.
func ListAccounts(uow repository.UnitOfWork) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accounts, err := uow.AccountRepository().ListAll(c.Context())
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", accounts)
	}
}

// GetAccount returns one account by id.
func GetAccount(uow repository.UnitOfWork) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		acct, err := uow.AccountRepository().Get(c.Context(), id)
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to fetch account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", acct)
	}
}

// CreateAccount opens a new account for the owner named in the request body.
func CreateAccount(svc *ledger.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err
		}
		ownerID, err := uuid.Parse(input.OwnerID)
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid owner ID", err.Error())
		}
		acct, err := svc.CreateAccount(c.Context(), ownerID)
		if err != nil {
			logger.Error("create account failed", "ownerId", ownerID, "error", err)
			return common.DomainErrorJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", acct)
	}
}

// Deposit adds money to an account.
func Deposit(svc *ledger.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		input, err := common.BindAndValidate[DepositRequest](c)
		if input == nil {
			return err
		}
		amount, err := parseAmount(input.Amount)
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		acct, err := svc.Deposit(c.Context(), id, amount)
		if err != nil {
			logger.Error("deposit failed", "accountId", id, "error", err)
			return common.DomainErrorJSON(c, "Failed to deposit", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Deposit successful", acct)
	}
}

// Withdraw removes money from an account.
func Withdraw(svc *ledger.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		input, err := common.BindAndValidate[WithdrawRequest](c)
		if input == nil {
			return err
		}
		amount, err := parseAmount(input.Amount)
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		acct, err := svc.Withdraw(c.Context(), id, amount)
		if err != nil {
			logger.Error("withdraw failed", "accountId", id, "error", err)
			return common.DomainErrorJSON(c, "Failed to withdraw", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdraw successful", acct)
	}
}

// Transfer moves money between the two accounts named in the request body.
func Transfer(svc *ledger.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		fromID, err := uuid.Parse(input.FromID)
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid source account ID", err.Error())
		}
		toID, err := uuid.Parse(input.ToID)
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid target account ID", err.Error())
		}
		amount, err := parseAmount(input.Amount)
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		if err := svc.Transfer(c.Context(), fromID, toID, amount); err != nil {
			logger.Error("transfer failed",
				"fromId", fromID, "toId", toID, "error", err)
			return common.DomainErrorJSON(c, "Failed to transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer successful", nil)
	}
}

// Block blocks an account. Only an ACTIVE account may be blocked; the check
// belongs to this caller, not to the ledger.
func Block(svc *ledger.Service, uow repository.UnitOfWork, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		current, err := uow.AccountRepository().Get(c.Context(), id)
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to block account", err)
		}
		if current.Status != domain.StatusActive {
			return common.ProblemJSON(c, fiber.StatusMethodNotAllowed, "Method not allowed",
				"you can't block a bank account that is in the "+string(current.Status)+" status")
		}
		acct, err := svc.BlockAccount(c.Context(), id)
		if err != nil {
			logger.Error("block account failed", "accountId", id, "error", err)
			return common.DomainErrorJSON(c, "Failed to block account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account blocked", acct)
	}
}

// Activate activates an account. Only a BLOCKED account may be activated.
func Activate(svc *ledger.Service, uow repository.UnitOfWork, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		current, err := uow.AccountRepository().Get(c.Context(), id)
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to activate account", err)
		}
		if current.Status != domain.StatusBlocked {
			return common.ProblemJSON(c, fiber.StatusMethodNotAllowed, "Method not allowed",
				"you can't activate a bank account that is in the "+string(current.Status)+" status")
		}
		acct, err := svc.ActivateAccount(c.Context(), id)
		if err != nil {
			logger.Error("activate account failed", "accountId", id, "error", err)
			return common.DomainErrorJSON(c, "Failed to activate account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account activated", acct)
	}
}

// DeleteAccount removes an account.
func DeleteAccount(svc *ledger.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		if err := svc.DeleteAccount(c.Context(), id); err != nil {
			logger.Error("delete account failed", "accountId", id, "error", err)
			return common.DomainErrorJSON(c, "Failed to delete account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account deleted", nil)
	}
}
