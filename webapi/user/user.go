// Package user exposes the account owner routes. User creation is
// bookkeeping outside the ledger core, so the handlers write through the
// user repository directly.
package user

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	domain "github.com/vdyakov/account-manager/pkg/domain/user"
	"github.com/vdyakov/account-manager/pkg/repository"
	"github.com/vdyakov/account-manager/webapi/common"
)

// CreateUserRequest registers a new account owner.
type CreateUserRequest struct {
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname" validate:"required"`
}

// Routes registers the user route family.
func Routes(app *fiber.App, uow repository.UnitOfWork, logger *slog.Logger) {
	app.Get("/users", ListUsers(uow))
	app.Post("/users", CreateUser(uow, logger))
}

// ListUsers returns every registered owner.
func ListUsers(uow repository.UnitOfWork) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := uow.UserRepository().ListAll(c.Context())
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to list users", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Users fetched", users)
	}
}

// CreateUser registers a new owner.
func CreateUser(uow repository.UnitOfWork, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateUserRequest](c)
		if input == nil {
			return err
		}
		u := domain.New(input.Name, input.Surname)
		if err := uow.UserRepository().Create(c.Context(), u); err != nil {
			logger.Error("create user failed", "error", err)
			return common.DomainErrorJSON(c, "Failed to create user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User created", u)
	}
}
