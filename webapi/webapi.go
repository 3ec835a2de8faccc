// Package webapi assembles the fiber application from the ledger service
// and the repositories.
package webapi

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/vdyakov/account-manager/pkg/repository"
	"github.com/vdyakov/account-manager/pkg/service/ledger"
	"github.com/vdyakov/account-manager/webapi/account"
	"github.com/vdyakov/account-manager/webapi/user"
)

// New builds the fiber app with all routes registered.
func New(svc *ledger.Service, uow repository.UnitOfWork, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "account-manager",
	})
	app.Use(requestid.New())
	app.Use(recover.New())

	account.Routes(app, svc, uow, logger)
	user.Routes(app, uow, logger)

	return app
}
