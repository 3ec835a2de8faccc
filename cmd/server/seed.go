package main

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/vdyakov/account-manager/pkg/domain/user"
	"github.com/vdyakov/account-manager/pkg/repository"
	"github.com/vdyakov/account-manager/pkg/service/ledger"
)

// seed preloads two users with one account each: 20.20 on an active account
// and 10.10 on a blocked one. Handy for poking at the API locally.
func seed(uow repository.UnitOfWork, svc *ledger.Service, logger *slog.Logger) error {
	ctx := context.Background()
	users := uow.UserRepository()

	user1 := user.New("Vladimir", "Dyakov")
	user2 := user.New("Daria", "Vasilueva")
	for _, u := range []*user.User{user1, user2} {
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		logger.Info("preloaded user", "userId", u.ID, "name", u.Name, "surname", u.Surname)
	}

	account1, err := svc.CreateAccount(ctx, user1.ID)
	if err != nil {
		return err
	}
	if _, err := svc.Deposit(ctx, account1.ID, decimal.RequireFromString("20.20")); err != nil {
		return err
	}

	account2, err := svc.CreateAccount(ctx, user2.ID)
	if err != nil {
		return err
	}
	if _, err := svc.Deposit(ctx, account2.ID, decimal.RequireFromString("10.10")); err != nil {
		return err
	}
	if _, err := svc.BlockAccount(ctx, account2.ID); err != nil {
		return err
	}

	return nil
}
