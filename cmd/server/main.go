package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vdyakov/account-manager/infra"
	infrarepo "github.com/vdyakov/account-manager/infra/repository"
	"github.com/vdyakov/account-manager/infra/repository/memory"
	"github.com/vdyakov/account-manager/pkg/config"
	"github.com/vdyakov/account-manager/pkg/repository"
	"github.com/vdyakov/account-manager/pkg/service/ledger"
	"github.com/vdyakov/account-manager/webapi"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var uow repository.UnitOfWork
	switch cfg.DB.Storage {
	case "memory":
		uow = memory.NewUoW(memory.NewStore())
	default:
		db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		uow = infrarepo.NewUoW(db)
	}

	svc := ledger.New(uow, logger, cfg.Ledger.TransferTimeout)

	if cfg.Seed {
		if err := seed(uow, svc, logger); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	app := webapi.New(svc, uow, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		_ = app.Shutdown()
	}()

	if err := app.Listen(cfg.Listen); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
