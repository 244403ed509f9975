// createadmin создает администратора Flixxit или повышает существующего пользователя.
//
//	createadmin -email admin@flixxit.io -password secret -username admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"flixxit-service/internal/account"
	"flixxit-service/internal/config"
	"flixxit-service/internal/domain"
	"flixxit-service/internal/store"
	"flixxit-service/pkg/auth"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	username := flag.String("username", "admin", "admin username (used when the account is created)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(logger, domain.RegisterRequest{Username: *username, Email: *email, Password: *password}); err != nil {
		logger.Error("Failed to ensure admin user", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, req domain.RegisterRequest) error {
	if req.Email == "" || req.Password == "" {
		return errors.New("-email and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.Storage != config.StoragePostgres {
		return fmt.Errorf("createadmin needs postgres storage, got %q", cfg.Database.Storage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Connect(cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.Database.RunMigrations {
		if err := store.RunMigrations(ctx, db, logger); err != nil {
			return err
		}
	}

	users, err := store.NewPostgresUserStore(db, logger)
	if err != nil {
		return err
	}
	tokenManager, err := auth.NewTokenManager(cfg.Security.SecretKey)
	if err != nil {
		return err
	}
	accounts := account.NewService(users, tokenManager, domain.NewValidator(), logger)

	user, created, err := accounts.EnsureAdmin(ctx, req)
	if err != nil {
		if msg, ok := domain.Message(err); ok {
			return errors.New(msg)
		}
		return err
	}
	if created {
		logger.Info("Admin user created", slog.String("userID", user.ID), slog.String("email", user.Email))
	} else {
		logger.Info("Existing user promoted to admin", slog.String("userID", user.ID), slog.String("email", user.Email))
	}
	return nil
}
