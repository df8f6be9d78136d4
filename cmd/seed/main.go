package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"stockpile/internal/auth"
	"stockpile/internal/config"
	"stockpile/internal/db"
	apperrors "stockpile/internal/errors"
	"stockpile/internal/logging"
	"stockpile/internal/repository"
	"stockpile/internal/service"
)

// sampleItem is one entry of the demo inventory.
type sampleItem struct {
	Name        string
	Description string
}

var sampleItems = []sampleItem{
	{"Cordless drill", "18V, two batteries, shelf B2"},
	{"Extension cord", "25 m, orange"},
	{"Socket set", "Metric, 1/4\" and 3/8\" drive"},
	{"Safety glasses", ""},
}

func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.Env)
	log.Info("starting seed script")

	if err := run(context.Background(), cfg, log); err != nil {
		log.WithError(err).Fatal("seed failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	username := getEnv("SEED_USERNAME", "demo")
	password := getEnv("SEED_PASSWORD", "demo-password")

	gormDB, err := db.Connect(ctx, db.Options{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DBDSN,
		Retries: cfg.DBConnectRetries,
		Backoff: cfg.DBConnectBackoff,
	}, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close(gormDB)

	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := service.NewAuthService(repository.NewUserRepository(gormDB), jwtService, nil)
	itemService := service.NewItemService(repository.NewItemRepository(gormDB))

	created, err := seed(ctx, authService, itemService, username, password)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"username":      username,
		"items_created": created,
	}).Info("seed completed")
	return nil
}

// seed makes sure the demo account exists and owns the sample items. It is
// idempotent: an account that already has items is left alone.
func seed(ctx context.Context, authService service.AuthService, itemService service.ItemService, username, password string) (int, error) {
	user, _, err := authService.Register(ctx, username, password)
	if errors.Is(err, apperrors.ErrDuplicateUser) {
		user, _, err = authService.Login(ctx, username, password)
	}
	if err != nil {
		return 0, fmt.Errorf("demo account: %w", err)
	}

	existing, err := itemService.List(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, s := range sampleItems {
		if _, err := itemService.Create(ctx, user.ID, s.Name, s.Description); err != nil {
			return i, fmt.Errorf("create item %q: %w", s.Name, err)
		}
	}
	return len(sampleItems), nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
