package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"stockpile/docs" // swagger docs

	"stockpile/internal/auth"
	"stockpile/internal/cache"
	"stockpile/internal/config"
	"stockpile/internal/db"
	"stockpile/internal/handler"
	"stockpile/internal/logging"
	"stockpile/internal/metrics"
	"stockpile/internal/repository"
	"stockpile/internal/router"
	"stockpile/internal/service"
)

// @title Stockpile API
// @version 1.0
// @description Inventory API with password and Google sign-in, owner-scoped items and a public-API directory proxy.
// @host localhost:5001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.Env)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

// run owns every resource it opens and returns instead of exiting, so the
// deferred closes always run.
func run(cfg *config.Config, log *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Connect(ctx, db.Options{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DBDSN,
		Retries: cfg.DBConnectRetries,
		Backoff: cfg.DBConnectBackoff,
	}, log)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer db.Close(gormDB)

	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.WithError(err).Warn("redis unavailable, directory responses will not be cached")
	}

	m := metrics.New()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	itemRepo := repository.NewItemRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	guard := auth.NewGuard(jwtService, userRepo, m)

	var verifier auth.AssertionVerifier = auth.DisabledVerifier{}
	if cfg.GoogleClientID != "" {
		verifier, err = auth.NewGoogleVerifier(ctx, cfg.GoogleIssuer, cfg.GoogleJWKSURL, cfg.GoogleClientID)
		if err != nil {
			return fmt.Errorf("google verifier: %w", err)
		}
	} else {
		log.Warn("GOOGLE_CLIENT_ID not set, Google sign-in is disabled")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, m)
	federatedService := service.NewFederatedService(userRepo, verifier, jwtService, m, log)
	itemService := service.NewItemService(itemRepo)
	directoryService := service.NewDirectoryService(service.DirectoryOptions{
		URL:      cfg.ExternalAPIURL,
		Timeout:  cfg.ExternalAPITimeout,
		Strict:   cfg.ExternalAPIStrict,
		CacheTTL: cfg.ExternalAPICacheTTL,
	}, cacheClient, m, log)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, log, m, guard, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, federatedService),
		User:     handler.NewUserHandler(),
		Item:     handler.NewItemHandler(itemService),
		External: handler.NewExternalHandler(directoryService),
	})

	log.WithField("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html").Info("swagger documentation available")

	return serve(ctx, e, ":"+cfg.ServerPort, log.WithField("env", cfg.Env))
}

// serve runs e on addr until ctx is cancelled or the listener fails, then
// shuts it down gracefully.
func serve(ctx context.Context, e *echo.Echo, addr string, log logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
