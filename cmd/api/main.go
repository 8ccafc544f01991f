package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/dto"
	"pix-storefront/internal/logger"
	"pix-storefront/internal/repository"
	"pix-storefront/internal/server"
	"pix-storefront/internal/service"
	"pix-storefront/internal/session"
	"pix-storefront/internal/view"
	"pix-storefront/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionRepo, closeRepo, err := openSessionRepository(ctx, &cfg.Session)
	if err != nil {
		return err
	}
	defer closeRepo()

	clk := clock.New()
	store := session.NewStore(sessionRepo, &cfg.Session, clk, log)
	go store.Sweep(ctx, 10*time.Minute)

	storefrontClient, err := client.NewStorefrontClient(&cfg.Storefront)
	if err != nil {
		return err
	}
	authClient, err := client.NewAuthClient(&cfg.Storefront)
	if err != nil {
		return err
	}
	enterpriseClient, err := client.NewEnterpriseClient(&cfg.Enterprise)
	if err != nil {
		return err
	}

	validator := dto.NewValidator()
	checkoutService := service.NewCheckoutService(storefrontClient, validator, clk, &cfg.Payment, log)
	defer checkoutService.Shutdown()

	services := server.Services{
		Catalog:   service.NewCatalogService(storefrontClient, validator),
		Checkout:  checkoutService,
		Account:   service.NewAccountService(authClient, store, clk, log),
		Merchant:  service.NewMerchantService(enterpriseClient, store, log),
		Dashboard: service.NewDashboardService(enterpriseClient, log),
		Admin:     service.NewAdminService(enterpriseClient, clk, &cfg.Admin),
	}

	renderer, err := view.NewRenderer(web.Templates())
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	// Init HTTP server
	srv := server.NewServer(cfg, renderer, web.Static(), store, services, clk, log)

	serverAddr := cfg.Address()
	log.Info("starting HTTP server",
		zap.String("address", serverAddr),
		zap.String("environment", cfg.Environment.Name),
		zap.String("session_driver", cfg.Session.Driver))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigChan:
		log.Info("signal received, starting graceful shutdown", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Info("server stopped", zap.Int("abandoned_watchers", checkoutService.Active()))
	return nil
}

// openSessionRepository picks the session backend from SESSION_DRIVER.
func openSessionRepository(ctx context.Context, cfg *config.Session) (repository.SessionRepository, func(), error) {
	if cfg.Driver == "redis" {
		rdb, err := client.InitRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisSessionRepository(rdb, cfg.TTL), func() { _ = rdb.Close() }, nil
	}

	db, err := client.InitSessionDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repository.NewSessionRepository(db), closeDB, nil
}
