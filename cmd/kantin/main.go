package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kantin/internal/auth"
	"kantin/internal/cache"
	"kantin/internal/config"
	"kantin/internal/database"
	"kantin/internal/events"
	"kantin/internal/logger"
	"kantin/internal/router"
	"kantin/internal/services/account"
	"kantin/internal/services/admin"
	"kantin/internal/services/catalog"
	"kantin/internal/services/checkout"
	"kantin/internal/services/vendor"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to the configuration file")
		port       = flag.Int("port", 0, "HTTP port (overrides config)")
	)
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log := logger.New("kantin-api")
	requestID := logger.GenerateRequestID()

	if err := run(cfg, log, requestID); err != nil {
		log.Error("service_failed", requestID, "Service failed", err, nil)
		os.Exit(1)
	}
	log.Info("service_stopped", requestID, "Service stopped gracefully", nil)
}

func run(cfg *config.Config, log *logger.Logger, requestID string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("graceful_shutdown", requestID, "Received shutdown signal", nil)
		cancel()
	}()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()
	log.Info("db_connected", requestID, "Connected to PostgreSQL database", nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	menuCache := cache.New(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	defer menuCache.Close()

	publisher, err := events.NewPublisher(cfg.RabbitMQURL(), log)
	if err != nil {
		// The API stays up without the broker; events degrade to no-ops.
		log.Error("events_unavailable", requestID, "Running without the event broker", err, nil)
		publisher, _ = events.NewPublisher("", log)
	}
	defer publisher.Close()

	accountRepo := account.NewRepository(db)
	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	handlers := router.Handlers{
		Account:  account.NewHandler(account.NewService(accountRepo, cfg.Auth.JWTSecret, tokenTTL, log), log),
		Catalog:  catalog.NewHandler(catalog.NewService(catalog.NewRepository(db), menuCache, log), log),
		Checkout: checkout.NewHandler(checkout.NewService(checkout.NewRepository(db), publisher, log), log),
		Vendor:   vendor.NewHandler(vendor.NewService(vendor.NewRepository(db), log), log),
		Admin:    admin.NewHandler(admin.NewService(admin.NewRepository(db), log), log),
	}
	middleware := auth.NewMiddleware(cfg.Auth.JWTSecret, accountRepo)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router.New(handlers, middleware, db, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("server_started", requestID, fmt.Sprintf("Listening on port %d", cfg.Server.Port), map[string]any{
			"port": cfg.Server.Port,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
