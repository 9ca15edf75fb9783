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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-shop/api"
	"go-shop/internal/auth"
	"go-shop/internal/config"
	"go-shop/internal/logger"
	"go-shop/internal/models"
	"go-shop/internal/services"
	"go-shop/internal/store"
	"go-shop/internal/store/gormstore"
	"go-shop/internal/store/memory"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default ./config.yaml when present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func openStore(cfg *config.Config, log *zap.Logger) (store.Store, func() error, error) {
	if cfg.Database.Driver == "memory" {
		return memory.New(), func() error { return nil }, nil
	}
	s, err := gormstore.Open(cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func seed(ctx context.Context, cfg *config.Config, users *services.UserService, products *services.ProductService) error {
	seedUsers := make([]services.SeedUser, 0, len(cfg.Seed.Users))
	admin := ""
	for _, u := range cfg.Seed.Users {
		role := models.Role(u.Role)
		if role == models.RoleAdmin && admin == "" {
			admin = u.Email
		}
		seedUsers = append(seedUsers, services.SeedUser{Name: u.Name, Email: u.Email, Password: u.Password, Role: role})
	}
	if err := users.EnsureDefaultUsers(ctx, seedUsers); err != nil {
		return err
	}
	return products.InitSampleData(ctx, admin)
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	// Initialize services
	tokens := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := services.NewUserService(st, auth.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, log)
	productService := services.NewProductService(st, log)
	cartService := services.NewCartService(st, log)
	orderService := services.NewOrderService(st, log)

	if cfg.Seed.Enabled {
		if err := seed(context.Background(), cfg, userService, productService); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	router := api.NewRouter(api.Deps{
		Users:    userService,
		Products: productService,
		Carts:    cartService,
		Orders:   orderService,
		Guard:    auth.NewGuard(tokens),
		Log:      log,
		Env:      cfg.Env,
		Database: cfg.Database.Driver,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Run server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Server.Addr), zap.String("env", cfg.Env), zap.String("database", cfg.Database.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("server shutdown complete")
	return nil
}
