package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mytheresa/retail-manager/app"
	"github.com/mytheresa/retail-manager/app/auth"
	"github.com/mytheresa/retail-manager/app/catalog"
	"github.com/mytheresa/retail-manager/app/categories"
	"github.com/mytheresa/retail-manager/app/sales"
	"github.com/mytheresa/retail-manager/config"
	"github.com/mytheresa/retail-manager/models"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	// --- Database ---
	db, err := models.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatalf("Failed to migrate schema: %v", err)
	}
	logger.Info("Database ready")

	sessions, err := auth.NewRedisSessionStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}
	defer sessions.Close()

	// --- Repositories ---
	productsRepo := models.NewProductsRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)
	usersRepo := models.NewUsersRepository(db)
	salesRepo := models.NewSalesRepository(db)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if _, err := usersRepo.EnsureSuperuser(cfg.AdminUsername, cfg.AdminPassword); err != nil {
			logger.Fatalf("Failed to ensure superuser: %v", err)
		}
		logger.WithField("username", cfg.AdminUsername).Info("Superuser ensured")
	}

	// --- Handlers ---
	processor := sales.NewProcessor(salesRepo, logger.WithField("component", "sales"))
	router := app.NewRouter(app.Handlers{
		Gate:       auth.NewGate(sessions, usersRepo, cfg.SessionCookie, logger.WithField("component", "gate")),
		Login:      auth.NewLoginHandler(sessions, usersRepo, cfg.SessionCookie, cfg.SessionTTL, logger.WithField("handler", "login")),
		Catalog:    catalog.NewCatalogHandler(productsRepo, categoriesRepo, cfg.MediaURL, logger.WithField("handler", "catalog")),
		Categories: categories.NewCategoryHandler(categoriesRepo, logger.WithField("handler", "categories")),
		Sales:      sales.NewHandler(processor, productsRepo, cfg.MediaURL, cfg.SaleTimeout, logger.WithField("handler", "sales")),
	}, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
}
