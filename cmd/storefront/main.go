package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/seed"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/store"
)

func main() {
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	slog.Info("Starting storefront-service", "port", cfg.Server.Port, "backend", cfg.Store.Backend)

	st, err := initStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if cfg.Features.SeedOnStartup {
		if err := seed.Run(context.Background(), st); err != nil {
			slog.Error("Failed to seed store", "error", err)
			os.Exit(1)
		}
	}

	var cache store.ProductCache
	if cfg.Features.EnableProductCaching {
		cache = store.NewRedisProductCache(cfg.Redis)
	}

	var publisher events.Publisher
	if cfg.Features.EnableOrderEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	accounts := service.NewAccountService(st)
	catalog := service.NewCatalogService(st, cache, cfg)
	carts := service.NewCartService(st)
	orders := service.NewOrderService(st, publisher, cfg)

	h := handlers.New(accounts, catalog, carts, orders, cfg)
	srv := server.New(h, cfg)

	go func() {
		slog.Info("Server starting",
			"port", cfg.Server.Port,
			"enable_product_caching", cfg.Features.EnableProductCaching,
			"enable_order_events", cfg.Features.EnableOrderEvents)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

func initStore(cfg *config.Config) (store.Store, error) {
	if cfg.Store.Backend == "memory" {
		slog.Info("Using in-memory store")
		return store.NewMemoryStore(), nil
	}

	db, err := store.OpenDatabase(
		cfg.Database.ConnectionString(),
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.MaxLifetime,
	)
	if err != nil {
		return nil, err
	}

	pg := store.NewPostgresStore(db)
	if err := pg.RunMigrations(); err != nil {
		return nil, err
	}

	slog.Info("Database connected", "host", cfg.Database.Host, "name", cfg.Database.Name)
	return pg, nil
}
