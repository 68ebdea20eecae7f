package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dcastroh/stockpilot-backend/api/controllers"
	"github.com/dcastroh/stockpilot-backend/api/routes"
	"github.com/dcastroh/stockpilot-backend/internal/auth"
	"github.com/dcastroh/stockpilot-backend/internal/customers"
	"github.com/dcastroh/stockpilot-backend/internal/inventory"
	"github.com/dcastroh/stockpilot-backend/internal/notifications"
	"github.com/dcastroh/stockpilot-backend/internal/orders"
	"github.com/dcastroh/stockpilot-backend/internal/products"
	"github.com/dcastroh/stockpilot-backend/internal/users"
	"github.com/dcastroh/stockpilot-backend/internal/warehouses"
	"github.com/dcastroh/stockpilot-backend/pkg/config"
	"github.com/dcastroh/stockpilot-backend/pkg/db"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
	"github.com/dcastroh/stockpilot-backend/pkg/migrate"
	"github.com/dcastroh/stockpilot-backend/pkg/outbox"
	"github.com/dcastroh/stockpilot-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	inventoryService := inventory.NewService(dbClient, inventory.NewRepository(gormDB), outboxService, logg)
	notificationsService := notifications.NewService(notifications.NewRepository(gormDB), usersRepo, logg)

	ordersService, err := orders.NewService(
		dbClient,
		orders.NewRepository(gormDB),
		inventoryService.Ledger(),
		outboxService,
		notificationsService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config: cfg,
		Logger: logg,
		Redis:  redisClient,
		ReadyChecks: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
		},
		AuthService:   auth.NewService(usersRepo, cfg.JWT, logg),
		Customers:     customers.NewService(customers.NewRepository(gormDB)),
		Products:      products.NewService(products.NewRepository(gormDB), logg),
		Warehouses:    warehouses.NewService(warehouses.NewRepository(gormDB), logg),
		Inventory:     inventoryService,
		Orders:        ordersService,
		Notifications: notificationsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		graceCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
