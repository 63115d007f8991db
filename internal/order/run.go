package order

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"dineflow/internal/order/adapter/catalog"
	orderdb "dineflow/internal/order/adapter/db"
	orderhttp "dineflow/internal/order/api/http"
	"dineflow/internal/order/app/services"
	"dineflow/internal/xpkg/bus"
	"dineflow/internal/xpkg/config"
	"dineflow/internal/xpkg/db"
	"dineflow/internal/xpkg/logger"

	"github.com/go-redis/redis/v8"
)

// Execute starts the order service and blocks until shutdown.
func Execute(ctx context.Context, mylog logger.Logger, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fs := flag.NewFlagSet("order-service", flag.ContinueOnError)
	port := fs.Int("port", 3000, "Port for the order service")
	configPath := fs.String("config-path", "config.yaml", "Path to the YAML config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *port <= 0 || *port >= 65536 {
		return fmt.Errorf("port must be in (0, 65535]: %d", *port)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		mylog.Action("config_load_failed").Error("Failed to load config", err)
		return err
	}

	database, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		mylog.Action("db_connection_failed").Error("Failed to connect to database", err)
		return err
	}
	defer database.Close()
	mylog.Action("db_connected").Info("Successful database connection")

	eventBus, err := bus.NewRabbitMQ(ctx, *cfg.RMQ, mylog)
	if err != nil {
		mylog.Action("mb_connection_failed").Error("Failed to connect to message broker", err)
		return err
	}
	defer eventBus.Close()
	mylog.Action("mb_connected").Info("Successful message broker connection")

	var cache *redis.Client
	if cfg.Redis != nil {
		cache = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer cache.Close()
	}

	catalogClient := catalog.New(cfg.Services.CatalogURL, cache, mylog)
	orderRepo := orderdb.NewOrderRepo(database)
	orderService := services.NewOrderService(orderRepo, catalogClient, eventBus, mylog)

	server := orderhttp.NewServer(*port, orderService, mylog)
	return server.Run(ctx)
}
