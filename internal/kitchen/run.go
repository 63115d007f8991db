package kitchen

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"dineflow/internal/kitchen/adapter/consumer"
	kitchendb "dineflow/internal/kitchen/adapter/db"
	"dineflow/internal/kitchen/adapter/notify"
	kitchenhttp "dineflow/internal/kitchen/api/http"
	"dineflow/internal/kitchen/app/services"
	"dineflow/internal/xpkg/bus"
	"dineflow/internal/xpkg/config"
	"dineflow/internal/xpkg/db"
	"dineflow/internal/xpkg/logger"

	"golang.org/x/sync/errgroup"
)

// Execute starts the kitchen service and blocks until shutdown.
func Execute(ctx context.Context, mylog logger.Logger, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fs := flag.NewFlagSet("kitchen-service", flag.ContinueOnError)
	port := fs.Int("port", 3001, "Port for the kitchen service")
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

	notifier := notify.New(cfg.Services.UsersURL, cfg.SMTP, mylog)
	ticketRepo := kitchendb.NewTicketRepo(database)
	kitchenService := services.NewKitchenService(ticketRepo, eventBus, notifier, mylog)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.New(eventBus, kitchenService, mylog).Run(gctx)
	})
	g.Go(func() error {
		return kitchenhttp.NewServer(*port, kitchenService, mylog).Run(gctx)
	})
	return g.Wait()
}
