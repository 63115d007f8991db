package billing

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"dineflow/internal/billing/adapter/consumer"
	billingdb "dineflow/internal/billing/adapter/db"
	billinghttp "dineflow/internal/billing/api/http"
	"dineflow/internal/billing/app/services"
	"dineflow/internal/xpkg/bus"
	"dineflow/internal/xpkg/config"
	"dineflow/internal/xpkg/db"
	"dineflow/internal/xpkg/logger"

	"golang.org/x/sync/errgroup"
)

// Execute starts the billing service and blocks until shutdown.
func Execute(ctx context.Context, mylog logger.Logger, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fs := flag.NewFlagSet("billing-service", flag.ContinueOnError)
	port := fs.Int("port", 3002, "Port for the billing service")
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

	taxRate := ""
	if cfg.Billing != nil {
		taxRate = cfg.Billing.TaxRate
	}
	billRepo := billingdb.NewBillRepo(database)
	billingService, err := services.NewBillingService(billRepo, eventBus, taxRate, mylog)
	if err != nil {
		mylog.Action("service_init_failed").Error("Failed to initialize billing service", err)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.New(eventBus, billingService, mylog).Run(gctx)
	})
	g.Go(func() error {
		return billinghttp.NewServer(*port, billingService, mylog).Run(gctx)
	})
	return g.Wait()
}
