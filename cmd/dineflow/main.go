package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dineflow/internal/analytics"
	"dineflow/internal/billing"
	"dineflow/internal/kitchen"
	"dineflow/internal/order"
	"dineflow/internal/xpkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine, deployments use real environment variables.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var mode string
	var serviceArgs []string
	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		if strings.HasPrefix(arg, "--mode=") {
			mode = strings.TrimPrefix(arg, "--mode=")
		} else if arg == "--mode" && i+1 < len(os.Args) {
			mode = os.Args[i+1]
			i++
		} else {
			serviceArgs = append(serviceArgs, arg)
		}
	}
	if mode == "" {
		printUsage()
		os.Exit(1)
	}

	mylog := logger.New(mode)
	ctx := context.Background()

	var err error
	switch mode {
	case "order-service":
		err = order.Execute(ctx, mylog, serviceArgs)
	case "kitchen-service":
		err = kitchen.Execute(ctx, mylog, serviceArgs)
	case "billing-service":
		err = billing.Execute(ctx, mylog, serviceArgs)
	case "analytics-service":
		err = analytics.Execute(ctx, mylog, serviceArgs)
	default:
		fmt.Printf("Invalid mode: %s\n", mode)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		mylog.Action("service_stopped").Error("Service exited with error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: dineflow --mode=<service-mode> [service-specific-flags]")
	fmt.Println("Available modes:")
	fmt.Println("  order-service --port=3000 --config-path=config.yaml")
	fmt.Println("  kitchen-service --port=3001 --config-path=config.yaml")
	fmt.Println("  billing-service --port=3002 --config-path=config.yaml")
	fmt.Println("  analytics-service --port=3003 --config-path=config.yaml")
}
