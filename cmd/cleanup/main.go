// Command cleanup runs only the retention sweeper until SIGINT or SIGTERM.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/customHttpClient"
	"github.com/akolanti/DocQueryAPI/internal/retention"
	"github.com/akolanti/DocQueryAPI/internal/services"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
)

func main() {
	configPath := flag.String("config", "", "optional YAML configuration file")
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		logger_i.NewLogger("cleanup").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger_i.Init(settings)
	logger := logger_i.NewLogger("cleanup")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := services.LoadAWSConfig(ctx, settings)
	if err != nil {
		logger.Error("AWS configuration failed", "error", err)
		os.Exit(1)
	}
	sweeper := retention.NewSweeper(services.NewDocumentStore(settings, awsCfg), settings.RetentionWindow)

	if *once {
		report := sweeper.Sweep(ctx)
		logger.Info("single sweep finished", "deleted", report.Deleted, "failed", report.Failed)
		return
	}

	logger.Info("Starting continuous cleanup", "window", settings.RetentionWindow.String())
	sweeper.Start()
	<-ctx.Done()

	logger.Info("Stopping cleanup")
	sweeper.Stop()
	customHttpClient.CloseIdleConnections()
}
