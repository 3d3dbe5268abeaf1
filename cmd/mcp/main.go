// Command mcp serves the document query tools over stdio for MCP clients.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/mcpServer"
	"github.com/akolanti/DocQueryAPI/internal/services"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
)

func main() {
	configPath := flag.String("config", "", "optional YAML configuration file")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		logger_i.NewLogger("mcp").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	//stdout carries the protocol, logs go to stderr
	logger_i.InitWithWriter(os.Stderr, settings)
	logger := logger_i.NewLogger("mcp")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queries, documents, err := services.NewQueryService(ctx, settings)
	if err != nil {
		logger.Error("External services failed to initialize", "error", err)
		os.Exit(1)
	}
	server, err := mcpServer.NewServer(queries, documents)
	if err != nil {
		logger.Error("Could not create MCP server", "error", err)
		os.Exit(1)
	}
	server.WithRetention(settings.RetentionWindow, nil)

	logger.Info("MCP server running on stdio", "version", mcpServer.Version)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
