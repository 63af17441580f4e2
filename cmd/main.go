package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vitormoschetta/gemini-relay/internal/app"
	"github.com/vitormoschetta/gemini-relay/internal/config"
	"github.com/vitormoschetta/gemini-relay/internal/handler"
	"github.com/vitormoschetta/gemini-relay/internal/mcptool"
	"github.com/vitormoschetta/gemini-relay/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found or could not be loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start relay", "err", err)
		os.Exit(1)
	}

	// Criar handlers
	h, err := handler.NewHandler(a.Relay, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	routes := server.Routes{
		Root:   h.HandleRoot,
		Health: h.HandleHealth,
		Chat:   h.HandleChat,
	}
	if a.Metrics != nil {
		routes.Metrics = a.Metrics.Handler()
	}
	if cfg.MCPEnabled {
		mcpServer, err := mcptool.NewServer(a.Relay, app.Version)
		if err != nil {
			logger.Error("failed to create MCP server", "err", err)
			os.Exit(1)
		}
		routes.MCP = mcptool.NewHTTPHandler(mcpServer)
	}

	// Configurar rotas com os handlers
	srv := server.NewServer(a.Config, a.HTTPMetrics(), logger)
	srv.SetupRouter(routes)

	// Iniciar servidor
	if err := srv.Start(ctx); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
