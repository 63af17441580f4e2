package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/vitormoschetta/gemini-relay/internal/app"
	"github.com/vitormoschetta/gemini-relay/internal/config"
	"github.com/vitormoschetta/gemini-relay/internal/handler"
)

func main() {
	ctx := context.Background()

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

	h, err := handler.NewLambdaHandler(a.Relay, a.Config.AllowedOrigins, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
