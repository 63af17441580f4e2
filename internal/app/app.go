package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/vitormoschetta/gemini-relay/internal/config"
	"github.com/vitormoschetta/gemini-relay/internal/metrics"
	"github.com/vitormoschetta/gemini-relay/internal/provider"
	"github.com/vitormoschetta/gemini-relay/internal/secrets"
	"github.com/vitormoschetta/gemini-relay/internal/service"
)

// Version é sobrescrito via -ldflags no build
var Version = "dev"

// App guarda os componentes montados na partida
type App struct {
	Config  config.Config
	Relay   *service.Relay
	Metrics *metrics.Prom
	Logger  *slog.Logger
}

// NewLogger cria o logger JSON no nível configurado
func NewLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// New resolve a credencial, cria o gerador e o relay
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if cfg.APIKey == "" {
		ps, err := secrets.NewDefaultParamStore(ctx)
		if err != nil {
			return nil, err
		}
		cfg, err = cfg.WithResolvedAPIKey(ctx, ps)
		if err != nil {
			return nil, err
		}
		logger.Info("api key loaded from parameter store", "parameter", cfg.APIKeyParameter)
	}
	return newWithGenerator(ctx, cfg, logger, nil)
}

func newWithGenerator(ctx context.Context, cfg config.Config, logger *slog.Logger, gen provider.Generator) (*App, error) {
	if gen == nil {
		var err error
		gen, err = provider.New(ctx, provider.Config{
			Name:    cfg.Provider,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("app: create provider: %w", err)
		}
	}

	opts := []service.Option{
		service.WithDefaultModel(cfg.DefaultModel),
		service.WithTimeout(cfg.GenerateTimeout),
		service.WithLogger(logger),
	}
	var prom *metrics.Prom
	if cfg.MetricsEnabled {
		prom = metrics.NewProm(config.DefaultMetricsSpace)
		opts = append(opts, service.WithMetrics(prom))
	}

	relay, err := service.NewRelay(gen, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: create relay: %w", err)
	}

	return &App{
		Config:  cfg,
		Relay:   relay,
		Metrics: prom,
		Logger:  logger,
	}, nil
}

// HTTPMetrics devolve o coletor de métricas HTTP, ou Noop se desligado
func (a *App) HTTPMetrics() metrics.HTTP {
	if a.Metrics == nil {
		return metrics.Noop{}
	}
	return a.Metrics
}
