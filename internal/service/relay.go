package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vitormoschetta/gemini-relay/internal/format"
	"github.com/vitormoschetta/gemini-relay/internal/metrics"
	"github.com/vitormoschetta/gemini-relay/internal/model"
	"github.com/vitormoschetta/gemini-relay/internal/provider"
)

const (
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 60 * time.Second

	NoResponseMessage = "No response generated."
	errorPrefix       = "Error: "
)

// Relay encaminha o prompt ao gerador e formata o resultado
type Relay struct {
	generator    provider.Generator
	defaultModel string
	timeout      time.Duration
	metrics      metrics.Chat
	logger       *slog.Logger
}

// Option configura o Relay em NewRelay
type Option func(*Relay)

// WithDefaultModel troca o modelo padrão; nomes em branco são ignorados
func WithDefaultModel(name string) Option {
	return func(r *Relay) {
		if name = strings.TrimSpace(name); name != "" {
			r.defaultModel = name
		}
	}
}

// WithTimeout limita a chamada ao gerador; zero desliga o limite
func WithTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d >= 0 {
			r.timeout = d
		}
	}
}

// WithMetrics registra o desfecho de cada Chat em m
func WithMetrics(m metrics.Chat) Option {
	return func(r *Relay) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithLogger define o logger do Relay
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRelay cria uma nova instância do Relay
func NewRelay(gen provider.Generator, opts ...Option) (*Relay, error) {
	if gen == nil {
		return nil, errors.New("service: generator must not be nil")
	}
	r := &Relay{
		generator:    gen,
		defaultModel: DefaultModel,
		timeout:      DefaultTimeout,
		metrics:      metrics.Noop{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// DefaultModel devolve o modelo usado quando a requisição não informa um
func (r *Relay) DefaultModel() string {
	return r.defaultModel
}

// ResolveModel aplica o modelo padrão só quando name é "" (campo omitido ou
// vazio); qualquer outro valor, inclusive só espaços, segue como veio
func (r *Relay) ResolveModel(name string) string {
	if name == "" {
		return r.defaultModel
	}
	return name
}

// Chat gera a resposta para req. O ChatResult está sempre preenchido; o erro,
// quando não nil, é um *Failure que explica o status "error" do resultado.
func (r *Relay) Chat(ctx context.Context, req model.ChatRequest) (model.ChatResult, error) {
	modelName := r.ResolveModel(req.Model)

	genCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := r.generator.Generate(genCtx, req.Prompt, modelName)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		failure := newFailure(FailureCollaboratorFailure, err)
		r.observe(modelName, failure, elapsed)
		return model.ChatResult{
			Status:   model.StatusError,
			Response: errorPrefix + err.Error(),
			Model:    modelName,
		}, failure
	}

	if text == "" {
		failure := newFailure(FailureEmptyGeneration, nil)
		r.observe(modelName, failure, elapsed)
		return model.ChatResult{
			Status:   model.StatusError,
			Response: NoResponseMessage,
			Model:    modelName,
		}, failure
	}

	r.observe(modelName, nil, elapsed)
	return model.ChatResult{
		Status:   model.StatusSuccess,
		Response: format.Response(text),
		Model:    modelName,
	}, nil
}

// InvalidRequest monta o resultado para um corpo que não pôde ser lido
func (r *Relay) InvalidRequest(cause error) (model.ChatResult, error) {
	failure := newFailure(FailureInvalidRequest, cause)
	r.observe(r.defaultModel, failure, 0)
	return model.ChatResult{
		Status:   model.StatusError,
		Response: errorPrefix + "invalid request body: " + cause.Error(),
		Model:    r.defaultModel,
	}, failure
}

func (r *Relay) observe(modelName string, failure *Failure, elapsed float64) {
	if failure == nil {
		r.metrics.ObserveChat(modelName, string(model.StatusSuccess), "", elapsed)
		r.logger.Debug("chat generated", "model", modelName, "duration_seconds", elapsed)
		return
	}
	r.metrics.ObserveChat(modelName, string(model.StatusError), string(failure.Kind), elapsed)
	r.logger.Warn("chat failed", "model", modelName, "kind", failure.Kind, "err", failure.Err)
}
