package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vitormoschetta/gemini-relay/internal/model"
)

// Relay é o caso de uso consumido pelos handlers
type Relay interface {
	Chat(ctx context.Context, req model.ChatRequest) (model.ChatResult, error)
	InvalidRequest(cause error) (model.ChatResult, error)
	DefaultModel() string
}

// Handler contém as dependências necessárias para os handlers HTTP
type Handler struct {
	relay  Relay
	logger *slog.Logger
}

// NewHandler cria uma nova instância do Handler
func NewHandler(relay Relay, logger *slog.Logger) (*Handler, error) {
	if relay == nil {
		return nil, errors.New("handler: relay must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		relay:  relay,
		logger: logger,
	}, nil
}

// HandleRoot retorna informações sobre o serviço
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service": "Gemini Relay",
		"endpoints": map[string]interface{}{
			"chat": map[string]interface{}{
				"path":        "/chat",
				"method":      "POST",
				"description": "Send a prompt to the model",
				"example": map[string]string{
					"prompt": "Hello, how can you help me?",
					"model":  h.relay.DefaultModel(),
				},
			},
			"health": map[string]interface{}{
				"path":        "/health",
				"method":      "GET",
				"description": "Health check endpoint",
			},
			"metrics": map[string]interface{}{
				"path":        "/metrics",
				"method":      "GET",
				"description": "Prometheus metrics",
			},
			"mcp": map[string]interface{}{
				"path":        "/mcp",
				"method":      "POST",
				"description": "MCP streamable HTTP endpoint exposing the chat tool",
			},
		},
		"model": h.relay.DefaultModel(),
	}

	h.writeJSON(w, response)
}

// HandleHealth retorna o status de saúde do servidor
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, model.HealthResponse{
		Status: model.StatusHealthy,
		Model:  h.relay.DefaultModel(),
	})
}

// HandleChat encaminha o prompt ao modelo. Falhas vão no payload, sempre com 200.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("error parsing JSON", "err", err, "correlation_id", CorrelationID(r.Context()))
		result, _ := h.relay.InvalidRequest(err)
		h.writeJSON(w, result)
		return
	}

	result, err := h.relay.Chat(r.Context(), req)
	if err != nil {
		h.logger.Info("chat finished with error",
			"model", result.Model,
			"err", err,
			"correlation_id", CorrelationID(r.Context()),
		)
	}

	h.writeJSON(w, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "err", err)
	}
}
