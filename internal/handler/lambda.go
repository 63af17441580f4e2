package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/vitormoschetta/gemini-relay/internal/model"
)

// LambdaHandler atende eventos do API Gateway (proxy integration) com o mesmo
// contrato de /chat e /health do servidor HTTP
type LambdaHandler struct {
	relay          Relay
	allowedOrigins []string
	logger         *slog.Logger
}

// NewLambdaHandler cria o handler; "*" em allowedOrigins libera qualquer origem
func NewLambdaHandler(relay Relay, allowedOrigins []string, logger *slog.Logger) (*LambdaHandler, error) {
	if relay == nil {
		return nil, errors.New("handler: relay must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LambdaHandler{relay: relay, allowedOrigins: allowedOrigins, logger: logger}, nil
}

// Handle roteia o evento para /chat ou /health; rotas desconhecidas recebem 404
func (h *LambdaHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := h.corsHeaders(headerValue(event.Headers, "Origin"))
	corrID := headerValue(event.Headers, CorrelationHeader)
	if corrID == "" {
		corrID = newCorrelationID()
	}
	headers[CorrelationHeader] = corrID
	ctx = context.WithValue(ctx, correlationKey{}, corrID)

	path := strings.TrimRight(event.Path, "/")
	switch {
	case event.HTTPMethod == http.MethodOptions:
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: headers}, nil
	case path == "/health" && event.HTTPMethod == http.MethodGet:
		return h.respond(http.StatusOK, headers, model.HealthResponse{
			Status: model.StatusHealthy,
			Model:  h.relay.DefaultModel(),
		})
	case path == "/chat" && event.HTTPMethod == http.MethodPost:
		return h.respond(http.StatusOK, headers, h.chat(ctx, event))
	default:
		return h.respond(http.StatusNotFound, headers, map[string]string{"error": "not found"})
	}
}

func (h *LambdaHandler) chat(ctx context.Context, event events.APIGatewayProxyRequest) model.ChatResult {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			h.logger.Warn("error decoding base64 body", "err", err, "correlation_id", CorrelationID(ctx))
			result, _ := h.relay.InvalidRequest(err)
			return result
		}
		body = decoded
	}

	var req model.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Warn("error parsing JSON", "err", err, "correlation_id", CorrelationID(ctx))
		result, _ := h.relay.InvalidRequest(err)
		return result
	}
	result, err := h.relay.Chat(ctx, req)
	if err != nil {
		h.logger.Info("chat finished with error", "model", result.Model, "err", err, "correlation_id", CorrelationID(ctx))
	}
	return result
}

func (h *LambdaHandler) respond(status int, headers map[string]string, v any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// corsHeaders segue o servidor HTTP: a origem permitida é ecoada junto com
// Allow-Credentials, e "*" libera qualquer origem
func (h *LambdaHandler) corsHeaders(origin string) map[string]string {
	headers := map[string]string{
		"Access-Control-Allow-Methods":  "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD",
		"Access-Control-Allow-Headers":  "*",
		"Access-Control-Expose-Headers": CorrelationHeader,
	}
	if origin == "" {
		return headers
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			headers["Access-Control-Allow-Origin"] = origin
			headers["Access-Control-Allow-Credentials"] = "true"
			headers["Vary"] = "Origin"
			return headers
		}
	}
	return headers
}

// headerValue procura o header ignorando maiúsculas/minúsculas
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
