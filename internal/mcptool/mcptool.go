// Package mcptool expõe o relay como uma ferramenta MCP "chat".
package mcptool

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vitormoschetta/gemini-relay/internal/model"
)

const ToolName = "chat"

// Relay é o caso de uso chamado pela ferramenta
type Relay interface {
	Chat(ctx context.Context, req model.ChatRequest) (model.ChatResult, error)
}

// ChatInput são os argumentos da ferramenta chat
type ChatInput struct {
	Prompt string `json:"prompt" jsonschema:"the prompt to send to the model"`
	Model  string `json:"model,omitempty" jsonschema:"model identifier, defaults to the relay default model"`
}

// NewServer cria o servidor MCP com a ferramenta chat registrada
func NewServer(relay Relay, version string) (*mcp.Server, error) {
	if relay == nil {
		return nil, errors.New("mcptool: relay must not be nil")
	}
	server := mcp.NewServer(&mcp.Implementation{Name: "gemini-relay", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Send a prompt to the Gemini model and return the cleaned-up response",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in ChatInput) (*mcp.CallToolResult, model.ChatResult, error) {
		// A falha segue no resultado estruturado, igual ao endpoint HTTP.
		result, _ := relay.Chat(ctx, model.ChatRequest{Prompt: in.Prompt, Model: in.Model})
		return &mcp.CallToolResult{
			IsError: result.Status == model.StatusError,
			Content: []mcp.Content{&mcp.TextContent{Text: result.Response}},
		}, result, nil
	})

	return server, nil
}

// NewHTTPHandler serve o servidor MCP via streamable HTTP
func NewHTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
