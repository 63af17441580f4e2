// Package provider adapta os clientes do Gemini ao contrato de geração de texto
// usado pelo relay: (prompt, modelo) -> texto.
package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	NameGenAI = "genai"
	NameADK   = "adk"
)

// Generator gera texto a partir de um prompt usando o modelo informado
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// Config reúne o que os adaptadores precisam para falar com a API do Gemini
type Config struct {
	Name    string
	APIKey  string
	BaseURL string
}

// New cria o Generator correspondente ao provider configurado
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "", NameGenAI:
		return NewGenAI(ctx, cfg.clientConfig())
	case NameADK:
		return NewADK(cfg.clientConfig())
	default:
		return nil, fmt.Errorf("provider: unknown provider %q", cfg.Name)
	}
}

func (c Config) clientConfig() *genai.ClientConfig {
	cc := &genai.ClientConfig{
		APIKey:  c.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.BaseURL}
	}
	return cc
}

// textOf concatena as partes de texto de um conteúdo
func textOf(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
