package provider

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// modelsAPI é o subconjunto de genai.Models usado pelo adaptador
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAI chama o Gemini diretamente pelo SDK google.golang.org/genai
type GenAI struct {
	models modelsAPI
}

// NewGenAI cria o cliente genai. Nenhuma chamada de rede é feita aqui.
func NewGenAI(ctx context.Context, cc *genai.ClientConfig) (*GenAI, error) {
	if cc == nil || cc.APIKey == "" {
		return nil, errors.New("provider: genai api key must not be empty")
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("provider: create genai client: %w", err)
	}
	return &GenAI{models: client.Models}, nil
}

// Generate devolve o texto do primeiro candidato, ou "" quando não há candidatos
func (g *GenAI) Generate(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		return "", errors.New("provider: model must not be empty")
	}
	resp, err := g.models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil
	}
	return textOf(resp.Candidates[0].Content), nil
}
