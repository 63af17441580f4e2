package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

// emptyResponseMessage é o erro que o modelo Gemini do ADK devolve quando a API
// responde sem candidatos. O adaptador genai trata o mesmo caso como texto vazio.
const emptyResponseMessage = "empty response"

// modelFactory cria o model.LLM do ADK para um nome de modelo
type modelFactory func(ctx context.Context, name string) (model.LLM, error)

// ADK gera texto pelo model.LLM do Agent Development Kit. Cada chamada cria o
// modelo para o nome pedido, já que o ADK amarra o nome ao LLM na criação.
type ADK struct {
	newModel modelFactory
}

// NewADK cria o adaptador usando gemini.NewModel com a configuração informada
func NewADK(cc *genai.ClientConfig) (*ADK, error) {
	if cc == nil || cc.APIKey == "" {
		return nil, errors.New("provider: adk api key must not be empty")
	}
	return &ADK{
		newModel: func(ctx context.Context, name string) (model.LLM, error) {
			cfg := *cc
			return gemini.NewModel(ctx, name, &cfg)
		},
	}, nil
}

// Generate cria o modelo pedido e junta o texto de todas as respostas do stream
func (a *ADK) Generate(ctx context.Context, prompt, modelName string) (string, error) {
	if strings.TrimSpace(modelName) == "" {
		return "", errors.New("provider: model must not be empty")
	}
	llm, err := a.newModel(ctx, modelName)
	if err != nil {
		return "", fmt.Errorf("provider: create adk model: %w", err)
	}

	req := &model.LLMRequest{
		Model:    modelName,
		Contents: genai.Text(prompt),
	}

	var responseText strings.Builder
	for response, err := range llm.GenerateContent(ctx, req, false) {
		if err != nil {
			if err.Error() == emptyResponseMessage && responseText.Len() == 0 {
				return "", nil
			}
			return "", err
		}
		if response != nil {
			responseText.WriteString(textOf(response.Content))
		}
	}
	return responseText.String(), nil
}
