package model

// Status indica o desfecho de uma chamada ao endpoint de chat
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// StatusHealthy é o status fixo devolvido por /health
const StatusHealthy = "healthy"

// ChatRequest representa a requisição para o endpoint de chat
type ChatRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// ChatResult representa a resposta do endpoint de chat
type ChatResult struct {
	Status   Status `json:"status"`
	Response string `json:"response"`
	Model    string `json:"model"`
}

// HealthResponse representa a resposta do health check
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}
