package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Ollama generates weekly plans with a locally hosted model
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates an Ollama client from OLLAMA_BASE_URL and OLLAMA_MODEL,
// falling back to the local defaults
func NewOllama() *Ollama {
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llama3.2:latest"
	}
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// generateRequest is a request to the Ollama generate API
type generateRequest struct {
	Model   string `json:"model"`
	System  string `json:"system"`
	Prompt  string `json:"prompt"`
	Stream  bool   `json:"stream"`
	Format  string `json:"format"`
	Options struct {
		Temperature float64 `json:"temperature"`
	} `json:"options"`
}

// generateResponse is a response from the Ollama generate API
type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// GenerateWeeklyPlan implements Generator
func (o *Ollama) GenerateWeeklyPlan(ctx PlanContext) (*WeeklyPlan, error) {
	request := generateRequest{
		Model:  o.model,
		System: buildSystemPrompt(),
		Prompt: buildUserPrompt(ctx),
		Stream: false,
		Format: "json",
	}
	request.Options.Temperature = 0.0

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	resp, err := o.client.Post(o.baseURL+"/api/generate", "application/json", bytes.NewBuffer(requestData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request to ollama: %v", err)
	}
	defer resp.Body.Close()

	var response generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %v", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", response.Error)
	}

	return parsePlanResponse(response.Response)
}
