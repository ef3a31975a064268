package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Claude generates weekly plans with the hosted Claude API
type Claude struct {
	apiKey    string
	apiURL    string
	model     string
	maxTokens int
	client    *http.Client
}

// NewClaude creates a Claude client. CLAUDE_API_KEY must be set; the model
// can be overridden with CLAUDE_MODEL.
func NewClaude() (*Claude, error) {
	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("CLAUDE_API_KEY environment variable is not set")
	}
	model := os.Getenv("CLAUDE_MODEL")
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	return &Claude{
		apiKey:    apiKey,
		apiURL:    "https://api.anthropic.com/v1/messages",
		model:     model,
		maxTokens: 4096,
		client:    &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// claudeMessage is a message in the conversation
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeRequest is a request to the messages API
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	System      string          `json:"system"`
	Messages    []claudeMessage `json:"messages"`
}

// claudeResponse is a response from the messages API
type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateWeeklyPlan implements Generator
func (c *Claude) GenerateWeeklyPlan(ctx PlanContext) (*WeeklyPlan, error) {
	request := claudeRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0.0,
		System:      buildSystemPrompt(),
		Messages: []claudeMessage{
			{Role: "user", Content: buildUserPrompt(ctx)},
		},
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to claude: %v", err)
	}
	defer resp.Body.Close()

	var response claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode claude response: %v", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("claude API error: %s", response.Error.Message)
	}
	if len(response.Content) == 0 {
		return nil, fmt.Errorf("no response content returned")
	}

	return parsePlanResponse(response.Content[0].Text)
}
