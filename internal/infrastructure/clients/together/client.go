package together

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/apiclient"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/llm"
	"github.com/zatekoja/medassist/pkg/config"
)

const (
	defaultBaseURL = "https://api.together.xyz/v1"
	analysisMethod = "Together AI Analysis"
)

// Client calls the Together AI chat completions endpoint
type Client struct {
	model    string
	endpoint string
	api      *apiclient.Client
}

// NewClient creates a new Together AI client
func NewClient(cfg *config.TogetherConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("together api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("together model is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
		api: apiclient.New("together", 30*time.Second,
			apiclient.WithHeader("Authorization", "Bearer "+cfg.APIKey),
		),
	}, nil
}

// Name identifies the provider in logs and metrics
func (c *Client) Name() string {
	return "together"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// AnalyzeSymptoms requests a JSON analysis. Output without JSON is an error
// so the dispatcher moves on to the next provider.
func (c *Client) AnalyzeSymptoms(ctx context.Context, symptoms string) (*entities.AnalysisResult, error) {
	req := completionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: llm.StructuredOutputSystemPrompt},
			{Role: "user", Content: llm.StructuredSymptomPrompt(symptoms, analysisMethod)},
		},
		MaxTokens:   2048,
		Temperature: 0.3,
	}

	var resp completionResponse
	if err := c.api.PostJSON(ctx, "analyze_symptoms", c.endpoint, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("together response has no choices")
	}

	result, err := llm.ParseAnalysis(resp.Choices[0].Message.Content, analysisMethod, llm.Strict)
	if err != nil {
		return nil, err
	}
	result.Provider = c.Name()
	return result, nil
}
