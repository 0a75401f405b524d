package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/providers"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/apiclient"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/llm"
	"github.com/zatekoja/medassist/pkg/config"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	defaultModel   = "claude-3-5-sonnet-20241022"
	defaultVersion = "2023-06-01"

	analysisMethod = "Claude AI Medical Analysis"

	analysisTimeout = 60 * time.Second
	chatTimeout     = 30 * time.Second
)

// Client talks to the Anthropic Messages API. It analyses symptoms, answers
// chat prompts and analyses images.
type Client struct {
	model    string
	endpoint string
	analysis *apiclient.Client
	chat     *apiclient.Client
}

// NewClient creates a new Anthropic client
func NewClient(cfg *config.AnthropicConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := cfg.Version
	if version == "" {
		version = defaultVersion
	}

	opts := []apiclient.Option{
		apiclient.WithHeader("x-api-key", cfg.APIKey),
		apiclient.WithHeader("anthropic-version", version),
		apiclient.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	return &Client{
		model:    model,
		endpoint: baseURL + "/messages",
		analysis: apiclient.New("anthropic", analysisTimeout, opts...),
		chat:     apiclient.New("anthropic", chatTimeout, opts...),
	}, nil
}

// Name identifies the provider in logs and metrics
func (c *Client) Name() string {
	return "anthropic"
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

func (r *messagesResponse) text() string {
	for _, block := range r.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text
		}
	}
	return ""
}

// AnalyzeSymptoms asks Claude for a structured symptom analysis. Replies
// without JSON become a synthetic "AI Analysis Available" result.
func (c *Client) AnalyzeSymptoms(ctx context.Context, symptoms string) (*entities.AnalysisResult, error) {
	temperature := 0.1
	req := messagesRequest{
		Model:       c.model,
		MaxTokens:   4000,
		System:      llm.SymptomSystemPrompt,
		Temperature: &temperature,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: llm.SymptomUserPrompt(symptoms)}},
		}},
	}

	var resp messagesResponse
	if err := c.analysis.PostJSON(ctx, "analyze_symptoms", c.endpoint, req, &resp); err != nil {
		return nil, err
	}

	text := resp.text()
	if text == "" {
		return nil, errors.New("anthropic response missing text content")
	}

	result, err := llm.ParseAnalysis(text, analysisMethod, llm.Lenient)
	if err != nil {
		return nil, err
	}
	result.Provider = c.Name()
	return result, nil
}

// Complete returns Claude's plain-text reply to a chat prompt
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := messagesRequest{
		Model:     c.model,
		MaxTokens: 1000,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: prompt}},
		}},
	}

	var resp messagesResponse
	if err := c.chat.PostJSON(ctx, "chat", c.endpoint, req, &resp); err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.text())
	if text == "" {
		return "", errors.New("anthropic response missing text content")
	}
	return text, nil
}

// ErrEmptyAnalysis is returned when the vision reply has no text
var ErrEmptyAnalysis = providers.ErrEmptyAnalysis

// AnalyzeImage sends the image as a base64 block next to the user prompt
func (c *Client) AnalyzeImage(ctx context.Context, image entities.ImagePayload, description string) (*entities.ImageAnalysisResult, error) {
	if len(image.Data) == 0 {
		return nil, errors.New("image payload is empty")
	}
	mediaType := image.MediaType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}

	req := messagesRequest{
		Model:     c.model,
		MaxTokens: 4000,
		System:    llm.ImageSystemPrompt,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "text", Text: llm.ImageUserPrompt(description)},
				{Type: "image", Source: &imageSource{
					Type:      "base64",
					MediaType: mediaType,
					Data:      base64.StdEncoding.EncodeToString(image.Data),
				}},
			},
		}},
	}

	var resp messagesResponse
	if err := c.analysis.PostJSON(ctx, "analyze_image", c.endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}

	text := resp.text()
	if text == "" {
		return nil, ErrEmptyAnalysis
	}
	return llm.ParseImageAnalysis(text), nil
}
