package huggingface

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
	defaultBaseURL = "https://api-inference.huggingface.co/models"
	defaultModel   = "microsoft/DialoGPT-medium"
	analysisMethod = "Hugging Face AI"
)

// Client calls a HuggingFace hosted text-generation model
type Client struct {
	endpoint string
	api      *apiclient.Client
}

// NewClient creates a new HuggingFace inference client
func NewClient(cfg *config.HuggingFaceConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("huggingface api key is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.Trim(cfg.Model, "/")
	if model == "" {
		model = defaultModel
	}

	return &Client{
		endpoint: baseURL + "/" + model,
		api: apiclient.New("huggingface", 30*time.Second,
			apiclient.WithHeader("Authorization", "Bearer "+cfg.APIKey),
		),
	}, nil
}

// Name identifies the provider in logs and metrics
func (c *Client) Name() string {
	return "huggingface"
}

type inferenceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		MaxLength   int     `json:"max_length"`
		Temperature float64 `json:"temperature"`
	} `json:"parameters"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// AnalyzeSymptoms succeeds only when the generated text embeds an analysis
// JSON object. Plain prose is an error.
func (c *Client) AnalyzeSymptoms(ctx context.Context, symptoms string) (*entities.AnalysisResult, error) {
	var req inferenceRequest
	req.Inputs = llm.FreeTextSymptomPrompt(symptoms)
	req.Parameters.MaxLength = 500
	req.Parameters.Temperature = 0.7

	var resp []generation
	if err := c.api.PostJSON(ctx, "analyze_symptoms", c.endpoint, req, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, errors.New("huggingface response has no generations")
	}

	result, err := llm.ParseAnalysis(resp[0].GeneratedText, analysisMethod, llm.Strict)
	if err != nil {
		return nil, err
	}
	result.Provider = c.Name()
	return result, nil
}
