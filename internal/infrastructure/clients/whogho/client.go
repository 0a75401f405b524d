package whogho

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/apiclient"
	"github.com/zatekoja/medassist/pkg/config"
	"github.com/zatekoja/medassist/pkg/utils"
)

const defaultBaseURL = "https://ghoapi.azureedge.net/api"

var (
	traditionalKeywords = []string{"traditional", "herbal", "medicine", "remedy", "natural"}
	practiceKeywords    = []string{"treatment", "practice", "care", "health"}
	remedyNameKeywords  = []string{
		"traditional medicine", "herbal", "natural remedy",
		"medicinal plant", "folk medicine", "indigenous medicine",
	}
)

// Client reads the WHO Global Health Observatory indicator catalogue and
// filters it locally, since the OData endpoint has no free-text search.
type Client struct {
	indicatorURL string
	api          *apiclient.Client
}

// NewClient creates a new WHO GHO client
func NewClient(cfg *config.WHOGHOConfig) *Client {
	baseURL := defaultBaseURL
	if cfg != nil && cfg.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		indicatorURL: baseURL + "/Indicator",
		api:          apiclient.New("who_gho", 15*time.Second),
	}
}

// Indicator is one row of the GHO indicator catalogue. Value arrives as
// either a number or a string.
type Indicator struct {
	IndicatorCode string          `json:"IndicatorCode"`
	IndicatorName string          `json:"IndicatorName"`
	Location      string          `json:"Location"`
	TimeDim       json.RawMessage `json:"TimeDim"`
	Value         json.RawMessage `json:"Value"`
	Comments      string          `json:"Comments"`
}

type indicatorResponse struct {
	Value []Indicator `json:"value"`
}

// TraditionalMedicine returns traditional-medicine indicators for a condition
func (c *Client) TraditionalMedicine(ctx context.Context, condition string) ([]entities.RemedyEntry, error) {
	items, err := c.indicators(ctx, "traditional_medicine", 200)
	if err != nil {
		return nil, err
	}
	remedies := []entities.RemedyEntry{}
	for _, item := range matching(items, condition, traditionalKeywords) {
		name := ExtractRemedyName(item.IndicatorName)
		if name == "" {
			continue
		}
		loc := location(item)
		remedies = append(remedies, entities.RemedyEntry{
			Name:          name,
			Description:   orDefault(item.Comments, "Traditional medicine practice from "+loc),
			Usage:         "Traditional remedy for " + condition,
			Effectiveness: AssessEffectiveness(item.Value),
			Source:        "WHO GHO Traditional Medicine - " + loc,
			Region:        loc,
		})
	}
	return remedies, nil
}

// HealthPractices returns treatment and care indicators for a condition
func (c *Client) HealthPractices(ctx context.Context, condition string) ([]entities.RemedyEntry, error) {
	items, err := c.indicators(ctx, "health_practices", 200)
	if err != nil {
		return nil, err
	}
	practices := []entities.RemedyEntry{}
	for _, item := range matching(items, condition, practiceKeywords) {
		loc := location(item)
		practices = append(practices, entities.RemedyEntry{
			Name:          item.IndicatorName,
			Description:   orDefault(item.Comments, "Health practice from "+loc),
			Usage:         "Global health practice for " + condition,
			Effectiveness: AssessEffectiveness(item.Value),
			Source:        "WHO GHO Health Practices - " + loc,
			Region:        loc,
		})
	}
	return practices, nil
}

// HealthIndicators returns every indicator whose name mentions the condition
func (c *Client) HealthIndicators(ctx context.Context, condition string) ([]entities.HealthIndicator, error) {
	items, err := c.indicators(ctx, "health_indicators", 100)
	if err != nil {
		return nil, err
	}
	out := []entities.HealthIndicator{}
	for _, item := range matching(items, condition, nil) {
		loc := location(item)
		out = append(out, entities.HealthIndicator{
			Name:          item.IndicatorName,
			Description:   orDefault(item.Comments, "WHO GHO health indicator for "+condition),
			Region:        loc,
			Year:          rawText(item.TimeDim),
			Value:         rawText(item.Value),
			Effectiveness: AssessEffectiveness(item.Value),
			Source:        "WHO GHO Database - " + loc,
		})
	}
	return out, nil
}

func (c *Client) indicators(ctx context.Context, operation string, top int) ([]Indicator, error) {
	params := url.Values{}
	params.Set("$format", "json")
	params.Set("$top", strconv.Itoa(top))

	var resp indicatorResponse
	if err := c.api.GetJSON(ctx, operation, c.indicatorURL, params, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// matching keeps indicators whose name contains the condition and, when
// keywords are given, at least one keyword.
func matching(items []Indicator, condition string, keywords []string) []Indicator {
	condition = strings.ToLower(strings.TrimSpace(condition))
	if condition == "" {
		return nil
	}
	var out []Indicator
	for _, item := range items {
		name := strings.ToLower(item.IndicatorName)
		if !strings.Contains(name, condition) {
			continue
		}
		if len(keywords) > 0 && !utils.ContainsAny(name, keywords...) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ExtractRemedyName derives a remedy name from an indicator name. It returns
// "" when the indicator is not about traditional medicine.
func ExtractRemedyName(indicatorName string) string {
	lower := strings.ToLower(indicatorName)
	if !utils.ContainsAny(lower, remedyNameKeywords...) {
		return ""
	}
	parts := strings.Fields(indicatorName)
	for i, part := range parts {
		switch strings.ToLower(part) {
		case "medicine", "remedy", "herbal":
			if i > 0 {
				return strings.Join(parts[:i], " ")
			}
		}
	}
	return strings.TrimSpace(strings.SplitN(indicatorName, "-", 2)[0])
}

// AssessEffectiveness grades a numeric indicator value
func AssessEffectiveness(raw json.RawMessage) string {
	var value *float64
	if err := json.Unmarshal(raw, &value); err != nil || value == nil {
		return "Effectiveness data available from WHO GHO"
	}
	var grade string
	switch {
	case *value > 80:
		grade = "High"
	case *value > 60:
		grade = "Moderate"
	case *value > 40:
		grade = "Some"
	default:
		grade = "Limited"
	}
	return fmt.Sprintf("%s effectiveness based on WHO GHO data", grade)
}

func location(item Indicator) string {
	return orDefault(item.Location, "Unknown")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
