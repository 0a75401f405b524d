package openfda

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/apiclient"
	"github.com/zatekoja/medassist/pkg/config"
	"github.com/zatekoja/medassist/pkg/utils"
)

const (
	defaultBaseURL = "https://api.fda.gov/drug"
	fieldLimit     = 200

	otcProductType        = `openfda.product_type:"OTC"`
	supplementProductType = `openfda.product_type:"Dietary Supplement"`
)

// Client searches the openFDA drug label endpoint
type Client struct {
	labelURL string
	apiKey   string
	api      *apiclient.Client
}

// NewClient creates a new openFDA client. The API key is optional.
func NewClient(cfg *config.OpenFDAConfig) *Client {
	baseURL := defaultBaseURL
	apiKey := ""
	if cfg != nil {
		if cfg.BaseURL != "" {
			baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		apiKey = cfg.APIKey
	}
	return &Client{
		labelURL: baseURL + "/label.json",
		apiKey:   apiKey,
		api:      apiclient.New("openfda", 15*time.Second),
	}
}

// Label is the subset of a drug label document the normalizers read
type Label struct {
	OpenFDA struct {
		GenericName []string `json:"generic_name"`
		BrandName   []string `json:"brand_name"`
	} `json:"openfda"`
	DosageAndAdministration []string `json:"dosage_and_administration"`
	Warnings                []string `json:"warnings"`
	AdverseReactions        []string `json:"adverse_reactions"`
	IndicationsAndUsage     []string `json:"indications_and_usage"`
}

type labelResponse struct {
	Results []Label `json:"results"`
}

// SearchOTC returns OTC labels matching term. An empty term runs the broad
// OTC query.
func (c *Client) SearchOTC(ctx context.Context, term string, limit int) ([]entities.MedicineEntry, error) {
	labels, err := c.search(ctx, "search_otc", buildQuery(otcProductType, term), limit)
	if err != nil {
		return nil, err
	}
	out := make([]entities.MedicineEntry, 0, len(labels))
	for _, label := range labels {
		out = append(out, NormalizeLabel(label, entities.MedicineTypeOTC))
	}
	return out, nil
}

// SearchSupplements returns dietary supplement labels for a condition
func (c *Client) SearchSupplements(ctx context.Context, condition string, limit int) ([]entities.RemedyEntry, error) {
	if strings.TrimSpace(condition) == "" {
		return []entities.RemedyEntry{}, nil
	}
	labels, err := c.search(ctx, "search_supplements", buildQuery(supplementProductType, condition), limit)
	if err != nil {
		return nil, err
	}
	out := make([]entities.RemedyEntry, 0, len(labels))
	for _, label := range labels {
		out = append(out, NormalizeSupplement(label))
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, operation, query string, limit int) ([]Label, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	var resp labelResponse
	if err := c.api.GetJSON(ctx, operation, c.labelURL, params, &resp); err != nil {
		// openFDA answers 404 when nothing matches
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return resp.Results, nil
}

func buildQuery(productType, term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return productType
	}
	if strings.ContainsAny(term, " \t") {
		term = `"` + strings.ReplaceAll(term, `"`, "") + `"`
	}
	return productType + " AND (" + term + ")"
}

// NormalizeLabel maps a label onto a MedicineEntry, filling documented
// defaults and truncating long label sections.
func NormalizeLabel(label Label, medicineType entities.MedicineType) entities.MedicineEntry {
	return entities.MedicineEntry{
		Name:        utils.FirstNonEmpty(label.OpenFDA.GenericName, "Unknown"),
		BrandName:   utils.FirstNonEmpty(label.OpenFDA.BrandName, "Unknown"),
		Dosage:      section(label.DosageAndAdministration, "Consult healthcare provider for dosage"),
		Warnings:    section(label.Warnings, "Read label carefully and consult healthcare provider"),
		SideEffects: section(label.AdverseReactions, "Consult healthcare provider for side effects"),
		Indications: section(label.IndicationsAndUsage, "Consult healthcare provider for proper use"),
		Source:      entities.SourceFDADrugs,
		Type:        medicineType,
	}
}

// NormalizeSupplement maps a dietary supplement label onto a RemedyEntry
func NormalizeSupplement(label Label) entities.RemedyEntry {
	return entities.RemedyEntry{
		Name:          utils.FirstNonEmpty(label.OpenFDA.GenericName, "Herbal Supplement"),
		Description:   "Natural herbal supplement",
		Usage:         "Follow label instructions",
		Effectiveness: "Traditional use",
		Source:        entities.SourceFDASupplements,
	}
}

func section(values []string, fallback string) string {
	v := utils.FirstNonEmpty(values, "")
	if v == "" {
		return fallback
	}
	return utils.Truncate(v, fieldLimit)
}
