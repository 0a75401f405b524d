package pubmed

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

const (
	defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	articleURL     = "https://pubmed.ncbi.nlm.nih.gov/%s/"
	recentFilter   = `("2020"[Date - Publication] : "3000"[Date - Publication])`
)

// Client queries NCBI E-utilities for PubMed articles
type Client struct {
	baseURL string
	apiKey  string
	search  *apiclient.Client
	summary *apiclient.Client
}

// NewClient creates a new PubMed client. The API key is optional and only
// raises the NCBI rate allowance.
func NewClient(cfg *config.PubMedConfig) *Client {
	baseURL := defaultBaseURL
	apiKey := ""
	if cfg != nil {
		if cfg.BaseURL != "" {
			baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		apiKey = cfg.APIKey
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		search:  apiclient.New("pubmed", 15*time.Second),
		summary: apiclient.New("pubmed", 10*time.Second),
	}
}

type searchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// ArticleSummary is one esummary record
type ArticleSummary struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	PubDate         string `json:"pubdate"`
	FullJournalName string `json:"fulljournalname"`
}

type summaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

// Search returns PMIDs of recent articles mentioning condition in the title
// or abstract, most relevant first.
func (c *Client) Search(ctx context.Context, condition string, maxResults int) ([]string, error) {
	condition = strings.TrimSpace(strings.ReplaceAll(condition, `"`, ""))
	if condition == "" {
		return []string{}, nil
	}
	params := c.params()
	params.Set("term", fmt.Sprintf(`"%s"[Title/Abstract] AND %s`, condition, recentFilter))
	params.Set("retmax", strconv.Itoa(maxResults))
	params.Set("sort", "relevance")

	var resp searchResponse
	if err := c.search.GetJSON(ctx, "esearch", c.baseURL+"/esearch.fcgi", params, &resp); err != nil {
		return nil, err
	}
	return utils.NonNil(resp.ESearchResult.IDList), nil
}

// Summary fetches the article summary for pmid. It returns nil without an
// error when NCBI has no record for it.
func (c *Client) Summary(ctx context.Context, pmid string) (*entities.LiteratureEntry, error) {
	params := c.params()
	params.Set("id", pmid)

	var resp summaryResponse
	if err := c.summary.GetJSON(ctx, "esummary", c.baseURL+"/esummary.fcgi", params, &resp); err != nil {
		return nil, err
	}
	raw, ok := resp.Result[pmid]
	if !ok {
		return nil, nil
	}
	var article ArticleSummary
	if err := json.Unmarshal(raw, &article); err != nil {
		return nil, fmt.Errorf("failed to decode summary for %s: %w", pmid, err)
	}
	// esummary reports unknown ids inline with an error field and no title
	if article.UID == "" && article.Title == "" {
		return nil, nil
	}
	entry := NormalizeSummary(pmid, article)
	return &entry, nil
}

func (c *Client) params() url.Values {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("retmode", "json")
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	return params
}

// NormalizeSummary maps an esummary record onto a LiteratureEntry
func NormalizeSummary(pmid string, article ArticleSummary) entities.LiteratureEntry {
	authors := make([]string, 0, len(article.Authors))
	for _, a := range article.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	return entities.LiteratureEntry{
		PMID:     pmid,
		Title:    utils.FirstNonEmpty([]string{article.Title}, "Unknown Title"),
		Authors:  authors,
		Journal:  utils.FirstNonEmpty([]string{article.FullJournalName}, "Unknown Journal"),
		PubDate:  utils.FirstNonEmpty([]string{article.PubDate}, "Unknown"),
		Abstract: "No abstract available",
		URL:      fmt.Sprintf(articleURL, pmid),
		Source:   entities.SourcePubMed,
	}
}
