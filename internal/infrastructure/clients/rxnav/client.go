package rxnav

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/apiclient"
	"github.com/zatekoja/medassist/pkg/config"
	"github.com/zatekoja/medassist/pkg/utils"
)

const defaultBaseURL = "https://rxnav.nlm.nih.gov/REST"

// Client queries the NLM RxNav REST API
type Client struct {
	baseURL     string
	drugs       *apiclient.Client
	interaction *apiclient.Client
}

// NewClient creates a new RxNav client
func NewClient(cfg *config.RxNavConfig) *Client {
	baseURL := defaultBaseURL
	if cfg != nil && cfg.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		baseURL:     baseURL,
		drugs:       apiclient.New("rxnav", 15*time.Second),
		interaction: apiclient.New("rxnav", 10*time.Second),
	}
}

// Concept is an RxNorm concept as returned by drugs.json
type Concept struct {
	RxCUI       string   `json:"rxcui"`
	Name        string   `json:"name"`
	Synonym     string   `json:"synonym"`
	TTY         string   `json:"tty"`
	DrugClasses []string `json:"drugClasses"`
}

type drugsResponse struct {
	DrugGroup struct {
		Name         string `json:"name"`
		ConceptGroup []struct {
			TTY               string    `json:"tty"`
			ConceptProperties []Concept `json:"conceptProperties"`
			Concept           []Concept `json:"concept"`
		} `json:"conceptGroup"`
	} `json:"drugGroup"`
}

type interactionResponse struct {
	InteractionTypeGroup []struct {
		InteractionType []struct {
			InteractionPair []struct {
				InteractionConcept []struct {
					SourceConceptItem struct {
						Name string `json:"name"`
					} `json:"sourceConceptItem"`
				} `json:"interactionConcept"`
				Severity    string `json:"severity"`
				Description string `json:"description"`
			} `json:"interactionPair"`
		} `json:"interactionType"`
	} `json:"interactionTypeGroup"`
}

// SearchDrugs returns prescription concepts matching name
func (c *Client) SearchDrugs(ctx context.Context, name string) ([]entities.MedicineEntry, error) {
	concepts, err := c.concepts(ctx, "search_drugs", name)
	if err != nil {
		return nil, err
	}
	out := make([]entities.MedicineEntry, 0, len(concepts))
	for _, concept := range concepts {
		out = append(out, NormalizeConcept(concept))
	}
	return out, nil
}

// Interactions resolves drugName to its first RxCUI and lists the drugs it
// interacts with. An unknown drug yields an empty list.
func (c *Client) Interactions(ctx context.Context, drugName string) ([]entities.DrugInteraction, error) {
	concepts, err := c.concepts(ctx, "resolve_rxcui", drugName)
	if err != nil {
		return nil, err
	}
	rxcui := ""
	for _, concept := range concepts {
		if concept.RxCUI != "" {
			rxcui = concept.RxCUI
			break
		}
	}
	if rxcui == "" {
		return []entities.DrugInteraction{}, nil
	}

	params := url.Values{}
	params.Set("rxcui", rxcui)
	var resp interactionResponse
	if err := c.interaction.GetJSON(ctx, "interactions", c.baseURL+"/interaction/interaction.json", params, &resp); err != nil {
		return nil, err
	}

	interactions := []entities.DrugInteraction{}
	for _, group := range resp.InteractionTypeGroup {
		for _, kind := range group.InteractionType {
			for _, pair := range kind.InteractionPair {
				drug := ""
				if len(pair.InteractionConcept) > 0 {
					drug = pair.InteractionConcept[0].SourceConceptItem.Name
				}
				interactions = append(interactions, entities.DrugInteraction{
					Drug:        drug,
					Severity:    pair.Severity,
					Description: pair.Description,
				})
			}
		}
	}
	return interactions, nil
}

func (c *Client) concepts(ctx context.Context, operation, name string) ([]Concept, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("name", name)
	params.Set("allsrc", "1")

	var resp drugsResponse
	if err := c.drugs.GetJSON(ctx, operation, c.baseURL+"/drugs.json", params, &resp); err != nil {
		return nil, err
	}
	var out []Concept
	for _, group := range resp.DrugGroup.ConceptGroup {
		out = append(out, group.ConceptProperties...)
		out = append(out, group.Concept...)
	}
	return out, nil
}

// NormalizeConcept maps an RxNorm concept onto a prescription MedicineEntry
func NormalizeConcept(concept Concept) entities.MedicineEntry {
	return entities.MedicineEntry{
		Name:        utils.FirstNonEmpty([]string{concept.Name}, "Unknown"),
		BrandName:   utils.FirstNonEmpty([]string{concept.Synonym}, "Unknown"),
		Dosage:      "Consult healthcare provider for dosage",
		Warnings:    "Prescription medication - use as directed",
		SideEffects: "Consult healthcare provider for side effects",
		Indications: strings.Join(concept.DrugClasses, "; "),
		Source:      entities.SourceRxNav,
		Type:        entities.MedicineTypePrescription,
	}
}
