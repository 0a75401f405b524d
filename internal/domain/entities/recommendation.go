package entities

import "time"

// MedicineType distinguishes over-the-counter from prescription entries
type MedicineType string

const (
	MedicineTypeOTC          MedicineType = "OTC"
	MedicineTypePrescription MedicineType = "Prescription"
)

// Source labels reported in api_sources
const (
	SourceFDADrugs         = "FDA Drug Database"
	SourceRxNav            = "RxNav Prescription Database"
	SourceWHOGHO           = "WHO GHO Global Health Data"
	SourceFDASupplements   = "FDA Dietary Supplement Database"
	SourcePubMed           = "PubMed Medical Literature"
	SourceTraditionalTable = "Traditional Remedy Table"
	SourceFallback         = "Fallback System"
)

// SourceStatus tells whether a sub-query reached its upstream
type SourceStatus string

const (
	SourceStatusOK          SourceStatus = "ok"
	SourceStatusUnavailable SourceStatus = "unavailable"
)

// MedicineEntry is comparable so duplicates can be dropped with ==
type MedicineEntry struct {
	Name        string       `json:"name"`
	BrandName   string       `json:"brand_name,omitempty"`
	Dosage      string       `json:"dosage"`
	MaxDaily    string       `json:"max_daily,omitempty"`
	Warnings    string       `json:"warnings"`
	SideEffects string       `json:"side_effects"`
	Indications string       `json:"indications,omitempty"`
	Source      string       `json:"source"`
	Type        MedicineType `json:"type"`
}

// RemedyEntry is a natural or traditional remedy
type RemedyEntry struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Usage         string `json:"usage"`
	Effectiveness string `json:"effectiveness"`
	Source        string `json:"source"`
	Region        string `json:"region,omitempty"`
}

// LiteratureEntry is a PubMed article summary
type LiteratureEntry struct {
	PMID     string   `json:"pmid"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Journal  string   `json:"journal"`
	PubDate  string   `json:"publication_date"`
	Abstract string   `json:"abstract,omitempty"`
	URL      string   `json:"url"`
	Source   string   `json:"source"`
}

// DrugInteraction is one interacting drug reported by RxNav
type DrugInteraction struct {
	Drug        string `json:"drug"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// MedicineRecommendationSet aggregates every source for one condition
type MedicineRecommendationSet struct {
	Condition             string                  `json:"condition"`
	OTCMedicines          []MedicineEntry         `json:"otc_medicines"`
	PrescriptionMedicines []MedicineEntry         `json:"prescription_medicines"`
	NaturalRemedies       []RemedyEntry           `json:"natural_remedies"`
	MedicalLiterature     []LiteratureEntry       `json:"medical_literature"`
	APISources            []string                `json:"api_sources"`
	SourceStatus          map[string]SourceStatus `json:"source_status,omitempty"`
	TotalRecommendations  int                     `json:"total_recommendations"`
	LastUpdated           time.Time               `json:"last_updated"`
	Note                  string                  `json:"note,omitempty"`
}

// Recount recomputes TotalRecommendations from the four lists
func (s *MedicineRecommendationSet) Recount() {
	s.TotalRecommendations = len(s.OTCMedicines) +
		len(s.PrescriptionMedicines) +
		len(s.NaturalRemedies) +
		len(s.MedicalLiterature)
}

// FallbackNote accompanies a set built without any upstream data
const FallbackNote = "API-driven recommendations temporarily unavailable. Please consult healthcare provider."

// NewFallbackRecommendationSet is returned when aggregation itself failed
func NewFallbackRecommendationSet(condition string, now time.Time) *MedicineRecommendationSet {
	set := &MedicineRecommendationSet{
		Condition:             condition,
		OTCMedicines:          []MedicineEntry{},
		PrescriptionMedicines: []MedicineEntry{},
		NaturalRemedies:       []RemedyEntry{},
		MedicalLiterature:     []LiteratureEntry{},
		APISources:            []string{SourceFallback},
		LastUpdated:           now,
		Note:                  FallbackNote,
	}
	set.Recount()
	return set
}
