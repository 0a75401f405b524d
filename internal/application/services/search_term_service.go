package services

import (
	"strings"

	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/pkg/utils"
)

// MedicineKind selects the qualifier terms appended to a search
type MedicineKind string

const (
	MedicineKindOTC          MedicineKind = "otc"
	MedicineKindPrescription MedicineKind = "prescription"
)

// SearchTermService expands a condition into drug database search terms
type SearchTermService struct {
	terms *knowledge.SearchTerms
}

// NewSearchTermService creates a new search term service
func NewSearchTermService(terms *knowledge.SearchTerms) *SearchTermService {
	return &SearchTermService{terms: terms}
}

// Terms returns the lowercased condition, the synonyms of every table key
// it contains (table order), then the qualifiers for kind. Duplicates keep
// their first position.
func (s *SearchTermService) Terms(condition string, kind MedicineKind) []string {
	base := strings.ToLower(strings.TrimSpace(condition))
	if base == "" {
		return []string{}
	}

	terms := []string{base}
	for _, entry := range s.terms.Synonyms {
		if strings.Contains(base, entry.Condition) {
			terms = append(terms, entry.Terms...)
		}
	}
	terms = append(terms, s.terms.QualifiersFor(string(kind))...)
	return utils.UniqueStrings(terms)
}
