package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/providers"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medassist/pkg/errors"
	"github.com/zatekoja/medassist/pkg/utils"
)

const (
	otcTermLimit        = 10
	otcBroadLimit       = 20
	otcBroadKeep        = 5
	supplementLimit     = 5
	literatureSearchMax = 10
	literatureKeep      = 5

	incompleteNote = "Some medical data sources were unavailable; results may be incomplete."
)

// Keys of source_status, one per upstream query
const (
	SourceKeyOTC            = "otc"
	SourceKeyPrescription   = "prescription"
	SourceKeyWHOTraditional = "who_traditional"
	SourceKeyWHOPractices   = "who_practices"
	SourceKeySupplements    = "supplements"
	SourceKeyLiterature     = "literature"
)

var sourceKeys = []string{
	SourceKeyOTC, SourceKeyPrescription, SourceKeyWHOTraditional,
	SourceKeyWHOPractices, SourceKeySupplements, SourceKeyLiterature,
}

// RecommendationAggregator merges medicine, remedy and literature data for a
// condition from every medical data source.
type RecommendationAggregator struct {
	labels     providers.DrugLabelProvider
	rx         providers.PrescriptionProvider
	literature providers.LiteratureProvider
	health     providers.HealthIndicatorProvider
	terms      *SearchTermService
	remedies   *knowledge.RemedyTable
	now        func() time.Time
}

// NewRecommendationAggregator creates a new aggregator
func NewRecommendationAggregator(
	labels providers.DrugLabelProvider,
	rx providers.PrescriptionProvider,
	literature providers.LiteratureProvider,
	health providers.HealthIndicatorProvider,
	terms *SearchTermService,
	remedies *knowledge.RemedyTable,
) *RecommendationAggregator {
	return &RecommendationAggregator{
		labels:     labels,
		rx:         rx,
		literature: literature,
		health:     health,
		terms:      terms,
		remedies:   remedies,
		now:        time.Now,
	}
}

// WithClock replaces the clock stamping last_updated
func (a *RecommendationAggregator) WithClock(now func() time.Time) *RecommendationAggregator {
	a.now = now
	return a
}

// partial is what the sub-queries write; each goroutine owns its fields
type partial struct {
	otc         []entities.MedicineEntry
	rx          []entities.MedicineEntry
	traditional []entities.RemedyEntry
	practices   []entities.RemedyEntry
	supplements []entities.RemedyEntry
	literature  []entities.LiteratureEntry

	otcStatus         entities.SourceStatus
	rxStatus          entities.SourceStatus
	traditionalStatus entities.SourceStatus
	practicesStatus   entities.SourceStatus
	supplementsStatus entities.SourceStatus
	literatureStatus  entities.SourceStatus
}

// GetRecommendations queries every source concurrently. It never fails: a
// source that errors contributes nothing and is marked unavailable.
func (a *RecommendationAggregator) GetRecommendations(ctx context.Context, condition string) (set *entities.MedicineRecommendationSet) {
	logger := observability.LoggerFromContext(ctx)
	ctx, span := observability.StartSpan(ctx, "RecommendationAggregator.GetRecommendations")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("condition", condition).Msg("recommendation assembly panicked")
			set = entities.NewFallbackRecommendationSet(condition, a.now())
		}
	}()

	if err := ctx.Err(); err != nil {
		logger.Info().Err(err).Str("condition", condition).Msg("returning fallback recommendations")
		return entities.NewFallbackRecommendationSet(condition, a.now())
	}

	p := &partial{}
	var wg sync.WaitGroup
	run := func(name string, status *entities.SourceStatus, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error().Interface("panic", r).Str("source", name).Msg("recommendation source panicked")
					*status = entities.SourceStatusUnavailable
				}
			}()
			if err := fn(); err != nil {
				logger.Warn().Err(err).Str("source", name).Str("condition", condition).Msg("recommendation source unavailable")
				*status = entities.SourceStatusUnavailable
				return
			}
			*status = entities.SourceStatusOK
		}()
	}

	run(SourceKeyOTC, &p.otcStatus, func() (err error) {
		p.otc, err = a.otcMedicines(ctx, condition)
		return err
	})
	run(SourceKeyPrescription, &p.rxStatus, func() (err error) {
		p.rx, err = a.prescriptionMedicines(ctx, condition)
		return err
	})
	run(SourceKeyWHOTraditional, &p.traditionalStatus, func() (err error) {
		p.traditional, err = a.health.TraditionalMedicine(ctx, condition)
		return err
	})
	run(SourceKeyWHOPractices, &p.practicesStatus, func() (err error) {
		p.practices, err = a.health.HealthPractices(ctx, condition)
		return err
	})
	run(SourceKeySupplements, &p.supplementsStatus, func() (err error) {
		p.supplements, err = a.labels.SearchSupplements(ctx, condition, supplementLimit)
		return err
	})
	run(SourceKeyLiterature, &p.literatureStatus, func() (err error) {
		p.literature, err = a.medicalLiterature(ctx, condition)
		return err
	})
	wg.Wait()

	return a.assemble(condition, p)
}

func (a *RecommendationAggregator) assemble(condition string, p *partial) *entities.MedicineRecommendationSet {
	set := &entities.MedicineRecommendationSet{
		Condition:             condition,
		OTCMedicines:          utils.NonNil(p.otc),
		PrescriptionMedicines: utils.NonNil(p.rx),
		MedicalLiterature:     utils.NonNil(p.literature),
		APISources:            []string{},
		SourceStatus: map[string]entities.SourceStatus{
			SourceKeyOTC:            p.otcStatus,
			SourceKeyPrescription:   p.rxStatus,
			SourceKeyWHOTraditional: p.traditionalStatus,
			SourceKeyWHOPractices:   p.practicesStatus,
			SourceKeySupplements:    p.supplementsStatus,
			SourceKeyLiterature:     p.literatureStatus,
		},
	}

	var natural []entities.RemedyEntry
	natural = append(natural, p.traditional...)
	natural = append(natural, p.practices...)
	natural = append(natural, p.supplements...)
	fromTable := len(natural) == 0
	if fromTable {
		natural = a.remedies.Match(condition)
	}
	set.NaturalRemedies = natural

	addSource := func(ok bool, label string) {
		if ok {
			set.APISources = append(set.APISources, label)
		}
	}
	addSource(len(p.otc) > 0, entities.SourceFDADrugs)
	addSource(len(p.rx) > 0, entities.SourceRxNav)
	addSource(len(p.traditional)+len(p.practices) > 0, entities.SourceWHOGHO)
	addSource(len(p.supplements) > 0, entities.SourceFDASupplements)
	addSource(len(p.literature) > 0, entities.SourcePubMed)
	addSource(fromTable, entities.SourceTraditionalTable)

	for _, key := range sourceKeys {
		status := set.SourceStatus[key]
		observability.RecordRecommendationSource(key, string(status))
		if status == entities.SourceStatusUnavailable {
			set.Note = incompleteNote
		}
	}

	set.Recount()
	set.LastUpdated = a.now()
	return set
}

// otcMedicines searches every OTC term, then falls back to the broad OTC
// query when nothing matched. It errors only when every call failed.
func (a *RecommendationAggregator) otcMedicines(ctx context.Context, condition string) ([]entities.MedicineEntry, error) {
	var found []entities.MedicineEntry
	var lastErr error
	succeeded := false
	for _, term := range a.terms.Terms(condition, MedicineKindOTC) {
		entries, err := a.labels.SearchOTC(ctx, term, otcTermLimit)
		if err != nil {
			lastErr = err
			continue
		}
		succeeded = true
		found = appendUniqueMedicines(found, entries)
	}
	if len(found) > 0 {
		return found, nil
	}

	broad, err := a.labels.SearchOTC(ctx, "", otcBroadLimit)
	if err != nil {
		if succeeded {
			return nil, nil
		}
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("otc search failed: %w", lastErr)
	}
	broad = appendUniqueMedicines(nil, broad)
	if len(broad) > otcBroadKeep {
		broad = broad[:otcBroadKeep]
	}
	return broad, nil
}

func (a *RecommendationAggregator) prescriptionMedicines(ctx context.Context, condition string) ([]entities.MedicineEntry, error) {
	var found []entities.MedicineEntry
	var lastErr error
	succeeded := false
	for _, term := range a.terms.Terms(condition, MedicineKindPrescription) {
		entries, err := a.rx.SearchDrugs(ctx, term)
		if err != nil {
			lastErr = err
			continue
		}
		succeeded = true
		found = appendUniqueMedicines(found, entries)
	}
	if !succeeded && lastErr != nil {
		return nil, fmt.Errorf("prescription search failed: %w", lastErr)
	}
	return found, nil
}

// medicalLiterature fetches summaries for the top search hits, skipping ids
// whose summary fails
func (a *RecommendationAggregator) medicalLiterature(ctx context.Context, condition string) ([]entities.LiteratureEntry, error) {
	ids, err := a.literature.Search(ctx, condition, literatureSearchMax)
	if err != nil {
		return nil, err
	}
	if len(ids) > literatureKeep {
		ids = ids[:literatureKeep]
	}

	logger := observability.LoggerFromContext(ctx)
	var entries []entities.LiteratureEntry
	for _, id := range ids {
		entry, err := a.literature.Summary(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Str("pmid", id).Msg("skipping literature summary")
			continue
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

// DrugInteractions lists the drugs RxNav reports as interacting with drug
func (a *RecommendationAggregator) DrugInteractions(ctx context.Context, drug string) ([]entities.DrugInteraction, error) {
	if drug == "" {
		return nil, apperrors.NewValidationError("Drug name is required")
	}
	interactions, err := a.rx.Interactions(ctx, drug)
	if err != nil {
		return nil, apperrors.NewExternalError("Drug interaction data is temporarily unavailable", err)
	}
	if interactions == nil {
		interactions = []entities.DrugInteraction{}
	}
	return interactions, nil
}

func appendUniqueMedicines(dst []entities.MedicineEntry, entries []entities.MedicineEntry) []entities.MedicineEntry {
	for _, e := range entries {
		duplicate := false
		for _, existing := range dst {
			if existing == e {
				duplicate = true
				break
			}
		}
		if !duplicate {
			dst = append(dst, e)
		}
	}
	return dst
}
