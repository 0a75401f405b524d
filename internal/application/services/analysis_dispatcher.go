package services

import (
	"context"
	"sync"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/providers"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
	"github.com/zatekoja/medassist/pkg/config"
	"go.opentelemetry.io/otel/attribute"
)

// AnalysisOutcome is the result of one provider attempt
type AnalysisOutcome struct {
	Provider string
	Result   *entities.AnalysisResult
	Err      error
}

// Usable reports whether the outcome ends the fallback chain
func (o AnalysisOutcome) Usable() bool {
	return o.Err == nil && o.Result.HasDiagnoses()
}

// AnalysisAttempt runs one provider against a symptom description
type AnalysisAttempt func(ctx context.Context, symptoms string) AnalysisOutcome

// AttemptFor wraps a SymptomAnalyzer as an AnalysisAttempt
func AttemptFor(analyzer providers.SymptomAnalyzer) AnalysisAttempt {
	return func(ctx context.Context, symptoms string) AnalysisOutcome {
		result, err := analyzer.AnalyzeSymptoms(ctx, symptoms)
		return AnalysisOutcome{Provider: analyzer.Name(), Result: result, Err: err}
	}
}

// Recommender supplies medicine recommendations for a condition
type Recommender interface {
	GetRecommendations(ctx context.Context, condition string) *entities.MedicineRecommendationSet
}

// AnalysisDispatcher tries the configured AI providers in order and enriches
// the first usable analysis with medicine recommendations.
type AnalysisDispatcher struct {
	attempts     []AnalysisAttempt
	providers    []string
	recommender  Recommender
	maxLength    int
	maxDiagnoses int
}

// NewAnalysisDispatcher creates a dispatcher over analyzers, in fallback
// order. Nil analyzers are skipped so unconfigured providers can be passed
// straight through.
func NewAnalysisDispatcher(analyzers []providers.SymptomAnalyzer, recommender Recommender, cfg config.AnalysisConfig) *AnalysisDispatcher {
	d := &AnalysisDispatcher{
		recommender:  recommender,
		maxLength:    cfg.MaxSymptomsLength,
		maxDiagnoses: cfg.MaxDiagnoses,
	}
	for _, a := range analyzers {
		if a == nil {
			continue
		}
		d.attempts = append(d.attempts, AttemptFor(a))
		d.providers = append(d.providers, a.Name())
	}
	return d
}

// Providers returns the names of the configured providers in order
func (d *AnalysisDispatcher) Providers() []string {
	return append([]string(nil), d.providers...)
}

// AnalyzeSymptoms validates the description and runs the fallback chain. The
// only error returned is a validation error; when every provider fails the
// result is the "AI Analysis Unavailable" sentinel.
func (d *AnalysisDispatcher) AnalyzeSymptoms(ctx context.Context, symptoms string) (*entities.AnalysisResult, error) {
	symptoms, err := ValidateSymptoms(symptoms, d.maxLength)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "AnalysisDispatcher.AnalyzeSymptoms")
	defer span.End()

	outcome, ok := d.firstUsable(ctx, symptoms)
	if !ok {
		observability.LoggerFromContext(ctx).Info().Msg("all AI providers failed, returning unavailable analysis")
		return entities.NoAnalysisAvailable(), nil
	}
	observability.SetSpanAttributes(span, attribute.String("provider", outcome.Provider))

	result := outcome.Result
	result.Normalize()
	if result.Provider == "" {
		result.Provider = outcome.Provider
	}
	if d.maxDiagnoses > 0 && len(result.PotentialDiagnoses) > d.maxDiagnoses {
		result.PotentialDiagnoses = result.PotentialDiagnoses[:d.maxDiagnoses]
	}
	d.enrich(ctx, result)
	return result, nil
}

// firstUsable folds over the attempts, stopping at the first usable outcome
func (d *AnalysisDispatcher) firstUsable(ctx context.Context, symptoms string) (AnalysisOutcome, bool) {
	logger := observability.LoggerFromContext(ctx)
	for _, attempt := range d.attempts {
		if ctx.Err() != nil {
			return AnalysisOutcome{}, false
		}
		outcome := attempt(ctx, symptoms)
		switch {
		case outcome.Usable():
			observability.RecordAnalysisAttempt(outcome.Provider, "success")
			return outcome, true
		case outcome.Err != nil:
			observability.RecordAnalysisAttempt(outcome.Provider, "error")
			logger.Warn().Err(outcome.Err).Str("provider", outcome.Provider).Msg("AI provider failed")
		default:
			observability.RecordAnalysisAttempt(outcome.Provider, "empty")
			logger.Warn().Str("provider", outcome.Provider).Msg("AI provider returned no diagnoses")
		}
	}
	return AnalysisOutcome{}, false
}

// enrich attaches recommendations to every diagnosis naming a condition
func (d *AnalysisDispatcher) enrich(ctx context.Context, result *entities.AnalysisResult) {
	if d.recommender == nil {
		return
	}
	var wg sync.WaitGroup
	for i := range result.PotentialDiagnoses {
		diagnosis := &result.PotentialDiagnoses[i]
		if diagnosis.Condition == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			diagnosis.MedicineRecommendations = d.recommender.GetRecommendations(ctx, diagnosis.Condition)
		}()
	}
	wg.Wait()
}
