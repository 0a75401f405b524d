package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/providers"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medassist/pkg/errors"
	"github.com/zatekoja/medassist/pkg/utils"
)

// DiseaseInfoService serves the informational disease summary
type DiseaseInfoService struct {
	health    providers.HealthIndicatorProvider
	reference *knowledge.Reference
}

// NewDiseaseInfoService creates a new disease info service. health may be nil.
func NewDiseaseInfoService(health providers.HealthIndicatorProvider, reference *knowledge.Reference) *DiseaseInfoService {
	return &DiseaseInfoService{health: health, reference: reference}
}

// Info returns the summary for a disease name. Health indicators are best
// effort; a failing WHO lookup leaves the list empty.
func (s *DiseaseInfoService) Info(ctx context.Context, name string) (*entities.DiseaseInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("Disease name is required")
	}

	info := &entities.DiseaseInfo{
		DiseaseName:       name,
		Description:       fmt.Sprintf("Detailed information about %s", name),
		Symptoms:          []string{},
		Causes:            []string{},
		Treatments:        []string{},
		Prevention:        []string{},
		IsCommonCondition: s.reference.IsCommonCondition(name),
		HealthIndicators:  []entities.HealthIndicator{},
		Disclaimer:        s.reference.Disclaimer,
	}

	if s.health == nil {
		return info, nil
	}
	indicators, err := s.health.HealthIndicators(ctx, name)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("disease", name).Msg("health indicators unavailable")
		return info, nil
	}
	info.HealthIndicators = utils.NonNil(indicators)
	return info, nil
}
