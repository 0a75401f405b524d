package providers

import (
	"context"

	"github.com/zatekoja/medassist/internal/domain/entities"
)

// DrugLabelProvider searches drug labels (openFDA)
type DrugLabelProvider interface {
	// SearchOTC returns OTC labels matching term; an empty term runs the
	// broad OTC query.
	SearchOTC(ctx context.Context, term string, limit int) ([]entities.MedicineEntry, error)
	SearchSupplements(ctx context.Context, condition string, limit int) ([]entities.RemedyEntry, error)
}

// PrescriptionProvider searches prescription drug concepts (RxNav)
type PrescriptionProvider interface {
	SearchDrugs(ctx context.Context, name string) ([]entities.MedicineEntry, error)
	Interactions(ctx context.Context, drugName string) ([]entities.DrugInteraction, error)
}

// LiteratureProvider searches medical literature (PubMed)
type LiteratureProvider interface {
	Search(ctx context.Context, condition string, maxResults int) ([]string, error)
	Summary(ctx context.Context, pmid string) (*entities.LiteratureEntry, error)
}

// HealthIndicatorProvider queries global health data (WHO GHO)
type HealthIndicatorProvider interface {
	TraditionalMedicine(ctx context.Context, condition string) ([]entities.RemedyEntry, error)
	HealthPractices(ctx context.Context, condition string) ([]entities.RemedyEntry, error)
	HealthIndicators(ctx context.Context, condition string) ([]entities.HealthIndicator, error)
}
