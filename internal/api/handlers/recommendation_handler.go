package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/medassist/internal/domain/entities"
)

// RecommendationService defines the recommendation operations used by the handler.
type RecommendationService interface {
	GetRecommendations(ctx context.Context, condition string) *entities.MedicineRecommendationSet
	DrugInteractions(ctx context.Context, drug string) ([]entities.DrugInteraction, error)
}

// RecommendationHandler serves medicine recommendations and drug interactions.
type RecommendationHandler struct {
	service RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(service RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// GetRecommendations handles GET /recommendations/{condition}
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	condition := strings.TrimSpace(r.PathValue("condition"))
	if condition == "" {
		respondWithError(w, http.StatusBadRequest, "Condition is required")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    h.service.GetRecommendations(r.Context(), condition),
	})
}

// GetDrugInteractions handles GET /drug-interactions/{drug}
func (h *RecommendationHandler) GetDrugInteractions(w http.ResponseWriter, r *http.Request) {
	drug := strings.TrimSpace(r.PathValue("drug"))
	interactions, err := h.service.DrugInteractions(r.Context(), drug)
	if err != nil {
		respondWithAppError(w, err, "Failed to retrieve drug interactions")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"drug":         drug,
		"interactions": interactions,
	})
}
