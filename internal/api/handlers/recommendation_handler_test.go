package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/medassist/internal/api/handlers"
	"github.com/zatekoja/medassist/internal/domain/entities"
	apperrors "github.com/zatekoja/medassist/pkg/errors"
)

func TestRecommendationHandler_GetRecommendations(t *testing.T) {
	handler := handlers.NewRecommendationHandler(&stubRecommendationService{})

	req := httptest.NewRequest(http.MethodGet, "/recommendations/headache", nil)
	req.SetPathValue("condition", "headache")
	w := httptest.NewRecorder()
	handler.GetRecommendations(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"condition":"headache"`)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestRecommendationHandler_GetDrugInteractions(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := handlers.NewRecommendationHandler(&stubRecommendationService{
			interactions: []entities.DrugInteraction{{Drug: "aspirin", Severity: "high", Description: "bleeding risk"}},
		})

		req := httptest.NewRequest(http.MethodGet, "/drug-interactions/warfarin", nil)
		req.SetPathValue("drug", "warfarin")
		w := httptest.NewRecorder()
		handler.GetDrugInteractions(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"drug":"warfarin","interactions":[{"drug":"aspirin","severity":"high","description":"bleeding risk"}]}`, w.Body.String())
	})

	t.Run("upstream failure", func(t *testing.T) {
		handler := handlers.NewRecommendationHandler(&stubRecommendationService{
			err: apperrors.NewExternalError("Drug interaction data is temporarily unavailable", errors.New("502")),
		})

		req := httptest.NewRequest(http.MethodGet, "/drug-interactions/warfarin", nil)
		req.SetPathValue("drug", "warfarin")
		w := httptest.NewRecorder()
		handler.GetDrugInteractions(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.NotContains(t, w.Body.String(), "502")
	})
}
