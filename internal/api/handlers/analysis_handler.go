package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/providers"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
)

const analysisFailedMessage = "An error occurred during symptom analysis. Please try again."

// AnalysisService defines the symptom analysis operations used by the handler.
type AnalysisService interface {
	AnalyzeSymptoms(ctx context.Context, symptoms string) (*entities.AnalysisResult, error)
}

// AnalysisHandler handles symptom analysis requests.
type AnalysisHandler struct {
	service  AnalysisService
	detector providers.LanguageDetector
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(service AnalysisService, detector providers.LanguageDetector) *AnalysisHandler {
	return &AnalysisHandler{service: service, detector: detector}
}

type analyzeRequest struct {
	Symptoms *string `json:"symptoms"`
	Language string  `json:"language"`
}

type analyzeResponse struct {
	Success          bool                     `json:"success"`
	Data             *entities.AnalysisResult `json:"data"`
	DetectedLanguage string                   `json:"detected_language"`
	TargetLanguage   string                   `json:"target_language"`
}

// Analyze handles POST /analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symptoms == nil {
		respondWithError(w, http.StatusBadRequest, "Symptoms data is required")
		return
	}

	target := strings.TrimSpace(req.Language)
	if target == "" {
		target = entities.DefaultLanguage
	}

	result, err := h.service.AnalyzeSymptoms(r.Context(), *req.Symptoms)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("symptom analysis failed")
		respondWithAppError(w, err, analysisFailedMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, analyzeResponse{
		Success:          true,
		Data:             result,
		DetectedLanguage: h.detect(*req.Symptoms),
		TargetLanguage:   target,
	})
}

func (h *AnalysisHandler) detect(text string) string {
	if h.detector == nil {
		return entities.DefaultLanguage
	}
	code, err := h.detector.Detect(text)
	if err != nil || code == "" {
		return entities.DefaultLanguage
	}
	return code
}
