package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/medassist/internal/domain/entities"
)

const healthMessage = "Medical Symptoms-to-Diagnosis Agent is running"

// DiseaseInfoService defines the disease lookup used by the handler.
type DiseaseInfoService interface {
	Info(ctx context.Context, name string) (*entities.DiseaseInfo, error)
}

// ProviderLister reports the configured AI providers in fallback order.
type ProviderLister interface {
	Providers() []string
}

// InfoHandler serves health, language and reference endpoints.
type InfoHandler struct {
	diseases   DiseaseInfoService
	providers  ProviderLister
	languages  []entities.Language
	disclaimer string
	features   map[string]bool
}

// NewInfoHandler creates a new info handler. features flags optional
// capabilities (chat, vision, redis sessions) for /health.
func NewInfoHandler(diseases DiseaseInfoService, providers ProviderLister, languages []entities.Language, disclaimer string, features map[string]bool) *InfoHandler {
	return &InfoHandler{
		diseases:   diseases,
		providers:  providers,
		languages:  languages,
		disclaimer: disclaimer,
		features:   features,
	}
}

// Health handles GET /health
func (h *InfoHandler) Health(w http.ResponseWriter, r *http.Request) {
	analysis := []string{}
	if h.providers != nil {
		analysis = append(analysis, h.providers.Providers()...)
	}
	providers := map[string]interface{}{"analysis": analysis}
	for name, enabled := range h.features {
		providers[name] = enabled
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"message":   healthMessage,
		"providers": providers,
	})
}

// SupportedLanguages handles GET /supported-languages
func (h *InfoHandler) SupportedLanguages(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"languages": h.languages,
	})
}

// DiseaseInfo handles GET /disease-info/{name}
func (h *InfoHandler) DiseaseInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.diseases.Info(r.Context(), r.PathValue("name"))
	if err != nil {
		respondWithAppError(w, err, "Failed to retrieve disease information")
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*entities.DiseaseInfo
	}{Success: true, DiseaseInfo: info})
}

// Disclaimer handles GET /disclaimer
func (h *InfoHandler) Disclaimer(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"disclaimer": h.disclaimer,
	})
}
