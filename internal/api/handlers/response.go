package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/zatekoja/medassist/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondWithAppError maps an AppError to its status and writes only the
// user-facing message. Anything else becomes a 500 with fallback.
func respondWithAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Type == apperrors.ErrorTypeInternal {
			respondWithError(w, http.StatusInternalServerError, fallback)
			return
		}
		respondWithError(w, appErr.HTTPStatus(), appErr.Message)
		return
	}
	respondWithError(w, http.StatusInternalServerError, fallback)
}
