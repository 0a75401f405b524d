package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
)

// ChatService defines the chat session operations used by the handler.
type ChatService interface {
	Chat(ctx context.Context, message, sessionID string) (*entities.ChatResponse, error)
	SessionInfo(ctx context.Context, sessionID string) (*entities.SessionInfo, error)
	ClearSession(ctx context.Context, sessionID string) (bool, error)
}

// ChatHandler handles doctor chat requests.
type ChatHandler struct {
	service ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatWithDoctor handles POST /chat_with_doctor
func (h *ChatHandler) ChatWithDoctor(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		respondWithError(w, http.StatusBadRequest, "Message is required")
		return
	}

	resp, err := h.service.Chat(r.Context(), req.Message, strings.TrimSpace(req.SessionID))
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("chat turn failed")
		respondWithAppError(w, err, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// GetSessionInfo handles GET /chat_session_info/{session_id}
func (h *ChatHandler) GetSessionInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.SessionInfo(r.Context(), r.PathValue("session_id"))
	if err != nil {
		respondWithAppError(w, err, "Failed to retrieve session information")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"session_info": info,
	})
}

// ClearSession handles DELETE /chat_session/{session_id}
func (h *ChatHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.service.ClearSession(r.Context(), r.PathValue("session_id"))
	if err != nil {
		respondWithAppError(w, err, "Failed to clear session")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cleared": cleared,
	})
}
