package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medassist/pkg/errors"
	"github.com/zatekoja/medassist/pkg/imaging"
)

const (
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20
)

// ImageService defines the image pipeline operations used by the handler.
type ImageService interface {
	Validate(data []byte) (*imaging.Decoded, error)
	AnalyzeDecoded(ctx context.Context, data []byte, decoded *imaging.Decoded, description string) *entities.ImageAnalysisResult
	SupportedFormats() []string
	MaxBytes() int64
	MaxFileSizeMB() int
}

// ImageChatService runs an image through a chat session.
type ImageChatService interface {
	AnalyzeDecodedImageInChat(ctx context.Context, data []byte, decoded *imaging.Decoded, description, sessionID string) *entities.ImageChatResponse
}

// ImageHandler handles medical image uploads.
type ImageHandler struct {
	images ImageService
	chat   ImageChatService
}

// NewImageHandler creates a new image handler.
func NewImageHandler(images ImageService, chat ImageChatService) *ImageHandler {
	return &ImageHandler{images: images, chat: chat}
}

// AnalyzeImage handles POST /analyze_image. With a session_id the image is
// analysed inside that chat session.
func (h *ImageHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())
	tooLarge := fmt.Sprintf("Image file is too large. Maximum size is %dMB", h.images.MaxFileSizeMB())

	r.Body = http.MaxBytesReader(w, r.Body, h.images.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusBadRequest, tooLarge)
			return
		}
		respondWithError(w, http.StatusBadRequest, "No image file provided")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		// a part named image without a filename is parsed as a plain value
		if _, ok := r.MultipartForm.Value["image"]; ok {
			respondWithError(w, http.StatusBadRequest, "No image file selected")
			return
		}
		respondWithError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()
	if strings.TrimSpace(header.Filename) == "" {
		respondWithError(w, http.StatusBadRequest, "No image file selected")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.images.MaxBytes()+1))
	if err != nil {
		logger.Error().Err(err).Msg("failed to read uploaded image")
		respondWithError(w, http.StatusBadRequest, "Failed to read image file")
		return
	}
	if int64(len(data)) > h.images.MaxBytes() {
		respondWithError(w, http.StatusBadRequest, tooLarge)
		return
	}

	decoded, err := h.images.Validate(data)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, apperrors.UserMessage(err, "Invalid image format. Please upload a valid image file."))
		return
	}

	description := strings.TrimSpace(r.FormValue("description"))
	sessionID := strings.TrimSpace(r.FormValue("session_id"))

	if sessionID != "" && h.chat != nil {
		respondWithJSON(w, http.StatusOK, h.chat.AnalyzeDecodedImageInChat(r.Context(), data, decoded, description, sessionID))
		return
	}
	respondWithJSON(w, http.StatusOK, h.images.AnalyzeDecoded(r.Context(), data, decoded, description))
}

// SupportedFormats handles GET /image_supported_formats
func (h *ImageHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"supported_formats": h.images.SupportedFormats(),
		"max_file_size_mb":  h.images.MaxFileSizeMB(),
	})
}
