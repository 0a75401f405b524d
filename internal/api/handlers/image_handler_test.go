package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/api/handlers"
	"github.com/zatekoja/medassist/internal/application/services"
	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/pkg/config"
)

func newImageHandler(vision *stubVision, chat *stubChatService) *handlers.ImageHandler {
	cfg := config.ImageConfig{MaxBytes: 2 * 1024 * 1024, MinDimension: 100, MaxUploadDimension: 512}
	images := services.NewImageAnalysisService(vision, cfg, []string{".jpg", ".png"})
	if chat == nil {
		return handlers.NewImageHandler(images, nil)
	}
	return handlers.NewImageHandler(images, chat)
}

func TestImageHandler_AnalyzeImage(t *testing.T) {
	t.Run("direct analysis", func(t *testing.T) {
		vision := &stubVision{}
		handler := newImageHandler(vision, nil)

		w := httptest.NewRecorder()
		handler.AnalyzeImage(w, uploadRequest(t, "rash.png", pngBytes(t, 200, 200), map[string]string{"description": "itchy"}))

		assert.Equal(t, http.StatusOK, w.Code)
		var result entities.ImageAnalysisResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.True(t, result.Success)
		assert.Equal(t, "itchy", result.UserQueryAddressed)
		assert.Equal(t, 1, vision.calls)
	})

	t.Run("with a session goes through the chat", func(t *testing.T) {
		vision := &stubVision{}
		chat := &stubChatService{}
		handler := newImageHandler(vision, chat)

		w := httptest.NewRecorder()
		handler.AnalyzeImage(w, uploadRequest(t, "rash.png", pngBytes(t, 200, 200), map[string]string{"session_id": "s1"}))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp entities.ImageChatResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "s1", resp.SessionID)
		assert.Equal(t, 1, chat.calls)
		assert.Zero(t, vision.calls)
	})

	t.Run("missing file", func(t *testing.T) {
		handler := newImageHandler(&stubVision{}, nil)

		w := httptest.NewRecorder()
		handler.AnalyzeImage(w, uploadRequest(t, "", nil, map[string]string{"description": "x"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No image file provided")
	})

	t.Run("file part without a filename", func(t *testing.T) {
		handler := newImageHandler(&stubVision{}, nil)

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		require.NoError(t, writer.WriteField("image", ""))
		require.NoError(t, writer.Close())
		req := httptest.NewRequest(http.MethodPost, "/analyze_image", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		w := httptest.NewRecorder()
		handler.AnalyzeImage(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No image file selected")
	})

	t.Run("too large", func(t *testing.T) {
		vision := &stubVision{}
		handler := newImageHandler(vision, nil)

		w := httptest.NewRecorder()
		handler.AnalyzeImage(w, uploadRequest(t, "big.png", make([]byte, 2*1024*1024+10), nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Image file is too large. Maximum size is 2MB")
		assert.Zero(t, vision.calls)
	})

	t.Run("corrupt image", func(t *testing.T) {
		vision := &stubVision{}
		handler := newImageHandler(vision, nil)

		w := httptest.NewRecorder()
		handler.AnalyzeImage(w, uploadRequest(t, "bad.jpg", []byte("not really a jpeg"), nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid image format")
		assert.Zero(t, vision.calls)
	})

	t.Run("too small", func(t *testing.T) {
		handler := newImageHandler(&stubVision{}, nil)

		w := httptest.NewRecorder()
		handler.AnalyzeImage(w, uploadRequest(t, "tiny.png", pngBytes(t, 50, 50), nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Image resolution is too low")
	})
}

func TestImageHandler_SupportedFormats(t *testing.T) {
	handler := newImageHandler(&stubVision{}, nil)

	w := httptest.NewRecorder()
	handler.SupportedFormats(w, httptest.NewRequest(http.MethodGet, "/image_supported_formats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"supported_formats":[".jpg",".png"],"max_file_size_mb":2}`, w.Body.String())
}
