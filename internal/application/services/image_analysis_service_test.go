package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/application/services"
	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/providers"
	apperrors "github.com/zatekoja/medassist/pkg/errors"
)

type upstreamError struct{ status int }

func (e upstreamError) Error() string       { return fmt.Sprintf("upstream %d", e.status) }
func (e upstreamError) UpstreamStatus() int { return e.status }

func TestImageAnalysisService_Validate(t *testing.T) {
	vision := new(MockVisionAnalyzer)
	svc := services.NewImageAnalysisService(vision, imageConfig, []string{"jpg", "png"})

	t.Run("rejects oversized uploads before decoding", func(t *testing.T) {
		_, err := svc.Validate(make([]byte, 11*1024*1024))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTooLarge))
		assert.Equal(t, "Image file is too large. Please upload an image smaller than 10MB.", apperrors.UserMessage(err, ""))
	})

	t.Run("rejects undecodable bytes", func(t *testing.T) {
		_, err := svc.Validate([]byte{0xde, 0xad, 0xbe, 0xef})
		assert.Equal(t, "Invalid image format. Please upload a valid image file.", apperrors.UserMessage(err, ""))
	})

	t.Run("rejects low resolution", func(t *testing.T) {
		_, err := svc.Validate(pngImage(t, 99, 300))
		assert.Equal(t, "Image resolution is too low. Please upload a higher quality image.", apperrors.UserMessage(err, ""))
	})

	t.Run("rejects images over the pixel cap", func(t *testing.T) {
		capped := imageConfig
		capped.MaxPixels = 150 * 150
		svc := services.NewImageAnalysisService(vision, capped, nil)

		_, err := svc.Validate(pngImage(t, 200, 200))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTooLarge))
		assert.Equal(t, "Image dimensions are too large. Please upload a smaller image.", apperrors.UserMessage(err, ""))

		_, err = svc.Validate(pngImage(t, 150, 150))
		assert.NoError(t, err)
	})

	t.Run("accepts a valid image", func(t *testing.T) {
		decoded, err := svc.Validate(pngImage(t, 120, 100))
		require.NoError(t, err)
		assert.Equal(t, "png", decoded.Format)
		assert.Equal(t, 120, decoded.Width)
	})

	assert.Equal(t, 10, svc.MaxFileSizeMB())
	assert.Equal(t, []string{"jpg", "png"}, svc.SupportedFormats())
	vision.AssertNotCalled(t, "AnalyzeImage", mock.Anything, mock.Anything, mock.Anything)
}

func TestImageAnalysisService_Analyze(t *testing.T) {
	t.Run("passes the prepared image to the vision model", func(t *testing.T) {
		vision := new(MockVisionAnalyzer)
		vision.On("AnalyzeImage", mock.Anything, mock.MatchedBy(func(p entities.ImagePayload) bool {
			return len(p.Data) > 0 && p.MediaType != ""
		}), "itchy spot").Return(&entities.ImageAnalysisResult{Success: true}, nil)

		svc := services.NewImageAnalysisService(vision, imageConfig, nil)
		result := svc.Analyze(context.Background(), pngImage(t, 200, 200), "itchy spot")

		assert.True(t, result.Success)
		assert.NotNil(t, result.Recommendations)
		vision.AssertExpectations(t)
	})

	t.Run("oversized image never reaches the vision model", func(t *testing.T) {
		vision := new(MockVisionAnalyzer)
		svc := services.NewImageAnalysisService(vision, imageConfig, nil)

		result := svc.Analyze(context.Background(), make([]byte, 11*1024*1024), "")

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "too large")
		vision.AssertNotCalled(t, "AnalyzeImage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no vision provider", func(t *testing.T) {
		svc := services.NewImageAnalysisService(nil, imageConfig, nil)
		result := svc.Analyze(context.Background(), pngImage(t, 200, 200), "")

		assert.False(t, result.Success)
		assert.Equal(t, "Claude API key not available for image analysis", result.Error)
		assert.NotEmpty(t, result.Recommendations)
	})

	failures := []struct {
		name string
		err  error
		want string
	}{
		{"empty reply", providers.ErrEmptyAnalysis, "no analysis received from AI"},
		{"upstream status", upstreamError{status: 529}, "AI analysis failed: 529"},
		{"transport error", errors.New("dial tcp: timeout"), "AI analysis is temporarily unavailable"},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			vision := new(MockVisionAnalyzer)
			vision.On("AnalyzeImage", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)
			svc := services.NewImageAnalysisService(vision, imageConfig, nil)

			result := svc.Analyze(context.Background(), pngImage(t, 200, 200), "")

			assert.False(t, result.Success)
			assert.Equal(t, tc.want, result.Error)
			assert.NotEmpty(t, result.Recommendations)
		})
	}
}
