package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/providers"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
	"github.com/zatekoja/medassist/pkg/config"
	apperrors "github.com/zatekoja/medassist/pkg/errors"
	"github.com/zatekoja/medassist/pkg/imaging"
)

const (
	msgInvalidImage   = "Invalid image format. Please upload a valid image file."
	msgLowResolution  = "Image resolution is too low. Please upload a higher quality image."
	msgNoVision       = "Claude API key not available for image analysis"
	msgVisionDown     = "AI analysis is temporarily unavailable"
	msgPrepareFailure = "Failed to prepare image for analysis"
	msgTooManyPixels  = "Image dimensions are too large. Please upload a smaller image."
)

// ImageAnalysisService validates medical images and runs them through the
// vision model
type ImageAnalysisService struct {
	vision  providers.VisionAnalyzer
	cfg     config.ImageConfig
	formats []string
}

// NewImageAnalysisService creates a new image analysis service. vision may be
// nil when no vision provider is configured.
func NewImageAnalysisService(vision providers.VisionAnalyzer, cfg config.ImageConfig, formats []string) *ImageAnalysisService {
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = config.DefaultImageMaxPixels
	}
	return &ImageAnalysisService{
		vision:  vision,
		cfg:     cfg,
		formats: append([]string(nil), formats...),
	}
}

// SupportedFormats lists accepted file extensions
func (s *ImageAnalysisService) SupportedFormats() []string {
	return append([]string(nil), s.formats...)
}

// MaxBytes returns the upload limit in bytes
func (s *ImageAnalysisService) MaxBytes() int64 {
	return s.cfg.MaxBytes
}

// MaxFileSizeMB returns the upload limit in megabytes
func (s *ImageAnalysisService) MaxFileSizeMB() int {
	return s.cfg.MaxMegabytes()
}

// Validate checks size, pixel count, decodability and resolution, in that
// order
func (s *ImageAnalysisService) Validate(data []byte) (*imaging.Decoded, error) {
	if int64(len(data)) > s.cfg.MaxBytes {
		observability.RecordImageRejection("too_large")
		return nil, apperrors.NewTooLargeError(fmt.Sprintf(
			"Image file is too large. Please upload an image smaller than %dMB.", s.MaxFileSizeMB()))
	}
	decoded, err := imaging.Decode(data, s.cfg.MaxPixels)
	if errors.Is(err, imaging.ErrTooManyPixels) {
		observability.RecordImageRejection("too_many_pixels")
		return nil, apperrors.NewTooLargeError(msgTooManyPixels)
	}
	if err != nil {
		observability.RecordImageRejection("invalid_format")
		return nil, apperrors.NewValidationError(msgInvalidImage)
	}
	if decoded.Width < s.cfg.MinDimension || decoded.Height < s.cfg.MinDimension {
		observability.RecordImageRejection("low_resolution")
		return nil, apperrors.NewValidationError(msgLowResolution)
	}
	return decoded, nil
}

// Analyze validates the image and asks the vision model about it. Every
// failure is reported inside the result.
func (s *ImageAnalysisService) Analyze(ctx context.Context, data []byte, description string) *entities.ImageAnalysisResult {
	decoded, err := s.Validate(data)
	if err != nil {
		return entities.ImageAnalysisFailure(apperrors.UserMessage(err, msgInvalidImage))
	}
	return s.AnalyzeDecoded(ctx, data, decoded, description)
}

// AnalyzeDecoded runs the vision model on an image that already passed
// Validate
func (s *ImageAnalysisService) AnalyzeDecoded(ctx context.Context, data []byte, decoded *imaging.Decoded, description string) *entities.ImageAnalysisResult {
	logger := observability.LoggerFromContext(ctx)
	if s.vision == nil {
		return entities.ImageAnalysisFailure(msgNoVision, "Please use text-based symptom analysis instead")
	}

	ctx, span := observability.StartSpan(ctx, "ImageAnalysisService.Analyze")
	defer span.End()

	payload, err := imaging.Prepare(data, decoded, s.cfg.MaxUploadDimension)
	if err != nil {
		logger.Error().Err(err).Msg("failed to prepare image")
		observability.RecordError(span, err)
		return entities.ImageAnalysisFailure(msgPrepareFailure,
			"Please try uploading a clearer image", "Consult a healthcare professional for accurate diagnosis")
	}

	result, err := s.vision.AnalyzeImage(ctx, entities.ImagePayload{Data: payload.Data, MediaType: payload.MediaType}, description)
	if err != nil {
		observability.RecordError(span, err)
		logger.Warn().Err(err).Msg("vision analysis failed")
		return visionFailure(err)
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	return result
}

func visionFailure(err error) *entities.ImageAnalysisResult {
	if errors.Is(err, providers.ErrEmptyAnalysis) {
		return entities.ImageAnalysisFailure(err.Error(),
			"Please try uploading a different image", "Consult healthcare professional")
	}
	message := msgVisionDown
	var statusErr providers.UpstreamStatusError
	if errors.As(err, &statusErr) {
		message = fmt.Sprintf("AI analysis failed: %d", statusErr.UpstreamStatus())
	}
	return entities.ImageAnalysisFailure(message, "Please try again later", "Use text-based symptom analysis")
}
