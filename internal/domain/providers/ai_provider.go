package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/medassist/internal/domain/entities"
)

// SymptomAnalyzer turns a symptom description into potential diagnoses.
// A nil error with no diagnoses means the provider produced nothing usable.
type SymptomAnalyzer interface {
	Name() string
	AnalyzeSymptoms(ctx context.Context, symptoms string) (*entities.AnalysisResult, error)
}

// ChatCompleter produces a free-text reply to a prompt
type ChatCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VisionAnalyzer analyses a medical image with an optional user question
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, image entities.ImagePayload, description string) (*entities.ImageAnalysisResult, error)
}

// LanguageDetector identifies the ISO-639-1 language of a text
type LanguageDetector interface {
	Detect(text string) (string, error)
}

// ErrEmptyAnalysis is returned by a VisionAnalyzer whose reply had no text
var ErrEmptyAnalysis = errors.New("no analysis received from AI")

// UpstreamStatusError is implemented by errors carrying the HTTP status an
// upstream API answered with
type UpstreamStatusError interface {
	error
	UpstreamStatus() int
}
