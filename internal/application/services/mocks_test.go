package services_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/domain/entities"
)

type MockSymptomAnalyzer struct {
	mock.Mock
	name string
}

func (m *MockSymptomAnalyzer) Name() string {
	return m.name
}

func (m *MockSymptomAnalyzer) AnalyzeSymptoms(ctx context.Context, symptoms string) (*entities.AnalysisResult, error) {
	args := m.Called(ctx, symptoms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AnalysisResult), args.Error(1)
}

type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) GetRecommendations(ctx context.Context, condition string) *entities.MedicineRecommendationSet {
	args := m.Called(ctx, condition)
	return args.Get(0).(*entities.MedicineRecommendationSet)
}

type MockDrugLabelProvider struct {
	mock.Mock
}

func (m *MockDrugLabelProvider) SearchOTC(ctx context.Context, term string, limit int) ([]entities.MedicineEntry, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.MedicineEntry), args.Error(1)
}

func (m *MockDrugLabelProvider) SearchSupplements(ctx context.Context, condition string, limit int) ([]entities.RemedyEntry, error) {
	args := m.Called(ctx, condition, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.RemedyEntry), args.Error(1)
}

type MockPrescriptionProvider struct {
	mock.Mock
}

func (m *MockPrescriptionProvider) SearchDrugs(ctx context.Context, name string) ([]entities.MedicineEntry, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.MedicineEntry), args.Error(1)
}

func (m *MockPrescriptionProvider) Interactions(ctx context.Context, drugName string) ([]entities.DrugInteraction, error) {
	args := m.Called(ctx, drugName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.DrugInteraction), args.Error(1)
}

type MockLiteratureProvider struct {
	mock.Mock
}

func (m *MockLiteratureProvider) Search(ctx context.Context, condition string, maxResults int) ([]string, error) {
	args := m.Called(ctx, condition, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLiteratureProvider) Summary(ctx context.Context, pmid string) (*entities.LiteratureEntry, error) {
	args := m.Called(ctx, pmid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LiteratureEntry), args.Error(1)
}

type MockHealthIndicatorProvider struct {
	mock.Mock
}

func (m *MockHealthIndicatorProvider) TraditionalMedicine(ctx context.Context, condition string) ([]entities.RemedyEntry, error) {
	args := m.Called(ctx, condition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.RemedyEntry), args.Error(1)
}

func (m *MockHealthIndicatorProvider) HealthPractices(ctx context.Context, condition string) ([]entities.RemedyEntry, error) {
	args := m.Called(ctx, condition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.RemedyEntry), args.Error(1)
}

func (m *MockHealthIndicatorProvider) HealthIndicators(ctx context.Context, condition string) ([]entities.HealthIndicator, error) {
	args := m.Called(ctx, condition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.HealthIndicator), args.Error(1)
}

type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockVisionAnalyzer struct {
	mock.Mock
}

func (m *MockVisionAnalyzer) AnalyzeImage(ctx context.Context, img entities.ImagePayload, description string) (*entities.ImageAnalysisResult, error) {
	args := m.Called(ctx, img, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ImageAnalysisResult), args.Error(1)
}

type MockLanguageDetector struct {
	mock.Mock
}

func (m *MockLanguageDetector) Detect(text string) (string, error) {
	args := m.Called(text)
	return args.String(0), args.Error(1)
}

// pngImage encodes a solid w x h PNG
func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 110, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
