package handlers_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/pkg/imaging"
)

type stubAnalysisService struct {
	result   *entities.AnalysisResult
	err      error
	received string
}

func (s *stubAnalysisService) AnalyzeSymptoms(ctx context.Context, symptoms string) (*entities.AnalysisResult, error) {
	s.received = symptoms
	return s.result, s.err
}

func (s *stubAnalysisService) Providers() []string {
	return []string{"anthropic", "together"}
}

type stubDetector struct {
	code string
}

func (s stubDetector) Detect(text string) (string, error) {
	return s.code, nil
}

type stubChatService struct {
	response *entities.ChatResponse
	info     *entities.SessionInfo
	err      error
	cleared  bool
	calls    int
}

func (s *stubChatService) Chat(ctx context.Context, message, sessionID string) (*entities.ChatResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	resp := *s.response
	resp.SessionID = sessionID
	return &resp, nil
}

func (s *stubChatService) SessionInfo(ctx context.Context, sessionID string) (*entities.SessionInfo, error) {
	return s.info, s.err
}

func (s *stubChatService) ClearSession(ctx context.Context, sessionID string) (bool, error) {
	return s.cleared, s.err
}

func (s *stubChatService) AnalyzeDecodedImageInChat(ctx context.Context, data []byte, decoded *imaging.Decoded, description, sessionID string) *entities.ImageChatResponse {
	s.calls++
	return &entities.ImageChatResponse{Success: true, ChatResponse: "rendered", SessionID: sessionID, DetectedLanguage: "en"}
}

type stubVision struct {
	calls int
}

func (s *stubVision) AnalyzeImage(ctx context.Context, img entities.ImagePayload, description string) (*entities.ImageAnalysisResult, error) {
	s.calls++
	return &entities.ImageAnalysisResult{Success: true, UserQueryAddressed: description, Recommendations: []string{}}, nil
}

type stubRecommendationService struct {
	interactions []entities.DrugInteraction
	err          error
}

func (s *stubRecommendationService) GetRecommendations(ctx context.Context, condition string) *entities.MedicineRecommendationSet {
	return &entities.MedicineRecommendationSet{Condition: condition, APISources: []string{entities.SourceTraditionalTable}}
}

func (s *stubRecommendationService) DrugInteractions(ctx context.Context, drug string) ([]entities.DrugInteraction, error) {
	return s.interactions, s.err
}

type stubDiseaseService struct {
	err error
}

func (s *stubDiseaseService) Info(ctx context.Context, name string) (*entities.DiseaseInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entities.DiseaseInfo{DiseaseName: name, Description: "Detailed information about " + name, Symptoms: []string{}}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// uploadRequest builds a multipart request; a nil image omits the file part
func uploadRequest(t *testing.T, filename string, img []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if img != nil {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(img)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze_image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
