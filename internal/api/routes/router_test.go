package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/internal/adapters/langdetect"
	"github.com/zatekoja/medassist/internal/adapters/sessionstore"
	"github.com/zatekoja/medassist/internal/api/handlers"
	"github.com/zatekoja/medassist/internal/api/middleware"
	"github.com/zatekoja/medassist/internal/api/routes"
	"github.com/zatekoja/medassist/internal/application/services"
	"github.com/zatekoja/medassist/pkg/config"
)

func newTestRouter(t *testing.T, limiter *middleware.IPRateLimiter) http.Handler {
	t.Helper()

	k := knowledge.MustLoad()
	terms := services.NewSearchTermService(k.SearchTerms)
	aggregator := services.NewRecommendationAggregator(nil, nil, nil, nil, terms, k.Remedies)
	dispatcher := services.NewAnalysisDispatcher(nil, aggregator, config.AnalysisConfig{MaxSymptomsLength: 5000, MaxDiagnoses: 5})
	images := services.NewImageAnalysisService(nil, config.ImageConfig{
		MaxBytes:           10 * 1024 * 1024,
		MinDimension:       100,
		MaxUploadDimension: 1024,
	}, k.Reference.SupportedImageFormats)
	detector := langdetect.NewDetector()
	chat := services.NewChatSessionService(sessionstore.NewMemoryStore(time.Hour, 100), nil, detector, images, k)
	diseases := services.NewDiseaseInfoService(nil, k.Reference)

	router := routes.NewRouter(
		handlers.NewAnalysisHandler(dispatcher, detector),
		handlers.NewChatHandler(chat),
		handlers.NewImageHandler(images, chat),
		handlers.NewRecommendationHandler(aggregator),
		handlers.NewInfoHandler(diseases, dispatcher, k.Languages.Supported(), k.Reference.Disclaimer, map[string]bool{"chat": false}),
		limiter,
		config.CORSConfig{},
		nil,
	)
	return router.SetupRoutes()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, nil)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body struct {
		Status    string                 `json:"status"`
		Providers map[string]interface{} `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, []interface{}{}, body.Providers["analysis"])
	assert.Equal(t, false, body.Providers["chat"])
}

func TestRouter_ReferenceEndpoints(t *testing.T) {
	h := newTestRouter(t, nil)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/supported-languages", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var langs struct {
		Languages []map[string]string `json:"languages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &langs))
	assert.NotEmpty(t, langs.Languages)

	w = serve(h, httptest.NewRequest(http.MethodGet, "/disease-info/diabetes", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, true, info["success"])
	assert.Equal(t, "diabetes", info["disease_name"])

	w = serve(h, httptest.NewRequest(http.MethodGet, "/disclaimer", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "disclaimer")
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(t, nil)
	serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := serve(h, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Contains(t, w.Body.String(), "medassist_http_requests_total")
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newTestRouter(t, nil)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Preflight(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(h, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestRouter_ChatValidation(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat_with_doctor", strings.NewReader(`{"message":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(h, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(h, httptest.NewRequest(http.MethodGet, "/chat_session_info/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Compression(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/supported-languages", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := serve(h, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestRouter_RateLimit(t *testing.T) {
	h := newTestRouter(t, middleware.NewIPRateLimiter(0.001, 1))

	first := httptest.NewRequest(http.MethodGet, "/health", nil)
	first.RemoteAddr = "10.1.1.1:5000"
	assert.Equal(t, http.StatusOK, serve(h, first).Code)

	second := httptest.NewRequest(http.MethodGet, "/health", nil)
	second.RemoteAddr = "10.1.1.1:5000"
	assert.Equal(t, http.StatusTooManyRequests, serve(h, second).Code)
}
