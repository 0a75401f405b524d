package routes

import (
	"net/http"

	"github.com/zatekoja/medassist/internal/api/handlers"
	"github.com/zatekoja/medassist/internal/api/middleware"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
	"github.com/zatekoja/medassist/pkg/config"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	analysisHandler       *handlers.AnalysisHandler
	chatHandler           *handlers.ChatHandler
	imageHandler          *handlers.ImageHandler
	recommendationHandler *handlers.RecommendationHandler
	infoHandler           *handlers.InfoHandler

	rateLimiter *middleware.IPRateLimiter
	cors        config.CORSConfig
	metrics     *observability.Metrics
}

// NewRouter creates a new router. rateLimiter may be nil to disable
// inbound limiting.
func NewRouter(
	analysisHandler *handlers.AnalysisHandler,
	chatHandler *handlers.ChatHandler,
	imageHandler *handlers.ImageHandler,
	recommendationHandler *handlers.RecommendationHandler,
	infoHandler *handlers.InfoHandler,
	rateLimiter *middleware.IPRateLimiter,
	cors config.CORSConfig,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		analysisHandler:       analysisHandler,
		chatHandler:           chatHandler,
		imageHandler:          imageHandler,
		recommendationHandler: recommendationHandler,
		infoHandler:           infoHandler,
		rateLimiter:           rateLimiter,
		cors:                  cors,
		metrics:               metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health and reference endpoints
	r.mux.HandleFunc("GET /health", r.infoHandler.Health)
	r.mux.HandleFunc("GET /supported-languages", r.infoHandler.SupportedLanguages)
	r.mux.HandleFunc("GET /disease-info/{name}", r.infoHandler.DiseaseInfo)
	r.mux.HandleFunc("GET /disclaimer", r.infoHandler.Disclaimer)
	r.mux.Handle("GET /metrics", observability.PrometheusHandler())

	// Symptom analysis
	r.mux.HandleFunc("POST /analyze", r.analysisHandler.Analyze)

	// Recommendations
	r.mux.HandleFunc("GET /recommendations/{condition}", r.recommendationHandler.GetRecommendations)
	r.mux.HandleFunc("GET /drug-interactions/{drug}", r.recommendationHandler.GetDrugInteractions)

	// Doctor chat
	r.mux.HandleFunc("POST /chat_with_doctor", r.chatHandler.ChatWithDoctor)
	r.mux.HandleFunc("GET /chat_session_info/{session_id}", r.chatHandler.GetSessionInfo)
	r.mux.HandleFunc("DELETE /chat_session/{session_id}", r.chatHandler.ClearSession)

	// Images
	r.mux.HandleFunc("POST /analyze_image", r.imageHandler.AnalyzeImage)
	r.mux.HandleFunc("GET /image_supported_formats", r.imageHandler.SupportedFormats)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = middleware.CaptureRoute(r.mux)
	handler = middleware.Compression(handler)
	handler = middleware.PrometheusMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	if r.rateLimiter != nil {
		handler = r.rateLimiter.Middleware(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)
	// CORS wraps everything so headers are set even on errors
	handler = middleware.CORSMiddleware(r.cors.AllowedOrigins)(handler)

	return handler
}
