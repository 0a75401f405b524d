package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/internal/adapters/langdetect"
	"github.com/zatekoja/medassist/internal/adapters/sessionstore"
	"github.com/zatekoja/medassist/internal/api/handlers"
	"github.com/zatekoja/medassist/internal/api/middleware"
	"github.com/zatekoja/medassist/internal/api/routes"
	"github.com/zatekoja/medassist/internal/application/services"
	"github.com/zatekoja/medassist/internal/domain/providers"
	"github.com/zatekoja/medassist/internal/domain/repositories"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/anthropic"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/huggingface"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/openfda"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/pubmed"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/redis"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/rxnav"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/together"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/whogho"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
	"github.com/zatekoja/medassist/pkg/config"
	"github.com/zatekoja/medassist/pkg/secrets"
)

// Credentials that may be sourced from Vault
var vaultKeys = []string{
	"ANTHROPIC_API_KEY",
	"CLAUDE_API_KEY",
	"TOGETHER_API_KEY",
	"HUGGINGFACE_API_KEY",
	"FDA_API_KEY",
	"PUBMED_API_KEY",
	"REDIS_PASSWORD",
}

func main() {
	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pull API keys from Vault before config reads the environment
	vaultResult, err := secrets.ApplyCredentials(ctx, secrets.LoadVaultConfigFromEnv(), vaultKeys)
	if err != nil {
		log.Printf("Warning: Failed to load credentials from Vault: %v", err)
	} else if vaultResult.Enabled {
		log.Printf("Vault credentials loaded: %d applied, %d skipped", len(vaultResult.Loaded), len(vaultResult.Skipped))
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// AI providers, in fallback order. Only configured providers are added.
	var (
		analyzers []providers.SymptomAnalyzer
		chat      providers.ChatCompleter
		vision    providers.VisionAnalyzer
	)
	if claude, err := anthropic.NewClient(&cfg.Anthropic); err != nil {
		log.Printf("Warning: Anthropic client not configured: %v", err)
	} else {
		analyzers = append(analyzers, claude)
		chat = claude
		vision = claude
		log.Println("Anthropic client initialized successfully")
	}
	if tg, err := together.NewClient(&cfg.Together); err != nil {
		log.Printf("Warning: Together client not configured: %v", err)
	} else {
		analyzers = append(analyzers, tg)
		log.Println("Together client initialized successfully")
	}
	if hf, err := huggingface.NewClient(&cfg.HuggingFace); err != nil {
		log.Printf("Warning: HuggingFace client not configured: %v", err)
	} else {
		analyzers = append(analyzers, hf)
		log.Println("HuggingFace client initialized successfully")
	}
	if len(analyzers) == 0 {
		log.Println("Warning: no AI provider configured, symptom analysis will fail")
	}

	// Medical data sources
	fdaClient := openfda.NewClient(&cfg.OpenFDA)
	rxClient := rxnav.NewClient(&cfg.RxNav)
	pubmedClient := pubmed.NewClient(&cfg.PubMed)
	whoClient := whogho.NewClient(&cfg.WHOGHO)

	k := knowledge.MustLoad()
	detector := langdetect.NewDetector()

	// Chat session store
	var sessionRepo repositories.SessionRepository
	redisSessions := false
	if cfg.Session.Store == config.SessionStoreRedis {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis client: %v", err)
			log.Println("Falling back to in-memory chat sessions")
		} else {
			defer redisClient.Close()
			sessionRepo = sessionstore.NewRedisStore(redisClient, cfg.Session.KeyPrefix, cfg.Session.TTL, cfg.Session.MaxEntries)
			redisSessions = true
			log.Println("Redis session store initialized successfully")
		}
	}
	if sessionRepo == nil {
		sessionRepo = sessionstore.NewMemoryStore(cfg.Session.TTL, cfg.Session.MaxEntries)
	}

	// Initialize services
	searchTerms := services.NewSearchTermService(k.SearchTerms)
	aggregator := services.NewRecommendationAggregator(fdaClient, rxClient, pubmedClient, whoClient, searchTerms, k.Remedies)
	dispatcher := services.NewAnalysisDispatcher(analyzers, aggregator, cfg.Analysis)
	imageService := services.NewImageAnalysisService(vision, cfg.Image, k.Reference.SupportedImageFormats)
	chatService := services.NewChatSessionService(sessionRepo, chat, detector, imageService, k)
	diseaseService := services.NewDiseaseInfoService(whoClient, k.Reference)

	chatService.StartJanitor(ctx, cfg.Session.JanitorInterval)

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(dispatcher, detector)
	chatHandler := handlers.NewChatHandler(chatService)
	imageHandler := handlers.NewImageHandler(imageService, chatService)
	recommendationHandler := handlers.NewRecommendationHandler(aggregator)
	infoHandler := handlers.NewInfoHandler(
		diseaseService,
		dispatcher,
		k.Languages.Supported(),
		k.Reference.Disclaimer,
		map[string]bool{
			"chat":           chat != nil,
			"vision":         vision != nil,
			"redis_sessions": redisSessions,
		},
	)

	var rateLimiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// Set up router
	router := routes.NewRouter(
		analysisHandler,
		chatHandler,
		imageHandler,
		recommendationHandler,
		infoHandler,
		rateLimiter,
		cfg.CORS,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := cfg.Server.Addr()
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Stops the session janitor
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
