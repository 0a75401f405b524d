package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// DefaultImageMaxPixels is 40 megapixels, about 160MB as decoded RGBA
const DefaultImageMaxPixels = 40_000_000

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Redis       RedisConfig
	Session     SessionConfig
	Anthropic   AnthropicConfig
	Together    TogetherConfig
	HuggingFace HuggingFaceConfig
	OpenFDA     OpenFDAConfig
	RxNav       RxNavConfig
	PubMed      PubMedConfig
	WHOGHO      WHOGHOConfig
	Analysis    AnalysisConfig
	Image       ImageConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls chat session retention
type SessionConfig struct {
	Store           string
	TTL             time.Duration
	MaxEntries      int
	JanitorInterval time.Duration
	KeyPrefix       string
}

// AnthropicConfig holds the Claude Messages API settings. It serves symptom
// analysis, chat completion and image analysis.
type AnthropicConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	Version        string
	RateLimitRPS   float64
	RateLimitBurst int
}

// TogetherConfig holds Together AI settings
type TogetherConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// HuggingFaceConfig holds HuggingFace inference API settings
type HuggingFaceConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenFDAConfig holds openFDA drug label API settings
type OpenFDAConfig struct {
	APIKey  string
	BaseURL string
}

// RxNavConfig holds NLM RxNav settings
type RxNavConfig struct {
	BaseURL string
}

// PubMedConfig holds NCBI E-utilities settings
type PubMedConfig struct {
	APIKey  string
	BaseURL string
}

// WHOGHOConfig holds WHO Global Health Observatory settings
type WHOGHOConfig struct {
	BaseURL string
}

// AnalysisConfig bounds symptom analysis input and output
type AnalysisConfig struct {
	MaxSymptomsLength int
	MaxDiagnoses      int
}

// ImageConfig bounds accepted uploads
type ImageConfig struct {
	MaxBytes           int64
	MinDimension       int
	MaxUploadDimension int
	// MaxPixels caps width*height, checked from the header before decoding
	MaxPixels          int
}

// RateLimitConfig holds inbound per-client rate limiting settings
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// CredentialEnvKeys lists the variables that may be sourced from Vault
var CredentialEnvKeys = []string{
	"ANTHROPIC_API_KEY",
	"CLAUDE_API_KEY",
	"TOGETHER_API_KEY",
	"HUGGINGFACE_API_KEY",
	"FDA_API_KEY",
	"PUBMED_API_KEY",
	"REDIS_PASSWORD",
}

// Load reads .env (when present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 5000),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Store:           strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
			TTL:             getEnvAsDuration("SESSION_TTL", 2*time.Hour),
			MaxEntries:      getEnvAsInt("SESSION_MAX_ENTRIES", 10000),
			JanitorInterval: getEnvAsDuration("SESSION_JANITOR_INTERVAL", 5*time.Minute),
			KeyPrefix:       getEnv("SESSION_KEY_PREFIX", "medassist:session"),
		},
		Anthropic: AnthropicConfig{
			APIKey:         getEnv("ANTHROPIC_API_KEY", os.Getenv("CLAUDE_API_KEY")),
			Model:          getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			BaseURL:        getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
			Version:        getEnv("ANTHROPIC_VERSION", "2023-06-01"),
			RateLimitRPS:   getEnvAsFloat("ANTHROPIC_RATE_LIMIT_RPS", 1),
			RateLimitBurst: getEnvAsInt("ANTHROPIC_RATE_LIMIT_BURST", 5),
		},
		Together: TogetherConfig{
			APIKey:  getEnv("TOGETHER_API_KEY", ""),
			Model:   getEnv("TOGETHER_MODEL", "meta-llama/Llama-3.3-70B-Instruct-Turbo"),
			BaseURL: getEnv("TOGETHER_BASE_URL", "https://api.together.xyz/v1"),
		},
		HuggingFace: HuggingFaceConfig{
			APIKey:  getEnv("HUGGINGFACE_API_KEY", ""),
			Model:   getEnv("HUGGINGFACE_MODEL", "microsoft/DialoGPT-medium"),
			BaseURL: getEnv("HUGGINGFACE_BASE_URL", "https://api-inference.huggingface.co/models"),
		},
		OpenFDA: OpenFDAConfig{
			APIKey:  getEnv("FDA_API_KEY", ""),
			BaseURL: getEnv("OPENFDA_BASE_URL", "https://api.fda.gov/drug"),
		},
		RxNav: RxNavConfig{
			BaseURL: getEnv("RXNAV_BASE_URL", "https://rxnav.nlm.nih.gov/REST"),
		},
		PubMed: PubMedConfig{
			APIKey:  getEnv("PUBMED_API_KEY", ""),
			BaseURL: getEnv("PUBMED_BASE_URL", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"),
		},
		WHOGHO: WHOGHOConfig{
			BaseURL: getEnv("WHO_GHO_BASE_URL", "https://ghoapi.azureedge.net/api"),
		},
		Analysis: AnalysisConfig{
			MaxSymptomsLength: getEnvAsInt("MAX_SYMPTOMS_LENGTH", 1000),
			MaxDiagnoses:      getEnvAsInt("MAX_DIAGNOSES_RETURNED", 5),
		},
		Image: ImageConfig{
			MaxBytes:           int64(getEnvAsInt("IMAGE_MAX_BYTES", 10*1024*1024)),
			MinDimension:       getEnvAsInt("IMAGE_MIN_DIMENSION", 100),
			MaxUploadDimension: getEnvAsInt("IMAGE_MAX_UPLOAD_DIMENSION", 1568),
			MaxPixels:          getEnvAsInt("IMAGE_MAX_PIXELS", DefaultImageMaxPixels),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "medassist-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q (expected memory or redis)", c.Session.Store)
	}
	if c.Image.MaxBytes <= 0 || c.Image.MinDimension <= 0 || c.Image.MaxUploadDimension <= 0 || c.Image.MaxPixels <= 0 {
		return errors.New("image limits must be positive")
	}
	if c.Analysis.MaxSymptomsLength <= 0 || c.Analysis.MaxDiagnoses <= 0 {
		return errors.New("analysis limits must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxMegabytes returns the upload limit in whole megabytes
func (c *ImageConfig) MaxMegabytes() int {
	return int(c.MaxBytes / (1024 * 1024))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
