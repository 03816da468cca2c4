package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Guideline GuidelineConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UsageTopic         string
	SystemPrompt       string // overrides the built-in assistant persona
}

type DatabaseConfig struct {
	Connection string
	Verbose    bool
}

type APIKeys struct {
	OpenAI       string
	GoogleGemini string
	Jina         string
	HuggingFace  string
}

type AIConfig struct {
	EmbeddingProvider string // "openai", "ollama", "gemini", "jina" or "none"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "openai", "huggingface" or "ollama"
	LLMModel          string // e.g. "gpt-4.1-nano", "llama3"
	LLMBaseURL        string // OpenAI compatible endpoint, empty uses the provider default
	Temperature       float64
	MaxTokens         int
}

// GuidelineConfig holds the tunables of the matching engine.
type GuidelineConfig struct {
	MaxGuidelinesPerResponse  int
	FatigueFactor             float64
	RecentMessagesContext     int
	MatchThreshold            float64
	CacheTTL                  time.Duration
	HybridWeight              float64
	VectorSimilarityThreshold float64
	VectorSearchLimit         int
	ExternalCallTimeout       time.Duration
	EmbeddingCacheTTL         time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			UsageTopic:         getEnv("GUIDELINE_USAGE_TOPIC", "GUIDELINE_USAGE"),
			SystemPrompt:       getEnv("SYSTEM_PROMPT", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Verbose:    getEnvAsBool("DB_VERBOSE", false),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4.1-nano-2025-04-14"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 500),
		},
		Guideline: GuidelineConfig{
			MaxGuidelinesPerResponse:  getEnvAsInt("MAX_GUIDELINES_PER_RESPONSE", 3),
			FatigueFactor:             getEnvAsFloat("FATIGUE_FACTOR", 0.95),
			RecentMessagesContext:     getEnvAsInt("RECENT_MESSAGES_CONTEXT", 3),
			MatchThreshold:            getEnvAsFloat("MATCH_THRESHOLD", 30),
			CacheTTL:                  getEnvAsDuration("GUIDELINE_CACHE_TTL", 5*time.Minute),
			HybridWeight:              getEnvAsFloat("HYBRID_WEIGHT", 0.8),
			VectorSimilarityThreshold: getEnvAsFloat("VECTOR_SIMILARITY_THRESHOLD", 0.3),
			VectorSearchLimit:         getEnvAsInt("VECTOR_SEARCH_LIMIT", 30),
			ExternalCallTimeout:       getEnvAsDuration("EXTERNAL_CALL_TIMEOUT", 10*time.Second),
			EmbeddingCacheTTL:         getEnvAsDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "guideline-agent-backend"),
		},
	}
}

// VectorSearchConfigured reports whether a usable embedding provider is set up.
// The OpenAI provider also needs an "sk-" key.
func (c *Config) VectorSearchConfigured() bool {
	switch c.Ai.EmbeddingProvider {
	case "openai":
		return len(c.Keys.OpenAI) > 3 && c.Keys.OpenAI[:3] == "sk-"
	case "gemini":
		return c.Keys.GoogleGemini != ""
	case "jina":
		return c.Keys.Jina != ""
	case "ollama":
		return c.Ai.OllamaBaseURL != ""
	default:
		return false
	}
}

// EmbeddingAPIKey returns the key of the configured embedding provider.
func (c *Config) EmbeddingAPIKey() string {
	switch c.Ai.EmbeddingProvider {
	case "openai":
		return c.Keys.OpenAI
	case "gemini":
		return c.Keys.GoogleGemini
	case "jina":
		return c.Keys.Jina
	default:
		return ""
	}
}

// LLMAPIKey returns the key of the configured completion provider.
func (c *Config) LLMAPIKey() string {
	if c.Ai.LLMProvider == "huggingface" {
		return c.Keys.HuggingFace
	}
	return c.Keys.OpenAI
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
