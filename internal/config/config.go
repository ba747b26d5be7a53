package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI       string
	DBName         string
	CollectionName string
	Port           string
	GinMode        string
	CORSOrigins    []string
	MaxFileSize    int64

	// Embeddings configuration
	EmbeddingsProvider    string // "openai" (default), "google"
	OpenAIAPIKey          string
	OpenAIEmbeddingsModel string
	GeminiAPIKey          string
	GoogleEmbeddingsModel string
	VectorDimensions      int

	// Chat model configuration
	OpenAIChatModel string

	// Chunking
	MaxChunkSize int
	ChunkOverlap int

	// Vector search
	VectorIndexName     string
	RetrievalK          int
	CandidateMultiplier int // numCandidates = limit * multiplier when filtering
	FetchMultiplier     int // pre-filter fetch size = limit * multiplier when filtering

	// Tracing
	TracingEnabled   bool
	OTLPEndpoint     string
	TraceSampleRatio float64

	// Opt-in degraded reconnect with certificate verification disabled.
	// Operational convenience for local Atlas testing, never enabled by default.
	MongoTLSInsecureFallback bool
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:       getEnv("MONGO_URI", ""),
		DBName:         getEnv("DB_NAME", "pdfchat"),
		CollectionName: getEnv("COLLECTION_NAME", "pdf_embeddings"),
		Port:           getEnv("PORT", "8000"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		CORSOrigins:    strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ","),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 52428800), // 50MB

		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "openai"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIEmbeddingsModel: getEnv("OPENAI_EMBEDDINGS_MODEL", "text-embedding-3-small"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		VectorDimensions:      getEnvInt("VECTOR_DIM", 1536),

		OpenAIChatModel: getEnv("OPENAI_CHAT_MODEL", "gpt-4-turbo-preview"),

		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		VectorIndexName:     getEnv("MONGODB_VECTOR_INDEX", "vector_index"),
		RetrievalK:          getEnvInt("RETRIEVAL_K", 5),
		CandidateMultiplier: getEnvInt("VECTOR_CANDIDATE_MULTIPLIER", 20),
		FetchMultiplier:     getEnvInt("VECTOR_FETCH_MULTIPLIER", 3),

		TracingEnabled:   getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:     getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TraceSampleRatio: getEnvFloat("TRACE_SAMPLE_RATIO", 0.1),

		MongoTLSInsecureFallback: getEnvBool("MONGO_TLS_INSECURE_FALLBACK", false),
	}

	// Validate required fields
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required - set it in .env file")
	}

	// The chat model is always OpenAI, so the key is required regardless
	// of the embeddings provider.
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required - set it in .env file")
	}

	switch cfg.EmbeddingsProvider {
	case "openai":
	case "google":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
		}
	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}

	if cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than MAX_CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.MaxChunkSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
