package config

import (
	"os"
	"strconv"
)

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

const (
	RetrievalPostgres = "postgres"
	RetrievalQdrant   = "qdrant"
)

type EmbeddingConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type LLMConfig struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float32
}

// RetrievalConfig carries the retrieval width and score floor. Both are
// deployment settings rather than per-request parameters so that identical
// questions produce identical context on an unchanged corpus.
type RetrievalConfig struct {
	Backend  string
	TopK     int
	MinScore float64
}

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	ChatStore   string

	QdrantHost       string
	QdrantPort       int
	QdrantCollection string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	AzureAPIKey   string
	AzureEndpoint string

	JWTSecret string

	Embeddings EmbeddingConfig
	LLM        LLMConfig
	Retrieval  RetrievalConfig
}

func Load() Config {
	return Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":5000"),
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/legalbot?sslmode=disable"),
		ChatStore:   getEnv("CHAT_STORE", StorePostgres),

		QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:       getEnvInt("QDRANT_PORT", 6334),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "legal_chunks"),

		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		AzureAPIKey:   getEnv("AZURE_API_KEY", ""),
		AzureEndpoint: getEnv("AZURE_OPENAI_ENDPOINT", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		Embeddings: EmbeddingConfig{
			Provider:  getEnv("EMBEDDINGS_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDINGS_MODEL", "text-embedding-ada-002"),
			Dimension: getEnvInt("EMBEDDINGS_DIMENSION", 1536),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", ProviderAzure),
			Model:       getEnv("LLM_MODEL", "gpt-4"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2000),
			Temperature: float32(getEnvFloat("LLM_TEMPERATURE", 0.5)),
		},
		Retrieval: RetrievalConfig{
			Backend:  getEnv("RETRIEVAL_BACKEND", RetrievalPostgres),
			TopK:     getEnvInt("RETRIEVAL_TOP_K", 10),
			MinScore: getEnvFloat("RETRIEVAL_MIN_SCORE", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
