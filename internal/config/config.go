package config

import (
	"fmt"
	"time"

	"scholarguard/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration

	// Embedding providers
	CohereAPIKey     string
	CohereModel      string
	OpenAIAPIKey     string
	OpenAIEmbedModel string

	// Academic search providers
	SemanticScholarAPIKey string
	OpenAlexEmail         string
	ProviderTimeout       time.Duration

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentChecks int
	EmbedConcurrency    int

	// Detection
	MinChunkSize       int
	NGramSize          int
	NGramThreshold     float64
	SemanticThreshold  float64
	SemanticChunkLimit int
	SearchLimit        int
	CheckTimeout       time.Duration
	FingerprintTTL     time.Duration

	// Logging
	LogLevel string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "documents:ingest")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "documents:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "documents:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_HOURS", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// Embedding providers
	cfg.CohereAPIKey = env.GetEnv("COHERE_API_KEY", "")
	cfg.CohereModel = env.GetEnv("COHERE_MODEL", "embed-english-v3.0")
	cfg.OpenAIAPIKey = env.GetEnv("OPENAI_API_KEY", "")
	cfg.OpenAIEmbedModel = env.GetEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small")

	// Academic search providers
	cfg.SemanticScholarAPIKey = env.GetEnv("SEMANTIC_SCHOLAR_API_KEY", "")
	cfg.OpenAlexEmail = env.GetEnv("OPENALEX_EMAIL", "")
	cfg.ProviderTimeout = env.GetEnvDuration("PROVIDER_TIMEOUT", 20*time.Second)

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "scholarguard")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentChecks = env.GetEnvInt("MAX_CONCURRENT_CHECKS", 5)
	cfg.EmbedConcurrency = env.GetEnvInt("EMBED_CONCURRENCY", 4)

	// Detection
	cfg.MinChunkSize = env.GetEnvInt("MIN_CHUNK_SIZE", 100)
	cfg.NGramSize = env.GetEnvInt("NGRAM_SIZE", 5)
	cfg.NGramThreshold = env.GetEnvFloat("NGRAM_THRESHOLD", 0.6)
	cfg.SemanticThreshold = env.GetEnvFloat("SEMANTIC_THRESHOLD", 0.75)
	cfg.SemanticChunkLimit = env.GetEnvInt("SEMANTIC_CHUNK_LIMIT", 5)
	cfg.SearchLimit = env.GetEnvInt("SEARCH_LIMIT", 10)
	cfg.CheckTimeout = env.GetEnvDuration("CHECK_TIMEOUT", 5*time.Minute)
	fingerprintDays := env.GetEnvInt("FINGERPRINT_TTL_DAYS", 30)
	cfg.FingerprintTTL = time.Duration(fingerprintDays) * 24 * time.Hour

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentChecks <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_CHECKS must be greater than 0")
	}
	if c.EmbedConcurrency <= 0 {
		return fmt.Errorf("EMBED_CONCURRENCY must be greater than 0")
	}
	if c.MinChunkSize <= 0 {
		return fmt.Errorf("MIN_CHUNK_SIZE must be greater than 0")
	}
	if c.NGramSize <= 0 {
		return fmt.Errorf("NGRAM_SIZE must be greater than 0")
	}
	if c.NGramThreshold <= 0 || c.NGramThreshold > 1 {
		return fmt.Errorf("NGRAM_THRESHOLD must be in (0, 1]")
	}
	if c.SemanticThreshold <= 0 || c.SemanticThreshold > 1 {
		return fmt.Errorf("SEMANTIC_THRESHOLD must be in (0, 1]")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_HOURS must be greater than 0")
	}
	return nil
}
