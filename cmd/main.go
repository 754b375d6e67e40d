package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"scholarguard/internal/api"
	"scholarguard/internal/citations"
	"scholarguard/internal/config"
	"scholarguard/internal/configs/env"
	"scholarguard/internal/detect"
	"scholarguard/internal/infra/mongo"
	redisInfra "scholarguard/internal/infra/redis"
	"scholarguard/internal/journals"
	"scholarguard/internal/logger"
	"scholarguard/internal/metrics"
	"scholarguard/internal/providers/embeddings"
	"scholarguard/internal/providers/scholar"
	"scholarguard/internal/repository"
	"scholarguard/internal/stream"
	"scholarguard/internal/topics"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel)
	log.Info().Msg("Starting ScholarGuard server")

	// Initialize Prometheus metrics
	metrics.InitPrometheus()
	metricsServer := api.StartMetricsServer(cfg.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(ctx)

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	// Initialize repositories
	mongoRepo := repository.NewMongoRepository(mongoClient)
	checksRepo := repository.NewCheckRepository(mongoRepo)

	// Embedding provider (Cohere preferred, OpenAI fallback). Without
	// one the semantic layer and journal matching degrade gracefully.
	embedder := embeddings.NewProvider(cfg.CohereAPIKey, cfg.CohereModel, cfg.OpenAIAPIKey, cfg.OpenAIEmbedModel)
	if embedder == nil {
		log.Warn().Msg("No embedding provider configured, semantic detection disabled")
	} else {
		log.Info().Str("provider", embedder.Name()).Msg("Embedding provider initialized")
	}

	// Academic search providers
	semanticScholar := scholar.NewSemanticScholar(cfg.SemanticScholarAPIKey, cfg.ProviderTimeout)
	openAlex := scholar.NewOpenAlex(cfg.OpenAlexEmail, cfg.ProviderTimeout)
	arxiv := scholar.NewArxiv(cfg.ProviderTimeout)
	searcher := scholar.NewMulti(semanticScholar, openAlex, arxiv)

	// Detection pipeline
	fingerprintStore := detect.NewRedisFingerprintStore(redisClient, cfg.FingerprintTTL)
	fingerprintIndex := detect.NewFingerprintIndex(fingerprintStore)
	ngram := detect.NewNGramOverlapDetector(cfg.NGramSize, cfg.NGramThreshold)
	semantic := detect.NewSemanticMatcher(embedder, searcher, detect.SemanticConfig{
		Threshold:   cfg.SemanticThreshold,
		ChunkLimit:  cfg.SemanticChunkLimit,
		SearchLimit: cfg.SearchLimit,
		Concurrency: cfg.EmbedConcurrency,
	})
	pipeline := detect.NewPipeline(fingerprintIndex, ngram, semantic, cfg.MinChunkSize)

	// Journal and topic services
	catalog := journals.NewCatalog()
	recommender := journals.NewRecommender(catalog, embedder)
	topicsSvc := topics.NewService(searcher, semanticScholar)
	suggester := citations.NewSuggester(searcher)

	// Initialize worker pool
	workerPool := detect.NewWorkerPool(ctx, 0)
	defer workerPool.Close()

	// Document ingest from the Redis stream
	ingestor := detect.NewIngestor(fingerprintIndex, cfg.MinChunkSize)
	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		ingestor,
		workerPool,
		retryHandler,
		cfg.StreamRetentionDuration,
	)
	log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

	router := api.SetupRoutes(cfg, pipeline, suggester, recommender, catalog, topicsSvc, checksRepo, redisClient)

	// Start Redis consumer in background
	consumerCtx, consumerCancel := context.WithCancel(ctx)
	go func() {
		defer consumerCancel()
		if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Msg("Redis consumer started")

	// Start Gin server - Gin handles all HTTP routing, middleware (auth, rate limiter), and request processing
	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	// Shutdown Gin server gracefully
	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down Gin server")
	}

	// Shutdown metrics server gracefully
	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
