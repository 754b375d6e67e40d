package api

import (
	"github.com/gin-gonic/gin"

	"scholarguard/internal/citations"
	"scholarguard/internal/config"
	"scholarguard/internal/detect"
	"scholarguard/internal/infra/redis"
	"scholarguard/internal/journals"
	"scholarguard/internal/repository"
	"scholarguard/internal/topics"
)

func SetupRoutes(
	cfg *config.Config,
	pipeline *detect.Pipeline,
	suggester *citations.Suggester,
	recommender *journals.Recommender,
	catalog *journals.Catalog,
	topicsSvc *topics.Service,
	checksRepo *repository.CheckRepository,
	redisClient *redis.Client,
) *gin.Engine {
	router := gin.New()

	// Create handler
	handler := NewHandler(cfg, pipeline, suggester, recommender, catalog, topicsSvc, checksRepo, redisClient)

	// Create rate limiter
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(RecoveryMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		plagiarismGroup := api.Group("/plagiarism")
		{
			plagiarismGroup.POST("/check", handler.CheckPlagiarism)
			plagiarismGroup.GET("/report/:id", handler.GetReport)
			plagiarismGroup.GET("/history", handler.GetHistory)
			plagiarismGroup.DELETE("/:id", handler.DeleteCheck)
		}

		api.POST("/citations/suggest", handler.SuggestCitations)

		journalGroup := api.Group("/journals")
		{
			journalGroup.POST("/recommend", handler.RecommendJournals)
			journalGroup.GET("/search", handler.SearchJournals)
			journalGroup.GET("/filters/options", handler.JournalFilterOptions)
			journalGroup.GET("/:id", handler.GetJournal)
		}

		topicGroup := api.Group("/topics")
		{
			topicGroup.GET("/trending", handler.TrendingTopics)
			topicGroup.POST("/personalized", handler.PersonalizedTopics)
			topicGroup.GET("/evolution", handler.TopicEvolution)
		}
	}

	return router
}
