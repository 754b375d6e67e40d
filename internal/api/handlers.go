package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"scholarguard/internal/citations"
	"scholarguard/internal/config"
	"scholarguard/internal/detect"
	"scholarguard/internal/infra/redis"
	"scholarguard/internal/journals"
	"scholarguard/internal/metrics"
	"scholarguard/internal/models"
	"scholarguard/internal/repository"
	"scholarguard/internal/topics"
)

const (
	minCheckTextLen    = 100
	minCitationTextLen = 50
	defaultHistorySize = 10
	checkPreviewLen    = 200
)

// Handler holds dependencies for handlers
type Handler struct {
	cfg          *config.Config
	pipeline     *detect.Pipeline
	suggester    *citations.Suggester
	recommender  *journals.Recommender
	catalog      *journals.Catalog
	topics       *topics.Service
	checksRepo   *repository.CheckRepository
	redisClient  *redis.Client
	checkSem     chan struct{} // Semaphore for bounded concurrency
	checkTimeout time.Duration
}

// NewHandler creates a new handler
func NewHandler(
	cfg *config.Config,
	pipeline *detect.Pipeline,
	suggester *citations.Suggester,
	recommender *journals.Recommender,
	catalog *journals.Catalog,
	topicsSvc *topics.Service,
	checksRepo *repository.CheckRepository,
	redisClient *redis.Client,
) *Handler {
	// Create semaphore for bounded concurrency
	sem := make(chan struct{}, cfg.MaxConcurrentChecks)

	return &Handler{
		cfg:          cfg,
		pipeline:     pipeline,
		suggester:    suggester,
		recommender:  recommender,
		catalog:      catalog,
		topics:       topicsSvc,
		checksRepo:   checksRepo,
		redisClient:  redisClient,
		checkSem:     sem,
		checkTimeout: cfg.CheckTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// CheckPlagiarism accepts a check, queues it, and returns 202. The
// semaphore bounds how many checks run at once; at capacity the caller
// gets 429 instead of waiting.
func (h *Handler) CheckPlagiarism(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if len(req.Text) < minCheckTextLen {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Text must be at least 100 characters",
			Code:  "TEXT_TOO_SHORT",
		})
		return
	}

	language := req.Language
	if language == "" {
		language = "en"
	}
	if !detect.SupportedLanguage(language) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Unsupported language: " + language,
			Code:  "UNSUPPORTED_LANGUAGE",
		})
		return
	}

	checkOnline := true
	if req.CheckOnline != nil {
		checkOnline = *req.CheckOnline
	}

	// Acquire semaphore without blocking; the client should back off
	// rather than hold a connection open.
	select {
	case h.checkSem <- struct{}{}:
	default:
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "Too many concurrent checks, try again later",
			Code:  "CAPACITY_EXCEEDED",
		})
		return
	}

	checkID := uuid.New().String()
	userID := c.GetString("user_id")

	if err := detect.UpdateStatus(c.Request.Context(), h.redisClient, checkID, models.CheckQueued, "queued"); err != nil {
		log.Warn().Err(err).Str("check_id", checkID).Msg("Failed to update queued status")
	}

	// Return 202 Accepted immediately
	c.JSON(http.StatusAccepted, models.CheckResponse{
		CheckID: checkID,
		Status:  models.CheckQueued,
	})

	// Process asynchronously
	go h.runCheck(checkID, userID, req.Text, language, checkOnline)
}

// runCheck executes one queued check end to end
func (h *Handler) runCheck(checkID, userID, text, language string, checkOnline bool) {
	defer func() { <-h.checkSem }() // Release semaphore

	ctx, cancel := context.WithTimeout(context.Background(), h.checkTimeout)
	defer cancel()

	started := time.Now()
	if err := detect.UpdateStatus(ctx, h.redisClient, checkID, models.CheckProcessing, "detection"); err != nil {
		log.Warn().Err(err).Str("check_id", checkID).Msg("Failed to update processing status")
	}

	result, err := h.pipeline.Check(ctx, text, language, checkOnline)
	if err != nil {
		log.Error().Err(err).Str("check_id", checkID).Msg("Plagiarism check failed")
		metrics.IncCheck("failed")
		h.markFailed(ctx, checkID, "detection")
		return
	}

	completed := time.Now()
	record := &models.CheckRecord{
		ID:               checkID,
		UserID:           userID,
		TextPreview:      preview(text, checkPreviewLen),
		TextLength:       len(text),
		WordCount:        len(strings.Fields(text)),
		Language:         language,
		OriginalityScore: result.OriginalityScore,
		TotalMatches:     result.TotalMatches,
		UniqueSources:    result.Statistics.UniqueSources,
		Matches:          result.Matches,
		Statistics:       result.Statistics,
		Status:           models.CheckCompleted,
		CreatedAt:        started,
		CompletedAt:      &completed,
	}

	if err := h.checksRepo.Insert(ctx, record); err != nil {
		log.Error().Err(err).Str("check_id", checkID).Msg("Failed to persist check record")
		metrics.IncCheck("failed")
		h.markFailed(ctx, checkID, "persistence")
		return
	}

	metrics.IncCheck("completed")
	if err := detect.UpdateStatus(ctx, h.redisClient, checkID, models.CheckCompleted, "completed"); err != nil {
		log.Warn().Err(err).Str("check_id", checkID).Msg("Failed to update completed status")
	}

	log.Debug().
		Str("check_id", checkID).
		Float64("originality", result.OriginalityScore).
		Dur("took", time.Since(started)).
		Msg("Check processed successfully")
}

func (h *Handler) markFailed(ctx context.Context, checkID, stage string) {
	if err := detect.UpdateStatus(ctx, h.redisClient, checkID, models.CheckFailed, stage); err != nil {
		log.Warn().Err(err).Str("check_id", checkID).Msg("Failed to update failed status")
	}
}

// GetReport returns the completed record from Mongo, the in-flight
// status from Redis, or 404.
func (h *Handler) GetReport(c *gin.Context) {
	checkID := c.Param("id")
	ctx := c.Request.Context()

	record, err := h.checksRepo.FindByID(ctx, checkID)
	if err != nil {
		log.Error().Err(err).Str("check_id", checkID).Msg("Failed to load check record")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load check record",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if record != nil {
		// Another user's record is indistinguishable from a missing one
		if record.UserID != c.GetString("user_id") {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "Plagiarism check not found",
				Code:  "CHECK_NOT_FOUND",
			})
			return
		}
		c.JSON(http.StatusOK, record)
		return
	}

	status, err := detect.GetStatus(ctx, h.redisClient, checkID)
	if err != nil {
		log.Error().Err(err).Str("check_id", checkID).Msg("Failed to load check status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load check status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if status != nil {
		c.JSON(http.StatusOK, status)
		return
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error: "Plagiarism check not found",
		Code:  "CHECK_NOT_FOUND",
	})
}

// GetHistory lists the caller's checks, newest first
func (h *Handler) GetHistory(c *gin.Context) {
	limit := queryInt(c, "limit", defaultHistorySize)

	records, err := h.checksRepo.FindByUser(c.Request.Context(), c.GetString("user_id"), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load check history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load check history",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if records == nil {
		records = []models.CheckRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// DeleteCheck removes one of the caller's checks
func (h *Handler) DeleteCheck(c *gin.Context) {
	checkID := c.Param("id")

	deleted, err := h.checksRepo.Delete(c.Request.Context(), checkID, c.GetString("user_id"))
	if err != nil {
		log.Error().Err(err).Str("check_id", checkID).Msg("Failed to delete check record")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to delete check record",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Plagiarism check not found",
			Code:  "CHECK_NOT_FOUND",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// SuggestCitations finds supporting papers for claims in the text
func (h *Handler) SuggestCitations(c *gin.Context) {
	var req models.CitationSuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if len(req.Text) < minCitationTextLen {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Text must be at least 50 characters",
			Code:  "TEXT_TOO_SHORT",
		})
		return
	}

	suggestions, err := h.suggester.Suggest(c.Request.Context(), req.Text)
	if err != nil {
		log.Error().Err(err).Msg("Failed to suggest citations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to suggest citations",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions":       suggestions,
		"total_suggestions": len(suggestions),
	})
}

// RecommendJournals ranks catalog journals against a paper abstract
func (h *Handler) RecommendJournals(c *gin.Context) {
	var req models.RecommendJournalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	recommendations, err := h.recommender.Recommend(c.Request.Context(), req)
	if err == journals.ErrAbstractTooShort {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "ABSTRACT_TOO_SHORT",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to recommend journals")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to recommend journals",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_recommendations": len(recommendations),
		"recommendations":       recommendations,
		"filters_applied":       req.Filters,
	})
}

// SearchJournals looks up journals by title, keyword or subject
func (h *Handler) SearchJournals(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Query parameter q is required",
			Code:  "MISSING_QUERY",
		})
		return
	}

	results := h.catalog.Search(query, queryInt(c, "limit", 0))

	c.JSON(http.StatusOK, gin.H{
		"total_results": len(results),
		"journals":      results,
	})
}

// JournalFilterOptions reports the filter ranges the catalog supports
func (h *Handler) JournalFilterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.FilterOptions())
}

// GetJournal returns one journal by id
func (h *Handler) GetJournal(c *gin.Context) {
	journal, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Journal not found",
			Code:  "JOURNAL_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, journal)
}

// TrendingTopics lists the highest-scoring topics for a discipline
func (h *Handler) TrendingTopics(c *gin.Context) {
	scored, err := h.topics.Trending(c.Request.Context(), c.Query("discipline"), queryInt(c, "limit", 0))
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch trending topics")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to fetch trending topics",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, scored)
}

// PersonalizedTopics re-ranks trends around the caller's interests
func (h *Handler) PersonalizedTopics(c *gin.Context) {
	var req models.PersonalizedTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	personalized, err := h.topics.Personalized(c.Request.Context(), req.Interests, req.Region, req.Limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch personalized topics")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to fetch personalized topics",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, personalized)
}

// TopicEvolution reports yearly publication counts for one topic
func (h *Handler) TopicEvolution(c *gin.Context) {
	topic := c.Query("topic")
	if strings.TrimSpace(topic) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Query parameter topic is required",
			Code:  "MISSING_TOPIC",
		})
		return
	}

	evolution, err := h.topics.Evolution(c.Request.Context(), topic, queryInt(c, "years", 0))
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to analyze topic evolution")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to analyze topic evolution",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, evolution)
}

// queryInt parses an integer query parameter, falling back on absence
// or garbage.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
