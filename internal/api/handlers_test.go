package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarguard/internal/citations"
	"scholarguard/internal/config"
	"scholarguard/internal/detect"
	"scholarguard/internal/journals"
	"scholarguard/internal/models"
	"scholarguard/internal/providers/scholar"
	"scholarguard/internal/topics"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeScholarProvider struct {
	papers []models.Paper
	err    error
}

func (f *fakeScholarProvider) Search(ctx context.Context, query string, limit int) ([]models.Paper, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.papers, nil
}

func (f *fakeScholarProvider) Name() string { return "fake" }

// newTestHandler wires a handler against an in-memory catalog, a nil
// embedder and the given search provider. The Mongo and Redis backed
// paths are left nil; tests stay on routes that never reach them.
func newTestHandler(search scholar.Provider) *Handler {
	cfg := &config.Config{
		MaxConcurrentChecks: 1,
		CheckTimeout:        time.Minute,
	}
	catalog := journals.NewCatalog()
	pipeline := detect.NewPipeline(
		detect.NewFingerprintIndex(nil),
		detect.NewNGramOverlapDetector(0, 0),
		detect.NewSemanticMatcher(nil, nil, detect.SemanticConfig{}),
		10,
	)

	return NewHandler(
		cfg,
		pipeline,
		citations.NewSuggester(search),
		journals.NewRecommender(catalog, nil),
		catalog,
		topics.NewService(search, nil),
		nil,
		nil,
	)
}

func newTestRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.POST("/api/v1/plagiarism/check", h.CheckPlagiarism)
	r.POST("/api/v1/citations/suggest", h.SuggestCitations)
	r.POST("/api/v1/journals/recommend", h.RecommendJournals)
	r.GET("/api/v1/journals/search", h.SearchJournals)
	r.GET("/api/v1/journals/filters/options", h.JournalFilterOptions)
	r.GET("/api/v1/journals/:id", h.GetJournal)
	r.GET("/api/v1/topics/trending", h.TrendingTopics)
	r.POST("/api/v1/topics/personalized", h.PersonalizedTopics)
	r.GET("/api/v1/topics/evolution", h.TopicEvolution)
	return r
}

func performJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func performGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	r := newTestRouter(newTestHandler(&fakeScholarProvider{}))

	w := performGet(t, r, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, w.Body.String())
}

func TestCheckPlagiarism_Validation(t *testing.T) {
	r := newTestRouter(newTestHandler(&fakeScholarProvider{}))

	longText := strings.Repeat("every submission deserves a fair review ", 5)
	require.GreaterOrEqual(t, len(longText), minCheckTextLen)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{not json`, "INVALID_REQUEST"},
		{"missing text", `{"language": "en"}`, "INVALID_REQUEST"},
		{"text too short", `{"text": "too short"}`, "TEXT_TOO_SHORT"},
		{"unsupported language", mustJSON(t, models.CheckRequest{Text: longText, Language: "fr"}), "UNSUPPORTED_LANGUAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(t, r, http.MethodPost, "/api/v1/plagiarism/check", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.wantCode == "UNSUPPORTED_LANGUAGE" {
				assert.Contains(t, resp.Error, "fr")
			}
		})
	}
}

func TestCheckPlagiarism_CapacityExceeded(t *testing.T) {
	h := newTestHandler(&fakeScholarProvider{})
	r := newTestRouter(h)

	// Occupy the only slot so the next check is turned away instead
	// of queued.
	h.checkSem <- struct{}{}
	defer func() { <-h.checkSem }()

	body := mustJSON(t, models.CheckRequest{
		Text: strings.Repeat("every submission deserves a fair review ", 5),
	})
	w := performJSON(t, r, http.MethodPost, "/api/v1/plagiarism/check", body)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "CAPACITY_EXCEEDED", decodeError(t, w).Code)
}

func TestSuggestCitations(t *testing.T) {
	provider := &fakeScholarProvider{papers: []models.Paper{
		{ID: "p1", Title: "Layered Detection in Peer Review", Year: 2023, CitationCount: 41},
		{ID: "p2", Title: "False Positive Rates in Text Matching", Year: 2022, CitationCount: 17},
	}}
	r := newTestRouter(newTestHandler(provider))

	t.Run("invalid body", func(t *testing.T) {
		w := performJSON(t, r, http.MethodPost, "/api/v1/citations/suggest", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
	})

	t.Run("text too short", func(t *testing.T) {
		w := performJSON(t, r, http.MethodPost, "/api/v1/citations/suggest", `{"text": "brief"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "TEXT_TOO_SHORT", decodeError(t, w).Code)
	})

	t.Run("pairs claims with papers", func(t *testing.T) {
		body := mustJSON(t, models.CitationSuggestRequest{
			Text: "Research shows that layered detection reduces false positives in review.",
		})
		w := performJSON(t, r, http.MethodPost, "/api/v1/citations/suggest", body)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Suggestions      []models.CitationSuggestion `json:"suggestions"`
			TotalSuggestions int                         `json:"total_suggestions"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		require.Equal(t, 1, resp.TotalSuggestions)
		require.Len(t, resp.Suggestions, 1)
		assert.Equal(t, "Research shows that layered detection reduces false positives in review", resp.Suggestions[0].Claim)
		assert.Len(t, resp.Suggestions[0].Papers, 2)
	})
}

func TestRecommendJournals(t *testing.T) {
	r := newTestRouter(newTestHandler(&fakeScholarProvider{}))

	abstract := "We evaluate machine learning methods for large scale research analysis across several open datasets."

	t.Run("invalid body", func(t *testing.T) {
		w := performJSON(t, r, http.MethodPost, "/api/v1/journals/recommend", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
	})

	t.Run("abstract too short", func(t *testing.T) {
		w := performJSON(t, r, http.MethodPost, "/api/v1/journals/recommend", `{"abstract": "brief"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ABSTRACT_TOO_SHORT", decodeError(t, w).Code)
	})

	t.Run("ranks the catalog", func(t *testing.T) {
		body := mustJSON(t, models.RecommendJournalsRequest{Abstract: abstract})
		w := performJSON(t, r, http.MethodPost, "/api/v1/journals/recommend", body)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Total           int                   `json:"total_recommendations"`
			Recommendations []models.JournalScore `json:"recommendations"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, 5, resp.Total)
		require.NotEmpty(t, resp.Recommendations)
		assert.Equal(t, "arxiv", resp.Recommendations[0].Journal.ID)
		assert.Contains(t, w.Body.String(), "filters_applied")
	})

	t.Run("applies limit", func(t *testing.T) {
		body := mustJSON(t, models.RecommendJournalsRequest{Abstract: abstract, Limit: 2})
		w := performJSON(t, r, http.MethodPost, "/api/v1/journals/recommend", body)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Recommendations []models.JournalScore `json:"recommendations"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Recommendations, 2)
	})
}

func TestSearchJournals(t *testing.T) {
	r := newTestRouter(newTestHandler(&fakeScholarProvider{}))

	decode := func(t *testing.T, w *httptest.ResponseRecorder) (int, []models.Journal) {
		t.Helper()
		var resp struct {
			TotalResults int              `json:"total_results"`
			Journals     []models.Journal `json:"journals"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.TotalResults, resp.Journals
	}

	t.Run("missing query", func(t *testing.T) {
		w := performGet(t, r, "/api/v1/journals/search")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_QUERY", decodeError(t, w).Code)
	})

	t.Run("blank query", func(t *testing.T) {
		w := performGet(t, r, "/api/v1/journals/search?q=%20%20")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_QUERY", decodeError(t, w).Code)
	})

	t.Run("finds by title", func(t *testing.T) {
		w := performGet(t, r, "/api/v1/journals/search?q=nature")

		require.Equal(t, http.StatusOK, w.Code)
		total, found := decode(t, w)
		assert.Equal(t, 1, total)
		require.Len(t, found, 1)
		assert.Equal(t, "nature", found[0].ID)
	})

	t.Run("applies limit", func(t *testing.T) {
		w := performGet(t, r, "/api/v1/journals/search?q=open+access&limit=2")

		require.Equal(t, http.StatusOK, w.Code)
		total, found := decode(t, w)
		assert.Equal(t, 2, total)
		assert.Len(t, found, 2)
	})
}

func TestGetJournal(t *testing.T) {
	r := newTestRouter(newTestHandler(&fakeScholarProvider{}))

	t.Run("found", func(t *testing.T) {
		w := performGet(t, r, "/api/v1/journals/nature")

		require.Equal(t, http.StatusOK, w.Code)
		var journal models.Journal
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))
		assert.Equal(t, "nature", journal.ID)
		assert.Equal(t, "Nature", journal.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := performGet(t, r, "/api/v1/journals/predatory-weekly")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "JOURNAL_NOT_FOUND", decodeError(t, w).Code)
	})
}

func TestJournalFilterOptions(t *testing.T) {
	r := newTestRouter(newTestHandler(&fakeScholarProvider{}))

	w := performGet(t, r, "/api/v1/journals/filters/options")

	require.Equal(t, http.StatusOK, w.Code)
	var opts models.JournalFilterOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))

	assert.Contains(t, opts.IndexingDatabases, "Scopus")
	assert.NotEmpty(t, opts.Subjects)
	assert.Equal(t, [2]float64{0, 49.96}, opts.ImpactFactorRange)
}

func TestTrendingTopics(t *testing.T) {
	t.Run("lists scored topics", func(t *testing.T) {
		year := time.Now().Year()
		provider := &fakeScholarProvider{papers: []models.Paper{
			{ID: "p1", Title: "Transformers at Scale", Year: year, CitationCount: 40, Topics: []string{"deep learning"}},
			{ID: "p2", Title: "Attention Revisited", Year: year, CitationCount: 25, Topics: []string{"deep learning"}},
			{ID: "p3", Title: "Efficient Fine Tuning", Year: year - 1, CitationCount: 10, Topics: []string{"deep learning"}},
		}}
		r := newTestRouter(newTestHandler(provider))

		w := performGet(t, r, "/api/v1/topics/trending?discipline=computer+science")

		require.Equal(t, http.StatusOK, w.Code)
		var scored []models.ScoredTopic
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scored))
		require.Len(t, scored, 1)
		assert.Equal(t, "deep learning", scored[0].Topic)
		assert.Equal(t, 3, scored[0].PaperCount)
	})

	t.Run("degrades to empty when provider fails", func(t *testing.T) {
		provider := &fakeScholarProvider{err: errors.New("upstream down")}
		r := newTestRouter(newTestHandler(provider))

		w := performGet(t, r, "/api/v1/topics/trending")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestPersonalizedTopics(t *testing.T) {
	year := time.Now().Year()
	provider := &fakeScholarProvider{papers: []models.Paper{
		{ID: "p1", Title: "Transformers at Scale", Year: year, CitationCount: 40, Topics: []string{"deep learning"}},
		{ID: "p2", Title: "Attention Revisited", Year: year, CitationCount: 25, Topics: []string{"deep learning"}},
		{ID: "p3", Title: "Efficient Fine Tuning", Year: year - 1, CitationCount: 10, Topics: []string{"deep learning"}},
	}}
	r := newTestRouter(newTestHandler(provider))

	t.Run("invalid body", func(t *testing.T) {
		w := performJSON(t, r, http.MethodPost, "/api/v1/topics/personalized", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
	})

	t.Run("ranks by interest relevance", func(t *testing.T) {
		body := mustJSON(t, models.PersonalizedTopicsRequest{Interests: []string{"deep learning"}})
		w := performJSON(t, r, http.MethodPost, "/api/v1/topics/personalized", body)

		require.Equal(t, http.StatusOK, w.Code)
		var personalized []models.PersonalizedTopic
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &personalized))
		require.Len(t, personalized, 1)
		assert.Equal(t, "deep learning", personalized[0].Topic)
		assert.InDelta(t, 0.7, personalized[0].Relevance, 1e-9)
	})
}

func TestTopicEvolution(t *testing.T) {
	r := newTestRouter(newTestHandler(&fakeScholarProvider{}))

	t.Run("missing topic", func(t *testing.T) {
		w := performGet(t, r, "/api/v1/topics/evolution")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_TOPIC", decodeError(t, w).Code)
	})

	t.Run("provider without year filtering", func(t *testing.T) {
		w := performGet(t, r, "/api/v1/topics/evolution?topic=quantum+computing")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Code)
	})
}

func TestQueryInt(t *testing.T) {
	newCtx := func(rawQuery string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
		return c
	}

	assert.Equal(t, 7, queryInt(newCtx(""), "limit", 7))
	assert.Equal(t, 5, queryInt(newCtx("limit=5"), "limit", 7))
	assert.Equal(t, 0, queryInt(newCtx("limit=0"), "limit", 7))
	assert.Equal(t, 7, queryInt(newCtx("limit=abc"), "limit", 7))
	assert.Equal(t, 7, queryInt(newCtx("limit=-3"), "limit", 7))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "hello", preview("hello", 10))
	assert.Equal(t, "hel", preview("hello", 3))
	assert.Equal(t, "", preview("", 3))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
