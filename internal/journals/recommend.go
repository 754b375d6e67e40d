package journals

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"scholarguard/internal/metrics"
	"scholarguard/internal/models"
	"scholarguard/internal/providers/embeddings"
	"scholarguard/internal/scoring"
)

var ErrAbstractTooShort = errors.New("paper abstract too short for meaningful recommendations")

const (
	minAbstractWords      = 10
	defaultRecommendLimit = 10

	// A missing signal scores as a coin flip, not a rejection
	neutralScore = 0.5

	embeddingCacheTTL     = 30 * time.Minute
	embeddingCacheCleanup = 10 * time.Minute
)

// journalWeights blend the normalized signals into the composite score.
// Weights sum to 1.0 by convention.
var journalWeights = map[string]float64{
	"semantic":    0.35,
	"keyword":     0.20,
	"impact":      0.15,
	"time":        0.10,
	"open_access": 0.10,
	"acceptance":  0.10,
}

// Recommender ranks catalog journals against a paper abstract. Journal
// profile embeddings are cached with a TTL so repeated recommendations
// don't re-embed an unchanged catalog; the cache is internally locked,
// so concurrent requests may share one Recommender.
type Recommender struct {
	catalog  *Catalog
	embedder embeddings.Provider
	cache    *gocache.Cache
}

func NewRecommender(catalog *Catalog, embedder embeddings.Provider) *Recommender {
	return &Recommender{
		catalog:  catalog,
		embedder: embedder,
		cache:    gocache.New(embeddingCacheTTL, embeddingCacheCleanup),
	}
}

// Recommend scores every journal passing the request filters and
// returns the top entries by composite score. The abstract must carry
// at least ten words; everything else degrades to neutral scores.
func (r *Recommender) Recommend(ctx context.Context, req models.RecommendJournalsRequest) ([]models.JournalScore, error) {
	if len(strings.Fields(req.Abstract)) < minAbstractWords {
		return nil, ErrAbstractTooShort
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultRecommendLimit
	}

	candidates := r.catalog.Filter(req.Filters)
	if len(candidates) == 0 {
		return []models.JournalScore{}, nil
	}

	semanticScores := r.semanticScores(ctx, req.Abstract, candidates)

	scored := make([]models.JournalScore, 0, len(candidates))
	for _, j := range candidates {
		semantic := semanticScores[j.ID]
		keyword := keywordScore(req.Keywords, j)

		components := map[string]float64{
			"semantic":    semantic,
			"keyword":     keyword,
			"impact":      math.Min(j.ImpactFactor/10.0, 1.0),
			"time":        1.0 - math.Min(float64(j.TimeToPublishDays)/365.0, 1.0),
			"open_access": neutralScore,
			"acceptance":  j.AcceptanceRate / 100.0,
		}
		if j.OpenAccess {
			components["open_access"] = 1.0
		}

		fit := semantic*0.6 + keyword*0.4
		if j.HIndex > 50 {
			fit *= 1.1
		}
		fit = math.Min(fit, 1.0)

		acceptance := scoring.Round2(scoring.Clamp(j.AcceptanceRate/100.0+(fit-0.5)*0.3, 0.05, 0.95))

		scored = append(scored, models.JournalScore{
			Journal:               j,
			CompositeScore:        scoring.Composite(components, journalWeights),
			SemanticScore:         semantic,
			KeywordScore:          keyword,
			FitScore:              fit,
			AcceptanceProbability: acceptance,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CompositeScore > scored[j].CompositeScore
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	log.Info().Int("recommended", len(scored)).Msg("Journal recommendation complete")
	return scored, nil
}

// semanticScores embeds the abstract and every candidate profile in one
// batched call, reusing cached profile vectors. Any provider failure
// yields the neutral score for all candidates.
func (r *Recommender) semanticScores(ctx context.Context, abstract string, candidates []models.Journal) map[string]float64 {
	scores := make(map[string]float64, len(candidates))
	for _, j := range candidates {
		scores[j.ID] = neutralScore
	}
	if r.embedder == nil {
		return scores
	}

	cached := make(map[string][]float64, len(candidates))
	missing := make([]models.Journal, 0)
	for _, j := range candidates {
		if vec, found := r.cache.Get(j.ID); found {
			cached[j.ID] = vec.([]float64)
		} else {
			missing = append(missing, j)
		}
	}

	texts := make([]string, 0, len(missing)+1)
	texts = append(texts, abstract)
	for _, j := range missing {
		texts = append(texts, profileText(j))
	}

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		metrics.IncProviderError(r.embedder.Name())
		log.Warn().Err(err).Msg("Journal profile embedding failed, using neutral semantic scores")
		return scores
	}
	if len(vectors) != len(texts) {
		log.Warn().
			Int("expected", len(texts)).
			Int("got", len(vectors)).
			Msg("Journal embedding count mismatch, using neutral semantic scores")
		return scores
	}

	abstractVec := vectors[0]
	for i, j := range missing {
		vec := vectors[i+1]
		cached[j.ID] = vec
		r.cache.Set(j.ID, vec, gocache.DefaultExpiration)
	}

	for _, j := range candidates {
		scores[j.ID] = scoring.Cosine(abstractVec, cached[j.ID])
	}
	return scores
}

// keywordScore is the Jaccard overlap between the paper's keywords and
// the journal's keywords plus subjects. No paper keywords is a neutral
// prior; a journal with no terms scores zero.
func keywordScore(paperKeywords []string, j models.Journal) float64 {
	if len(paperKeywords) == 0 {
		return neutralScore
	}

	journalTerms := toLowerSet(append(append([]string{}, j.Keywords...), j.Subjects...))
	if len(journalTerms) == 0 {
		return 0.0
	}

	paperSet := toLowerSet(paperKeywords)
	intersection := 0
	for k := range paperSet {
		if _, ok := journalTerms[k]; ok {
			intersection++
		}
	}

	union := len(paperSet) + len(journalTerms) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func profileText(j models.Journal) string {
	return j.Title + " " + j.Description + " " + strings.Join(j.Keywords, " ")
}

func toLowerSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}
