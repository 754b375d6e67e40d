// Package topics discovers trending research topics from academic
// search providers and tracks how a topic's publication volume moves
// across years.
package topics

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"scholarguard/internal/models"
	"scholarguard/internal/providers/scholar"
	"scholarguard/internal/scoring"
)

const (
	defaultTopicLimit = 20
	defaultDiscipline = "research"

	// Papers fetched per trending query. With fan-out search this is
	// the per-provider limit, not a global cap.
	trendFetchLimit = 100

	// Topics backed by fewer papers than this are too thin to call a trend
	minTopicPapers = 3

	topPapersPerTopic = 3
	recentYearWindow  = 2

	evolutionDefaultYears = 5
	evolutionSearchLimit  = 50

	relevanceBase      = 0.3
	interestMatchBonus = 0.4
	regionalMatchBonus = 0.3

	trendWeight     = 0.6
	relevanceWeight = 0.4
)

// trendWeights blend the normalized topic signals; citation velocity
// carries the most weight.
var trendWeights = map[string]float64{
	"frequency": 0.3,
	"citation":  0.4,
	"recency":   0.3,
}

// regionalKeywords flag topic labels with direct relevance to
// development-focused regional research agendas.
var regionalKeywords = []string{
	"agriculture", "rural", "education", "healthcare", "sustainability",
	"water", "climate", "infrastructure", "technology", "digital",
	"social", "economy", "development", "india", "sustainable development goals",
}

// YearSearcher retrieves papers restricted to a single publication year
type YearSearcher interface {
	SearchYear(ctx context.Context, query, year string, limit int) ([]models.Paper, error)
}

// Service ranks research topics by how actively they are being
// published and cited. Trend discovery uses the broad fan-out search;
// evolution analysis needs year-filtered queries and so depends on a
// provider that supports them.
type Service struct {
	search     scholar.Provider
	yearSearch YearSearcher
}

func NewService(search scholar.Provider, yearSearch YearSearcher) *Service {
	return &Service{search: search, yearSearch: yearSearch}
}

// Trending fetches recent papers for a discipline, groups them by the
// topic labels the providers attach, and scores each group. When every
// provider fails the listing degrades to empty rather than erroring.
func (s *Service) Trending(ctx context.Context, discipline string, limit int) ([]models.ScoredTopic, error) {
	query := strings.TrimSpace(discipline)
	if query == "" {
		query = defaultDiscipline
	}
	if limit <= 0 {
		limit = defaultTopicLimit
	}

	log.Info().Str("discipline", query).Int("limit", limit).Msg("Discovering trending topics")

	papers, err := s.search.Search(ctx, query, trendFetchLimit)
	if err != nil {
		log.Warn().Err(err).Str("discipline", query).Msg("Trending topic search failed")
		return []models.ScoredTopic{}, nil
	}
	log.Debug().Int("papers", len(papers)).Msg("Fetched papers from academic sources")

	order, groups := groupTopics(papers)

	scored := make([]models.ScoredTopic, 0, len(order))
	for _, topic := range order {
		st, ok := ScoreTopic(topic, groups[topic], len(papers))
		if !ok {
			continue
		}
		scored = append(scored, st)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	log.Info().Int("topics", len(scored)).Str("discipline", query).Msg("Identified trending topics")
	return scored, nil
}

// Personalized re-ranks trending topics for a researcher's interests.
// The trend score keeps the larger share so a dead topic cannot be
// carried by keyword affinity alone.
func (s *Service) Personalized(ctx context.Context, interests []string, region string, limit int) ([]models.PersonalizedTopic, error) {
	if limit <= 0 {
		limit = defaultTopicLimit
	}

	query := strings.Join(interests, " OR ")
	log.Info().Strs("interests", interests).Str("region", region).Msg("Generating personalized topics")

	trending, err := s.Trending(ctx, query, limit*2)
	if err != nil {
		return nil, err
	}

	personalized := make([]models.PersonalizedTopic, 0, len(trending))
	for _, t := range trending {
		rel := relevance(t.Topic, interests)
		personalized = append(personalized, models.PersonalizedTopic{
			Topic:      t.Topic,
			TrendScore: t.Score,
			Relevance:  rel,
			Combined:   t.Score*trendWeight + rel*relevanceWeight,
			PaperCount: t.PaperCount,
		})
	}

	sort.SliceStable(personalized, func(i, j int) bool {
		return personalized[i].Combined > personalized[j].Combined
	})
	if len(personalized) > limit {
		personalized = personalized[:limit]
	}
	return personalized, nil
}

// Evolution counts papers published on a topic for each year in the
// window and classifies the direction from the average year-over-year
// growth. A failed year search counts as zero papers for that year.
func (s *Service) Evolution(ctx context.Context, topic string, years int) (models.TopicEvolution, error) {
	if s.yearSearch == nil {
		return models.TopicEvolution{}, errors.New("no year-filtered search provider configured")
	}
	if years <= 0 {
		years = evolutionDefaultYears
	}

	log.Info().Str("topic", topic).Int("years", years).Msg("Analyzing topic evolution")

	currentYear := time.Now().Year()
	counts := make([]models.YearCount, 0, years+1)
	total := 0

	for year := currentYear - years; year <= currentYear; year++ {
		papers, err := s.yearSearch.SearchYear(ctx, topic, strconv.Itoa(year), evolutionSearchLimit)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Int("year", year).Msg("Year-filtered search failed")
			papers = nil
		}
		counts = append(counts, models.YearCount{Year: year, Count: len(papers)})
		total += len(papers)
	}

	growth := averageGrowthRate(counts)

	return models.TopicEvolution{
		Topic:      topic,
		Years:      counts,
		Direction:  direction(counts, growth),
		GrowthRate: growth,
		TotalCount: total,
	}, nil
}

// ScoreTopic computes the trend score for one topic from the papers
// carrying its label. Topics backed by fewer than three papers are
// excluded (ok == false).
func ScoreTopic(label string, papers []models.Paper, totalPapers int) (models.ScoredTopic, bool) {
	if len(papers) < minTopicPapers || totalPapers == 0 {
		return models.ScoredTopic{}, false
	}

	recentCutoff := time.Now().Year() - recentYearWindow

	totalCitations := 0
	recentCitations := 0
	for _, p := range papers {
		totalCitations += p.CitationCount
		if p.Year >= recentCutoff {
			recentCitations += p.CitationCount
		}
	}

	frequency := math.Min(float64(len(papers))/float64(totalPapers)*10, 1.0)
	citation := math.Min(float64(totalCitations)/float64(len(papers))/100, 1.0)
	recency := 0.0
	if totalCitations > 0 {
		recency = math.Min(float64(recentCitations)/float64(totalCitations), 1.0)
	}

	score := scoring.Composite(map[string]float64{
		"frequency": frequency,
		"citation":  citation,
		"recency":   recency,
	}, trendWeights)

	return models.ScoredTopic{
		Topic:          label,
		Score:          score,
		FrequencyScore: frequency,
		CitationScore:  citation,
		RecencyScore:   recency,
		PaperCount:     len(papers),
		TotalCitations: totalCitations,
		TopPapers:      topPaperRefs(papers, topPapersPerTopic),
	}, true
}

// groupTopics buckets papers under every topic label they carry,
// preserving first-encounter order so equal scores sort deterministically.
func groupTopics(papers []models.Paper) ([]string, map[string][]models.Paper) {
	order := make([]string, 0)
	groups := make(map[string][]models.Paper)
	for _, p := range papers {
		for _, topic := range p.Topics {
			if topic == "" {
				continue
			}
			if _, ok := groups[topic]; !ok {
				order = append(order, topic)
			}
			groups[topic] = append(groups[topic], p)
		}
	}
	return order, groups
}

// topPaperRefs picks the most-cited papers backing a topic
func topPaperRefs(papers []models.Paper, n int) []models.PaperRef {
	sorted := make([]models.Paper, len(papers))
	copy(sorted, papers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CitationCount > sorted[j].CitationCount
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	refs := make([]models.PaperRef, 0, len(sorted))
	for _, p := range sorted {
		refs = append(refs, models.PaperRef{
			Title:         p.Title,
			Year:          p.Year,
			CitationCount: p.CitationCount,
			URL:           p.URL,
		})
	}
	return refs
}

// relevance blends a base weight with interest and regional keyword
// matches against the topic label, capped at 1.0.
func relevance(topic string, interests []string) float64 {
	name := strings.ToLower(topic)
	score := relevanceBase

	for _, interest := range interests {
		li := strings.ToLower(strings.TrimSpace(interest))
		if li != "" && (strings.Contains(name, li) || strings.Contains(li, name)) {
			score += interestMatchBonus
			break
		}
	}

	for _, keyword := range regionalKeywords {
		if strings.Contains(name, keyword) {
			score += regionalMatchBonus
			break
		}
	}

	return math.Min(score, 1.0)
}

// averageGrowthRate is the mean year-over-year growth across the
// window. Years following a zero count contribute nothing since growth
// from an empty base is undefined.
func averageGrowthRate(counts []models.YearCount) float64 {
	if len(counts) < 2 {
		return 0
	}

	var rates []float64
	for i := 1; i < len(counts); i++ {
		prev := counts[i-1].Count
		if prev == 0 {
			continue
		}
		rates = append(rates, float64(counts[i].Count-prev)/float64(prev))
	}
	if len(rates) == 0 {
		return 0
	}

	sum := 0.0
	for _, r := range rates {
		sum += r
	}
	return sum / float64(len(rates))
}

func direction(counts []models.YearCount, growth float64) string {
	if len(counts) < 2 {
		return "insufficient_data"
	}
	switch {
	case growth > 0.2:
		return "rapidly_growing"
	case growth > 0.05:
		return "growing"
	case growth < -0.2:
		return "declining"
	case growth < -0.05:
		return "slowly_declining"
	default:
		return "stable"
	}
}
