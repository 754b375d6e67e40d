package scholar

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"scholarguard/internal/metrics"
	"scholarguard/internal/models"
)

// Multi fans a query out to several providers concurrently and merges
// their results in provider order, deduplicated by lower-cased title.
// A failing provider contributes nothing; Multi itself fails only when
// every provider failed.
type Multi struct {
	providers []Provider
}

func NewMulti(providers ...Provider) *Multi {
	return &Multi{providers: providers}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Search(ctx context.Context, query string, limit int) ([]models.Paper, error) {
	if len(m.providers) == 0 {
		return []models.Paper{}, nil
	}

	resultsByProvider := make([][]models.Paper, len(m.providers))
	errs := make([]error, len(m.providers))

	var wg sync.WaitGroup
	for i, p := range m.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			papers, err := p.Search(ctx, query, limit)
			resultsByProvider[i] = papers
			errs[i] = err
		}(i, p)
	}
	wg.Wait()

	failures := 0
	papers := make([]models.Paper, 0)
	seen := make(map[string]struct{})
	for i, providerPapers := range resultsByProvider {
		if errs[i] != nil {
			failures++
			metrics.IncProviderError(m.providers[i].Name())
			log.Warn().Err(errs[i]).Str("provider", m.providers[i].Name()).Msg("Paper search failed")
			continue
		}
		for _, paper := range providerPapers {
			key := strings.ToLower(strings.TrimSpace(paper.Title))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			papers = append(papers, paper)
		}
	}

	if failures == len(m.providers) {
		return nil, fmt.Errorf("all %d search providers failed", failures)
	}
	return papers, nil
}
