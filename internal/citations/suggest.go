// Package citations finds candidate references for evidentiary claims
// made in a draft.
package citations

import (
	"context"

	"github.com/rs/zerolog/log"

	"scholarguard/internal/detect"
	"scholarguard/internal/models"
	"scholarguard/internal/providers/scholar"
)

const (
	papersPerClaim = 5
	maxAuthors     = 3

	// Search hits are keyword-ranked, not semantically verified, so
	// every suggestion carries the same moderate confidence.
	claimRelevance = 0.8
)

// Suggester pairs claims that assert evidence with papers that might
// back them.
type Suggester struct {
	search scholar.Provider
}

func NewSuggester(search scholar.Provider) *Suggester {
	return &Suggester{search: search}
}

// Suggest extracts evidentiary claims from text and searches for
// supporting papers per claim. A failed search leaves that claim with
// an empty paper list rather than failing the whole request.
func (s *Suggester) Suggest(ctx context.Context, text string) ([]models.CitationSuggestion, error) {
	claims := detect.ExtractClaims(text)
	log.Info().Int("claims", len(claims)).Msg("Suggesting citations")

	suggestions := make([]models.CitationSuggestion, 0, len(claims))
	for _, claim := range claims {
		papers, err := s.search.Search(ctx, claim, papersPerClaim)
		if err != nil {
			log.Warn().Err(err).Msg("Citation search failed for claim")
			papers = nil
		}
		// Fan-out search can merge more than the per-provider limit
		if len(papers) > papersPerClaim {
			papers = papers[:papersPerClaim]
		}

		refs := make([]models.SuggestedPaper, 0, len(papers))
		for _, p := range papers {
			authors := p.Authors
			if len(authors) > maxAuthors {
				authors = authors[:maxAuthors]
			}
			refs = append(refs, models.SuggestedPaper{
				Title:         p.Title,
				Authors:       authors,
				Year:          p.Year,
				URL:           p.URL,
				CitationCount: p.CitationCount,
			})
		}

		suggestions = append(suggestions, models.CitationSuggestion{
			Claim:     claim,
			Papers:    refs,
			Relevance: claimRelevance,
		})
	}

	return suggestions, nil
}
