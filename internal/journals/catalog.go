// Package journals recommends publication venues for a paper by
// blending semantic fit, keyword overlap and venue metrics.
package journals

import (
	"errors"
	"sort"
	"strings"

	"scholarguard/internal/models"
)

var ErrJournalNotFound = errors.New("journal not found")

const defaultSearchLimit = 20

// Catalog is the in-memory journal database. In production this would
// hydrate from an external registry; the seed set covers the venues the
// service launched with.
type Catalog struct {
	journals []models.Journal
}

func NewCatalog() *Catalog {
	return &Catalog{journals: seedJournals()}
}

// All returns every catalog entry in stable order
func (c *Catalog) All() []models.Journal {
	return c.journals
}

// Get returns the journal with the given ID
func (c *Catalog) Get(id string) (models.Journal, error) {
	for _, j := range c.journals {
		if j.ID == id {
			return j, nil
		}
	}
	return models.Journal{}, ErrJournalNotFound
}

// Search matches q case-insensitively against title, keywords and subjects
func (c *Catalog) Search(q string, limit int) []models.Journal {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	qLower := strings.ToLower(q)
	results := make([]models.Journal, 0)
	for _, j := range c.journals {
		searchable := strings.ToLower(
			j.Title + " " + strings.Join(j.Keywords, " ") + " " + strings.Join(j.Subjects, " "),
		)
		if strings.Contains(searchable, qLower) {
			results = append(results, j)
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}

// Filter narrows the catalog to journals satisfying every set filter.
// The APC cap only constrains open-access journals; subscription venues
// carry no author charge to cap. Predatory journals are dropped unless
// explicitly included.
func (c *Catalog) Filter(filters models.JournalFilters) []models.Journal {
	filtered := make([]models.Journal, 0, len(c.journals))
	for _, j := range c.journals {
		if filters.OpenAccessOnly && !j.OpenAccess {
			continue
		}
		if filters.MaxAPC != nil && j.OpenAccess && j.APC > *filters.MaxAPC {
			continue
		}
		if filters.MinImpactFactor != nil && j.ImpactFactor < *filters.MinImpactFactor {
			continue
		}
		if filters.MaxTimeToPublish != nil && j.TimeToPublishDays > *filters.MaxTimeToPublish {
			continue
		}
		if !hasAllIndexing(j.Indexing, filters.RequiredIndexing) {
			continue
		}
		if j.Predatory && !filters.IncludePredatory {
			continue
		}
		filtered = append(filtered, j)
	}
	return filtered
}

// FilterOptions reports the distinct values and ranges the catalog spans
func (c *Catalog) FilterOptions() models.JournalFilterOptions {
	indexingSet := make(map[string]struct{})
	subjectSet := make(map[string]struct{})

	opts := models.JournalFilterOptions{}
	for i, j := range c.journals {
		for _, db := range j.Indexing {
			indexingSet[db] = struct{}{}
		}
		for _, s := range j.Subjects {
			subjectSet[s] = struct{}{}
		}

		if i == 0 {
			opts.ImpactFactorRange = [2]float64{j.ImpactFactor, j.ImpactFactor}
			opts.APCRange = [2]float64{j.APC, j.APC}
			opts.TimeToPublishRange = [2]int{j.TimeToPublishDays, j.TimeToPublishDays}
			continue
		}

		opts.ImpactFactorRange[0] = min(opts.ImpactFactorRange[0], j.ImpactFactor)
		opts.ImpactFactorRange[1] = max(opts.ImpactFactorRange[1], j.ImpactFactor)
		opts.APCRange[0] = min(opts.APCRange[0], j.APC)
		opts.APCRange[1] = max(opts.APCRange[1], j.APC)
		opts.TimeToPublishRange[0] = min(opts.TimeToPublishRange[0], j.TimeToPublishDays)
		opts.TimeToPublishRange[1] = max(opts.TimeToPublishRange[1], j.TimeToPublishDays)
	}

	opts.IndexingDatabases = sortedKeys(indexingSet)
	opts.Subjects = sortedKeys(subjectSet)
	return opts
}

func hasAllIndexing(have, required []string) bool {
	for _, req := range required {
		found := false
		for _, h := range have {
			if strings.EqualFold(h, req) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func seedJournals() []models.Journal {
	return []models.Journal{
		{
			ID:                "nature",
			Title:             "Nature",
			Publisher:         "Nature Publishing Group",
			ISSN:              "0028-0836",
			ImpactFactor:      49.96,
			HIndex:            1089,
			AcceptanceRate:    7.0,
			TimeToPublishDays: 180,
			APC:               0,
			OpenAccess:        false,
			Indexing:          []string{"Scopus", "Web of Science"},
			Keywords:          []string{"research", "science", "nature", "multidisciplinary"},
			Subjects:          []string{"Multidisciplinary", "Science"},
			Description:       "Premier international weekly journal of science",
		},
		{
			ID:                "plos-one",
			Title:             "PLOS ONE",
			Publisher:         "Public Library of Science",
			ISSN:              "1932-6203",
			ImpactFactor:      3.24,
			HIndex:            436,
			AcceptanceRate:    50.0,
			TimeToPublishDays: 90,
			APC:               1825,
			OpenAccess:        true,
			Indexing:          []string{"Scopus", "Web of Science"},
			Keywords:          []string{"open access", "research", "science", "multidisciplinary"},
			Subjects:          []string{"Multidisciplinary", "Science"},
			Description:       "Inclusive, peer-reviewed, open-access resource",
		},
		{
			ID:                "ieee-access",
			Title:             "IEEE Access",
			Publisher:         "IEEE",
			ISSN:              "2169-3536",
			ImpactFactor:      3.47,
			HIndex:            127,
			AcceptanceRate:    30.0,
			TimeToPublishDays: 60,
			APC:               1850,
			OpenAccess:        true,
			Indexing:          []string{"Scopus", "Web of Science"},
			Keywords:          []string{"engineering", "computer science", "technology", "open access"},
			Subjects:          []string{"Engineering", "Computer Science", "Technology"},
			Description:       "Multidisciplinary open access journal",
		},
		{
			ID:                "scientific-reports",
			Title:             "Scientific Reports",
			Publisher:         "Nature Publishing Group",
			ISSN:              "2045-2322",
			ImpactFactor:      4.38,
			HIndex:            253,
			AcceptanceRate:    60.0,
			TimeToPublishDays: 120,
			APC:               2190,
			OpenAccess:        true,
			Indexing:          []string{"Scopus", "Web of Science"},
			Keywords:          []string{"research", "open access", "science"},
			Subjects:          []string{"Multidisciplinary", "Science"},
			Description:       "Open access journal from Nature",
		},
		{
			ID:                "arxiv",
			Title:             "arXiv (Preprint)",
			Publisher:         "Cornell University",
			AcceptanceRate:    100.0,
			TimeToPublishDays: 1,
			APC:               0,
			OpenAccess:        true,
			Keywords:          []string{"preprint", "research", "open access"},
			Subjects:          []string{"Physics", "Mathematics", "Computer Science"},
			Description:       "Open-access archive for preprints",
		},
	}
}
