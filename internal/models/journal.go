package models

// Journal is one entry of the journal catalog
type Journal struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Publisher         string   `json:"publisher"`
	ISSN              string   `json:"issn"`
	ImpactFactor      float64  `json:"impact_factor"`
	HIndex            int      `json:"h_index"`
	AcceptanceRate    float64  `json:"acceptance_rate"`
	TimeToPublishDays int      `json:"time_to_publish_days"`
	APC               float64  `json:"apc"`
	OpenAccess        bool     `json:"open_access"`
	Indexing          []string `json:"indexing"`
	Keywords          []string `json:"keywords"`
	Subjects          []string `json:"subjects"`
	Description       string   `json:"description"`
	Predatory         bool     `json:"predatory"`
}

// JournalScore wraps a journal with its per-request scores.
// Instances are immutable once built; rankings re-sort, never edit.
type JournalScore struct {
	Journal               Journal `json:"journal"`
	CompositeScore        float64 `json:"composite_score"`
	SemanticScore         float64 `json:"semantic_score"`
	KeywordScore          float64 `json:"keyword_score"`
	FitScore              float64 `json:"fit_score"`
	AcceptanceProbability float64 `json:"acceptance_probability"`
}

// JournalFilters narrows the candidate set before scoring.
// Predatory journals are excluded unless IncludePredatory is set.
type JournalFilters struct {
	OpenAccessOnly   bool     `json:"open_access_only"`
	MaxAPC           *float64 `json:"max_apc,omitempty"`
	MinImpactFactor  *float64 `json:"min_impact_factor,omitempty"`
	MaxTimeToPublish *int     `json:"max_time_to_publish,omitempty"`
	RequiredIndexing []string `json:"required_indexing,omitempty"`
	IncludePredatory bool     `json:"include_predatory"`
}

// RecommendJournalsRequest is the payload for journal recommendations
type RecommendJournalsRequest struct {
	PaperTitle string         `json:"paper_title"`
	Abstract   string         `json:"abstract" binding:"required"`
	Keywords   []string       `json:"keywords"`
	Filters    JournalFilters `json:"filters"`
	Limit      int            `json:"limit"`
}

// JournalFilterOptions describes the ranges the catalog supports
type JournalFilterOptions struct {
	IndexingDatabases  []string   `json:"indexing_databases"`
	Subjects           []string   `json:"subjects"`
	ImpactFactorRange  [2]float64 `json:"impact_factor_range"`
	APCRange           [2]float64 `json:"apc_range"`
	TimeToPublishRange [2]int     `json:"time_to_publish_range"`
}
