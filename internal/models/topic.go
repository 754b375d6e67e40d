package models

// Paper is a document returned by an academic search provider
type Paper struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Abstract      string   `json:"abstract"`
	Year          int      `json:"year"`
	CitationCount int      `json:"citation_count"`
	Authors       []string `json:"authors"`
	Venue         string   `json:"venue,omitempty"`
	URL           string   `json:"url,omitempty"`
	Topics        []string `json:"topics,omitempty"`
}

// PaperRef is a compact reference to a paper inside a topic listing
type PaperRef struct {
	Title         string `json:"title"`
	Year          int    `json:"year,omitempty"`
	CitationCount int    `json:"citation_count"`
	URL           string `json:"url,omitempty"`
}

// ScoredTopic is one trending topic with its component scores
type ScoredTopic struct {
	Topic          string     `json:"topic"`
	Score          float64    `json:"score"`
	FrequencyScore float64    `json:"frequency_score"`
	CitationScore  float64    `json:"citation_score"`
	RecencyScore   float64    `json:"recency_score"`
	PaperCount     int        `json:"paper_count"`
	TotalCitations int        `json:"total_citations"`
	TopPapers      []PaperRef `json:"top_papers"`
}

// PersonalizedTopic blends a trend score with interest relevance
type PersonalizedTopic struct {
	Topic      string  `json:"topic"`
	TrendScore float64 `json:"trend_score"`
	Relevance  float64 `json:"relevance"`
	Combined   float64 `json:"combined"`
	PaperCount int     `json:"paper_count"`
}

// PersonalizedTopicsRequest is the payload for personalized discovery
type PersonalizedTopicsRequest struct {
	Interests []string `json:"interests" binding:"required"`
	Region    string   `json:"region"`
	Limit     int      `json:"limit"`
}

// YearCount is the number of papers observed for one publication year
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// TopicEvolution summarizes how a topic's publication volume moved over time
type TopicEvolution struct {
	Topic      string      `json:"topic"`
	Years      []YearCount `json:"years"`
	Direction  string      `json:"direction"`
	GrowthRate float64     `json:"growth_rate"`
	TotalCount int         `json:"total_count"`
}
