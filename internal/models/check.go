package models

import (
	"time"
)

// MatchType classifies how a match was detected
type MatchType string

const (
	MatchExact          MatchType = "exact"
	MatchNearDuplicate  MatchType = "near_duplicate"
	MatchParaphrase     MatchType = "paraphrase"
	MatchHighSimilarity MatchType = "high_similarity"
)

// Match represents one detected overlap between the checked text and a reference
type Match struct {
	Text          string    `bson:"text" json:"text"`
	Source        string    `bson:"source" json:"source"`
	SourceURL     string    `bson:"sourceUrl,omitempty" json:"source_url,omitempty"`
	SourceYear    int       `bson:"sourceYear,omitempty" json:"source_year,omitempty"`
	SourceAuthors []string  `bson:"sourceAuthors,omitempty" json:"source_authors,omitempty"`
	Similarity    float64   `bson:"similarity" json:"similarity"`
	StartPos      int       `bson:"startPos" json:"start_pos"`
	EndPos        int       `bson:"endPos" json:"end_pos"`
	Type          MatchType `bson:"type" json:"type"`
}

// Statistics holds per-check aggregate numbers, recomputed fresh each run
type Statistics struct {
	TotalWords        int            `bson:"totalWords" json:"total_words"`
	MatchedWords      int            `bson:"matchedWords" json:"matched_words"`
	MatchPercentage   float64        `bson:"matchPercentage" json:"match_percentage"`
	UniqueSources     int            `bson:"uniqueSources" json:"unique_sources"`
	MatchesByType     map[string]int `bson:"matchesByType" json:"matches_by_type"`
	HighestSimilarity float64        `bson:"highestSimilarity" json:"highest_similarity"`
	AverageSimilarity float64        `bson:"averageSimilarity" json:"average_similarity"`
}

// DetectionResult is the outcome of one plagiarism check
type DetectionResult struct {
	OriginalityScore float64    `bson:"originalityScore" json:"originality_score"`
	TotalMatches     int        `bson:"totalMatches" json:"total_matches"`
	Matches          []Match    `bson:"matches" json:"matches"`
	Statistics       Statistics `bson:"statistics" json:"statistics"`
}

// CheckStatus tracks the lifecycle of an asynchronous check
type CheckStatus string

const (
	CheckQueued     CheckStatus = "queued"
	CheckProcessing CheckStatus = "processing"
	CheckCompleted  CheckStatus = "completed"
	CheckFailed     CheckStatus = "failed"
)

// CheckRecord is the persisted form of a finished (or failed) check
type CheckRecord struct {
	ID               string      `bson:"checkId" json:"check_id"`
	UserID           string      `bson:"userId" json:"user_id"`
	TextPreview      string      `bson:"textPreview" json:"text_preview"`
	TextLength       int         `bson:"textLength" json:"text_length"`
	WordCount        int         `bson:"wordCount" json:"word_count"`
	Language         string      `bson:"language" json:"language"`
	OriginalityScore float64     `bson:"originalityScore" json:"originality_score"`
	TotalMatches     int         `bson:"totalMatches" json:"total_matches"`
	UniqueSources    int         `bson:"uniqueSources" json:"unique_sources"`
	Matches          []Match     `bson:"matches" json:"matches"`
	Statistics       Statistics  `bson:"statistics" json:"statistics"`
	Status           CheckStatus `bson:"status" json:"status"`
	CreatedAt        time.Time   `bson:"createdAt" json:"created_at"`
	CompletedAt      *time.Time  `bson:"completedAt,omitempty" json:"completed_at,omitempty"`
}

// CheckRequest is the payload for submitting a plagiarism check
type CheckRequest struct {
	Text        string `json:"text" binding:"required"`
	Language    string `json:"language"`
	CheckOnline *bool  `json:"check_online"`
}

// CheckResponse is returned when a check has been accepted
type CheckResponse struct {
	CheckID string      `json:"check_id"`
	Status  CheckStatus `json:"status"`
}

// CheckStatusRecord is the transient per-check status kept in Redis
type CheckStatusRecord struct {
	CheckID   string      `json:"check_id"`
	Status    CheckStatus `json:"status"`
	Stage     string      `json:"stage,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SuggestedPaper is one candidate reference for a claim
type SuggestedPaper struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Year          int      `json:"year,omitempty"`
	URL           string   `json:"url,omitempty"`
	CitationCount int      `json:"citation_count"`
}

// CitationSuggestion pairs an evidentiary claim with candidate references
type CitationSuggestion struct {
	Claim     string           `json:"claim"`
	Papers    []SuggestedPaper `json:"papers"`
	Relevance float64          `json:"relevance"`
}

// CitationSuggestRequest is the payload for citation suggestions
type CitationSuggestRequest struct {
	Text string `json:"text" binding:"required"`
}
