package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"scholarguard/internal/models"
)

const semanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1"

// paperSearchFields is the fields CSV requested on every search
const paperSearchFields = "title,abstract,year,citationCount,authors,url,venue,fieldsOfStudy"

// SemanticScholar searches the Semantic Scholar Graph API. An API key
// is optional; without one requests run against the public rate limit.
type SemanticScholar struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSemanticScholar(apiKey string, timeout time.Duration) *SemanticScholar {
	return &SemanticScholar{
		baseURL:    semanticScholarBaseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
	}
}

func (s *SemanticScholar) Name() string { return "semanticscholar" }

type semanticScholarResponse struct {
	Total int `json:"total"`
	Data  []struct {
		PaperID       string   `json:"paperId"`
		Title         string   `json:"title"`
		Abstract      string   `json:"abstract"`
		Year          int      `json:"year"`
		CitationCount int      `json:"citationCount"`
		URL           string   `json:"url"`
		Venue         string   `json:"venue"`
		FieldsOfStudy []string `json:"fieldsOfStudy"`
		Authors       []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"data"`
}

func (s *SemanticScholar) Search(ctx context.Context, query string, limit int) ([]models.Paper, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", paperSearchFields)
	return s.search(ctx, params)
}

// SearchYear restricts results to papers published in the given year
// ("2024") or year range ("2020-2024").
func (s *SemanticScholar) SearchYear(ctx context.Context, query, year string, limit int) ([]models.Paper, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("year", year)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", paperSearchFields)
	return s.search(ctx, params)
}

func (s *SemanticScholar) search(ctx context.Context, params url.Values) ([]models.Paper, error) {
	reqURL := fmt.Sprintf("%s/paper/search?%s", s.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		httpReq.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var parsed semanticScholarResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	papers := make([]models.Paper, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		authors := make([]string, 0, len(d.Authors))
		for _, a := range d.Authors {
			authors = append(authors, a.Name)
		}
		papers = append(papers, models.Paper{
			ID:            d.PaperID,
			Title:         d.Title,
			Abstract:      d.Abstract,
			Year:          d.Year,
			CitationCount: d.CitationCount,
			Authors:       authors,
			Venue:         d.Venue,
			URL:           d.URL,
			Topics:        d.FieldsOfStudy,
		})
	}
	return papers, nil
}
