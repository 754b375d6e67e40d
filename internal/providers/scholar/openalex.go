package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scholarguard/internal/models"
)

const openAlexBaseURL = "https://api.openalex.org"

// OpenAlex searches the OpenAlex works endpoint. Setting mailto joins
// the polite pool, which OpenAlex rewards with higher rate limits.
type OpenAlex struct {
	baseURL    string
	mailto     string
	httpClient *http.Client
}

func NewOpenAlex(mailto string, timeout time.Duration) *OpenAlex {
	return &OpenAlex{
		baseURL:    openAlexBaseURL,
		mailto:     mailto,
		httpClient: newHTTPClient(timeout),
	}
}

func (o *OpenAlex) Name() string { return "openalex" }

type openAlexResponse struct {
	Results []struct {
		ID              string           `json:"id"`
		Title           string           `json:"title"`
		DisplayName     string           `json:"display_name"`
		PublicationYear int              `json:"publication_year"`
		CitedByCount    int              `json:"cited_by_count"`
		AbstractIndex   map[string][]int `json:"abstract_inverted_index"`
		Authorships     []struct {
			Author struct {
				DisplayName string `json:"display_name"`
			} `json:"author"`
		} `json:"authorships"`
		PrimaryLocation struct {
			LandingPageURL string `json:"landing_page_url"`
		} `json:"primary_location"`
		Concepts []struct {
			DisplayName string `json:"display_name"`
		} `json:"concepts"`
	} `json:"results"`
}

func (o *OpenAlex) Search(ctx context.Context, query string, limit int) ([]models.Paper, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("per-page", strconv.Itoa(limit))
	if o.mailto != "" {
		params.Set("mailto", o.mailto)
	}

	reqURL := fmt.Sprintf("%s/works?%s", o.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.httpClient.Do(httpReq)
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

	var parsed openAlexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	papers := make([]models.Paper, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		title := r.Title
		if title == "" {
			title = r.DisplayName
		}

		authors := make([]string, 0, len(r.Authorships))
		for _, a := range r.Authorships {
			authors = append(authors, a.Author.DisplayName)
		}

		topics := make([]string, 0, len(r.Concepts))
		for _, c := range r.Concepts {
			topics = append(topics, c.DisplayName)
		}

		papers = append(papers, models.Paper{
			ID:            r.ID,
			Title:         title,
			Abstract:      reconstructAbstract(r.AbstractIndex),
			Year:          r.PublicationYear,
			CitationCount: r.CitedByCount,
			Authors:       authors,
			URL:           r.PrimaryLocation.LandingPageURL,
			Topics:        topics,
		})
	}
	return papers, nil
}

// reconstructAbstract rebuilds plain text from OpenAlex's inverted
// index, which maps each word to the positions it occupies.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	maxPos := -1
	for _, positions := range index {
		for _, p := range positions {
			if p > maxPos {
				maxPos = p
			}
		}
	}
	if maxPos < 0 {
		return ""
	}

	slots := make([]string, maxPos+1)
	for word, positions := range index {
		for _, p := range positions {
			if p >= 0 {
				slots[p] = word
			}
		}
	}

	words := make([]string, 0, len(slots))
	for _, w := range slots {
		if w != "" {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}
