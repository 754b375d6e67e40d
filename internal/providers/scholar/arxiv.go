package scholar

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"scholarguard/internal/models"
)

const arxivBaseURL = "http://export.arxiv.org/api/query"

// Arxiv searches the arXiv Atom API across all fields
type Arxiv struct {
	baseURL string
	parser  *gofeed.Parser
}

func NewArxiv(timeout time.Duration) *Arxiv {
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient(timeout)
	return &Arxiv{
		baseURL: arxivBaseURL,
		parser:  parser,
	}
}

func (a *Arxiv) Name() string { return "arxiv" }

func (a *Arxiv) Search(ctx context.Context, query string, limit int) ([]models.Paper, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(limit))

	feedURL := fmt.Sprintf("%s?%s", a.baseURL, params.Encode())
	feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch arxiv feed: %w", err)
	}

	papers := make([]models.Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		year := 0
		if item.PublishedParsed != nil {
			year = item.PublishedParsed.Year()
		}

		authors := make([]string, 0, len(item.Authors))
		for _, person := range item.Authors {
			if person != nil && person.Name != "" {
				authors = append(authors, person.Name)
			}
		}

		link := item.Link
		if link == "" {
			link = item.GUID
		}

		papers = append(papers, models.Paper{
			ID:    item.GUID,
			Title: strings.Join(strings.Fields(item.Title), " "),
			// arXiv wraps titles and abstracts with hard newlines
			Abstract: strings.Join(strings.Fields(item.Description), " "),
			Year:     year,
			Authors:  authors,
			Venue:    "arXiv",
			URL:      link,
			Topics:   item.Categories,
		})
	}
	return papers, nil
}
