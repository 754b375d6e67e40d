package scholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arxivFeedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query Results</title>
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <title>Detecting  Paraphrase
 Reuse</title>
    <summary>We study
  reuse detection.</summary>
    <published>2024-01-05T00:00:00Z</published>
    <author><name>Grace Hopper</name></author>
    <author><name>Alan Turing</name></author>
    <link href="http://arxiv.org/abs/2401.00001v1" rel="alternate" type="text/html"/>
    <category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.IR" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
</feed>`

func TestArxiv_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all:paraphrase reuse", r.URL.Query().Get("search_query"))
		assert.Equal(t, "0", r.URL.Query().Get("start"))
		assert.Equal(t, "2", r.URL.Query().Get("max_results"))

		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(arxivFeedFixture))
	}))
	defer server.Close()

	provider := NewArxiv(time.Second)
	provider.baseURL = server.URL
	assert.Equal(t, "arxiv", provider.Name())

	papers, err := provider.Search(context.Background(), "paraphrase reuse", 2)

	require.NoError(t, err)
	require.Len(t, papers, 1)
	p := papers[0]
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", p.ID)
	assert.Equal(t, "Detecting Paraphrase Reuse", p.Title)
	assert.Equal(t, "We study reuse detection.", p.Abstract)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, []string{"Grace Hopper", "Alan Turing"}, p.Authors)
	assert.Equal(t, "arXiv", p.Venue)
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", p.URL)
	assert.Equal(t, []string{"cs.CL", "cs.IR"}, p.Topics)
}

func TestArxiv_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewArxiv(time.Second)
	provider.baseURL = server.URL

	_, err := provider.Search(context.Background(), "anything", 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "arxiv")
}
