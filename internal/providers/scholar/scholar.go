// Package scholar provides clients for external academic search APIs
// behind a single Provider interface. A provider error means "no usable
// results from this source"; callers degrade rather than fail.
package scholar

import (
	"context"
	"net/http"
	"time"

	"scholarguard/internal/models"
)

const defaultTimeout = 20 * time.Second

// Provider queries an external academic corpus for papers matching a
// free-text query, returning at most limit results.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]models.Paper, error)
	Name() string
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
