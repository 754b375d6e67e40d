package stream

import (
	"fmt"
	"strings"

	"scholarguard/internal/models"
)

// StreamMessage is one raw entry read off the ingest stream
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseIngestDocument validates a raw stream entry and converts it into
// an ingest document. docId and text are required; title falls back to
// the document id and source to "ingest".
func ParseIngestDocument(msg *StreamMessage) (*models.IngestDocument, error) {
	docID := strings.TrimSpace(msg.Fields["docId"])
	if docID == "" {
		return nil, fmt.Errorf("message %s is missing docId", msg.ID)
	}

	text := msg.Fields["text"]
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message %s is missing text", msg.ID)
	}

	title := strings.TrimSpace(msg.Fields["title"])
	if title == "" {
		title = docID
	}

	source := strings.TrimSpace(msg.Fields["source"])
	if source == "" {
		source = "ingest"
	}

	return &models.IngestDocument{
		DocID:  docID,
		Title:  title,
		Source: source,
		Text:   text,
	}, nil
}
