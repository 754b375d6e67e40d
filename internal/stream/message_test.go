package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngestDocument(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		doc, err := ParseIngestDocument(&StreamMessage{
			ID: "1-0",
			Fields: map[string]string{
				"docId":  "doc-1",
				"title":  "Crop Rotation Study",
				"source": "archive",
				"text":   "full document body",
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", doc.DocID)
		assert.Equal(t, "Crop Rotation Study", doc.Title)
		assert.Equal(t, "archive", doc.Source)
		assert.Equal(t, "full document body", doc.Text)
	})

	t.Run("missing docId", func(t *testing.T) {
		_, err := ParseIngestDocument(&StreamMessage{
			ID:     "2-0",
			Fields: map[string]string{"text": "body"},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "2-0")
		assert.Contains(t, err.Error(), "docId")
	})

	t.Run("missing text", func(t *testing.T) {
		_, err := ParseIngestDocument(&StreamMessage{
			ID:     "3-0",
			Fields: map[string]string{"docId": "doc-3", "text": "   "},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "text")
	})

	t.Run("defaults", func(t *testing.T) {
		doc, err := ParseIngestDocument(&StreamMessage{
			ID:     "4-0",
			Fields: map[string]string{"docId": "doc-4", "text": "body"},
		})

		require.NoError(t, err)
		assert.Equal(t, "doc-4", doc.Title)
		assert.Equal(t, "ingest", doc.Source)
	})
}
