package detect

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"scholarguard/internal/metrics"
	"scholarguard/internal/models"
)

// Ingestor adds external documents to the fingerprint corpus so later
// checks can match against them.
type Ingestor struct {
	fingerprint  *FingerprintIndex
	minChunkSize int
}

func NewIngestor(fingerprint *FingerprintIndex, minChunkSize int) *Ingestor {
	if minChunkSize <= 0 {
		minChunkSize = DefaultMinChunkSize
	}
	return &Ingestor{
		fingerprint:  fingerprint,
		minChunkSize: minChunkSize,
	}
}

// Ingest chunks the document text and stores one fingerprint per chunk
func (i *Ingestor) Ingest(ctx context.Context, doc *models.IngestDocument) error {
	chunks := ChunkText(doc.Text, i.minChunkSize)
	if len(chunks) == 0 {
		log.Debug().Str("doc_id", doc.DocID).Msg("Ingest document produced no chunks")
		return nil
	}

	rec := &models.FingerprintRecord{
		DocID:  doc.DocID,
		Title:  doc.Title,
		Source: doc.Source,
	}
	if err := i.fingerprint.StoreChunks(ctx, chunks, rec); err != nil {
		return fmt.Errorf("failed to ingest document %s: %w", doc.DocID, err)
	}

	metrics.IncDocumentsIngested()
	log.Info().
		Str("doc_id", doc.DocID).
		Int("chunks", len(chunks)).
		Msg("Document ingested into fingerprint corpus")

	return nil
}
