package detect

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog/log"

	"scholarguard/internal/models"
)

// matchPreviewLen bounds the snippet carried on a match
const matchPreviewLen = 200

// FingerprintStore is the corpus of previously seen chunk digests.
// Lookup returns nil (no error) for an unknown digest. A nil store
// degrades the exact-match layer to a no-op.
type FingerprintStore interface {
	Lookup(ctx context.Context, hash string) (*models.FingerprintRecord, error)
	Store(ctx context.Context, hash string, rec *models.FingerprintRecord) error
}

// FingerprintIndex is the exact-match layer: it hashes every chunk and
// looks the digest up against the corpus. It only catches byte-identical
// chunks; reordered or paraphrased text falls through to the later layers.
type FingerprintIndex struct {
	store FingerprintStore
}

func NewFingerprintIndex(store FingerprintStore) *FingerprintIndex {
	return &FingerprintIndex{store: store}
}

// Fingerprint returns the 128-bit hex digest used as a corpus key
func Fingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Detect emits an exact match for every chunk whose digest is already in
// the corpus. Records stored under selfID are skipped so a resubmission
// does not match itself. Store failures are logged and treated as "no
// match found"; the pipeline never fails on this layer.
func (f *FingerprintIndex) Detect(ctx context.Context, chunks []Chunk, selfID string) []models.Match {
	if f.store == nil {
		return nil
	}

	matches := make([]models.Match, 0)
	for _, chunk := range chunks {
		rec, err := f.store.Lookup(ctx, Fingerprint(chunk.Text))
		if err != nil {
			log.Warn().Err(err).Int("chunk", chunk.Index).Msg("Fingerprint lookup failed")
			continue
		}
		if rec == nil || rec.DocID == selfID {
			continue
		}

		source := rec.Title
		if source == "" {
			source = rec.DocID
		}

		matches = append(matches, models.Match{
			Text:       truncate(chunk.Text, matchPreviewLen),
			Source:     source,
			Similarity: 1.0,
			StartPos:   chunk.Start,
			EndPos:     chunk.End,
			Type:       models.MatchExact,
		})
	}

	return matches
}

// StoreChunks writes every chunk digest through to the corpus under the
// given provenance record. It returns an error when any write failed so
// ingest callers can retry; lookups remain unaffected by partial writes.
func (f *FingerprintIndex) StoreChunks(ctx context.Context, chunks []Chunk, rec *models.FingerprintRecord) error {
	if f.store == nil || rec == nil {
		return nil
	}

	failed := 0
	for _, chunk := range chunks {
		if err := f.store.Store(ctx, Fingerprint(chunk.Text), rec); err != nil {
			log.Warn().Err(err).Int("chunk", chunk.Index).Str("docId", rec.DocID).Msg("Fingerprint store failed")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to store %d of %d fingerprints", failed, len(chunks))
	}
	return nil
}
