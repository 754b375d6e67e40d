package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scholarguard/internal/infra/redis"
	"scholarguard/internal/models"
)

const fingerprintKeyPrefix = "fp:"

// RedisFingerprintStore keeps the fingerprint corpus in Redis, one key
// per chunk digest with a JSON provenance record as value.
type RedisFingerprintStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFingerprintStore wraps the given client. A zero ttl stores
// fingerprints without expiry.
func NewRedisFingerprintStore(client *redis.Client, ttl time.Duration) *RedisFingerprintStore {
	return &RedisFingerprintStore{client: client, ttl: ttl}
}

func (s *RedisFingerprintStore) Lookup(ctx context.Context, hash string) (*models.FingerprintRecord, error) {
	val, err := s.client.Get(ctx, fingerprintKeyPrefix+hash).Result()
	if redis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fingerprint lookup: %w", err)
	}

	var rec models.FingerprintRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("fingerprint record decode: %w", err)
	}
	return &rec, nil
}

func (s *RedisFingerprintStore) Store(ctx context.Context, hash string, rec *models.FingerprintRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("fingerprint record encode: %w", err)
	}
	if err := s.client.Set(ctx, fingerprintKeyPrefix+hash, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("fingerprint store: %w", err)
	}
	return nil
}
