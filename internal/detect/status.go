package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"scholarguard/internal/infra/redis"
	"scholarguard/internal/models"
)

const statusTTL = 24 * time.Hour

func statusKey(checkID string) string {
	return "status:check:" + checkID
}

// UpdateStatus records a check's lifecycle state in Redis so the API
// can answer report polls before the result lands in Mongo.
func UpdateStatus(ctx context.Context, redisClient *redis.Client, checkID string, status models.CheckStatus, stage string) error {
	validStatuses := map[models.CheckStatus]bool{
		models.CheckQueued:     true,
		models.CheckProcessing: true,
		models.CheckCompleted:  true,
		models.CheckFailed:     true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("unknown status: %s", status)
	}

	record := models.CheckStatusRecord{
		CheckID:   checkID,
		Status:    status,
		Stage:     stage,
		UpdatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal status record: %w", err)
	}

	rkey := statusKey(checkID)
	if err := redisClient.Set(ctx, rkey, data, statusTTL).Err(); err != nil {
		log.Error().Err(err).
			Str("status", string(status)).
			Str("checkId", checkID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("status", string(status)).
		Str("stage", stage).
		Str("checkId", checkID).
		Msg("Status updated in Redis")

	return nil
}

// GetStatus returns the tracked status for a check, or nil when the
// key is unknown or expired.
func GetStatus(ctx context.Context, redisClient *redis.Client, checkID string) (*models.CheckStatusRecord, error) {
	val, err := redisClient.Get(ctx, statusKey(checkID)).Result()
	if redis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status from Redis: %w", err)
	}

	var record models.CheckStatusRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status record: %w", err)
	}
	return &record, nil
}
