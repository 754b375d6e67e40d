package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 10 * time.Second
)

// RetryHandler retries failed message handling with exponential backoff
// and parks messages that exhaust their retries on a dead-letter stream.
type RetryHandler struct {
	client        *redis.Client
	deadLetterKey string
}

func NewRetryHandler(client *redis.Client, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
	}
}

// RetryWithBackoff runs fn until it succeeds or maxRetries attempts are
// exhausted. After the final failure the original fields go to the
// dead-letter stream so the message is never silently lost.
func (r *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	backoff := initialBackoff

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Err(err).
				Str("message_id", messageID).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying message after failure")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		if err = fn(); err == nil {
			return nil
		}
	}

	if dlqErr := r.sendToDeadLetter(ctx, messageID, fields, err); dlqErr != nil {
		log.Error().
			Err(dlqErr).
			Str("message_id", messageID).
			Msg("Failed to park message on dead-letter stream")
	}

	return fmt.Errorf("message %s failed after %d attempts: %w", messageID, maxRetries+1, err)
}

func (r *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error {
	values := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		values[k] = v
	}
	values["original_id"] = messageID
	values["error"] = cause.Error()
	values["failed_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.deadLetterKey,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to append to dead-letter stream: %w", err)
	}

	log.Warn().
		Str("message_id", messageID).
		Str("dead_letter", r.deadLetterKey).
		Msg("Message parked on dead-letter stream")

	return nil
}
