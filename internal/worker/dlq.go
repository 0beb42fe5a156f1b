package worker

// dlq.go — dead letter capture for the settle fan-out queues.
// A sale event or receipt job that exhausts its retries lands in
// dlq:jobs:notify / dlq:jobs:receipt, keyed off the queue it came from.
// Entries stay there until an operator replays or discards them.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is the parked job plus enough context to diagnose it:
// which queue it came from, what killed it, and after how many attempts.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339 UTC
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks an exhausted job under dlq:{queue}. Best effort: the sale
// is already committed at this point, so a DLQ write failure is logged and
// swallowed rather than propagated.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}

	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push failed, job dropped")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job parked after retries exhausted")
}

// DLQLength reports the backlog of one queue's DLQ (surfaced by health checks).
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
