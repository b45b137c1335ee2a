package worker

// dlq.go — dead-letter parking for exhausted jobs.
// Each source queue gets its own Redis list (dlq:jobs:training etc). The
// payload is stored verbatim, so an operator can LPUSH it straight back onto
// the source queue once the underlying failure is fixed.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DeadJob records everything needed to diagnose and replay a failed job.
type DeadJob struct {
	SourceQueue string          `json:"source_queue"`
	JobType     string          `json:"job_type"`
	Payload     json.RawMessage `json:"payload"`
	Reason      string          `json:"reason"`
	Attempts    int             `json:"attempts"`
	FailedAt    time.Time       `json:"failed_at"`
}

func deadLetterKey(queue string) string {
	return "dlq:" + queue
}

// ParkDeadJob moves an unrecoverable job onto its queue's dead-letter list.
// Parking is best-effort: a lost entry is logged, never propagated, since the
// caller has already given up on the job.
func ParkDeadJob(ctx context.Context, rdb *redis.Client, job DeadJob) {
	job.FailedAt = time.Now().UTC()

	data, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Str("queue", job.SourceQueue).Msg("dlq: marshal dead job")
		return
	}
	if err := rdb.LPush(ctx, deadLetterKey(job.SourceQueue), data).Err(); err != nil {
		log.Error().Err(err).Str("queue", job.SourceQueue).Msg("dlq: park dead job")
		return
	}

	log.Warn().
		Str("queue", job.SourceQueue).
		Str("job_type", job.JobType).
		Str("reason", job.Reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job parked for manual inspection")
}

// DeadLetterLength reports how many jobs are parked for a source queue.
func DeadLetterLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, deadLetterKey(queue)).Result()
}
