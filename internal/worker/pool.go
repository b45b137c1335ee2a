package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueTraining = "jobs:training"
	QueueScrape   = "jobs:scrape"
	QueueEmail    = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes one dequeued job payload. Handlers own their error
// handling: a job that cannot be recovered goes to the DLQ, never back to
// the caller.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// Handlers maps each queue to its worker. Nil entries drop jobs with a log
// line, which keeps partial deployments (e.g. no SMTP configured) running.
type Handlers struct {
	Training Handler
	Scrape   Handler
	Email    Handler
}

func (h Handlers) forQueue(queue string) Handler {
	switch queue {
	case QueueTraining:
		return h.Training
	case QueueScrape:
		return h.Scrape
	case QueueEmail:
		return h.Email
	default:
		return nil
	}
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueTraining pushes a model-training job to Redis.
func (d *Dispatcher) EnqueueTraining(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueTraining, "training", payload)
}

// EnqueueScrape pushes a sidecar scrape job to Redis.
func (d *Dispatcher) EnqueueScrape(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueScrape, "scrape", payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming all three queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers Handlers) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers Handlers) {
	queues := []string{QueueTraining, QueueScrape, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	handler := handlers.forQueue(queue)
	if handler == nil {
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("no handler for queue, dropping job")
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	handler.Process(ctx, job.Payload)
}
