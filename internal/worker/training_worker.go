package worker

// training_worker.go
// Processes model-training jobs from QueueTraining.
// Fits a fresh regression model for one SKU and persists the artifact.
// Implements exponential backoff (max 3 retries) before giving up to the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"pricecast/internal/forecast"
	"pricecast/internal/service"
)

const maxTrainingAttempts = 3

// TrainingJobPayload is the job envelope sent to QueueTraining.
type TrainingJobPayload struct {
	SKU string `json:"sku"`
}

// TrainingWorker processes training jobs from QueueTraining.
type TrainingWorker struct {
	training service.TrainingService
	rdb      *redis.Client
}

func NewTrainingWorker(training service.TrainingService, rdb *redis.Client) *TrainingWorker {
	return &TrainingWorker{training: training, rdb: rdb}
}

// Process handles a single training job:
//  1. Parse TrainingJobPayload from the job envelope
//  2. Run the training pipeline with exponential backoff
//  3. On persistent failure, move the job to the DLQ
//
// Insufficient history is terminal, not retryable: more attempts will not
// conjure more observations. It is logged and dropped without a DLQ entry,
// since the scheduled retrain will pick the SKU up once data accrues.
func (w *TrainingWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload TrainingJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("training_worker: invalid payload")
		return
	}
	if payload.SKU == "" {
		log.Warn().Msg("training_worker: empty sku — skipping")
		return
	}

	trainErr := withRetry(ctx, maxTrainingAttempts, func(attempt int) error {
		_, err := w.training.TrainModel(ctx, payload.SKU)
		if err != nil && !errors.As(err, new(*forecast.InsufficientHistoryError)) {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("sku", payload.SKU).
				Msg("training_worker: attempt failed, retrying")
		}
		return err
	})
	if trainErr == nil {
		return
	}

	var insufficient *forecast.InsufficientHistoryError
	if errors.As(trainErr, &insufficient) {
		log.Info().
			Str("sku", payload.SKU).
			Int("observed", insufficient.Observed).
			Int("required", insufficient.Required).
			Msg("training_worker: not enough history yet, skipping")
		return
	}

	log.Error().Err(trainErr).Str("sku", payload.SKU).Msg("training_worker: failed after all retries")
	ParkDeadJob(ctx, w.rdb, DeadJob{
		SourceQueue: QueueTraining,
		JobType:     "training",
		Payload:     raw,
		Reason:      fmt.Sprintf("max retries (%d) exceeded: %v", maxTrainingAttempts, trainErr),
		Attempts:    maxTrainingAttempts,
	})
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			var insufficient *forecast.InsufficientHistoryError
			if errors.As(err, &insufficient) {
				return err // terminal — no point retrying
			}
			continue
		}
		return nil
	}
	return lastErr
}
