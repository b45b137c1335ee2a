package worker

// scrape_cron.go
// Background goroutine that periodically enqueues a scrape job so the
// observation streams keep filling without manual triggers. Skips ticks
// while the sidecar circuit breaker is open to avoid queueing work that is
// doomed to fast-fail.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"pricecast/internal/infra"
)

// ScrapeCronConfig holds all dependencies for the scrape scheduler.
type ScrapeCronConfig struct {
	Dispatcher *Dispatcher
	Breaker    *infra.ScraperBreaker
	Interval   time.Duration
}

// StartScrapeCron launches a background goroutine that enqueues one scrape
// job per interval. It fires once at startup so a fresh deployment has data
// without waiting a full interval. Respects the context for graceful
// shutdown.
func StartScrapeCron(ctx context.Context, cfg ScrapeCronConfig) {
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("scrape_cron: started")
		enqueueScrape(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("scrape_cron: shutting down")
				return
			case <-ticker.C:
				enqueueScrape(ctx, cfg)
			}
		}
	}()
}

func enqueueScrape(ctx context.Context, cfg ScrapeCronConfig) {
	// Skip the tick while the breaker is open, don't queue against a downed sidecar.
	if cfg.Breaker.State() == infra.BreakerOpen {
		log.Debug().Msg("scrape_cron: sidecar breaker open, skipping tick")
		return
	}
	if err := cfg.Dispatcher.EnqueueScrape(ctx, ScrapeJobPayload{Trigger: "cron"}); err != nil {
		log.Error().Err(err).Msg("scrape_cron: failed to enqueue scrape job")
	}
}
