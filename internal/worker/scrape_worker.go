package worker

// scrape_worker.go
// Processes scrape jobs from QueueScrape.
// Pulls the latest supplier offers from the scraper sidecar (through the
// circuit breaker), persists them as price observations, and queues a
// restock alert when products sit below their minimum stock level.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"pricecast/internal/infra"
	"pricecast/internal/repository"
	"pricecast/internal/service"
)

// ScrapeJobPayload is the job envelope sent to QueueScrape. Trigger records
// whether the cron or a manual API call requested the scrape.
type ScrapeJobPayload struct {
	Trigger string `json:"trigger"`
}

// ScrapeWorker processes scrape jobs from QueueScrape.
type ScrapeWorker struct {
	scraper     *infra.ScraperClient
	cb          *infra.ScraperBreaker
	ingestion   service.IngestionService
	productRepo repository.ProductRepository
	dispatcher  *Dispatcher
	alertEmail  string
}

func NewScrapeWorker(
	scraper *infra.ScraperClient,
	cb *infra.ScraperBreaker,
	ingestion service.IngestionService,
	productRepo repository.ProductRepository,
	dispatcher *Dispatcher,
	alertEmail string,
) *ScrapeWorker {
	return &ScrapeWorker{
		scraper:     scraper,
		cb:          cb,
		ingestion:   ingestion,
		productRepo: productRepo,
		dispatcher:  dispatcher,
		alertEmail:  alertEmail,
	}
}

// Process handles a single scrape job:
//  1. Fetch offers from the sidecar through the circuit breaker
//  2. Persist the batch as price observations
//  3. Scan for products below minimum stock and enqueue an alert email
func (w *ScrapeWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ScrapeJobPayload
	_ = json.Unmarshal(raw, &payload) // trigger is informational only

	var offers []infra.ScrapedOffer
	cbErr := w.cb.Call(func() error {
		fetched, err := w.scraper.FetchOffers(ctx)
		if err != nil {
			return err
		}
		offers = fetched
		return nil
	})
	if cbErr != nil {
		// No DLQ here: the scrape cron fires again next interval, and a
		// stale DLQ full of timed-out scrape jobs helps nobody.
		log.Error().Err(cbErr).Str("trigger", payload.Trigger).Msg("scrape_worker: fetch failed")
		return
	}

	ingested, err := w.ingestion.IngestScrapedOffers(ctx, offers)
	if err != nil {
		log.Error().Err(err).Msg("scrape_worker: ingest failed")
		return
	}
	log.Info().Int("offers", len(offers)).Int("ingested", ingested).Msg("scrape_worker: batch complete")

	w.checkRestockLevels(ctx)
}

func (w *ScrapeWorker) checkRestockLevels(ctx context.Context) {
	if w.alertEmail == "" {
		return
	}

	low, err := w.productRepo.ListBelowMinStock(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scrape_worker: low-stock scan failed")
		return
	}
	if len(low) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("The following products are below their minimum stock level:\n\n")
	for _, p := range low {
		fmt.Fprintf(&b, "  %-16s %-32s stock %d (min %d)\n", p.SKU, p.Name, p.CurrentStock, p.MinStock)
	}
	b.WriteString("\nConsider raising purchase orders. Forecasted prices are available via the API.\n")

	job := EmailJobPayload{
		ToEmail: w.alertEmail,
		Subject: fmt.Sprintf("Restock alert: %d product(s) below minimum", len(low)),
		Body:    b.String(),
	}
	if err := w.dispatcher.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Msg("scrape_worker: failed to enqueue restock alert")
		return
	}
	log.Info().Int("products", len(low)).Msg("scrape_worker: restock alert enqueued")
}
