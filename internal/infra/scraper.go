package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ScrapedOffer is one supplier offer returned by the scraper sidecar. The
// sidecar handles the actual crawling and anti-bot dance; the Go backend
// only consumes its normalized output.
type ScrapedOffer struct {
	SKU           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	SupplierLabel string          `json:"supplier_label"`
	CollectedAt   time.Time       `json:"collected_at"`
}

type scrapeResponse struct {
	Offers []ScrapedOffer `json:"offers"`
}

// ScraperClient is an HTTP client that delegates market crawling to the
// scraper sidecar. This decoupling isolates scraping failures (and its
// dependency churn) from the core Go backend.
type ScraperClient struct {
	sidecarURL string
	httpClient *http.Client
}

func NewScraperClient(sidecarURL string) *ScraperClient {
	return &ScraperClient{
		sidecarURL: sidecarURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchOffers asks the sidecar for the latest batch of supplier offers.
func (c *ScraperClient) FetchOffers(ctx context.Context) ([]ScrapedOffer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sidecarURL+"/offers", nil)
	if err != nil {
		return nil, fmt.Errorf("scraper: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper: sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraper: sidecar returned %d", resp.StatusCode)
	}

	var result scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("scraper: decode response: %w", err)
	}
	return result.Offers, nil
}
