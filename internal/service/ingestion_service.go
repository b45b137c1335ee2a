package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"pricecast/internal/dto"
	"pricecast/internal/infra"
	"pricecast/internal/model"
	"pricecast/internal/repository"
)

const defaultCurrency = "ARS"

// IngestionService is the single write path into the observation streams.
// Manual API appends and scraped sidecar batches both land here.
type IngestionService interface {
	RecordPriceObservation(ctx context.Context, req dto.RecordPriceObservationRequest) (*dto.PriceObservationItem, error)
	RecordSalesObservation(ctx context.Context, req dto.RecordSalesObservationRequest) error
	// IngestScrapedOffers persists a scraped batch. Offers for unknown SKUs
	// are skipped, not failed: the sidecar scrapes the whole market, not
	// just our catalog. Returns how many observations were written.
	IngestScrapedOffers(ctx context.Context, offers []infra.ScrapedOffer) (int, error)
	ListPriceHistory(ctx context.Context, sku string, page, limit int) (*dto.PriceHistoryListResponse, error)
}

type ingestionService struct {
	productRepo repository.ProductRepository
	priceRepo   repository.PriceObservationRepository
	salesRepo   repository.SalesObservationRepository
}

func NewIngestionService(
	productRepo repository.ProductRepository,
	priceRepo repository.PriceObservationRepository,
	salesRepo repository.SalesObservationRepository,
) IngestionService {
	return &ingestionService{
		productRepo: productRepo,
		priceRepo:   priceRepo,
		salesRepo:   salesRepo,
	}
}

func (s *ingestionService) RecordPriceObservation(ctx context.Context, req dto.RecordPriceObservationRequest) (*dto.PriceObservationItem, error) {
	product, err := s.productRepo.FindBySKU(ctx, req.SKU)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	collectedAt := time.Now().UTC()
	if req.CollectedAt != nil {
		collectedAt, err = time.Parse(time.RFC3339, *req.CollectedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid collected_at: %w", err)
		}
		collectedAt = collectedAt.UTC()
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	obs := model.PriceObservation{
		ProductID:     product.ID,
		Price:         req.Price,
		Currency:      currency,
		SupplierLabel: req.SupplierLabel,
		CollectedAt:   collectedAt,
	}
	if err := s.priceRepo.Append(ctx, &obs); err != nil {
		return nil, err
	}
	return observationToItem(&obs), nil
}

func (s *ingestionService) RecordSalesObservation(ctx context.Context, req dto.RecordSalesObservationRequest) error {
	product, err := s.productRepo.FindBySKU(ctx, req.SKU)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	saleDate, err := time.Parse("2006-01-02", req.SaleDate)
	if err != nil {
		return fmt.Errorf("invalid sale_date: %w", err)
	}

	return s.salesRepo.Append(ctx, &model.SalesObservation{
		ProductID: product.ID,
		SaleDate:  saleDate,
		Quantity:  req.Quantity,
		Revenue:   req.Revenue,
	})
}

func (s *ingestionService) IngestScrapedOffers(ctx context.Context, offers []infra.ScrapedOffer) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}

	batch := make([]model.PriceObservation, 0, len(offers))
	skipped := 0
	for _, offer := range offers {
		product, err := s.productRepo.FindBySKU(ctx, offer.SKU)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				skipped++
				continue
			}
			return 0, err
		}
		label := offer.SupplierLabel
		collectedAt := offer.CollectedAt
		if collectedAt.IsZero() {
			collectedAt = time.Now().UTC()
		}
		currency := offer.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		batch = append(batch, model.PriceObservation{
			ProductID:     product.ID,
			Price:         offer.Price,
			Currency:      currency,
			SupplierLabel: &label,
			CollectedAt:   collectedAt,
		})
	}

	if len(batch) > 0 {
		if err := s.priceRepo.AppendBatch(ctx, batch); err != nil {
			return 0, err
		}
	}
	log.Info().
		Int("ingested", len(batch)).
		Int("skipped", skipped).
		Msg("scraped offers ingested")
	return len(batch), nil
}

func (s *ingestionService) ListPriceHistory(ctx context.Context, sku string, page, limit int) (*dto.PriceHistoryListResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	obs, total, err := s.priceRepo.ListByProduct(ctx, product.ID, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PriceObservationItem, 0, len(obs))
	for i := range obs {
		items = append(items, *observationToItem(&obs[i]))
	}
	return &dto.PriceHistoryListResponse{
		Data:  items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func observationToItem(o *model.PriceObservation) *dto.PriceObservationItem {
	return &dto.PriceObservationItem{
		ID:            o.ID.String(),
		Price:         o.Price,
		Currency:      o.Currency,
		SupplierLabel: o.SupplierLabel,
		Synthetic:     o.Synthetic,
		CollectedAt:   o.CollectedAt.Format(time.RFC3339),
	}
}
