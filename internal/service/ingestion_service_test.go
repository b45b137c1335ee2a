package service

import (
	"context"
	"testing"
	"time"

	"pricecast/internal/dto"
	"pricecast/internal/infra"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestionFixture() (IngestionService, *stubPriceRepo, *stubSalesRepo) {
	priceRepo := &stubPriceRepo{}
	salesRepo := &stubSalesRepo{}
	svc := NewIngestionService(&stubProductRepo{product: testProduct()}, priceRepo, salesRepo)
	return svc, priceRepo, salesRepo
}

func TestRecordPriceObservation(t *testing.T) {
	svc, priceRepo, _ := newIngestionFixture()

	collected := "2026-08-30T14:00:00Z"
	item, err := svc.RecordPriceObservation(context.Background(), dto.RecordPriceObservationRequest{
		SKU:         "SKU-1",
		Price:       decimal.RequireFromString("199.99"),
		CollectedAt: &collected,
	})
	require.NoError(t, err)

	require.Len(t, priceRepo.rows, 1)
	assert.Equal(t, "199.99", item.Price.String())
	assert.Equal(t, "ARS", item.Currency)
	assert.Equal(t, collected, item.CollectedAt)
}

func TestRecordPriceObservation_UnknownSKU(t *testing.T) {
	svc, _, _ := newIngestionFixture()
	_, err := svc.RecordPriceObservation(context.Background(), dto.RecordPriceObservationRequest{
		SKU:   "NOPE",
		Price: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordPriceObservation_BadTimestamp(t *testing.T) {
	svc, _, _ := newIngestionFixture()
	bad := "yesterday"
	_, err := svc.RecordPriceObservation(context.Background(), dto.RecordPriceObservationRequest{
		SKU:         "SKU-1",
		Price:       decimal.NewFromInt(10),
		CollectedAt: &bad,
	})
	assert.Error(t, err)
}

func TestRecordSalesObservation(t *testing.T) {
	svc, _, salesRepo := newIngestionFixture()

	err := svc.RecordSalesObservation(context.Background(), dto.RecordSalesObservationRequest{
		SKU:      "SKU-1",
		SaleDate: "2026-08-30",
		Quantity: 4,
		Revenue:  decimal.RequireFromString("800.00"),
	})
	require.NoError(t, err)
	require.Len(t, salesRepo.rows, 1)
	assert.Equal(t, 4, salesRepo.rows[0].Quantity)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), salesRepo.rows[0].SaleDate.UTC())
}

func TestRecordSalesObservation_BadDate(t *testing.T) {
	svc, _, _ := newIngestionFixture()
	err := svc.RecordSalesObservation(context.Background(), dto.RecordSalesObservationRequest{
		SKU:      "SKU-1",
		SaleDate: "30/08/2026",
	})
	assert.Error(t, err)
}

func TestIngestScrapedOffers_SkipsUnknownSKUs(t *testing.T) {
	svc, priceRepo, _ := newIngestionFixture()

	offers := []infra.ScrapedOffer{
		{SKU: "SKU-1", Price: decimal.NewFromInt(120), SupplierLabel: "mayorista-a"},
		{SKU: "NOT-OURS", Price: decimal.NewFromInt(99)},
		{SKU: "SKU-1", Price: decimal.NewFromInt(118), Currency: "USD"},
	}
	written, err := svc.IngestScrapedOffers(context.Background(), offers)
	require.NoError(t, err)

	assert.Equal(t, 2, written)
	require.Len(t, priceRepo.rows, 2)
	assert.Equal(t, "ARS", priceRepo.rows[0].Currency)
	assert.Equal(t, "USD", priceRepo.rows[1].Currency)
	require.NotNil(t, priceRepo.rows[0].SupplierLabel)
	assert.Equal(t, "mayorista-a", *priceRepo.rows[0].SupplierLabel)
	assert.False(t, priceRepo.rows[0].CollectedAt.IsZero())
}

func TestIngestScrapedOffers_EmptyBatch(t *testing.T) {
	svc, priceRepo, _ := newIngestionFixture()
	written, err := svc.IngestScrapedOffers(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, written)
	assert.Empty(t, priceRepo.rows)
}