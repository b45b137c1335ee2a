package service

import (
	"context"
	"testing"
	"time"

	"pricecast/internal/dto"
	"pricecast/internal/forecast"
	"pricecast/internal/mlstore"
	"pricecast/internal/model"
	"pricecast/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ──

type stubProductRepo struct {
	product *model.Product
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (s *stubProductRepo) Create(ctx context.Context, p *model.Product) error { return nil }

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if s.product == nil || s.product.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

func (s *stubProductRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	if s.product == nil || s.product.SKU != sku {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

func (s *stubProductRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	if s.product == nil {
		return nil, 0, nil
	}
	return []model.Product{*s.product}, 1, nil
}

func (s *stubProductRepo) Update(ctx context.Context, p *model.Product) error     { return nil }
func (s *stubProductRepo) SoftDelete(ctx context.Context, id uuid.UUID) error     { return nil }
func (s *stubProductRepo) Reactivate(ctx context.Context, id uuid.UUID) error     { return nil }
func (s *stubProductRepo) ListBelowMinStock(ctx context.Context) ([]model.Product, error) {
	return nil, nil
}
func (s *stubProductRepo) ListActiveSKUs(ctx context.Context) ([]string, error) { return nil, nil }

type stubHistoryService struct {
	series      *forecast.DailySeries
	seriesErr   error
	fallback    []float64
	fallbackDay time.Time
	fallbackErr error
}

var _ HistoryService = (*stubHistoryService)(nil)

func (s *stubHistoryService) LoadDailySeries(ctx context.Context, product *model.Product, lookbackDays int) (*forecast.DailySeries, error) {
	return s.series, s.seriesErr
}

func (s *stubHistoryService) LoadFallbackWindow(ctx context.Context, product *model.Product) ([]float64, time.Time, error) {
	return s.fallback, s.fallbackDay, s.fallbackErr
}

// ── Helpers ──

// lagOnlyRegressor reacts only to yesterday's price, so each autoregressive
// step compounds by a fixed factor — easy to assert against by hand.
func lagOnlyRegressor(factor, intercept float64) *forecast.Regressor {
	weights := make(map[string]float64, forecast.DefaultSchema().Len())
	for _, name := range forecast.DefaultSchema().Names() {
		weights[name] = 0
	}
	weights["price_lag_1"] = factor
	return &forecast.Regressor{Weights: weights, Intercept: intercept}
}

func flatSeries(start time.Time, days int, price float64) *forecast.DailySeries {
	prices := make([]float64, days)
	quantities := make([]float64, days)
	for i := range prices {
		prices[i] = price
	}
	return &forecast.DailySeries{Start: start, Prices: prices, Quantities: quantities}
}

func saveModel(t *testing.T, store *mlstore.Store, sku string, reg *forecast.Regressor) {
	t.Helper()
	meta := mlstore.Metadata{
		SKU:             sku,
		ModelType:       "linear_autoregressive",
		Version:         "1.0.0",
		FeatureNames:    forecast.DefaultSchema().Names(),
		Metrics:         map[string]float64{"mape": 3.5},
		TrainedAt:       time.Now().UTC(),
		TrainingSamples: 100,
	}
	require.NoError(t, store.Save(context.Background(), sku, reg, nil, meta))
}

func newForecastService(t *testing.T, history HistoryService, store *mlstore.Store) ForecastService {
	t.Helper()
	return NewForecastService(
		&stubProductRepo{product: testProduct()},
		history,
		store,
		nil,
		forecast.NewHolidayCalendar("US"),
		90,
		time.Minute,
	)
}

// ── Tests ──

func TestPredictPrices_AutoregressiveCompounding(t *testing.T) {
	store := mlstore.New(t.TempDir(), nil)
	saveModel(t, store, "SKU-1", lagOnlyRegressor(1.01, 0))

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	history := &stubHistoryService{series: flatSeries(start, 30, 100)}
	svc := newForecastService(t, history, store)

	resp, err := svc.PredictPrices(context.Background(), "SKU-1", 3)
	require.NoError(t, err)

	assert.Equal(t, "SKU-1", resp.SKU)
	assert.Equal(t, "linear_autoregressive", resp.ModelUsed)
	assert.Equal(t, map[string]float64{"mape": 3.5}, resp.Metrics)

	// Day 1 sees lag 100, day 2 sees the raw 101, day 3 the raw 102.01.
	require.Len(t, resp.Prices, 3)
	assert.Equal(t, "101", resp.Prices[0].String())
	assert.Equal(t, "102.01", resp.Prices[1].String())
	assert.Equal(t, "103.03", resp.Prices[2].String())

	// Dates continue from the end of the observed series.
	assert.Equal(t, []string{"2026-03-31", "2026-04-01", "2026-04-02"}, resp.Dates)
}

func TestPredictPrices_HorizonCardinality(t *testing.T) {
	store := mlstore.New(t.TempDir(), nil)
	saveModel(t, store, "SKU-1", lagOnlyRegressor(1.0, 0))

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	history := &stubHistoryService{series: flatSeries(start, 45, 100)}
	svc := newForecastService(t, history, store)

	for _, days := range []int{1, 7, 30} {
		resp, err := svc.PredictPrices(context.Background(), "SKU-1", days)
		require.NoError(t, err)
		assert.Len(t, resp.Dates, days)
		assert.Len(t, resp.Prices, days)
	}
}

func TestPredictPrices_ClampsNegativePredictions(t *testing.T) {
	store := mlstore.New(t.TempDir(), nil)
	saveModel(t, store, "SKU-1", lagOnlyRegressor(0, -50))

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	history := &stubHistoryService{series: flatSeries(start, 30, 100)}
	svc := newForecastService(t, history, store)

	resp, err := svc.PredictPrices(context.Background(), "SKU-1", 5)
	require.NoError(t, err)
	for _, p := range resp.Prices {
		assert.True(t, p.IsZero(), "got %s", p)
	}
}

func TestPredictPrices_FallbackWhenNoModel(t *testing.T) {
	store := mlstore.New(t.TempDir(), nil)
	history := &stubHistoryService{
		fallback:    []float64{100, 102, 104, 98},
		fallbackDay: time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
	}
	svc := newForecastService(t, history, store)

	resp, err := svc.PredictPrices(context.Background(), "SKU-1", 7)
	require.NoError(t, err)

	assert.Equal(t, ModelUsedFallback, resp.ModelUsed)
	assert.Empty(t, resp.Metrics)
	require.Len(t, resp.Prices, 7)
	for _, p := range resp.Prices {
		assert.Equal(t, "101", p.String())
	}
	// The flat horizon continues from the last observation, not from the
	// wall clock. Stale history must still produce contiguous dates.
	assert.Equal(t, "2026-03-31", resp.Dates[0])
	assert.Equal(t, "2026-04-06", resp.Dates[6])
}

func TestPredictPrices_DegradesToFallbackOnThinHistory(t *testing.T) {
	store := mlstore.New(t.TempDir(), nil)
	saveModel(t, store, "SKU-1", lagOnlyRegressor(1.0, 0))

	history := &stubHistoryService{
		seriesErr:   &forecast.InsufficientHistoryError{SKU: "SKU-1", Observed: 20, Required: 30},
		fallback:    []float64{50, 50},
		fallbackDay: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
	}
	svc := newForecastService(t, history, store)

	resp, err := svc.PredictPrices(context.Background(), "SKU-1", 2)
	require.NoError(t, err)
	assert.Equal(t, ModelUsedFallback, resp.ModelUsed)
	assert.Equal(t, "50", resp.Prices[0].String())
}

func TestPredictPrices_InsufficientForBothPaths(t *testing.T) {
	store := mlstore.New(t.TempDir(), nil)
	history := &stubHistoryService{
		fallbackErr: &forecast.InsufficientHistoryError{SKU: "SKU-1", Observed: 5, Required: 14},
	}
	svc := newForecastService(t, history, store)

	_, err := svc.PredictPrices(context.Background(), "SKU-1", 7)
	var ih *forecast.InsufficientHistoryError
	require.ErrorAs(t, err, &ih)
	assert.Equal(t, 14, ih.Required)
}

func TestPredictPrices_InvalidHorizon(t *testing.T) {
	store := mlstore.New(t.TempDir(), nil)
	svc := newForecastService(t, &stubHistoryService{}, store)

	for _, days := range []int{0, -1} {
		_, err := svc.PredictPrices(context.Background(), "SKU-1", days)
		assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)
	}
}

func TestPredictPrices_UnknownProduct(t *testing.T) {
	store := mlstore.New(t.TempDir(), nil)
	svc := newForecastService(t, &stubHistoryService{}, store)

	_, err := svc.PredictPrices(context.Background(), "NOPE", 7)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}