package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"pricecast/internal/dto"
	"pricecast/internal/forecast"
	"pricecast/internal/mlstore"
	"pricecast/internal/model"
	"pricecast/internal/repository"
)

// ModelUsedFallback is the model label reported when no trained artifact is
// available and the flat moving-average path served the forecast.
const ModelUsedFallback = "moving_average_fallback"

// ForecastService produces multi-day price forecasts. It prefers the trained
// per-product model and degrades to the moving-average fallback when no
// artifact exists or the history is too short for the full pipeline.
type ForecastService interface {
	PredictPrices(ctx context.Context, sku string, daysAhead int) (*dto.ForecastResponse, error)
}

type forecastService struct {
	productRepo  repository.ProductRepository
	history      HistoryService
	store        *mlstore.Store
	cache        *redis.Client // may be nil (caching disabled)
	calendar     *forecast.HolidayCalendar
	lookbackDays int
	cacheTTL     time.Duration
}

func NewForecastService(
	productRepo repository.ProductRepository,
	history HistoryService,
	store *mlstore.Store,
	cache *redis.Client,
	calendar *forecast.HolidayCalendar,
	lookbackDays int,
	cacheTTL time.Duration,
) ForecastService {
	return &forecastService{
		productRepo:  productRepo,
		history:      history,
		store:        store,
		cache:        cache,
		calendar:     calendar,
		lookbackDays: lookbackDays,
		cacheTTL:     cacheTTL,
	}
}

func (s *forecastService) PredictPrices(ctx context.Context, sku string, daysAhead int) (*dto.ForecastResponse, error) {
	if daysAhead < 1 {
		return nil, forecast.ErrInvalidHorizon
	}

	cacheKey := fmt.Sprintf("forecast:%s:%d", sku, daysAhead)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	resp, err := s.predict(ctx, product, daysAhead)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

func (s *forecastService) predict(ctx context.Context, product *model.Product, daysAhead int) (*dto.ForecastResponse, error) {
	if !s.store.Exists(product.SKU) {
		return s.fallback(ctx, product, daysAhead)
	}

	series, err := s.history.LoadDailySeries(ctx, product, s.lookbackDays)
	if err != nil {
		// A model exists but the recent window thinned out below the
		// trained-path minimum. The fallback needs less history, so
		// degrade instead of failing.
		var insufficient *forecast.InsufficientHistoryError
		if errors.As(err, &insufficient) {
			return s.fallback(ctx, product, daysAhead)
		}
		return nil, err
	}

	reg, scaler, meta, err := s.store.Load(product.SKU)
	if err != nil {
		return nil, err
	}
	schema, err := meta.Schema()
	if err != nil {
		return nil, err
	}

	// Seed the sliding buffers from the observed tail, then step one day at
	// a time: each raw prediction is pushed back so later horizons see it
	// as lag history. The recorded output is rounded, the buffer is not.
	prices := forecast.NewWindowFrom(forecast.BufferCapacity, series.Prices)
	quantities := forecast.NewWindowFrom(forecast.BufferCapacity, series.Quantities)

	resp := &dto.ForecastResponse{
		SKU:       product.SKU,
		Dates:     make([]string, 0, daysAhead),
		Prices:    make([]decimal.Decimal, 0, daysAhead),
		ModelUsed: meta.ModelType,
		Metrics:   meta.Metrics,
	}

	lastDate := series.LastDate()
	for i := 1; i <= daysAhead; i++ {
		date := lastDate.AddDate(0, 0, i)
		rec := forecast.BuildFeatures(forecast.FeatureInput{
			Date:       date,
			Prices:     prices,
			Quantities: quantities,
			Holidays:   s.calendar,
		})
		vec, err := schema.Vector(rec)
		if err != nil {
			return nil, fmt.Errorf("forecast %s day %d: %w", product.SKU, i, err)
		}
		if scaler != nil {
			if vec, err = scaler.Transform(vec); err != nil {
				return nil, fmt.Errorf("forecast %s day %d: %w", product.SKU, i, err)
			}
		}
		pred, err := reg.Predict(schema, vec)
		if err != nil {
			return nil, fmt.Errorf("forecast %s day %d: %w", product.SKU, i, err)
		}
		if pred < 0 {
			pred = 0
		}

		prices.Push(pred)
		quantities.Push(stat.Mean(quantities.Tail(forecast.QuantityHeuristicWindow), nil))

		resp.Dates = append(resp.Dates, date.Format("2006-01-02"))
		resp.Prices = append(resp.Prices, decimal.NewFromFloat(pred).Round(2))
	}

	return resp, nil
}

// fallback serves a flat forecast: the mean of the last FallbackWindow daily
// prices, repeated for every requested day. Dates continue from the last real
// observation, just like the trained path.
func (s *forecastService) fallback(ctx context.Context, product *model.Product, daysAhead int) (*dto.ForecastResponse, error) {
	window, lastDay, err := s.history.LoadFallbackWindow(ctx, product)
	if err != nil {
		return nil, err
	}
	price := decimal.NewFromFloat(stat.Mean(window, nil)).Round(2)

	resp := &dto.ForecastResponse{
		SKU:       product.SKU,
		Dates:     make([]string, 0, daysAhead),
		Prices:    make([]decimal.Decimal, 0, daysAhead),
		ModelUsed: ModelUsedFallback,
		Metrics:   map[string]float64{},
	}
	for i := 1; i <= daysAhead; i++ {
		resp.Dates = append(resp.Dates, lastDay.AddDate(0, 0, i).Format("2006-01-02"))
		resp.Prices = append(resp.Prices, price)
	}
	return resp, nil
}

func (s *forecastService) cacheGet(ctx context.Context, key string) *dto.ForecastResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("forecast cache read failed")
		}
		return nil
	}
	var resp dto.ForecastResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("forecast cache entry corrupt, ignoring")
		return nil
	}
	return &resp
}

func (s *forecastService) cacheSet(ctx context.Context, key string, resp *dto.ForecastResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("forecast cache write failed")
	}
}
