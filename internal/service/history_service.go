package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"pricecast/internal/forecast"
	"pricecast/internal/model"
	"pricecast/internal/repository"
)

// HistoryService loads raw observations and turns them into the continuous
// daily series the forecasting pipeline consumes. Read-only — it never
// writes anything.
type HistoryService interface {
	// LoadDailySeries returns a gap-free daily price+quantity series for
	// the product over the lookback window. Same-day duplicates are
	// averaged, interior gaps are filled by time-weighted interpolation,
	// and edge gaps are forward/backward filled. Fails with
	// forecast.InsufficientHistoryError below MinHistoryObservations.
	LoadDailySeries(ctx context.Context, product *model.Product, lookbackDays int) (*forecast.DailySeries, error)

	// LoadFallbackWindow returns the most recent daily mean prices (up to
	// forecast.FallbackWindow of them) for the moving-average fallback,
	// plus the day of the last observation so callers can anchor the
	// forecast horizon right after the real series. Fails with
	// forecast.InsufficientHistoryError below FallbackWindow observations.
	LoadFallbackWindow(ctx context.Context, product *model.Product) ([]float64, time.Time, error)
}

type historyService struct {
	priceRepo repository.PriceObservationRepository
	salesRepo repository.SalesObservationRepository
}

func NewHistoryService(
	priceRepo repository.PriceObservationRepository,
	salesRepo repository.SalesObservationRepository,
) HistoryService {
	return &historyService{priceRepo: priceRepo, salesRepo: salesRepo}
}

func (s *historyService) LoadDailySeries(ctx context.Context, product *model.Product, lookbackDays int) (*forecast.DailySeries, error) {
	if lookbackDays < 1 {
		return nil, fmt.Errorf("history: lookback days must be >= 1, got %d", lookbackDays)
	}

	since := time.Now().UTC().AddDate(0, 0, -lookbackDays)
	obs, err := s.priceRepo.ListByProductSince(ctx, product.ID, since)
	if err != nil {
		return nil, fmt.Errorf("history: load price observations for %s: %w", product.SKU, err)
	}
	if len(obs) < forecast.MinHistoryObservations {
		return nil, &forecast.InsufficientHistoryError{
			SKU:      product.SKU,
			Observed: len(obs),
			Required: forecast.MinHistoryObservations,
		}
	}

	daily := collapseDailyMeans(obs)
	start := daily[0].day
	days := int(daily[len(daily)-1].day.Sub(start).Hours()/24) + 1

	// Reindex to the full daily range; NaN marks a missing day.
	prices := make([]float64, days)
	for i := range prices {
		prices[i] = math.NaN()
	}
	for _, d := range daily {
		prices[dayIndex(start, d.day)] = d.mean
	}
	interpolate(prices)

	quantities, err := s.loadDailyQuantities(ctx, product, start, days)
	if err != nil {
		return nil, err
	}

	return &forecast.DailySeries{Start: start, Prices: prices, Quantities: quantities}, nil
}

func (s *historyService) LoadFallbackWindow(ctx context.Context, product *model.Product) ([]float64, time.Time, error) {
	// A generous window: the fallback wants the last 14 daily means, not a
	// bounded lookback.
	since := time.Now().UTC().AddDate(0, 0, -6*forecast.FallbackWindow)
	obs, err := s.priceRepo.ListByProductSince(ctx, product.ID, since)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("history: load fallback window for %s: %w", product.SKU, err)
	}
	if len(obs) < forecast.FallbackWindow {
		return nil, time.Time{}, &forecast.InsufficientHistoryError{
			SKU:      product.SKU,
			Observed: len(obs),
			Required: forecast.FallbackWindow,
		}
	}

	daily := collapseDailyMeans(obs)
	n := len(daily)
	if n > forecast.FallbackWindow {
		daily = daily[n-forecast.FallbackWindow:]
	}
	out := make([]float64, len(daily))
	for i, d := range daily {
		out[i] = d.mean
	}
	return out, daily[len(daily)-1].day, nil
}

// loadDailyQuantities aligns sales rows to the price date range. Days with
// no sales row are genuinely zero-sale days, not gaps — no interpolation.
func (s *historyService) loadDailyQuantities(ctx context.Context, product *model.Product, start time.Time, days int) ([]float64, error) {
	sales, err := s.salesRepo.ListByProductSince(ctx, product.ID, start)
	if err != nil {
		return nil, fmt.Errorf("history: load sales observations for %s: %w", product.SKU, err)
	}
	quantities := make([]float64, days)
	for _, row := range sales {
		idx := dayIndex(start, row.SaleDate.UTC().Truncate(24*time.Hour))
		if idx >= 0 && idx < days {
			quantities[idx] += float64(row.Quantity)
		}
	}
	return quantities, nil
}

type dailyPoint struct {
	day  time.Time
	mean float64
}

// collapseDailyMeans averages same-day observations and returns one point
// per observed calendar day, ascending.
func collapseDailyMeans(obs []model.PriceObservation) []dailyPoint {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, o := range obs {
		day := o.CollectedAt.UTC().Truncate(24 * time.Hour)
		sums[day] += o.Price.InexactFloat64()
		counts[day]++
	}
	out := make([]dailyPoint, 0, len(sums))
	for day, sum := range sums {
		out = append(out, dailyPoint{day: day, mean: sum / float64(counts[day])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].day.Before(out[j].day) })
	return out
}

func dayIndex(start, day time.Time) int {
	return int(day.Sub(start).Hours() / 24)
}

// interpolate fills NaN runs in place: interior gaps linearly between the
// surrounding known values (time-weighted, since the index is daily),
// leading gaps by backward fill, trailing gaps by forward fill.
func interpolate(xs []float64) {
	// Index of the previous known value, -1 while in a leading gap.
	prev := -1
	for i := 0; i < len(xs); i++ {
		if !math.IsNaN(xs[i]) {
			prev = i
			continue
		}
		// Find the next known value.
		next := -1
		for j := i + 1; j < len(xs); j++ {
			if !math.IsNaN(xs[j]) {
				next = j
				break
			}
		}
		switch {
		case prev == -1 && next == -1:
			xs[i] = 0 // unreachable given the min-observation gate
		case prev == -1:
			xs[i] = xs[next] // backward fill leading gap
		case next == -1:
			xs[i] = xs[prev] // forward fill trailing gap
		default:
			frac := float64(i-prev) / float64(next-prev)
			xs[i] = xs[prev] + (xs[next]-xs[prev])*frac
		}
	}
}
