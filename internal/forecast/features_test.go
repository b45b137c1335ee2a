package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureInputAt(date time.Time, prices, quantities []float64) FeatureInput {
	return FeatureInput{
		Date:       date,
		Prices:     NewWindowFrom(BufferCapacity, prices),
		Quantities: NewWindowFrom(BufferCapacity, quantities),
		Holidays:   NewHolidayCalendar("US"),
	}
}

func TestBuildFeatures_CoversDefaultSchema(t *testing.T) {
	in := featureInputAt(
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		[]float64{100, 101, 102, 103, 104},
		[]float64{1, 2, 3, 4, 5},
	)
	rec := BuildFeatures(in)

	// Every schema feature must be present so Vector never zero-fills.
	_, err := DefaultSchema().Vector(rec)
	require.NoError(t, err)
	assert.Len(t, rec, DefaultSchema().Len())
}

func TestBuildFeatures_LagAndRollingValues(t *testing.T) {
	in := featureInputAt(
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		[]float64{10, 20, 30},
		[]float64{1, 1, 4},
	)
	rec := BuildFeatures(in)

	assert.Equal(t, 30.0, rec["price_lag_1"])
	assert.Equal(t, 20.0, rec["price_lag_2"])
	assert.Equal(t, 10.0, rec["price_lag_30"]) // short-history fallback
	assert.Equal(t, 4.0, rec["qty_lag_1"])

	assert.InDelta(t, 20.0, rec["price_roll_mean_7"], 1e-9)
	assert.Equal(t, 10.0, rec["price_roll_min_7"])
	assert.Equal(t, 30.0, rec["price_roll_max_7"])
	assert.InDelta(t, 6.0, rec["qty_roll_sum_14"], 1e-9)
}

func TestBuildFeatures_CalendarFlags(t *testing.T) {
	// 2026-03-01 is a Sunday and a month start.
	rec := BuildFeatures(featureInputAt(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		[]float64{100}, []float64{0},
	))
	assert.Equal(t, 1.0, rec["is_weekend"])
	assert.Equal(t, 1.0, rec["is_month_start"])
	assert.Equal(t, 0.0, rec["is_month_end"])
	assert.Equal(t, float64(time.Sunday), rec["day_of_week"])
	assert.Equal(t, 3.0, rec["month"])
	assert.Equal(t, 1.0, rec["quarter"])

	// 2026-04-30 is a Thursday and a month end.
	rec = BuildFeatures(featureInputAt(
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		[]float64{100}, []float64{0},
	))
	assert.Equal(t, 0.0, rec["is_weekend"])
	assert.Equal(t, 1.0, rec["is_month_end"])
	assert.Equal(t, 2.0, rec["quarter"])
}

func TestBuildFeatures_HolidayFeatures(t *testing.T) {
	// Independence Day 2025 falls on a Friday, no observance shift.
	rec := BuildFeatures(featureInputAt(
		time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		[]float64{100}, []float64{0},
	))
	assert.Equal(t, 1.0, rec["is_holiday"])
	assert.GreaterOrEqual(t, rec["days_to_next_holiday"], 1.0)
	assert.LessOrEqual(t, rec["days_to_next_holiday"], float64(HolidayCap))

	// Mid-March sits in a gap: no US federal holiday within the cap on
	// either side, so both distances saturate.
	rec = BuildFeatures(featureInputAt(
		time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC),
		[]float64{100}, []float64{0},
	))
	assert.Equal(t, 0.0, rec["is_holiday"])
	assert.Equal(t, float64(HolidayCap), rec["days_to_next_holiday"])
	assert.Equal(t, float64(HolidayCap), rec["days_since_last_holiday"])
}

func TestBuildFeatures_DerivedRatios(t *testing.T) {
	rec := BuildFeatures(featureInputAt(
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		[]float64{100, 100, 100, 100},
		[]float64{0, 0, 0, 0},
	))
	// Flat series: price equals its moving average, volatility is zero.
	assert.InDelta(t, 1.0, rec["price_rel_ma_7"], 1e-6)
	assert.InDelta(t, 1.0, rec["price_rel_ma_30"], 1e-6)
	assert.InDelta(t, 0.0, rec["price_volatility_7"], 1e-9)
}

func TestBuildFeatures_Deterministic(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	prices := []float64{100, 102, 98, 105, 103}
	quantities := []float64{3, 0, 7, 2, 5}

	a := BuildFeatures(featureInputAt(date, prices, quantities))
	b := BuildFeatures(featureInputAt(date, prices, quantities))
	assert.Equal(t, a, b)
}

func TestBuildFeatures_SingleObservationDoesNotPanic(t *testing.T) {
	rec := BuildFeatures(featureInputAt(
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		[]float64{50}, []float64{1},
	))
	// Std of one sample is defined as 0, min/max run on the single value.
	assert.Equal(t, 0.0, rec["price_roll_std_7"])
	assert.Equal(t, 50.0, rec["price_roll_min_30"])
	assert.Equal(t, 50.0, rec["price_roll_max_30"])
}
