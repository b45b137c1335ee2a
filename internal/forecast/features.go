package forecast

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FeatureInput bundles everything the feature builder needs for one target
// date: the two bounded history buffers (most-recent-last) and the holiday
// calendar. The builder never mutates the buffers and does no I/O.
type FeatureInput struct {
	Date       time.Time
	Prices     *Window
	Quantities *Window
	Holidays   *HolidayCalendar
}

// BuildFeatures derives the flat feature record for one point in time.
// Rolling statistics use whatever tail of the buffer exists; lag features
// fall back to the oldest available value (see Window.Lag). Given identical
// inputs the output is byte-identical across runs — there is no randomness.
func BuildFeatures(in FeatureInput) map[string]float64 {
	rec := make(map[string]float64, 48)

	// Lags
	for _, off := range LagOffsets {
		rec[fmt.Sprintf("price_lag_%d", off)] = in.Prices.Lag(off)
		rec[fmt.Sprintf("qty_lag_%d", off)] = in.Quantities.Lag(off)
	}

	// Rolling windows
	for _, w := range RollingWindows {
		tail := in.Prices.Tail(w)
		rec[fmt.Sprintf("price_roll_mean_%d", w)] = safeMean(tail)
		rec[fmt.Sprintf("price_roll_std_%d", w)] = safeStdDev(tail)
		rec[fmt.Sprintf("price_roll_min_%d", w)] = safeMin(tail)
		rec[fmt.Sprintf("price_roll_max_%d", w)] = safeMax(tail)

		qtail := in.Quantities.Tail(w)
		rec[fmt.Sprintf("qty_roll_mean_%d", w)] = safeMean(qtail)
		rec[fmt.Sprintf("qty_roll_std_%d", w)] = safeStdDev(qtail)
		rec[fmt.Sprintf("qty_roll_sum_%d", w)] = floats.Sum(qtail)
	}

	// Calendar
	d := in.Date
	rec["day_of_week"] = float64(d.Weekday())
	rec["day_of_month"] = float64(d.Day())
	_, week := d.ISOWeek()
	rec["week_of_year"] = float64(week)
	rec["month"] = float64(d.Month())
	rec["quarter"] = float64((int(d.Month())-1)/3 + 1)
	rec["is_weekend"] = boolFeature(d.Weekday() == time.Saturday || d.Weekday() == time.Sunday)
	rec["is_month_start"] = boolFeature(d.Day() == 1)
	rec["is_month_end"] = boolFeature(d.AddDate(0, 0, 1).Day() == 1)

	// Holidays
	rec["is_holiday"] = boolFeature(in.Holidays.IsHoliday(d))
	rec["days_to_next_holiday"] = float64(in.Holidays.DaysToNext(d, HolidayCap))
	rec["days_since_last_holiday"] = float64(in.Holidays.DaysSinceLast(d, HolidayCap))

	// Derived
	last := in.Prices.Last()
	ma7 := rec["price_roll_mean_7"]
	ma30 := rec["price_roll_mean_30"]
	rec["price_rel_ma_7"] = last / (ma7 + epsilon)
	rec["price_rel_ma_30"] = last / (ma30 + epsilon)
	rec["price_volatility_7"] = rec["price_roll_std_7"] / (ma7 + epsilon)

	return rec
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func safeMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// safeStdDev returns 0 for fewer than two samples; gonum's sample standard
// deviation is NaN there, which would poison the model input.
func safeStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

func safeMin(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Min(xs)
}

func safeMax(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Max(xs)
}
