package forecast

import (
	"fmt"
)

// Business constants for the forecasting pipeline. Models are trained against
// these exact values — changing any of them invalidates stored artifacts.
const (
	// MinHistoryObservations gates the trained-model path.
	MinHistoryObservations = 30
	// FallbackWindow is both the averaging window and the minimum history
	// for the moving-average fallback.
	FallbackWindow = 14
	// BufferCapacity bounds the sliding history window fed to the feature
	// builder during autoregressive stepping.
	BufferCapacity = 60
	// QuantityHeuristicWindow drives the quantity free-ride estimate.
	QuantityHeuristicWindow = 7
	// HolidayCap bounds the days-to/days-since holiday lookaround.
	HolidayCap = 30

	epsilon = 1e-9
)

// LagOffsets and RollingWindows define the historical offsets the feature
// builder derives, for both price and quantity.
var (
	LagOffsets     = []int{1, 2, 7, 14, 30}
	RollingWindows = []int{7, 14, 30}
)

// FeatureSchema is the ordered list of feature names shared between training
// and prediction. It is an explicit typed contract: the model store validates
// persisted regressor weights against the metadata schema at load time, so an
// ordering mismatch fails loudly instead of silently corrupting predictions.
type FeatureSchema struct {
	names []string
	index map[string]int
}

// NewFeatureSchema builds a schema from an ordered name list.
// Empty and duplicated names are rejected.
func NewFeatureSchema(names []string) (*FeatureSchema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("feature schema: empty name list")
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("feature schema: empty name at position %d", i)
		}
		if _, dup := index[n]; dup {
			return nil, fmt.Errorf("feature schema: duplicate name %q", n)
		}
		index[n] = i
	}
	s := &FeatureSchema{names: make([]string, len(names)), index: index}
	copy(s.names, names)
	return s, nil
}

// DefaultSchema returns the canonical feature set for per-SKU price models.
func DefaultSchema() *FeatureSchema {
	var names []string
	for _, off := range LagOffsets {
		names = append(names, fmt.Sprintf("price_lag_%d", off))
	}
	for _, off := range LagOffsets {
		names = append(names, fmt.Sprintf("qty_lag_%d", off))
	}
	for _, w := range RollingWindows {
		names = append(names,
			fmt.Sprintf("price_roll_mean_%d", w),
			fmt.Sprintf("price_roll_std_%d", w),
			fmt.Sprintf("price_roll_min_%d", w),
			fmt.Sprintf("price_roll_max_%d", w),
		)
	}
	for _, w := range RollingWindows {
		names = append(names,
			fmt.Sprintf("qty_roll_mean_%d", w),
			fmt.Sprintf("qty_roll_std_%d", w),
			fmt.Sprintf("qty_roll_sum_%d", w),
		)
	}
	names = append(names,
		"day_of_week", "day_of_month", "week_of_year", "month", "quarter",
		"is_weekend", "is_month_start", "is_month_end",
		"is_holiday", "days_to_next_holiday", "days_since_last_holiday",
		"price_rel_ma_7", "price_rel_ma_30", "price_volatility_7",
	)
	s, err := NewFeatureSchema(names)
	if err != nil {
		// The canonical list is static; a failure here is a programmer error.
		panic(err)
	}
	return s
}

// Names returns a copy of the ordered feature names.
func (s *FeatureSchema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of features.
func (s *FeatureSchema) Len() int { return len(s.names) }

// Vector flattens a feature record into schema order.
// A record missing any schema name is an error — not a zero-fill.
func (s *FeatureSchema) Vector(record map[string]float64) ([]float64, error) {
	vec := make([]float64, len(s.names))
	for i, n := range s.names {
		v, ok := record[n]
		if !ok {
			return nil, fmt.Errorf("feature schema: record missing %q", n)
		}
		vec[i] = v
	}
	return vec, nil
}

// Equal reports whether two schemas list the same names in the same order.
func (s *FeatureSchema) Equal(other *FeatureSchema) bool {
	if other == nil || len(s.names) != len(other.names) {
		return false
	}
	for i := range s.names {
		if s.names[i] != other.names[i] {
			return false
		}
	}
	return true
}
