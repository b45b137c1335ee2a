package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Evaluate computes holdout accuracy metrics for a prediction run.
// MAPE skips near-zero actuals instead of dividing by them.
func Evaluate(actual, predicted []float64) (map[string]float64, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("metrics: %d actuals vs %d predictions", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return nil, fmt.Errorf("metrics: empty holdout")
	}

	absErr := make([]float64, len(actual))
	sqErr := 0.0
	mapeSum := 0.0
	mapeN := 0
	for i := range actual {
		diff := actual[i] - predicted[i]
		absErr[i] = math.Abs(diff)
		sqErr += diff * diff
		if math.Abs(actual[i]) > epsilon {
			mapeSum += absErr[i] / math.Abs(actual[i])
			mapeN++
		}
	}

	n := float64(len(actual))
	m := map[string]float64{
		"mae":  floats.Sum(absErr) / n,
		"rmse": math.Sqrt(sqErr / n),
	}
	if mapeN > 0 {
		m["mape"] = mapeSum / float64(mapeN) * 100
	}
	return m, nil
}
