package forecast

import (
	"fmt"
	"math"

	"github.com/sajari/regression"
)

// Regressor is a linear model over the feature schema, persisted as plain
// JSON (weights keyed by feature name plus an intercept). Keying weights by
// name — instead of position — is what lets the model store verify the
// schema contract at load time.
type Regressor struct {
	Weights   map[string]float64 `json:"weights"`
	Intercept float64            `json:"intercept"`
}

// Predict evaluates the model on a schema-ordered feature vector.
func (r *Regressor) Predict(schema *FeatureSchema, vec []float64) (float64, error) {
	if len(vec) != schema.Len() {
		return 0, fmt.Errorf("regressor: vector length %d != schema length %d", len(vec), schema.Len())
	}
	sum := r.Intercept
	for i, name := range schema.Names() {
		sum += r.Weights[name] * vec[i]
	}
	return sum, nil
}

// Validate checks that the persisted weights cover exactly the schema —
// no missing features, no strays. Called by the model store on load so a
// training/prediction schema drift fails before any prediction is made.
func (r *Regressor) Validate(schema *FeatureSchema) error {
	if len(r.Weights) != schema.Len() {
		return fmt.Errorf("regressor: %d weights for %d schema features", len(r.Weights), schema.Len())
	}
	for _, name := range schema.Names() {
		if _, ok := r.Weights[name]; !ok {
			return fmt.Errorf("regressor: missing weight for feature %q", name)
		}
	}
	return nil
}

// FitRegressor performs an ordinary least-squares fit of targets against
// schema-ordered feature rows.
func FitRegressor(schema *FeatureSchema, rows [][]float64, targets []float64) (*Regressor, error) {
	if len(rows) != len(targets) {
		return nil, fmt.Errorf("fit: %d rows vs %d targets", len(rows), len(targets))
	}
	if len(rows) <= schema.Len() {
		return nil, fmt.Errorf("fit: need more than %d samples for %d features, have %d", schema.Len(), schema.Len(), len(rows))
	}

	reg := new(regression.Regression)
	reg.SetObserved("price")
	for i, name := range schema.Names() {
		reg.SetVar(i, name)
	}
	for j, row := range rows {
		if len(row) != schema.Len() {
			return nil, fmt.Errorf("fit: row %d has %d values, schema has %d", j, len(row), schema.Len())
		}
		reg.Train(regression.DataPoint(targets[j], row))
	}
	if err := reg.Run(); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	out := &Regressor{Weights: make(map[string]float64, schema.Len())}
	// Coeff(0) is the intercept; variable coefficients follow in order.
	out.Intercept = reg.Coeff(0)
	for i, name := range schema.Names() {
		c := reg.Coeff(i + 1)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			c = 0
		}
		out.Weights[name] = c
	}
	return out, nil
}

// Scaler standardizes feature vectors to zero mean and unit variance, in
// schema order. A near-zero standard deviation column passes through
// mean-centered only.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-column mean and standard deviation over the rows.
func FitScaler(schema *FeatureSchema, rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("scaler: no rows")
	}
	n := schema.Len()
	s := &Scaler{Mean: make([]float64, n), Std: make([]float64, n)}
	col := make([]float64, len(rows))
	for j := 0; j < n; j++ {
		for i, row := range rows {
			if len(row) != n {
				return nil, fmt.Errorf("scaler: row %d has %d values, schema has %d", i, len(row), n)
			}
			col[i] = row[j]
		}
		s.Mean[j] = safeMean(col)
		s.Std[j] = safeStdDev(col)
	}
	return s, nil
}

// Transform returns a standardized copy of the vector.
func (s *Scaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.Mean) {
		return nil, fmt.Errorf("scaler: vector length %d != fitted length %d", len(vec), len(s.Mean))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		if s.Std[i] > epsilon {
			out[i] = (v - s.Mean[i]) / s.Std[i]
		} else {
			out[i] = v - s.Mean[i]
		}
	}
	return out, nil
}

// TransformAll standardizes a batch of rows.
func (s *Scaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		t, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
