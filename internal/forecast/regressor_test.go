package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinySchema(t *testing.T) *FeatureSchema {
	t.Helper()
	s, err := NewFeatureSchema([]string{"a", "b"})
	require.NoError(t, err)
	return s
}

func TestRegressor_Predict(t *testing.T) {
	schema := tinySchema(t)
	r := &Regressor{
		Weights:   map[string]float64{"a": 2, "b": -1},
		Intercept: 5,
	}

	got, err := r.Predict(schema, []float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5+2*3-1*4, got, 1e-9)

	_, err = r.Predict(schema, []float64{3})
	assert.Error(t, err)
}

func TestRegressor_Validate(t *testing.T) {
	schema := tinySchema(t)

	ok := &Regressor{Weights: map[string]float64{"a": 1, "b": 2}}
	assert.NoError(t, ok.Validate(schema))

	missing := &Regressor{Weights: map[string]float64{"a": 1}}
	assert.Error(t, missing.Validate(schema))

	stray := &Regressor{Weights: map[string]float64{"a": 1, "b": 2, "c": 3}}
	assert.Error(t, stray.Validate(schema))

	renamed := &Regressor{Weights: map[string]float64{"a": 1, "c": 2}}
	assert.Error(t, renamed.Validate(schema))
}

func TestFitRegressor_RecoversLinearRelation(t *testing.T) {
	schema := tinySchema(t)

	// y = 3 + 2a - b, with enough spread to keep the system well-conditioned.
	var rows [][]float64
	var targets []float64
	for i := 0; i < 20; i++ {
		a := float64(i)
		b := float64(i%5) * 1.5
		rows = append(rows, []float64{a, b})
		targets = append(targets, 3+2*a-b)
	}

	r, err := FitRegressor(schema, rows, targets)
	require.NoError(t, err)
	require.NoError(t, r.Validate(schema))

	assert.InDelta(t, 3.0, r.Intercept, 1e-6)
	assert.InDelta(t, 2.0, r.Weights["a"], 1e-6)
	assert.InDelta(t, -1.0, r.Weights["b"], 1e-6)

	pred, err := r.Predict(schema, []float64{10, 3})
	require.NoError(t, err)
	assert.InDelta(t, 3+20-3, pred, 1e-6)
}

func TestFitRegressor_RejectsBadShapes(t *testing.T) {
	schema := tinySchema(t)

	_, err := FitRegressor(schema, [][]float64{{1, 2}}, []float64{1, 2})
	assert.Error(t, err)

	// Not enough samples for the feature count.
	_, err = FitRegressor(schema, [][]float64{{1, 2}, {3, 4}}, []float64{1, 2})
	assert.Error(t, err)
}

func TestScaler_FitAndTransform(t *testing.T) {
	schema := tinySchema(t)
	rows := [][]float64{
		{1, 7},
		{3, 7},
		{5, 7},
	}

	s, err := FitScaler(schema, rows)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, s.Mean[0], 1e-9)
	assert.InDelta(t, 7.0, s.Mean[1], 1e-9)
	assert.InDelta(t, 2.0, s.Std[0], 1e-9)
	assert.InDelta(t, 0.0, s.Std[1], 1e-9)

	out, err := s.Transform([]float64{5, 9})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out[0], 1e-9)
	// Constant column passes through mean-centered only.
	assert.InDelta(t, 2.0, out[1], 1e-9)

	_, err = s.Transform([]float64{5})
	assert.Error(t, err)
}

func TestScaler_TransformAll(t *testing.T) {
	s := &Scaler{Mean: []float64{10, 0}, Std: []float64{2, 1}}
	out, err := s.TransformAll([][]float64{{12, 1}, {8, -1}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1}, {-1, -1}}, out)
}

func TestEvaluate_KnownValues(t *testing.T) {
	m, err := Evaluate([]float64{100, 200}, []float64{110, 190})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, m["mae"], 1e-9)
	assert.InDelta(t, 10.0, m["rmse"], 1e-9)
	// (10/100 + 10/200) / 2 * 100
	assert.InDelta(t, 7.5, m["mape"], 1e-9)
}

func TestEvaluate_SkipsNearZeroActualsForMAPE(t *testing.T) {
	m, err := Evaluate([]float64{0, 100}, []float64{5, 110})
	require.NoError(t, err)
	assert.InDelta(t, 7.5, m["mae"], 1e-9)
	assert.InDelta(t, 10.0, m["mape"], 1e-9)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate([]float64{1}, []float64{1, 2})
	assert.Error(t, err)

	_, err = Evaluate(nil, nil)
	assert.Error(t, err)
}

func TestNewFeatureSchema_RejectsDegenerateNames(t *testing.T) {
	_, err := NewFeatureSchema(nil)
	assert.Error(t, err)

	_, err = NewFeatureSchema([]string{"a", ""})
	assert.Error(t, err)

	_, err = NewFeatureSchema([]string{"a", "a"})
	assert.Error(t, err)
}

func TestFeatureSchema_VectorRequiresEveryName(t *testing.T) {
	schema := tinySchema(t)

	vec, err := schema.Vector(map[string]float64{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, vec)

	_, err = schema.Vector(map[string]float64{"a": 1})
	assert.Error(t, err)
}

func TestFeatureSchema_Equal(t *testing.T) {
	a := tinySchema(t)
	b := tinySchema(t)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(nil))

	c, err := NewFeatureSchema([]string{"b", "a"})
	require.NoError(t, err)
	assert.False(t, a.Equal(c))

	assert.Len(t, DefaultSchema().Names(), DefaultSchema().Len())
}