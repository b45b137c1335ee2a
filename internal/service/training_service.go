package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"pricecast/internal/forecast"
	"pricecast/internal/mlstore"
	"pricecast/internal/repository"
)

const (
	// modelType and modelVersion are stamped into every artifact's metadata.
	modelType    = "linear_autoregressive"
	modelVersion = "1.0.0"

	// trainWarmup is how many leading days are consumed seeding the buffers
	// before the first supervised sample. It must cover the longest lag.
	trainWarmup = 30

	trainSplitRatio = 0.8
)

// TrainingService fits and persists per-product price models.
type TrainingService interface {
	// TrainModel fits a fresh model for the product from its daily series
	// and atomically replaces any previous artifact. Returns the persisted
	// metadata, including holdout metrics.
	TrainModel(ctx context.Context, sku string) (*mlstore.Metadata, error)
}

type trainingService struct {
	productRepo  repository.ProductRepository
	history      HistoryService
	store        *mlstore.Store
	calendar     *forecast.HolidayCalendar
	lookbackDays int
}

func NewTrainingService(
	productRepo repository.ProductRepository,
	history HistoryService,
	store *mlstore.Store,
	calendar *forecast.HolidayCalendar,
	lookbackDays int,
) TrainingService {
	return &trainingService{
		productRepo:  productRepo,
		history:      history,
		store:        store,
		calendar:     calendar,
		lookbackDays: lookbackDays,
	}
}

func (s *trainingService) TrainModel(ctx context.Context, sku string) (*mlstore.Metadata, error) {
	started := time.Now()

	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	series, err := s.history.LoadDailySeries(ctx, product, s.lookbackDays)
	if err != nil {
		return nil, err
	}

	schema := forecast.DefaultSchema()
	rows, targets := s.buildSupervised(schema, series)
	if required := minSupervisedRows(schema); len(rows) < required {
		return nil, &forecast.InsufficientHistoryError{
			SKU:      sku,
			Observed: len(rows),
			Required: required,
		}
	}

	// Chronological split — shuffling would leak future prices into the
	// training half.
	split := int(float64(len(rows)) * trainSplitRatio)
	if split >= len(rows) {
		split = len(rows) - 1
	}
	trainRows, trainTargets := rows[:split], targets[:split]
	holdRows, holdTargets := rows[split:], targets[split:]

	scaler, err := forecast.FitScaler(schema, trainRows)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", sku, err)
	}
	scaledTrain, err := scaler.TransformAll(trainRows)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", sku, err)
	}
	reg, err := forecast.FitRegressor(schema, scaledTrain, trainTargets)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", sku, err)
	}

	metrics, err := s.evaluateHoldout(schema, reg, scaler, holdRows, holdTargets)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", sku, err)
	}

	meta := mlstore.Metadata{
		SKU:          sku,
		ModelType:    modelType,
		Version:      modelVersion,
		FeatureNames: schema.Names(),
		Hyperparameters: map[string]float64{
			"train_ratio": trainSplitRatio,
			"warmup_days": trainWarmup,
		},
		Metrics:         metrics,
		TrainedAt:       time.Now().UTC(),
		TrainingSamples: len(trainRows),
	}
	if err := s.store.Save(ctx, sku, reg, scaler, meta); err != nil {
		return nil, err
	}

	log.Info().
		Str("sku", sku).
		Int("samples", len(trainRows)).
		Int("holdout", len(holdRows)).
		Float64("mape", metrics["mape"]).
		Dur("elapsed", time.Since(started)).
		Msg("model trained")
	return &meta, nil
}

// minSupervisedRows is the smallest sample count for which the chronological
// split still leaves the fit more rows than features. Anything below it is a
// data shortage and must surface as InsufficientHistoryError, not as a
// least-squares failure.
func minSupervisedRows(schema *forecast.FeatureSchema) int {
	n := int(math.Ceil(float64(schema.Len()+1) / trainSplitRatio))
	if n < forecast.MinHistoryObservations {
		n = forecast.MinHistoryObservations
	}
	return n
}

// buildSupervised walks the series once, feeding each day into the sliding
// buffers after it has served as a target. Features for day t therefore see
// only days < t, matching what prediction sees at inference time.
func (s *trainingService) buildSupervised(schema *forecast.FeatureSchema, series *forecast.DailySeries) ([][]float64, []float64) {
	prices := forecast.NewWindow(forecast.BufferCapacity)
	quantities := forecast.NewWindow(forecast.BufferCapacity)

	var rows [][]float64
	var targets []float64
	for i := 0; i < series.Len(); i++ {
		if i >= trainWarmup {
			rec := forecast.BuildFeatures(forecast.FeatureInput{
				Date:       series.Date(i),
				Prices:     prices,
				Quantities: quantities,
				Holidays:   s.calendar,
			})
			vec, err := schema.Vector(rec)
			if err != nil {
				// The builder emits exactly the default schema; a miss
				// here is a programming error, not a data problem.
				panic(err)
			}
			rows = append(rows, vec)
			targets = append(targets, series.Prices[i])
		}
		prices.Push(series.Prices[i])
		quantities.Push(series.Quantities[i])
	}
	return rows, targets
}

func (s *trainingService) evaluateHoldout(schema *forecast.FeatureSchema, reg *forecast.Regressor, scaler *forecast.Scaler, rows [][]float64, targets []float64) (map[string]float64, error) {
	scaled, err := scaler.TransformAll(rows)
	if err != nil {
		return nil, err
	}
	predicted := make([]float64, len(scaled))
	for i, vec := range scaled {
		p, err := reg.Predict(schema, vec)
		if err != nil {
			return nil, err
		}
		if p < 0 {
			p = 0
		}
		predicted[i] = p
	}
	return forecast.Evaluate(targets, predicted)
}
