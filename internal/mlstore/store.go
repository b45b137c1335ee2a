// Package mlstore persists the per-SKU trained-model artifact triple:
// regressor weights, an optional feature scaler, and a JSON metadata
// document. The three files under one SKU directory are a single logical
// unit — partial presence is reported as "model not found", never as a
// degraded-but-usable state.
package mlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pricecast/internal/forecast"
	"pricecast/internal/model"
	"pricecast/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	modelFile    = "model.json"
	scalerFile   = "scaler.json"
	metadataFile = "metadata.json"
)

// Metadata describes a trained model: the exact feature schema it was
// trained against, its hyperparameters, holdout metrics, and provenance.
type Metadata struct {
	SKU             string             `json:"sku"`
	ModelType       string             `json:"model_type"`
	Version         string             `json:"version"`
	FeatureNames    []string           `json:"feature_names"`
	Hyperparameters map[string]float64 `json:"hyperparameters,omitempty"`
	Metrics         map[string]float64 `json:"metrics"`
	TrainedAt       time.Time          `json:"trained_at"`
	TrainingSamples int                `json:"training_samples"`
}

// Schema reconstructs the typed feature schema recorded at training time.
func (m *Metadata) Schema() (*forecast.FeatureSchema, error) {
	return forecast.NewFeatureSchema(m.FeatureNames)
}

// Store owns the model-artifact directory tree. No component outside this
// package writes under the root. The DB index row is best-effort
// denormalization; the files are the source of truth.
//
// Concurrent training and prediction on the same SKU are not coordinated
// by any lock (accepted race). Save writes metadata last so a half-written
// directory is seen by Load as not-found rather than as a corrupt model.
type Store struct {
	root string
	repo repository.ModelArtifactRepository // may be nil (tests, CLI tools)
}

// New creates a store rooted at dir. The index repo may be nil, in which
// case only the filesystem is maintained.
func New(root string, repo repository.ModelArtifactRepository) *Store {
	return &Store{root: root, repo: repo}
}

func (s *Store) skuDir(sku string) string {
	return filepath.Join(s.root, sku)
}

func validSKU(sku string) error {
	if sku == "" || strings.ContainsAny(sku, "/\\") || sku == "." || sku == ".." {
		return fmt.Errorf("mlstore: invalid sku %q", sku)
	}
	return nil
}

// Save persists the artifact triple under the SKU directory and upserts the
// DB index row. The regressor must match the metadata feature schema.
func (s *Store) Save(ctx context.Context, sku string, reg *forecast.Regressor, scaler *forecast.Scaler, meta Metadata) error {
	if err := validSKU(sku); err != nil {
		return err
	}
	schema, err := meta.Schema()
	if err != nil {
		return fmt.Errorf("mlstore: metadata for %s: %w", sku, err)
	}
	if err := reg.Validate(schema); err != nil {
		return fmt.Errorf("mlstore: regressor for %s does not match metadata schema: %w", sku, err)
	}

	dir := s.skuDir(sku)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mlstore: create dir %s: %w", dir, err)
	}

	if err := writeJSON(filepath.Join(dir, modelFile), reg); err != nil {
		return err
	}
	if scaler != nil {
		if err := writeJSON(filepath.Join(dir, scalerFile), scaler); err != nil {
			return err
		}
	} else {
		// A stale scaler from a previous run must not pair with new weights.
		_ = os.Remove(filepath.Join(dir, scalerFile))
	}
	// Metadata last: its presence marks the triple complete.
	if err := writeJSON(filepath.Join(dir, metadataFile), &meta); err != nil {
		return err
	}

	if s.repo != nil {
		metricsJSON, _ := json.Marshal(meta.Metrics)
		row := &model.ModelArtifact{
			ProductSKU:      sku,
			ModelType:       meta.ModelType,
			Version:         meta.Version,
			ArtifactPath:    dir,
			MetricsJSON:     string(metricsJSON),
			TrainingSamples: meta.TrainingSamples,
			TrainedAt:       meta.TrainedAt,
		}
		if err := s.repo.Upsert(ctx, row); err != nil {
			// The files are authoritative; a failed index write is logged,
			// not fatal.
			log.Warn().Err(err).Str("sku", sku).Msg("mlstore: index upsert failed")
		}
	}
	return nil
}

// Load reads the artifact triple for a SKU. Missing directory, model file,
// or metadata file yields ModelNotFoundError; unparseable files yield
// CorruptArtifactError. The regressor weights are validated against the
// metadata schema here so drift fails at load, not silently at predict.
// A missing scaler file is valid — the scaler is optional.
func (s *Store) Load(sku string) (*forecast.Regressor, *forecast.Scaler, *Metadata, error) {
	if err := validSKU(sku); err != nil {
		return nil, nil, nil, err
	}
	dir := s.skuDir(sku)

	var meta Metadata
	if err := readJSON(sku, filepath.Join(dir, metadataFile), &meta); err != nil {
		return nil, nil, nil, err
	}
	var reg forecast.Regressor
	if err := readJSON(sku, filepath.Join(dir, modelFile), &reg); err != nil {
		return nil, nil, nil, err
	}

	schema, err := meta.Schema()
	if err != nil {
		return nil, nil, nil, &forecast.CorruptArtifactError{SKU: sku, Path: filepath.Join(dir, metadataFile), Err: err}
	}
	if err := reg.Validate(schema); err != nil {
		return nil, nil, nil, &forecast.CorruptArtifactError{SKU: sku, Path: filepath.Join(dir, modelFile), Err: err}
	}

	var scaler *forecast.Scaler
	scalerPath := filepath.Join(dir, scalerFile)
	if _, statErr := os.Stat(scalerPath); statErr == nil {
		scaler = &forecast.Scaler{}
		if err := readJSON(sku, scalerPath, scaler); err != nil {
			return nil, nil, nil, err
		}
		if len(scaler.Mean) != schema.Len() || len(scaler.Std) != schema.Len() {
			return nil, nil, nil, &forecast.CorruptArtifactError{
				SKU: sku, Path: scalerPath,
				Err: fmt.Errorf("scaler dimensions %d/%d do not match schema length %d", len(scaler.Mean), len(scaler.Std), schema.Len()),
			}
		}
	}

	return &reg, scaler, &meta, nil
}

// Exists reports whether a complete artifact triple is present, without
// deserializing anything.
func (s *Store) Exists(sku string) bool {
	if validSKU(sku) != nil {
		return false
	}
	dir := s.skuDir(sku)
	for _, f := range []string{modelFile, metadataFile} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			return false
		}
	}
	return true
}

// ListTrained enumerates SKUs with a complete artifact triple, sorted.
func (s *Store) ListTrained() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("mlstore: read root %s: %w", s.root, err)
	}
	var skus []string
	for _, e := range entries {
		if e.IsDir() && s.Exists(e.Name()) {
			skus = append(skus, e.Name())
		}
	}
	sort.Strings(skus)
	return skus, nil
}

// Delete removes all artifact files, the SKU directory, and the DB index
// row. Returns whether anything was removed.
func (s *Store) Delete(ctx context.Context, sku string) (bool, error) {
	if err := validSKU(sku); err != nil {
		return false, err
	}
	dir := s.skuDir(sku)
	_, statErr := os.Stat(dir)
	existed := statErr == nil

	if existed {
		if err := os.RemoveAll(dir); err != nil {
			return false, fmt.Errorf("mlstore: remove %s: %w", dir, err)
		}
	}
	if s.repo != nil {
		removed, err := s.repo.DeleteBySKU(ctx, sku)
		if err != nil {
			return existed, fmt.Errorf("mlstore: delete index row for %s: %w", sku, err)
		}
		existed = existed || removed
	}
	return existed, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("mlstore: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("mlstore: write %s: %w", path, err)
	}
	return nil
}

func readJSON(sku, path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &forecast.ModelNotFoundError{SKU: sku, Path: path}
		}
		return fmt.Errorf("mlstore: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &forecast.CorruptArtifactError{SKU: sku, Path: path, Err: err}
	}
	return nil
}
