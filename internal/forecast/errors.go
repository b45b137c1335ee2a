package forecast

import (
	"errors"
	"fmt"
)

// ErrInvalidHorizon is a caller contract violation: days_ahead < 1.
// It is never clamped away.
var ErrInvalidHorizon = errors.New("forecast horizon must be >= 1 day")

// InsufficientHistoryError means fewer raw observations exist than the
// minimum required for a reliable series. Callers may recover by switching
// to the moving-average fallback (which has its own, lower minimum).
type InsufficientHistoryError struct {
	SKU      string
	Observed int
	Required int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history for %s: have %d observations, need %d", e.SKU, e.Observed, e.Required)
}

// ModelNotFoundError means the artifact triple (model, metadata, optional
// scaler) is missing or incomplete for a SKU. A partially present directory
// is reported the same way — never as a degraded-but-usable state.
type ModelNotFoundError struct {
	SKU  string
	Path string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("no trained model for %s at %s", e.SKU, e.Path)
}

// CorruptArtifactError means an artifact file exists but could not be
// deserialized. Distinct from ModelNotFoundError so operators can tell
// "no model" from "corrupt model".
type CorruptArtifactError struct {
	SKU  string
	Path string
	Err  error
}

func (e *CorruptArtifactError) Error() string {
	return fmt.Sprintf("corrupt model artifact for %s at %s: %v", e.SKU, e.Path, e.Err)
}

func (e *CorruptArtifactError) Unwrap() error { return e.Err }
