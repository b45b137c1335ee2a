// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}

// InsufficientHistory carries observed-vs-required counts so API callers can
// diagnose a rejected forecast without re-running with extra logging.
type InsufficientHistory struct {
	Detail   string `json:"detail"`
	SKU      string `json:"sku"`
	Observed int    `json:"observed"`
	Required int    `json:"required"`
}

func NewInsufficientHistory(sku string, observed, required int) *InsufficientHistory {
	return &InsufficientHistory{
		Detail:   "insufficient price history",
		SKU:      sku,
		Observed: observed,
		Required: required,
	}
}
