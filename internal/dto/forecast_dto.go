package dto

import "github.com/shopspring/decimal"

// ForecastResponse is the forecast contract: dates and prices are parallel
// slices covering exactly the requested horizon, consecutive days starting
// the day after the last real observation. ModelUsed is the trained model
// type, or "moving_average_fallback" with empty metrics.
type ForecastResponse struct {
	SKU       string             `json:"sku"`
	Dates     []string           `json:"dates"`
	Prices    []decimal.Decimal  `json:"prices"`
	ModelUsed string             `json:"model_used"`
	Metrics   map[string]float64 `json:"metrics"`
}
