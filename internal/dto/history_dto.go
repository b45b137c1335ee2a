package dto

import "github.com/shopspring/decimal"

// RecordPriceObservationRequest appends one price point for a product.
// Observations are immutable once written.
type RecordPriceObservationRequest struct {
	SKU           string          `json:"sku"            validate:"required"`
	Price         decimal.Decimal `json:"price"          validate:"required,gt=0"`
	Currency      string          `json:"currency"       validate:"omitempty,len=3"`
	SupplierLabel *string         `json:"supplier_label"`
	CollectedAt   *string         `json:"collected_at"` // RFC 3339; defaults to now
}

// RecordSalesObservationRequest appends one day's sales row for a product.
type RecordSalesObservationRequest struct {
	SKU      string          `json:"sku"       validate:"required"`
	SaleDate string          `json:"sale_date" validate:"required"` // YYYY-MM-DD
	Quantity int             `json:"quantity"  validate:"min=0"`
	Revenue  decimal.Decimal `json:"revenue"   validate:"min=0"`
}

type PriceObservationItem struct {
	ID            string          `json:"id"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	SupplierLabel *string         `json:"supplier_label"`
	Synthetic     bool            `json:"synthetic"`
	CollectedAt   string          `json:"collected_at"`
}

type PriceHistoryListResponse struct {
	Data  []PriceObservationItem `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
