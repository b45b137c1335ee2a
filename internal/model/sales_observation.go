package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesObservation is one day's sales record for a product. Append-only.
type SalesObservation struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index:idx_sales_obs_product_date,priority:1"`
	SaleDate  time.Time       `gorm:"type:date;not null;index:idx_sales_obs_product_date,priority:2"`
	Quantity  int             `gorm:"not null;check:quantity >= 0"`
	Revenue   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time

	Product Product `gorm:"foreignKey:ProductID"`
}
