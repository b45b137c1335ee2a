package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceObservation is one scraped/ingested price point for a product.
// Records are immutable — they are never updated or deleted.
type PriceObservation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_obs_product_time,priority:1"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Currency      string          `gorm:"type:char(3);not null;default:'ARS'"`
	SupplierLabel *string
	Synthetic     bool      `gorm:"not null;default:false"`
	CollectedAt   time.Time `gorm:"not null;index:idx_price_obs_product_time,priority:2"`
	CreatedAt     time.Time

	Product Product `gorm:"foreignKey:ProductID"`
}
