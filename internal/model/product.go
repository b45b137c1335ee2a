package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry tracked for purchasing decisions.
// SKU is the unique business key; all forecasting is keyed by it.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU          string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"index;not null"`
	Category     string    `gorm:"not null"`
	CurrentStock int       `gorm:"not null;default:0"`
	MinStock     int       `gorm:"not null;default:5"`
	SupplierID   *uuid.UUID `gorm:"type:uuid;index"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
