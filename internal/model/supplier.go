package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a vendor whose offers feed the price observation stream.
type Supplier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"uniqueIndex;not null"`
	Email        *string
	Phone        *string
	PaymentTerms string `gorm:"not null;default:'cash'"` // cash | 30d | 60d
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
