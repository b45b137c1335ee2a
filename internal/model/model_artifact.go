package model

import (
	"time"

	"github.com/google/uuid"
)

// ModelArtifact is the denormalized DB index of a trained model directory.
// The artifact files on disk are the source of truth; this row only exists
// so "which models exist" can be answered with a query instead of a scan.
type ModelArtifact struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductSKU      string    `gorm:"uniqueIndex;not null"`
	ModelType       string    `gorm:"not null"`
	Version         string    `gorm:"not null"`
	ArtifactPath    string    `gorm:"not null"`
	MetricsJSON     string    `gorm:"type:jsonb;not null;default:'{}'"`
	TrainingSamples int       `gorm:"not null"`
	TrainedAt       time.Time `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
