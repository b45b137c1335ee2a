package repository

import (
	"context"
	"time"

	"pricecast/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesObservationRepository is the append-only store of daily sales rows.
type SalesObservationRepository interface {
	Append(ctx context.Context, obs *model.SalesObservation) error
	ListByProductSince(ctx context.Context, productID uuid.UUID, since time.Time) ([]model.SalesObservation, error)
}

type salesObservationRepo struct{ db *gorm.DB }

func NewSalesObservationRepository(db *gorm.DB) SalesObservationRepository {
	return &salesObservationRepo{db: db}
}

func (r *salesObservationRepo) Append(ctx context.Context, obs *model.SalesObservation) error {
	return r.db.WithContext(ctx).Create(obs).Error
}

func (r *salesObservationRepo) ListByProductSince(ctx context.Context, productID uuid.UUID, since time.Time) ([]model.SalesObservation, error) {
	var rows []model.SalesObservation
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND sale_date >= ?", productID, since).
		Order("sale_date ASC").
		Find(&rows).Error
	return rows, err
}
