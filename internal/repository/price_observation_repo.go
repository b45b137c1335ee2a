package repository

import (
	"context"
	"time"

	"pricecast/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceObservationRepository is the append-only store of scraped/ingested
// price points. There are deliberately no update or delete methods.
type PriceObservationRepository interface {
	Append(ctx context.Context, obs *model.PriceObservation) error
	AppendBatch(ctx context.Context, obs []model.PriceObservation) error
	ListByProductSince(ctx context.Context, productID uuid.UUID, since time.Time) ([]model.PriceObservation, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceObservation, int64, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type priceObservationRepo struct{ db *gorm.DB }

func NewPriceObservationRepository(db *gorm.DB) PriceObservationRepository {
	return &priceObservationRepo{db: db}
}

func (r *priceObservationRepo) Append(ctx context.Context, obs *model.PriceObservation) error {
	return r.db.WithContext(ctx).Create(obs).Error
}

func (r *priceObservationRepo) AppendBatch(ctx context.Context, obs []model.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(obs, 500).Error
}

// ListByProductSince returns observations in ascending collection order —
// the order the history loader expects.
func (r *priceObservationRepo) ListByProductSince(ctx context.Context, productID uuid.UUID, since time.Time) ([]model.PriceObservation, error) {
	var rows []model.PriceObservation
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND collected_at >= ?", productID, since).
		Order("collected_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListByProduct returns paginated observations, newest-first, for the
// price history API.
func (r *priceObservationRepo) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceObservation, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.PriceObservation{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.PriceObservation
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("collected_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *priceObservationRepo) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.PriceObservation{}).
		Where("product_id = ?", productID).
		Count(&total).Error
	return total, err
}
