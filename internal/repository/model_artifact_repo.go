package repository

import (
	"context"
	"errors"

	"pricecast/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModelArtifactRepository maintains the denormalized index of trained
// models. The artifact files on disk are authoritative; this table only
// makes "which models exist" queryable.
type ModelArtifactRepository interface {
	Upsert(ctx context.Context, a *model.ModelArtifact) error
	FindBySKU(ctx context.Context, sku string) (*model.ModelArtifact, error)
	List(ctx context.Context) ([]model.ModelArtifact, error)
	DeleteBySKU(ctx context.Context, sku string) (bool, error)
}

type modelArtifactRepo struct{ db *gorm.DB }

func NewModelArtifactRepository(db *gorm.DB) ModelArtifactRepository {
	return &modelArtifactRepo{db: db}
}

// Upsert replaces the row for the SKU in place — a training run overwrites
// the prior version, it never accumulates history.
func (r *modelArtifactRepo) Upsert(ctx context.Context, a *model.ModelArtifact) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_sku"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"model_type", "version", "artifact_path", "metrics_json",
			"training_samples", "trained_at", "updated_at",
		}),
	}).Create(a).Error
}

func (r *modelArtifactRepo) FindBySKU(ctx context.Context, sku string) (*model.ModelArtifact, error) {
	var a model.ModelArtifact
	err := r.db.WithContext(ctx).Where("product_sku = ?", sku).First(&a).Error
	return &a, err
}

func (r *modelArtifactRepo) List(ctx context.Context) ([]model.ModelArtifact, error) {
	var rows []model.ModelArtifact
	err := r.db.WithContext(ctx).Order("product_sku ASC").Find(&rows).Error
	return rows, err
}

func (r *modelArtifactRepo) DeleteBySKU(ctx context.Context, sku string) (bool, error) {
	res := r.db.WithContext(ctx).Where("product_sku = ?", sku).Delete(&model.ModelArtifact{})
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
