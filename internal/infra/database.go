package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pricecast/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies any idempotent SQL patches that GORM
// cannot express (extensions, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations brings the schema up to date. Also used by integration tests
// against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() lives in pgcrypto on PostgreSQL < 13.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.PriceObservation{},
		&model.SalesObservation{},
		&model.ModelArtifact{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the scrape dedup / real-data queries: most reads
		// filter out synthetic seed rows.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'price_observations')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_price_obs_real') THEN
		    CREATE INDEX idx_price_obs_real
		        ON price_observations (product_id, collected_at)
		        WHERE synthetic = false;
		  END IF;
		END $$`,
		// Restock alert scan: only active products matter.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'products')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_products_low_stock') THEN
		    CREATE INDEX idx_products_low_stock
		        ON products (current_stock)
		        WHERE active = true;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
