package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create tables manually with raw SQL
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS stores (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		default_currency_code TEXT,
		currencies TEXT,
		default_shipping_profile_id TEXT,
		metadata TEXT,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS collections (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		handle TEXT UNIQUE NOT NULL,
		metadata TEXT,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		external_id TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		subtitle TEXT,
		description TEXT,
		handle TEXT NOT NULL,
		status TEXT DEFAULT 'draft',
		collection_id UUID,
		profile_id TEXT,
		is_giftcard BOOLEAN DEFAULT false,
		discountable BOOLEAN DEFAULT true,
		weight INTEGER,
		height INTEGER,
		length INTEGER,
		width INTEGER,
		images TEXT,
		metadata TEXT,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS product_options (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL,
		title TEXT NOT NULL,
		"values" TEXT,
		metadata TEXT,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS variants (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL,
		title TEXT NOT NULL,
		sku TEXT UNIQUE,
		barcode TEXT,
		ean TEXT,
		upc TEXT,
		prices TEXT,
		inventory_quantity INTEGER DEFAULT 0,
		allow_backorder BOOLEAN DEFAULT false,
		manage_inventory BOOLEAN DEFAULT false,
		weight INTEGER,
		height INTEGER,
		width INTEGER,
		length INTEGER,
		options TEXT,
		metadata TEXT,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id UUID PRIMARY KEY,
		status TEXT DEFAULT 'QUEUED',
		triggered_by TEXT DEFAULT 'SYSTEM',
		categories_processed INTEGER DEFAULT 0,
		categories_failed INTEGER DEFAULT 0,
		products_processed INTEGER DEFAULT 0,
		products_failed INTEGER DEFAULT 0,
		error TEXT,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
