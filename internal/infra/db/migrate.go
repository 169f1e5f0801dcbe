package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/catalog.sql
var seedCatalogSQL string

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS products (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
    description TEXT NOT NULL DEFAULT '',
    quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    category    VARCHAR(32) NOT NULL DEFAULT 'Seeds',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS machinery (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
    description TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS videos (
    id          BIGSERIAL PRIMARY KEY,
    title       TEXT NOT NULL,
    youtube_id  VARCHAR(11) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category    VARCHAR(64) NOT NULL DEFAULT 'Education',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL UNIQUE,
    phone      TEXT NOT NULL DEFAULT '',
    location   TEXT NOT NULL DEFAULT '',
    role       VARCHAR(16) NOT NULL DEFAULT 'farmer',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS bills (
    id            BIGSERIAL PRIMARY KEY,
    customer_name TEXT NOT NULL,
    total         NUMERIC(12,2) NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// product_id は参照のみ(商品削除後も請求履歴を残すため FK なし)
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS bill_items (
    id         BIGSERIAL PRIMARY KEY,
    bill_id    BIGINT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    product_id BIGINT NOT NULL,
    name       TEXT NOT NULL,
    price      NUMERIC(12,2) NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    line_total NUMERIC(12,2) NOT NULL
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sensor_readings (
    id          BIGSERIAL PRIMARY KEY,
    temperature DOUBLE PRECISION NOT NULL,
    humidity    DOUBLE PRECISION NOT NULL,
    moisture    DOUBLE PRECISION NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// 在庫少商品の絞り込み用
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		`CREATE INDEX IF NOT EXISTS idx_products_quantity ON products(quantity)`,
		`CREATE INDEX IF NOT EXISTS idx_bill_items_bill_id ON bill_items(bill_id)`,
		// Latest / Recent は recorded_at DESC で読む
		`CREATE INDEX IF NOT EXISTS idx_sensor_readings_recorded_at ON sensor_readings(recorded_at DESC)`,
	}

	// pg_trgm拡張を有効化(ILIKE検索高速化用)
	// エラーを無視(既に存在する場合やスーパーユーザー権限がない場合)
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)

	searchIndexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_products_name_gin ON products USING gin(name gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_title_gin ON videos USING gin(title gin_trgm_ops)`,
	}
	for _, idx := range searchIndexes {
		// pg_trgm拡張がない場合はエラーになるため無視
		_, _ = db.Exec(idx)
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// シードデータの投入(テーブルが空の場合のみ)
	if _, err := db.Exec(seedCatalogSQL); err != nil {
		return err
	}

	return nil
}

// MigrateDown drops every table created by MigrateUp, children first.
// Use with caution: this deletes all data.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS bill_items CASCADE`,
		`DROP TABLE IF EXISTS bills CASCADE`,
		`DROP TABLE IF EXISTS sensor_readings CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
		`DROP TABLE IF EXISTS videos CASCADE`,
		`DROP TABLE IF EXISTS machinery CASCADE`,
		`DROP TABLE IF EXISTS products CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
