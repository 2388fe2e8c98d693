// Package cache persists resolved products in a local SQLite database.
// Reads never touch the network; freshness decisions belong to the caller.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/smartlens/backend/internal/domain"
)

// SQLiteStore implements domain.CacheRepository using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS products (
	barcode            TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	brands             TEXT NOT NULL DEFAULT '',
	image_url          TEXT NOT NULL DEFAULT '',
	categories         TEXT NOT NULL DEFAULT '',
	ingredients_text   TEXT NOT NULL DEFAULT '',
	category           TEXT NOT NULL,
	sugars_100g        REAL,
	salt_100g          REAL,
	saturated_fat_100g REAL,
	proteins_100g      REAL,
	fiber_100g         REAL,
	energy_kcal_100g   REAL,
	nutriscore_grade   TEXT,
	nova_group         INTEGER,
	harmful_ingredients TEXT,
	beauty_allergens   TEXT,
	is_vegan           INTEGER,
	is_cruelty_free    INTEGER,
	is_paraben_free    INTEGER,
	is_sulfate_free    INTEGER,
	allergens          TEXT NOT NULL DEFAULT '',
	health_score       INTEGER NOT NULL DEFAULT 0,
	data_availability  TEXT NOT NULL,
	warnings           TEXT NOT NULL DEFAULT '',
	resolved_at        INTEGER NOT NULL,
	cached_at          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_resolved_at ON products(resolved_at);
CREATE INDEX IF NOT EXISTS idx_products_cached_at ON products(cached_at);
`

// Migrate creates the products table and its indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const productColumns = `barcode, name, brands, image_url, categories, ingredients_text,
	category, sugars_100g, salt_100g, saturated_fat_100g, proteins_100g,
	fiber_100g, energy_kcal_100g, nutriscore_grade, nova_group,
	harmful_ingredients, beauty_allergens, is_vegan, is_cruelty_free,
	is_paraben_free, is_sulfate_free, allergens, health_score,
	data_availability, warnings, resolved_at, cached_at`

// GetByBarcode returns the cached record for a barcode, stale or not.
// Returns domain.ErrCacheMiss when no row exists.
func (s *SQLiteStore) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode = ?`, barcode)

	var r productRow
	if err := r.scan(row.Scan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCacheMiss
		}
		return nil, eris.Wrapf(err, "sqlite: get product %s", barcode)
	}
	return toDomain(&r), nil
}

// Save upserts a resolved product. Last write wins per barcode.
func (s *SQLiteStore) Save(ctx context.Context, product *domain.Product) error {
	r := toRow(product)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO products (`+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Barcode, r.Name, r.Brands, r.ImageURL, r.Categories, r.IngredientsText,
		r.Category, r.Sugars100g, r.Salt100g, r.SaturatedFat100g, r.Proteins100g,
		r.Fiber100g, r.EnergyKcal100g, r.NutriScoreGrade, r.NovaGroup,
		r.HarmfulIngredients, r.BeautyAllergens, r.IsVegan, r.IsCrueltyFree,
		r.IsParabenFree, r.IsSulfateFree, r.Allergens, r.HealthScore,
		r.DataAvailability, r.Warnings, r.ResolvedAt, r.CachedAt,
	)
	return eris.Wrapf(err, "sqlite: save product %s", product.Barcode)
}

// DeleteOlderThan removes rows cached strictly before the cutoff and
// reports how many were swept.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM products WHERE cached_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired products")
	}
	n, err := res.RowsAffected()
	return n, eris.Wrap(err, "sqlite: rows affected")
}

// History returns every cached product, most recently resolved first.
func (s *SQLiteStore) History(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY resolved_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: history")
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ByCategory returns cached products in one category, most recent first.
func (s *SQLiteStore) ByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = ? ORDER BY resolved_at DESC`,
		string(category))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: products by category %s", category)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var r productRow
		if err := r.scan(rows.Scan); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan product")
		}
		products = append(products, *toDomain(&r))
	}
	return products, eris.Wrap(rows.Err(), "sqlite: iterate products")
}
