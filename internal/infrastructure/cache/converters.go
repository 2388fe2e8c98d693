package cache

import (
	"database/sql"
	"strings"
	"time"

	"github.com/smartlens/backend/internal/domain"
)

// listSeparator joins string lists into a single column. A pipe never
// occurs inside vocabulary entries or warning tags, unlike commas.
const listSeparator = "|"

// productRow mirrors the products table. Nullable columns use sql.Null
// types so absence survives a round-trip instead of collapsing to zero.
type productRow struct {
	Barcode            string
	Name               string
	Brands             string
	ImageURL           string
	Categories         string
	IngredientsText    string
	Category           string
	Sugars100g         sql.NullFloat64
	Salt100g           sql.NullFloat64
	SaturatedFat100g   sql.NullFloat64
	Proteins100g       sql.NullFloat64
	Fiber100g          sql.NullFloat64
	EnergyKcal100g     sql.NullFloat64
	NutriScoreGrade    sql.NullString
	NovaGroup          sql.NullInt64
	HarmfulIngredients sql.NullString
	BeautyAllergens    sql.NullString
	IsVegan            sql.NullBool
	IsCrueltyFree      sql.NullBool
	IsParabenFree      sql.NullBool
	IsSulfateFree      sql.NullBool
	Allergens          string
	HealthScore        int
	DataAvailability   string
	Warnings           string
	ResolvedAt         int64
	CachedAt           int64
}

func (r *productRow) scan(scan func(dest ...any) error) error {
	return scan(
		&r.Barcode, &r.Name, &r.Brands, &r.ImageURL, &r.Categories, &r.IngredientsText,
		&r.Category, &r.Sugars100g, &r.Salt100g, &r.SaturatedFat100g, &r.Proteins100g,
		&r.Fiber100g, &r.EnergyKcal100g, &r.NutriScoreGrade, &r.NovaGroup,
		&r.HarmfulIngredients, &r.BeautyAllergens, &r.IsVegan, &r.IsCrueltyFree,
		&r.IsParabenFree, &r.IsSulfateFree, &r.Allergens, &r.HealthScore,
		&r.DataAvailability, &r.Warnings, &r.ResolvedAt, &r.CachedAt,
	)
}

// toRow flattens a canonical product into the persisted column layout.
func toRow(p *domain.Product) *productRow {
	r := &productRow{
		Barcode:          p.Barcode,
		Name:             p.Name,
		Brands:           p.Brands,
		ImageURL:         p.ImageURL,
		Categories:       p.Categories,
		IngredientsText:  p.IngredientsText,
		Category:         string(p.Category),
		Allergens:        joinList(p.Allergens),
		HealthScore:      p.HealthScore,
		DataAvailability: string(p.Availability),
		Warnings:         joinList(p.Warnings),
		ResolvedAt:       p.ResolvedAt.UnixMilli(),
		CachedAt:         p.CachedAt.UnixMilli(),
	}

	if n := p.Nutrition; n != nil {
		r.Sugars100g = nullFloat(n.Sugars100g)
		r.Salt100g = nullFloat(n.Salt100g)
		r.SaturatedFat100g = nullFloat(n.SaturatedFat100g)
		r.Proteins100g = nullFloat(n.Proteins100g)
		r.Fiber100g = nullFloat(n.Fiber100g)
		r.EnergyKcal100g = nullFloat(n.EnergyKcal100g)
		if n.NutriScoreGrade != nil {
			r.NutriScoreGrade = sql.NullString{String: *n.NutriScoreGrade, Valid: true}
		}
		if n.NovaGroup != nil {
			r.NovaGroup = sql.NullInt64{Int64: int64(*n.NovaGroup), Valid: true}
		}
	}

	if b := p.Beauty; b != nil {
		r.HarmfulIngredients = sql.NullString{String: joinList(b.HarmfulIngredients), Valid: true}
		r.BeautyAllergens = sql.NullString{String: joinList(b.Allergens), Valid: true}
		r.IsVegan = nullBool(b.IsVegan)
		r.IsCrueltyFree = nullBool(b.IsCrueltyFree)
		r.IsParabenFree = nullBool(b.IsParabenFree)
		r.IsSulfateFree = nullBool(b.IsSulfateFree)
	}

	return r
}

// toDomain rebuilds the canonical product from a persisted row. Nutrition
// and beauty sub-records are reconstructed only when any of their columns
// carried a value, so absence stays absent.
func toDomain(r *productRow) *domain.Product {
	p := &domain.Product{
		Barcode:         r.Barcode,
		Name:            r.Name,
		Brands:          r.Brands,
		ImageURL:        r.ImageURL,
		Categories:      r.Categories,
		IngredientsText: r.IngredientsText,
		Category:        domain.ParseCategory(r.Category),
		Allergens:       splitList(r.Allergens),
		HealthScore:     r.HealthScore,
		Availability:    domain.ParseDataAvailability(r.DataAvailability),
		Warnings:        splitList(r.Warnings),
		ResolvedAt:      time.UnixMilli(r.ResolvedAt).UTC(),
		CachedAt:        time.UnixMilli(r.CachedAt).UTC(),
	}

	if r.Sugars100g.Valid || r.Salt100g.Valid || r.SaturatedFat100g.Valid ||
		r.Proteins100g.Valid || r.Fiber100g.Valid || r.EnergyKcal100g.Valid ||
		r.NutriScoreGrade.Valid || r.NovaGroup.Valid {
		n := &domain.NutritionData{
			Sugars100g:       floatPtr(r.Sugars100g),
			Salt100g:         floatPtr(r.Salt100g),
			SaturatedFat100g: floatPtr(r.SaturatedFat100g),
			Proteins100g:     floatPtr(r.Proteins100g),
			Fiber100g:        floatPtr(r.Fiber100g),
			EnergyKcal100g:   floatPtr(r.EnergyKcal100g),
		}
		if r.NutriScoreGrade.Valid {
			n.NutriScoreGrade = &r.NutriScoreGrade.String
		}
		if r.NovaGroup.Valid {
			nova := int(r.NovaGroup.Int64)
			n.NovaGroup = &nova
		}
		p.Nutrition = n
	}

	if r.HarmfulIngredients.Valid || r.BeautyAllergens.Valid || r.IsVegan.Valid ||
		r.IsCrueltyFree.Valid || r.IsParabenFree.Valid || r.IsSulfateFree.Valid {
		p.Beauty = &domain.BeautyData{
			HarmfulIngredients: splitList(r.HarmfulIngredients.String),
			Allergens:          splitList(r.BeautyAllergens.String),
			IsVegan:            boolPtr(r.IsVegan),
			IsCrueltyFree:      boolPtr(r.IsCrueltyFree),
			IsParabenFree:      boolPtr(r.IsParabenFree),
			IsSulfateFree:      boolPtr(r.IsSulfateFree),
		}
	}

	return p
}

func joinList(items []string) string {
	return strings.Join(items, listSeparator)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func boolPtr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
