package domain

import "time"

// Category classifies a resolved product and decides which scoring
// branch applies.
type Category string

const (
	CategoryFood         Category = "FOOD"
	CategoryBeauty       Category = "BEAUTY"
	CategoryPersonalCare Category = "PERSONAL_CARE"
	CategoryGeneral      Category = "GENERAL"
	CategoryUnknown      Category = "UNKNOWN"
)

// ParseCategory converts a stored string back to a Category,
// defaulting to Unknown for anything unrecognized.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryFood, CategoryBeauty, CategoryPersonalCare, CategoryGeneral:
		return Category(s)
	default:
		return CategoryUnknown
	}
}

// DataAvailability describes how much input data backed a computed score.
type DataAvailability string

const (
	AvailabilityComplete     DataAvailability = "COMPLETE"
	AvailabilityPartial      DataAvailability = "PARTIAL"
	AvailabilityInsufficient DataAvailability = "INSUFFICIENT"
)

// ParseDataAvailability converts a stored string back to a DataAvailability.
func ParseDataAvailability(s string) DataAvailability {
	switch DataAvailability(s) {
	case AvailabilityComplete, AvailabilityPartial:
		return DataAvailability(s)
	default:
		return AvailabilityInsufficient
	}
}

// UnknownProductName is the fallback name normalizers assign when a source
// has no product name. Merge logic treats it as absent.
const UnknownProductName = "Unknown Product"

// Product is the canonical record produced after reconciling all sources.
// A Product is never mutated after resolution; a newer resolution for the
// same barcode supersedes it.
type Product struct {
	Barcode         string           `json:"barcode"`
	Name            string           `json:"name"`
	Brands          string           `json:"brands,omitempty"`
	ImageURL        string           `json:"imageUrl,omitempty"`
	Categories      string           `json:"categories,omitempty"`
	IngredientsText string           `json:"ingredientsText,omitempty"`
	Category        Category         `json:"category"`
	Nutrition       *NutritionData   `json:"nutrition,omitempty"`
	Beauty          *BeautyData      `json:"beauty,omitempty"`
	Allergens       []string         `json:"allergens,omitempty"`
	HealthScore     int              `json:"healthScore"`
	Availability    DataAvailability `json:"dataAvailability"`
	Warnings        []string         `json:"warnings,omitempty"`
	ResolvedAt      time.Time        `json:"resolvedAt"`
	CachedAt        time.Time        `json:"cachedAt"`
}

// NutritionData holds per-100g nutrition values. Every field is
// independently optional: a nil pointer means the source did not report
// the value, which is different from zero.
type NutritionData struct {
	Sugars100g       *float64 `json:"sugars100g,omitempty"`
	Salt100g         *float64 `json:"salt100g,omitempty"`
	SaturatedFat100g *float64 `json:"saturatedFat100g,omitempty"`
	Proteins100g     *float64 `json:"proteins100g,omitempty"`
	Fiber100g        *float64 `json:"fiber100g,omitempty"`
	EnergyKcal100g   *float64 `json:"energyKcal100g,omitempty"`
	NutriScoreGrade  *string  `json:"nutriScoreGrade,omitempty"` // a-e
	NovaGroup        *int     `json:"novaGroup,omitempty"`       // 1-4
}

// BeautyData holds cosmetic product attributes. The boolean flags are
// tri-state: nil means the source gave no signal either way.
type BeautyData struct {
	HarmfulIngredients []string `json:"harmfulIngredients,omitempty"`
	Allergens          []string `json:"allergens,omitempty"`
	IsVegan            *bool    `json:"isVegan,omitempty"`
	IsCrueltyFree      *bool    `json:"isCrueltyFree,omitempty"`
	IsParabenFree      *bool    `json:"isParabenFree,omitempty"`
	IsSulfateFree      *bool    `json:"isSulfateFree,omitempty"`
}

// ScoreResult pairs a 0-100 score with the confidence tier that backed it.
// A score is meaningless without its availability, so the two always
// travel together.
type ScoreResult struct {
	Score        int              `json:"score"`
	Availability DataAvailability `json:"dataAvailability"`
}

// Alternative is a better-scoring substitute for a scored product.
type Alternative struct {
	Product           Product `json:"product"`
	ImprovementReason string  `json:"improvementReason"`
	ScoreDelta        int     `json:"scoreDelta"`
}

// Float64Ptr returns a pointer to v. Convenience for building optional
// nutrition fields.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
