package usecase

import (
	"strings"

	"github.com/smartlens/backend/internal/domain"
)

// Warning tags surfaced to consumers. Thresholds are independent of the
// score engine; a nutrient can lower the score without crossing its
// warning threshold.
const (
	WarningHighSugar         = "high sugar"
	WarningHighSalt          = "high salt"
	WarningHighSaturatedFat  = "high saturated fat"
	WarningUltraProcessed    = "ultra-processed"
	WarningContainsParabens  = "contains parabens"
	WarningContainsSulfates  = "contains sulfates"
	WarningSyntheticFragrance = "synthetic fragrance"
	WarningNotCrueltyFree    = "not cruelty-free"
)

// WarningService derives short advisory tags from a canonical product.
type WarningService struct{}

// NewWarningService creates a warning service.
func NewWarningService() *WarningService {
	return &WarningService{}
}

// Warnings returns advisory tags in a fixed check order. Each check fires
// at most once, so no de-duplication is needed.
func (s *WarningService) Warnings(product *domain.Product) []string {
	switch product.Category {
	case domain.CategoryFood:
		return foodWarnings(product)
	case domain.CategoryBeauty, domain.CategoryPersonalCare:
		return beautyWarnings(product)
	default:
		return nil
	}
}

func foodWarnings(product *domain.Product) []string {
	nutrition := product.Nutrition
	if nutrition == nil {
		return nil
	}

	var warnings []string
	if nutrition.Sugars100g != nil && *nutrition.Sugars100g > 15.0 {
		warnings = append(warnings, WarningHighSugar)
	}
	if nutrition.Salt100g != nil && *nutrition.Salt100g > 1.5 {
		warnings = append(warnings, WarningHighSalt)
	}
	if nutrition.SaturatedFat100g != nil && *nutrition.SaturatedFat100g > 5.0 {
		warnings = append(warnings, WarningHighSaturatedFat)
	}
	if nutrition.NovaGroup != nil && *nutrition.NovaGroup == 4 {
		warnings = append(warnings, WarningUltraProcessed)
	}
	return warnings
}

func beautyWarnings(product *domain.Product) []string {
	beauty := product.Beauty
	if beauty == nil {
		return nil
	}

	var warnings []string
	if containsFold(beauty.HarmfulIngredients, "paraben") {
		warnings = append(warnings, WarningContainsParabens)
	}
	if containsFold(beauty.HarmfulIngredients, "sulfate") {
		warnings = append(warnings, WarningContainsSulfates)
	}
	if containsFold(beauty.HarmfulIngredients, "fragrance") || containsFold(beauty.HarmfulIngredients, "parfum") {
		warnings = append(warnings, WarningSyntheticFragrance)
	}
	if beauty.IsCrueltyFree != nil && !*beauty.IsCrueltyFree {
		warnings = append(warnings, WarningNotCrueltyFree)
	}
	return warnings
}

func containsFold(items []string, substr string) bool {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item), substr) {
			return true
		}
	}
	return false
}
