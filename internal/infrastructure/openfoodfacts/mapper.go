package openfoodfacts

import (
	"strings"

	"github.com/smartlens/backend/internal/domain"
)

// mapProduct converts an Open Food Facts document into the canonical model.
// The category is always Food; NutriScore and NOVA pass through unchanged.
func mapProduct(dto *productDTO) *domain.Product {
	name := dto.ProductName
	if name == "" {
		name = domain.UnknownProductName
	}

	return &domain.Product{
		Barcode:         dto.Code,
		Name:            name,
		Brands:          dto.Brands,
		ImageURL:        dto.ImageURL,
		Categories:      dto.Categories,
		IngredientsText: dto.IngredientsText,
		Category:        domain.CategoryFood,
		Nutrition:       mapNutrition(dto),
		Allergens:       mapAllergens(dto),
	}
}

func mapNutrition(dto *productDTO) *domain.NutritionData {
	if dto.Nutriments == nil && dto.NutriscoreGrade == "" && dto.NovaGroup == nil {
		return nil
	}

	nutrition := &domain.NutritionData{
		NovaGroup: dto.NovaGroup,
	}
	if grade := strings.ToLower(strings.TrimSpace(dto.NutriscoreGrade)); grade != "" && grade != "unknown" && grade != "not-applicable" {
		nutrition.NutriScoreGrade = &grade
	}
	if n := dto.Nutriments; n != nil {
		nutrition.Sugars100g = n.Sugars100g
		nutrition.Salt100g = n.Salt100g
		nutrition.SaturatedFat100g = n.SaturatedFat100g
		nutrition.Proteins100g = n.Proteins100g
		nutrition.Fiber100g = n.Fiber100g
		nutrition.EnergyKcal100g = n.EnergyKcal100g
	}
	return nutrition
}

// mapAllergens prefers the tag list ("en:milk") over the free-text comma
// list, stripping the language prefix.
func mapAllergens(dto *productDTO) []string {
	var allergens []string
	if len(dto.AllergensTags) > 0 {
		for _, tag := range dto.AllergensTags {
			if idx := strings.Index(tag, ":"); idx >= 0 {
				tag = tag[idx+1:]
			}
			if tag != "" {
				allergens = append(allergens, tag)
			}
		}
		return allergens
	}
	for _, a := range strings.Split(dto.Allergens, ",") {
		if a = strings.TrimSpace(a); a != "" {
			allergens = append(allergens, a)
		}
	}
	return allergens
}
