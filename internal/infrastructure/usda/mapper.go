package usda

import (
	"fmt"
	"strings"

	"github.com/smartlens/backend/internal/domain"
)

// FDC nutrient IDs for the fields the score engine consumes.
const (
	nutrientIDEnergy       = 1008 // Energy (kcal)
	nutrientIDProtein      = 1003 // Protein (g)
	nutrientIDFiber        = 1079 // Fiber, total dietary (g)
	nutrientIDSugars       = 2000 // Sugars, total (g)
	nutrientIDSodium       = 1093 // Sodium (mg)
	nutrientIDSaturatedFat = 1258 // Fatty acids, total saturated (g)
)

// mapFood converts an FDC record into the canonical model. Category is
// always Food. Allergens are inferred from the ingredient statement; FDC
// has no structured allergen field.
func (c *Client) mapFood(dto *foodDTO) *domain.Product {
	name := dto.Description
	if name == "" {
		name = domain.UnknownProductName
	}

	barcode := dto.GtinUpc
	if barcode == "" {
		barcode = fmt.Sprintf("%d", dto.FdcID)
	}

	brands := dto.BrandOwner
	if brands == "" {
		brands = dto.BrandName
	}

	return &domain.Product{
		Barcode:         barcode,
		Name:            name,
		Brands:          brands,
		Categories:      dto.FoodCategory,
		IngredientsText: dto.Ingredients,
		Category:        domain.CategoryFood,
		Nutrition:       mapNutrition(dto),
		Allergens:       c.vocab.MatchAllergens(dto.Ingredients),
	}
}

// mapNutrition converts FDC nutrient values to per-100g figures. Label
// nutrients (per serving) take priority over the raw nutrient database.
// Sodium arrives in milligrams and converts to salt grams.
func mapNutrition(dto *foodDTO) *domain.NutritionData {
	multiplier := servingMultiplier(dto.ServingSize, dto.ServingSizeUnit)

	if label := dto.LabelNutrients; label != nil {
		return &domain.NutritionData{
			Sugars100g:       scale(labelVal(label.Sugars), multiplier),
			Salt100g:         scale(sodiumToSalt(labelVal(label.Sodium)), multiplier),
			SaturatedFat100g: scale(labelVal(label.SaturatedFat), multiplier),
			Proteins100g:     scale(labelVal(label.Protein), multiplier),
			Fiber100g:        scale(labelVal(label.Fiber), multiplier),
			EnergyKcal100g:   scale(labelVal(label.Calories), multiplier),
		}
	}

	if len(dto.FoodNutrients) == 0 {
		return nil
	}
	return &domain.NutritionData{
		Sugars100g:       scale(nutrientValue(dto.FoodNutrients, nutrientIDSugars), multiplier),
		Salt100g:         scale(sodiumToSalt(nutrientValue(dto.FoodNutrients, nutrientIDSodium)), multiplier),
		SaturatedFat100g: scale(nutrientValue(dto.FoodNutrients, nutrientIDSaturatedFat), multiplier),
		Proteins100g:     scale(nutrientValue(dto.FoodNutrients, nutrientIDProtein), multiplier),
		Fiber100g:        scale(nutrientValue(dto.FoodNutrients, nutrientIDFiber), multiplier),
		EnergyKcal100g:   scale(nutrientValue(dto.FoodNutrients, nutrientIDEnergy), multiplier),
	}
}

// servingMultiplier returns the factor converting per-serving values to
// per-100g. A serving size is only usable when its unit is a mass in
// grams; anything else defaults to 100g, a multiplier of 1.
func servingMultiplier(servingSize *float64, unit string) float64 {
	if servingSize == nil || *servingSize <= 0 {
		return 1
	}
	if !strings.Contains(strings.ToLower(unit), "g") {
		return 1
	}
	return 100.0 / *servingSize
}

func nutrientValue(nutrients []foodNutrientDTO, id int) *float64 {
	for i := range nutrients {
		if nutrients[i].NutrientID == id {
			return nutrients[i].Value
		}
	}
	return nil
}

func labelVal(v *labelValue) *float64 {
	if v == nil {
		return nil
	}
	return v.Value
}

// sodiumToSalt converts a sodium figure in milligrams to salt grams.
func sodiumToSalt(sodiumMg *float64) *float64 {
	if sodiumMg == nil {
		return nil
	}
	salt := *sodiumMg / 1000.0
	return &salt
}

func scale(v *float64, multiplier float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * multiplier
	return &scaled
}
