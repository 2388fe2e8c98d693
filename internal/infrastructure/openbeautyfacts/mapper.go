package openbeautyfacts

import (
	"strings"

	"github.com/smartlens/backend/internal/domain"
)

const veganTag = "en:vegan"

// mapProduct converts an Open Beauty Facts document into the canonical
// model. Harmful ingredients come from vocabulary matching over the
// ingredient text; paraben-free and sulfate-free are derived as the
// negation of the corresponding harmful matches. Cruelty-free has no
// signal in this source and stays unset.
func (c *Client) mapProduct(dto *productDTO) *domain.Product {
	name := dto.ProductName
	if name == "" {
		name = domain.UnknownProductName
	}

	harmful := c.vocab.MatchHarmful(dto.IngredientsText)

	isVegan := false
	for _, tag := range dto.IngredientsAnalysisTags {
		if tag == veganTag {
			isVegan = true
			break
		}
	}

	beauty := &domain.BeautyData{
		HarmfulIngredients: harmful,
		Allergens:          splitAllergens(dto.Allergens),
		IsVegan:            domain.BoolPtr(isVegan),
		IsParabenFree:      domain.BoolPtr(!anyContains(harmful, "paraben")),
		IsSulfateFree:      domain.BoolPtr(!anyContains(harmful, "sulfate")),
	}

	category := domain.CategoryBeauty
	if c.vocab.IsPersonalCare(dto.Categories) {
		category = domain.CategoryPersonalCare
	}

	return &domain.Product{
		Barcode:         dto.Code,
		Name:            name,
		Brands:          dto.Brands,
		ImageURL:        dto.ImageURL,
		Categories:      dto.Categories,
		IngredientsText: dto.IngredientsText,
		Category:        category,
		Beauty:          beauty,
		Allergens:       beauty.Allergens,
	}
}

func splitAllergens(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func anyContains(items []string, substr string) bool {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item), substr) {
			return true
		}
	}
	return false
}
