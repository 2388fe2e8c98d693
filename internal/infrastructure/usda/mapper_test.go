package usda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartlens/backend/internal/domain"
	"github.com/smartlens/backend/internal/vocab"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	vocabulary, err := vocab.Default()
	require.NoError(t, err)
	return NewClient("key", "https://api.example.com", vocabulary, zap.NewNop())
}

func f(v float64) *float64 { return &v }

func TestMapNutrition_ServingConversion(t *testing.T) {
	t.Run("sodium per 30g serving converts to salt per 100g", func(t *testing.T) {
		dto := &foodDTO{
			ServingSize:     f(30),
			ServingSizeUnit: "g",
			FoodNutrients: []foodNutrientDTO{
				{NutrientID: nutrientIDSodium, Value: f(600)},
			},
		}
		nutrition := mapNutrition(dto)
		require.NotNil(t, nutrition)
		require.NotNil(t, nutrition.Salt100g)
		// 600mg sodium -> 0.6g salt per serving, x100/30 -> 2.0g.
		assert.InDelta(t, 2.0, *nutrition.Salt100g, 1e-9)
	})

	t.Run("non-mass serving unit defaults to per-100g", func(t *testing.T) {
		dto := &foodDTO{
			ServingSize:     f(240),
			ServingSizeUnit: "ml",
			FoodNutrients: []foodNutrientDTO{
				{NutrientID: nutrientIDSugars, Value: f(12)},
			},
		}
		nutrition := mapNutrition(dto)
		require.NotNil(t, nutrition)
		assert.Equal(t, 12.0, *nutrition.Sugars100g)
	})

	t.Run("missing serving size defaults to per-100g", func(t *testing.T) {
		dto := &foodDTO{
			FoodNutrients: []foodNutrientDTO{
				{NutrientID: nutrientIDProtein, Value: f(8)},
			},
		}
		nutrition := mapNutrition(dto)
		require.NotNil(t, nutrition)
		assert.Equal(t, 8.0, *nutrition.Proteins100g)
	})
}

func TestMapNutrition_LabelPriority(t *testing.T) {
	dto := &foodDTO{
		ServingSize:     f(50),
		ServingSizeUnit: "GRM",
		LabelNutrients: &labelNutrients{
			Sugars: &labelValue{Value: f(10)},
		},
		FoodNutrients: []foodNutrientDTO{
			{NutrientID: nutrientIDSugars, Value: f(99)},
		},
	}
	nutrition := mapNutrition(dto)
	require.NotNil(t, nutrition)
	// Label value wins: 10g per 50g serving -> 20g per 100g.
	assert.Equal(t, 20.0, *nutrition.Sugars100g)
	// Fields absent from the label stay absent, never zero.
	assert.Nil(t, nutrition.Proteins100g)
}

func TestMapNutrition_AbsentStaysAbsent(t *testing.T) {
	nutrition := mapNutrition(&foodDTO{})
	assert.Nil(t, nutrition)
}

func TestMapFood(t *testing.T) {
	client := testClient(t)

	t.Run("maps identity fields and category", func(t *testing.T) {
		dto := &foodDTO{
			FdcID:       12345,
			Description: "GRANOLA BAR",
			GtinUpc:     "0123456789012",
			BrandOwner:  "Acme Foods",
			Ingredients: "OATS, HONEY, ALMONDS, WHEAT FLOUR",
		}
		product := client.mapFood(dto)
		assert.Equal(t, "0123456789012", product.Barcode)
		assert.Equal(t, "GRANOLA BAR", product.Name)
		assert.Equal(t, "Acme Foods", product.Brands)
		assert.Equal(t, domain.CategoryFood, product.Category)
	})

	t.Run("allergens scanned from ingredient text", func(t *testing.T) {
		dto := &foodDTO{
			Description: "COOKIES",
			Ingredients: "WHEAT FLOUR, MILK SOLIDS, ALMOND PIECES",
		}
		product := client.mapFood(dto)
		assert.Contains(t, product.Allergens, "Wheat")
		assert.Contains(t, product.Allergens, "Milk")
		assert.Contains(t, product.Allergens, "Almond")
		assert.NotContains(t, product.Allergens, "Egg")
	})

	t.Run("falls back to fdc id when no barcode", func(t *testing.T) {
		dto := &foodDTO{FdcID: 999, Description: "SURVEY FOOD"}
		product := client.mapFood(dto)
		assert.Equal(t, "999", product.Barcode)
	})

	t.Run("empty description becomes placeholder", func(t *testing.T) {
		product := client.mapFood(&foodDTO{FdcID: 1})
		assert.Equal(t, domain.UnknownProductName, product.Name)
	})

	t.Run("brand name fallback when no owner", func(t *testing.T) {
		product := client.mapFood(&foodDTO{Description: "X", BrandName: "HouseBrand"})
		assert.Equal(t, "HouseBrand", product.Brands)
	})
}
