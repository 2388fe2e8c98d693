package usecase

import "github.com/smartlens/backend/internal/domain"

// ScoreService computes a 0-100 health score and the confidence tier
// behind it. It is stateless; scoring is a pure function of the product.
type ScoreService struct{}

// NewScoreService creates a score service.
func NewScoreService() *ScoreService {
	return &ScoreService{}
}

// Score computes the health score for a product, branching on category.
// Categories outside food and beauty get a fixed 50 with Insufficient
// availability, which callers must treat as "not meaningfully scored".
func (s *ScoreService) Score(product *domain.Product) domain.ScoreResult {
	switch product.Category {
	case domain.CategoryFood:
		return scoreFood(product)
	case domain.CategoryBeauty, domain.CategoryPersonalCare:
		return scoreBeauty(product)
	default:
		return domain.ScoreResult{Score: 50, Availability: domain.AvailabilityInsufficient}
	}
}

// scoreFood starts from a neutral base of 70, lets an official NutriScore
// grade override it, then adjusts per nutrient. Every field that was
// present counts toward the availability tier; the maximum is 8 (grade,
// sugar, saturated fat, salt, energy, protein, fiber, NOVA group).
func scoreFood(product *domain.Product) domain.ScoreResult {
	nutrition := product.Nutrition
	if nutrition == nil {
		return domain.ScoreResult{Score: 50, Availability: domain.AvailabilityInsufficient}
	}

	score := 70.0
	availableFields := 0

	if nutrition.NutriScoreGrade != nil {
		availableFields++
		switch *nutrition.NutriScoreGrade {
		case "a":
			score = 95
		case "b":
			score = 80
		case "c":
			score = 60
		case "d":
			score = 40
		case "e":
			score = 20
		}
	}

	if sugar := nutrition.Sugars100g; sugar != nil {
		availableFields++
		switch {
		case *sugar > 25:
			score -= 20
		case *sugar > 15:
			score -= 12
		case *sugar > 10:
			score -= 8
		case *sugar > 5:
			score -= 4
		}
	}

	if fat := nutrition.SaturatedFat100g; fat != nil {
		availableFields++
		switch {
		case *fat > 10:
			score -= 25
		case *fat > 5:
			score -= 15
		case *fat > 3:
			score -= 8
		case *fat > 1.5:
			score -= 4
		}
	}

	if salt := nutrition.Salt100g; salt != nil {
		availableFields++
		switch {
		case *salt > 2.0:
			score -= 25
		case *salt > 1.5:
			score -= 18
		case *salt > 1.0:
			score -= 10
		case *salt > 0.5:
			score -= 5
		}
	}

	if calories := nutrition.EnergyKcal100g; calories != nil {
		availableFields++
		switch {
		case *calories > 500:
			score -= 15
		case *calories > 400:
			score -= 10
		case *calories > 300:
			score -= 5
		case *calories < 100:
			score += 5
		}
	}

	if protein := nutrition.Proteins100g; protein != nil {
		availableFields++
		switch {
		case *protein > 15:
			score += 15
		case *protein > 10:
			score += 10
		case *protein > 5:
			score += 5
		}
	}

	if fiber := nutrition.Fiber100g; fiber != nil {
		availableFields++
		switch {
		case *fiber > 8:
			score += 15
		case *fiber > 5:
			score += 10
		case *fiber > 3:
			score += 5
		}
	}

	if nova := nutrition.NovaGroup; nova != nil {
		availableFields++
		switch *nova {
		case 1:
			score += 15
		case 2:
			score += 5
		case 3:
			score -= 10
		case 4:
			score -= 20
		}
	}

	return domain.ScoreResult{
		Score:        clampScore(score),
		Availability: foodAvailability(availableFields),
	}
}

// scoreBeauty scores cosmetics and personal-care products from the same
// neutral base of 70. A flag merely being present counts toward
// availability regardless of its value; the maximum is 5 (harmful
// ingredients, vegan, cruelty-free, paraben-free, allergens).
func scoreBeauty(product *domain.Product) domain.ScoreResult {
	beauty := product.Beauty
	if beauty == nil {
		return domain.ScoreResult{Score: 50, Availability: domain.AvailabilityInsufficient}
	}

	score := 70.0
	availableFields := 0

	if beauty.HarmfulIngredients != nil {
		availableFields++
		switch n := len(beauty.HarmfulIngredients); {
		case n == 0:
			score += 15
		case n <= 2:
			score -= 10
		case n <= 5:
			score -= 20
		default:
			score -= 30
		}
	}

	if beauty.IsVegan != nil {
		availableFields++
		if *beauty.IsVegan {
			score += 8
		}
	}

	if beauty.IsCrueltyFree != nil {
		availableFields++
		if *beauty.IsCrueltyFree {
			score += 8
		}
	}

	if beauty.IsParabenFree != nil {
		availableFields++
		if *beauty.IsParabenFree {
			score += 7
		}
	}

	if beauty.Allergens != nil {
		availableFields++
		switch n := len(beauty.Allergens); {
		case n == 0:
			score += 5
		case n <= 2:
			score -= 5
		case n <= 5:
			score -= 10
		default:
			score -= 15
		}
	}

	availability := domain.AvailabilityInsufficient
	switch {
	case availableFields >= 4:
		availability = domain.AvailabilityComplete
	case availableFields >= 2:
		availability = domain.AvailabilityPartial
	}

	return domain.ScoreResult{Score: clampScore(score), Availability: availability}
}

func foodAvailability(availableFields int) domain.DataAvailability {
	switch {
	case availableFields >= 5:
		return domain.AvailabilityComplete
	case availableFields >= 3:
		return domain.AvailabilityPartial
	default:
		return domain.AvailabilityInsufficient
	}
}

func clampScore(score float64) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return int(score)
	}
}
