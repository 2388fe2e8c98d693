package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/smartlens/backend/internal/domain"
)

const maxAlternatives = 5

// AlternativesService finds better-scoring substitutes for a scored
// product. Food alternatives come from a live category search against the
// food catalog; beauty alternatives are always synthetic suggestions
// built from the product's own failing attributes.
type AlternativesService struct {
	searchClient domain.SearchClient
	score        *ScoreService
	logger       *zap.Logger
}

// NewAlternativesService creates an alternatives service. The search
// client is the food catalog; no other source is consulted.
func NewAlternativesService(searchClient domain.SearchClient, scoreService *ScoreService, logger *zap.Logger) *AlternativesService {
	return &AlternativesService{
		searchClient: searchClient,
		score:        scoreService,
		logger:       logger,
	}
}

// Find returns at most five alternatives, each strictly better-scoring
// than the current product, sorted by score improvement.
func (s *AlternativesService) Find(ctx context.Context, current *domain.Product) ([]domain.Alternative, error) {
	switch current.Category {
	case domain.CategoryFood:
		return s.findFoodAlternatives(ctx, current), nil
	case domain.CategoryBeauty, domain.CategoryPersonalCare:
		return s.beautySuggestion(current), nil
	default:
		return nil, nil
	}
}

func (s *AlternativesService) findFoodAlternatives(ctx context.Context, current *domain.Product) []domain.Alternative {
	mainCategory := firstCategorySegment(current.Categories)
	if mainCategory == "" {
		return s.genericFoodSuggestion(current)
	}

	hits, err := s.searchClient.Search(ctx, mainCategory, 1, 20)
	if err != nil {
		s.logger.Warn("alternatives search failed",
			zap.String("category", mainCategory),
			zap.Error(err))
		return s.genericFoodSuggestion(current)
	}

	var alternatives []domain.Alternative
	for i := range hits {
		candidate := hits[i]
		if candidate.Barcode == "" || candidate.Barcode == current.Barcode {
			continue
		}

		result := s.score.Score(&candidate)
		if result.Score <= current.HealthScore {
			continue
		}
		candidate.HealthScore = result.Score
		candidate.Availability = result.Availability

		alternatives = append(alternatives, domain.Alternative{
			Product:           candidate,
			ImprovementReason: improvementReason(current, &candidate),
			ScoreDelta:        result.Score - current.HealthScore,
		})
	}

	if len(alternatives) == 0 {
		return s.genericFoodSuggestion(current)
	}

	sortByDeltaDesc(alternatives)
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	return alternatives
}

// improvementReason explains what makes an alternative better, comparing
// sugar, salt and processing level. At most two reasons; a generic one
// when no specific nutrient improved.
func improvementReason(current, alt *domain.Product) string {
	var reasons []string
	cn, an := current.Nutrition, alt.Nutrition
	if cn != nil && an != nil {
		if cn.Sugars100g != nil && an.Sugars100g != nil && *an.Sugars100g < *cn.Sugars100g {
			reduction := int((*cn.Sugars100g - *an.Sugars100g) / *cn.Sugars100g * 100)
			reasons = append(reasons, fmt.Sprintf("%d%% less sugar", reduction))
		}
		if cn.Salt100g != nil && an.Salt100g != nil && *an.Salt100g < *cn.Salt100g {
			reduction := int((*cn.Salt100g - *an.Salt100g) / *cn.Salt100g * 100)
			reasons = append(reasons, fmt.Sprintf("%d%% less salt", reduction))
		}
		if cn.NovaGroup != nil && an.NovaGroup != nil && *an.NovaGroup < *cn.NovaGroup {
			reasons = append(reasons, "less processed")
		}
	}
	if len(reasons) == 0 {
		return "better overall nutrition"
	}
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	return strings.Join(reasons, ", ")
}

// genericFoodSuggestion builds a synthetic suggestion from the product's
// own weak nutrients when no real alternative could be found. No actual
// product is claimed to exist.
func (s *AlternativesService) genericFoodSuggestion(current *domain.Product) []domain.Alternative {
	nutrition := current.Nutrition
	if nutrition == nil {
		return nil
	}

	var improvements []string
	if nutrition.Sugars100g != nil && *nutrition.Sugars100g > 5.0 {
		improvements = append(improvements, "lower sugar content")
	}
	if nutrition.Salt100g != nil && *nutrition.Salt100g > 1.0 {
		improvements = append(improvements, "reduced sodium")
	}
	if nutrition.NovaGroup != nil && *nutrition.NovaGroup >= 3 {
		improvements = append(improvements, "less processed options")
	}
	if len(improvements) == 0 {
		return nil
	}

	suggestion := *current
	suggestion.Name = "Healthier " + categoryLabel(current.Categories, "Alternative")
	suggestion.Brands = "Recommended brands"
	suggestion.HealthScore = capScore(current.HealthScore + 15)
	suggestion.Warnings = nil

	return []domain.Alternative{{
		Product:           suggestion,
		ImprovementReason: "Look for products with: " + strings.Join(improvements, ", "),
		ScoreDelta:        15,
	}}
}

// beautySuggestion lists which attributes currently fail and suggests a
// product class that would pass them.
func (s *AlternativesService) beautySuggestion(current *domain.Product) []domain.Alternative {
	beauty := current.Beauty
	if beauty == nil {
		return nil
	}

	var improvements []string
	if beauty.IsParabenFree != nil && !*beauty.IsParabenFree {
		improvements = append(improvements, "paraben-free")
	}
	if beauty.IsSulfateFree != nil && !*beauty.IsSulfateFree {
		improvements = append(improvements, "sulfate-free")
	}
	if beauty.IsVegan != nil && !*beauty.IsVegan {
		improvements = append(improvements, "vegan")
	}
	if len(beauty.HarmfulIngredients) > 0 {
		improvements = append(improvements, "fewer harmful ingredients")
	}
	if len(improvements) == 0 {
		return nil
	}
	if len(improvements) > 3 {
		improvements = improvements[:3]
	}

	suggestion := *current
	suggestion.Name = "Natural " + categoryLabel(current.Categories, "Alternative")
	suggestion.Brands = "Recommended natural brands"
	suggestion.HealthScore = capScore(current.HealthScore + 20)
	suggestion.Warnings = nil

	return []domain.Alternative{{
		Product:           suggestion,
		ImprovementReason: "Look for products with: " + strings.Join(improvements, ", "),
		ScoreDelta:        20,
	}}
}

// firstCategorySegment takes the text before the first comma, the most
// specific category the catalogs report.
func firstCategorySegment(categories string) string {
	segment, _, _ := strings.Cut(categories, ",")
	return strings.ToLower(strings.TrimSpace(segment))
}

func categoryLabel(categories, fallback string) string {
	segment, _, _ := strings.Cut(categories, ",")
	if segment = strings.TrimSpace(segment); segment != "" {
		return segment
	}
	return fallback
}

func sortByDeltaDesc(alternatives []domain.Alternative) {
	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].ScoreDelta > alternatives[j].ScoreDelta
	})
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}
