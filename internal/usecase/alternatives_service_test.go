package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/smartlens/backend/internal/domain"
)

func newTestAlternatives(search *fakeSource) *AlternativesService {
	return NewAlternativesService(search, NewScoreService(), zap.NewNop())
}

func scoredFood(barcode string, score int) *domain.Product {
	return &domain.Product{
		Barcode:     barcode,
		Name:        "Current Snack",
		Categories:  "Snacks, Sweet snacks",
		Category:    domain.CategoryFood,
		HealthScore: score,
		Nutrition: &domain.NutritionData{
			Sugars100g: domain.Float64Ptr(20),
			Salt100g:   domain.Float64Ptr(1.2),
			NovaGroup:  domain.IntPtr(4),
		},
	}
}

// hit builds a provisional search result whose score is controlled via
// the NutriScore grade override.
func hit(barcode, grade string) domain.Product {
	return domain.Product{
		Barcode:  barcode,
		Name:     "Alt " + barcode,
		Category: domain.CategoryFood,
		Nutrition: &domain.NutritionData{
			NutriScoreGrade: domain.StringPtr(grade),
		},
	}
}

func TestFindFoodAlternatives(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps only strictly better candidates", func(t *testing.T) {
		search := &fakeSource{hits: []domain.Product{
			hit("a1", "a"), // 95
			hit("b1", "c"), // 60, not better than 60
			hit("c1", "e"), // 20, worse
		}}
		svc := newTestAlternatives(search)

		alternatives, err := svc.Find(ctx, scoredFood("cur", 60))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(alternatives) != 1 {
			t.Fatalf("alternatives = %d, want 1", len(alternatives))
		}
		if alternatives[0].Product.Barcode != "a1" {
			t.Errorf("Barcode = %q, want a1", alternatives[0].Product.Barcode)
		}
		if alternatives[0].ScoreDelta != 35 {
			t.Errorf("ScoreDelta = %d, want 35", alternatives[0].ScoreDelta)
		}
	})

	t.Run("sorts by delta and caps at five", func(t *testing.T) {
		var hits []domain.Product
		for i := 0; i < 4; i++ {
			hits = append(hits, hit(fmt.Sprintf("b%d", i), "b")) // 80
		}
		for i := 0; i < 3; i++ {
			hits = append(hits, hit(fmt.Sprintf("a%d", i), "a")) // 95
		}
		search := &fakeSource{hits: hits}
		svc := newTestAlternatives(search)

		alternatives, err := svc.Find(ctx, scoredFood("cur", 40))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(alternatives) != 5 {
			t.Fatalf("alternatives = %d, want cap of 5", len(alternatives))
		}
		for i := 0; i < 3; i++ {
			if alternatives[i].ScoreDelta != 55 {
				t.Errorf("alternatives[%d].ScoreDelta = %d, want 55 first", i, alternatives[i].ScoreDelta)
			}
		}
		for i := 3; i < 5; i++ {
			if alternatives[i].ScoreDelta != 40 {
				t.Errorf("alternatives[%d].ScoreDelta = %d, want 40 after", i, alternatives[i].ScoreDelta)
			}
		}
	})

	t.Run("excludes the current product", func(t *testing.T) {
		search := &fakeSource{hits: []domain.Product{hit("cur", "a")}}
		svc := newTestAlternatives(search)

		alternatives, err := svc.Find(ctx, scoredFood("cur", 30))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, alt := range alternatives {
			if alt.Product.Barcode == "cur" {
				t.Error("current product must never be its own alternative")
			}
		}
	})

	t.Run("perfect score yields no real alternatives", func(t *testing.T) {
		search := &fakeSource{hits: []domain.Product{hit("a1", "a")}}
		svc := newTestAlternatives(search)

		alternatives, err := svc.Find(ctx, scoredFood("cur", 100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, alt := range alternatives {
			if alt.Product.Barcode != "" && alt.Product.Barcode != "cur" {
				t.Errorf("got real alternative %q for a perfect score", alt.Product.Barcode)
			}
		}
	})

	t.Run("nutrient reasons compare deltas", func(t *testing.T) {
		better := domain.Product{
			Barcode:  "alt",
			Category: domain.CategoryFood,
			Nutrition: &domain.NutritionData{
				Sugars100g:      domain.Float64Ptr(10), // 50% less than 20
				Salt100g:        domain.Float64Ptr(0.6),
				NovaGroup:       domain.IntPtr(1),
				NutriScoreGrade: domain.StringPtr("a"),
			},
		}
		search := &fakeSource{hits: []domain.Product{better}}
		svc := newTestAlternatives(search)

		alternatives, err := svc.Find(ctx, scoredFood("cur", 30))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(alternatives) != 1 {
			t.Fatalf("alternatives = %d, want 1", len(alternatives))
		}
		reason := alternatives[0].ImprovementReason
		if !strings.Contains(reason, "50% less sugar") {
			t.Errorf("reason = %q, want sugar reduction", reason)
		}
		if parts := strings.Split(reason, ", "); len(parts) > 2 {
			t.Errorf("reason = %q, want at most two reasons", reason)
		}
	})

	t.Run("search failure falls back to generic suggestion", func(t *testing.T) {
		search := &fakeSource{searchErr: domain.ErrSourceUnavailable}
		svc := newTestAlternatives(search)

		alternatives, err := svc.Find(ctx, scoredFood("cur", 40))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(alternatives) != 1 {
			t.Fatalf("alternatives = %d, want 1 synthetic suggestion", len(alternatives))
		}
		alt := alternatives[0]
		if !strings.HasPrefix(alt.Product.Name, "Healthier ") {
			t.Errorf("Name = %q, want synthetic suggestion", alt.Product.Name)
		}
		if alt.Product.HealthScore != 55 {
			t.Errorf("HealthScore = %d, want 40+15", alt.Product.HealthScore)
		}
		if !strings.Contains(alt.ImprovementReason, "lower sugar content") {
			t.Errorf("reason = %q, want weak-nutrient hints", alt.ImprovementReason)
		}
	})

	t.Run("generic suggestion needs a weak nutrient", func(t *testing.T) {
		current := &domain.Product{
			Barcode:     "cur",
			Category:    domain.CategoryFood,
			HealthScore: 90,
			Nutrition: &domain.NutritionData{
				Sugars100g: domain.Float64Ptr(2),
				Salt100g:   domain.Float64Ptr(0.1),
				NovaGroup:  domain.IntPtr(1),
			},
		}
		search := &fakeSource{searchErr: domain.ErrSourceUnavailable}
		svc := newTestAlternatives(search)

		alternatives, err := svc.Find(ctx, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(alternatives) != 0 {
			t.Errorf("alternatives = %v, want none for a clean product", alternatives)
		}
	})
}

func TestFindBeautyAlternatives(t *testing.T) {
	ctx := context.Background()

	t.Run("never searches and builds from failing attributes", func(t *testing.T) {
		search := &fakeSource{searchErr: domain.ErrSourceUnavailable}
		svc := newTestAlternatives(search)

		current := &domain.Product{
			Barcode:     "b1",
			Categories:  "Shampoo",
			Category:    domain.CategoryPersonalCare,
			HealthScore: 45,
			Beauty: &domain.BeautyData{
				HarmfulIngredients: []string{"Sodium Lauryl Sulfate"},
				IsParabenFree:      domain.BoolPtr(false),
				IsSulfateFree:      domain.BoolPtr(false),
				IsVegan:            domain.BoolPtr(false),
			},
		}
		alternatives, err := svc.Find(ctx, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(alternatives) != 1 {
			t.Fatalf("alternatives = %d, want 1 synthetic suggestion", len(alternatives))
		}
		alt := alternatives[0]
		if alt.Product.Name != "Natural Shampoo" {
			t.Errorf("Name = %q, want Natural Shampoo", alt.Product.Name)
		}
		if alt.Product.HealthScore != 65 {
			t.Errorf("HealthScore = %d, want 45+20", alt.Product.HealthScore)
		}
		for _, want := range []string{"paraben-free", "sulfate-free", "vegan"} {
			if !strings.Contains(alt.ImprovementReason, want) {
				t.Errorf("reason = %q, missing %q", alt.ImprovementReason, want)
			}
		}
	})

	t.Run("passing attributes yield nothing", func(t *testing.T) {
		svc := newTestAlternatives(&fakeSource{})
		current := &domain.Product{
			Barcode:     "b1",
			Category:    domain.CategoryBeauty,
			HealthScore: 95,
			Beauty: &domain.BeautyData{
				IsParabenFree: domain.BoolPtr(true),
				IsSulfateFree: domain.BoolPtr(true),
				IsVegan:       domain.BoolPtr(true),
			},
		}
		alternatives, err := svc.Find(ctx, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(alternatives) != 0 {
			t.Errorf("alternatives = %v, want none", alternatives)
		}
	})
}

func TestGeneralCategoryHasNoAlternatives(t *testing.T) {
	svc := newTestAlternatives(&fakeSource{})
	alternatives, err := svc.Find(context.Background(), &domain.Product{Category: domain.CategoryGeneral})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alternatives) != 0 {
		t.Errorf("alternatives = %v, want none", alternatives)
	}
}
