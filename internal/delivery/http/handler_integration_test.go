package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartlens/backend/config"
	"github.com/smartlens/backend/internal/domain"
	"github.com/smartlens/backend/internal/usecase"
)

type stubSource struct {
	product *domain.Product
	err     error
	hits    []domain.Product
}

func (s *stubSource) FetchByCode(ctx context.Context, barcode string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func (s *stubSource) Search(ctx context.Context, query string, page, pageSize int) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.hits, nil
}

type stubCache struct {
	products map[string]*domain.Product
}

func newStubCache() *stubCache {
	return &stubCache{products: make(map[string]*domain.Product)}
}

func (s *stubCache) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	if p, ok := s.products[barcode]; ok {
		return p, nil
	}
	return nil, domain.ErrCacheMiss
}

func (s *stubCache) Save(ctx context.Context, product *domain.Product) error {
	s.products[product.Barcode] = product
	return nil
}

func (s *stubCache) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *stubCache) History(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubCache) ByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, *p)
		}
	}
	return out, nil
}

func setupTestRouter(food *stubSource) (*gin.Engine, *stubCache) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"*"},
		},
	}

	cache := newStubCache()
	notFound := &stubSource{err: domain.ErrProductNotFound}
	score := usecase.NewScoreService()
	logger := zap.NewNop()
	resolver := usecase.NewResolverService(
		cache, food, notFound, notFound, notFound,
		score, usecase.NewWarningService(),
		usecase.ResolverConfig{CacheTTL: 30 * 24 * time.Hour},
		logger,
	)
	alternatives := usecase.NewAlternativesService(food, score, logger)
	handler := NewHandler(resolver, alternatives, cache, logger)

	return SetupRouter(cfg, handler, logger), cache
}

func TestResolveEndpoint(t *testing.T) {
	t.Run("returns the scored product", func(t *testing.T) {
		food := &stubSource{product: &domain.Product{
			Barcode:  "3017620422003",
			Name:     "Nutella",
			Category: domain.CategoryFood,
			Nutrition: &domain.NutritionData{
				Sugars100g: domain.Float64Ptr(56.3),
			},
		}}
		router, _ := setupTestRouter(food)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/3017620422003", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var product domain.Product
		if err := json.Unmarshal(w.Body.Bytes(), &product); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if product.Name != "Nutella" {
			t.Errorf("Name = %q, want Nutella", product.Name)
		}
		if product.HealthScore != 50 {
			t.Errorf("HealthScore = %d, want 50 (70-20 for sugar)", product.HealthScore)
		}
		if len(product.Warnings) != 1 || product.Warnings[0] != "high sugar" {
			t.Errorf("Warnings = %v, want [high sugar]", product.Warnings)
		}
	})

	t.Run("unknown barcode maps to 404", func(t *testing.T) {
		router, _ := setupTestRouter(&stubSource{err: domain.ErrProductNotFound})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/0000000000000", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("resolution populates history", func(t *testing.T) {
		food := &stubSource{product: &domain.Product{
			Barcode:  "1",
			Name:     "Oat Bar",
			Category: domain.CategoryFood,
		}}
		router, cache := setupTestRouter(food)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("resolve status = %d, want 200", w.Code)
		}
		if len(cache.products) != 1 {
			t.Fatalf("cached products = %d, want 1", len(cache.products))
		}

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("history status = %d, want 200", w.Code)
		}
		var body struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body.Count != 1 {
			t.Errorf("history count = %d, want 1", body.Count)
		}
	})
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("requires a query", func(t *testing.T) {
		router, _ := setupTestRouter(&stubSource{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/search", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("returns hits", func(t *testing.T) {
		food := &stubSource{hits: []domain.Product{
			{Barcode: "1", Name: "Granola A"},
			{Barcode: "2", Name: "Granola B"},
		}}
		router, _ := setupTestRouter(food)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=granola", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body struct {
			Count   int              `json:"count"`
			Results []domain.Product `json:"results"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body.Count != 2 {
			t.Errorf("count = %d, want 2", body.Count)
		}
	})
}

func TestAlternativesEndpoint(t *testing.T) {
	food := &stubSource{
		product: &domain.Product{
			Barcode:    "1",
			Name:       "Candy",
			Categories: "Sweet snacks",
			Category:   domain.CategoryFood,
			Nutrition: &domain.NutritionData{
				Sugars100g: domain.Float64Ptr(40),
				NovaGroup:  domain.IntPtr(4),
			},
		},
		hits: []domain.Product{{
			Barcode:  "2",
			Name:     "Fruit Bar",
			Category: domain.CategoryFood,
			Nutrition: &domain.NutritionData{
				NutriScoreGrade: domain.StringPtr("a"),
			},
		}},
	}
	router, _ := setupTestRouter(food)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/1/alternatives", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Barcode      string               `json:"barcode"`
		Alternatives []domain.Alternative `json:"alternatives"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Alternatives) == 0 {
		t.Fatal("expected at least one alternative")
	}
	if body.Alternatives[0].Product.HealthScore <= 50 {
		t.Errorf("alternative score = %d, want strictly better than the candy",
			body.Alternatives[0].Product.HealthScore)
	}
}
