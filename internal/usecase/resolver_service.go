package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/smartlens/backend/internal/domain"
)

// ResolverService turns a barcode into a single scored canonical product.
// It consults the cache, queries the external catalogs in a fixed order,
// merges their answers with explicit field priority, enriches the result
// with a score and warnings, and writes it back to the cache.
type ResolverService struct {
	cache      domain.CacheRepository
	foodClient CatalogSource
	usdaClient CatalogSource
	beautyCli  domain.SourceClient
	generalCli domain.SourceClient
	score      *ScoreService
	warnings   *WarningService
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// CatalogSource is the capability set of the two food catalogs: direct
// code lookup plus free-text search.
type CatalogSource interface {
	domain.SourceClient
	domain.SearchClient
}

// ResolverConfig holds tunables for the resolver.
type ResolverConfig struct {
	CacheTTL time.Duration
}

// NewResolverService wires a resolver from its collaborators.
func NewResolverService(
	cache domain.CacheRepository,
	foodClient CatalogSource,
	usdaClient CatalogSource,
	beautyClient domain.SourceClient,
	generalClient domain.SourceClient,
	scoreService *ScoreService,
	warningService *WarningService,
	cfg ResolverConfig,
	logger *zap.Logger,
) *ResolverService {
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 30 * 24 * time.Hour
	}
	return &ResolverService{
		cache:      cache,
		foodClient: foodClient,
		usdaClient: usdaClient,
		beautyCli:  beautyClient,
		generalCli: generalClient,
		score:      scoreService,
		warnings:   warningService,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Resolve looks a barcode up across the cache and all catalogs.
// Source order: cache, food catalog, branded-foods catalog (merged),
// then beauty and general catalogs as fallbacks. Transport errors are
// soft failures; only total exhaustion surfaces as ErrProductNotFound.
func (s *ResolverService) Resolve(ctx context.Context, barcode string) (*domain.Product, error) {
	if barcode == "" {
		return nil, domain.ErrInvalidBarcode
	}

	if cached := s.freshFromCache(ctx, barcode); cached != nil {
		return cached, nil
	}

	foodProduct := s.fetchSoft(ctx, s.foodClient, "openfoodfacts", barcode)
	usdaProduct := s.fetchSoft(ctx, s.usdaClient, "usda", barcode)

	var product *domain.Product
	switch {
	case foodProduct != nil && usdaProduct != nil:
		product = mergeProducts(foodProduct, usdaProduct)
	case foodProduct != nil:
		product = foodProduct
	case usdaProduct != nil:
		product = usdaProduct
	default:
		product = s.fetchSoft(ctx, s.beautyCli, "openbeautyfacts", barcode)
		if product == nil {
			product = s.fetchSoft(ctx, s.generalCli, "openproductsfacts", barcode)
		}
	}

	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return s.enrichAndCache(ctx, product), nil
}

// Search runs a free-text search across the food catalog first and the
// branded-foods catalog second, both soft-failing, de-duplicated by code.
func (s *ResolverService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	var results []domain.Product
	foodHits, err := s.foodClient.Search(ctx, query, 1, 20)
	if err != nil {
		s.logger.Warn("food catalog search failed",
			zap.String("query", query),
			zap.Error(err))
	} else {
		results = append(results, foodHits...)
	}

	usdaHits, err := s.usdaClient.Search(ctx, query, 1, 10)
	if err != nil {
		s.logger.Warn("branded-foods search failed",
			zap.String("query", query),
			zap.Error(err))
	} else {
		results = append(results, usdaHits...)
	}

	return dedupeByBarcode(results), nil
}

// freshFromCache returns a cached product only when its age is within the
// TTL. Stale hits are ignored here and re-resolved; the store keeps them
// so other callers can still display them as outdated.
func (s *ResolverService) freshFromCache(ctx context.Context, barcode string) *domain.Product {
	cached, err := s.cache.GetByBarcode(ctx, barcode)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache read failed",
				zap.String("barcode", barcode),
				zap.Error(err))
		}
		return nil
	}
	if time.Since(cached.CachedAt) > s.cacheTTL {
		s.logger.Debug("cache hit expired",
			zap.String("barcode", barcode),
			zap.Time("cachedAt", cached.CachedAt))
		return nil
	}
	return cached
}

// fetchSoft queries one source, converting every failure into "no answer".
// Not-found is a normal outcome and logged at debug; transport errors at
// warn.
func (s *ResolverService) fetchSoft(ctx context.Context, client domain.SourceClient, source, barcode string) *domain.Product {
	product, err := client.FetchByCode(ctx, barcode)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Debug("source has no record",
				zap.String("source", source),
				zap.String("barcode", barcode))
		} else {
			s.logger.Warn("source lookup failed",
				zap.String("source", source),
				zap.String("barcode", barcode),
				zap.Error(err))
		}
		return nil
	}
	return product
}

// enrichAndCache scores the product, attaches warnings and timestamps,
// and writes it to the cache. Cache write failures are logged and
// swallowed; they never fail a resolution that produced data.
func (s *ResolverService) enrichAndCache(ctx context.Context, product *domain.Product) *domain.Product {
	result := s.score.Score(product)
	now := time.Now().UTC()

	enriched := *product
	enriched.HealthScore = result.Score
	enriched.Availability = result.Availability
	enriched.Warnings = s.warnings.Warnings(product)
	enriched.ResolvedAt = now
	enriched.CachedAt = now

	if ctx.Err() == nil {
		if err := s.cache.Save(ctx, &enriched); err != nil {
			s.logger.Warn("cache write failed",
				zap.String("barcode", enriched.Barcode),
				zap.Error(err))
		}
	}
	return &enriched
}

// mergeProducts reconciles a food-catalog record with a branded-foods
// record. The food catalog wins every identity field unless its value is
// the fallback placeholder; nutrition merges field by field and allergens
// union.
func mergeProducts(food, usda *domain.Product) *domain.Product {
	merged := *food
	if food.Name == domain.UnknownProductName && usda.Name != "" {
		merged.Name = usda.Name
	}
	if food.Brands == "" {
		merged.Brands = usda.Brands
	}
	if food.Categories == "" {
		merged.Categories = usda.Categories
	}
	if food.IngredientsText == "" {
		merged.IngredientsText = usda.IngredientsText
	}
	merged.Nutrition = mergeNutrition(food.Nutrition, usda.Nutrition)
	merged.Allergens = unionStrings(food.Allergens, usda.Allergens)
	return &merged
}

// mergeNutrition combines nutrition sub-fields, food-catalog value first.
// NutriScore and NOVA only ever come from the food catalog.
func mergeNutrition(food, usda *domain.NutritionData) *domain.NutritionData {
	if food == nil && usda == nil {
		return nil
	}
	if food == nil {
		return usda
	}
	if usda == nil {
		return food
	}
	return &domain.NutritionData{
		Sugars100g:       firstFloat(food.Sugars100g, usda.Sugars100g),
		Salt100g:         firstFloat(food.Salt100g, usda.Salt100g),
		SaturatedFat100g: firstFloat(food.SaturatedFat100g, usda.SaturatedFat100g),
		Proteins100g:     firstFloat(food.Proteins100g, usda.Proteins100g),
		Fiber100g:        firstFloat(food.Fiber100g, usda.Fiber100g),
		EnergyKcal100g:   firstFloat(food.EnergyKcal100g, usda.EnergyKcal100g),
		NutriScoreGrade:  food.NutriScoreGrade,
		NovaGroup:        food.NovaGroup,
	}
}

func firstFloat(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

// unionStrings concatenates two lists preserving first-seen order and
// dropping duplicates.
func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func dedupeByBarcode(products []domain.Product) []domain.Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.Barcode]; ok {
			continue
		}
		seen[p.Barcode] = struct{}{}
		out = append(out, p)
	}
	return out
}
