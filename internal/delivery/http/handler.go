package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartlens/backend/internal/domain"
	"github.com/smartlens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	resolver     *usecase.ResolverService
	alternatives *usecase.AlternativesService
	cache        domain.CacheRepository
	logger       *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	resolver *usecase.ResolverService,
	alternatives *usecase.AlternativesService,
	cache domain.CacheRepository,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		resolver:     resolver,
		alternatives: alternatives,
		cache:        cache,
		logger:       logger,
	}
}

// HealthCheck returns the health status of the API.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "smartlens-backend",
		"version": "1.0.0",
	})
}

// ResolveProduct resolves a barcode into a scored canonical product.
func (h *Handler) ResolveProduct(c *gin.Context) {
	barcode := c.Param("barcode")

	product, err := h.resolver.Resolve(c.Request.Context(), barcode)
	if err != nil {
		h.writeResolveError(c, barcode, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// SearchProducts runs a free-text search across the food catalogs.
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	results, err := h.resolver.Search(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// GetAlternatives resolves a barcode and returns better-scoring
// substitutes for it.
func (h *Handler) GetAlternatives(c *gin.Context) {
	barcode := c.Param("barcode")

	product, err := h.resolver.Resolve(c.Request.Context(), barcode)
	if err != nil {
		h.writeResolveError(c, barcode, err)
		return
	}

	alternatives, err := h.alternatives.Find(c.Request.Context(), product)
	if err != nil {
		h.logger.Error("alternatives lookup failed",
			zap.String("barcode", barcode), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "alternatives lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"barcode":      product.Barcode,
		"score":        product.HealthScore,
		"alternatives": alternatives,
	})
}

// History lists previously resolved products, newest first, optionally
// filtered by category.
func (h *Handler) History(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		products []domain.Product
		err      error
	)
	if category := c.Query("category"); category != "" {
		products, err = h.cache.ByCategory(ctx, domain.ParseCategory(category))
	} else {
		products, err = h.cache.History(ctx)
	}
	if err != nil {
		h.logger.Error("history lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// writeResolveError maps resolution failures onto status codes. A genuine
// not-found is recognized by errors.Is or, for callers relying on the
// legacy contract, by "not found" in the message.
func (h *Handler) writeResolveError(c *gin.Context, barcode string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidBarcode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid barcode"})
	case errors.Is(err, domain.ErrProductNotFound),
		strings.Contains(strings.ToLower(err.Error()), "not found"):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found", "barcode": barcode})
	default:
		h.logger.Error("resolution failed",
			zap.String("barcode", barcode), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "resolution failed"})
	}
}
