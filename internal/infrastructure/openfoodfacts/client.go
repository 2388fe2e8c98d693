package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smartlens/backend/internal/domain"
)

// searchFields is the field projection requested from the search endpoint.
// Keeping the payload small matters: full product documents run to hundreds
// of kilobytes.
const searchFields = "code,product_name,brands,image_url,categories,nutriscore_grade,nova_group,nutriments"

// Client talks to the Open Food Facts API, the primary food catalog.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates an Open Food Facts client. The public API asks for at
// most 100 product queries per minute.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(100.0/60.0), 10),
		logger:      logger,
	}
}

// productResponse is the direct-lookup envelope. status 1 means found.
type productResponse struct {
	Status  int         `json:"status"`
	Product *productDTO `json:"product"`
}

type productDTO struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	Brands          string         `json:"brands"`
	Categories      string         `json:"categories"`
	ImageURL        string         `json:"image_url"`
	IngredientsText string         `json:"ingredients_text"`
	Nutriments      *nutrimentsDTO `json:"nutriments"`
	NutriscoreGrade string         `json:"nutriscore_grade"`
	NovaGroup       *int           `json:"nova_group"`
	Allergens       string         `json:"allergens"`
	AllergensTags   []string       `json:"allergens_tags"`
}

type nutrimentsDTO struct {
	Sugars100g       *float64 `json:"sugars_100g"`
	Salt100g         *float64 `json:"salt_100g"`
	SaturatedFat100g *float64 `json:"saturated-fat_100g"`
	Proteins100g     *float64 `json:"proteins_100g"`
	Fiber100g        *float64 `json:"fiber_100g"`
	EnergyKcal100g   *float64 `json:"energy-kcal_100g"`
}

type searchResponse struct {
	Count    int          `json:"count"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Products []productDTO `json:"products"`
}

// FetchByCode looks a product up by barcode.
func (c *Client) FetchByCode(ctx context.Context, barcode string) (*domain.Product, error) {
	reqURL := fmt.Sprintf("%s/api/v2/product/%s", c.baseURL, url.PathEscape(barcode))

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openfoodfacts: decode response: %w", err)
	}
	if resp.Status != 1 || resp.Product == nil {
		return nil, domain.ErrProductNotFound
	}

	product := mapProduct(resp.Product)
	if product.Barcode == "" {
		product.Barcode = barcode
	}
	return product, nil
}

// Search runs a free-text search and returns provisional products.
func (c *Client) Search(ctx context.Context, query string, page, pageSize int) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("json", "1")
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("page_size", fmt.Sprintf("%d", pageSize))
	params.Set("fields", searchFields)
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openfoodfacts: decode search response: %w", err)
	}

	hits := make([]domain.Product, 0, len(resp.Products))
	for i := range resp.Products {
		hits = append(hits, *mapProduct(&resp.Products[i]))
	}
	c.logger.Debug("openfoodfacts search",
		zap.String("query", query),
		zap.Int("hits", len(hits)))
	return hits, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts: create request: %w", err)
	}
	req.Header.Set("User-Agent", "SmartLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("openfoodfacts error response",
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}
	return body, nil
}
