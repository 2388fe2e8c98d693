package openproductsfacts

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

// Client talks to the Open Products Facts API, the general-merchandise
// catalog of last resort. Records carry no nutrition or beauty data.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates an Open Products Facts client.
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

type productResponse struct {
	Status  int         `json:"status"`
	Product *productDTO `json:"product"`
}

type productDTO struct {
	Code            string `json:"code"`
	ProductName     string `json:"product_name"`
	Brands          string `json:"brands"`
	Categories      string `json:"categories"`
	ImageURL        string `json:"image_url"`
	IngredientsText string `json:"ingredients_text"`
}

// FetchByCode looks a product up by barcode.
func (c *Client) FetchByCode(ctx context.Context, barcode string) (*domain.Product, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v2/product/%s", c.baseURL, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("openproductsfacts: create request: %w", err)
	}
	req.Header.Set("User-Agent", "SmartLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("openproductsfacts error response",
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	var response productResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("openproductsfacts: decode response: %w", err)
	}
	if response.Status != 1 || response.Product == nil {
		return nil, domain.ErrProductNotFound
	}

	return mapProduct(response.Product, barcode), nil
}

// mapProduct is the minimal normalizer: identity fields only, category
// fixed to General.
func mapProduct(dto *productDTO, barcode string) *domain.Product {
	name := dto.ProductName
	if name == "" {
		name = domain.UnknownProductName
	}
	code := dto.Code
	if code == "" {
		code = barcode
	}
	return &domain.Product{
		Barcode:         code,
		Name:            name,
		Brands:          dto.Brands,
		ImageURL:        dto.ImageURL,
		Categories:      dto.Categories,
		IngredientsText: dto.IngredientsText,
		Category:        domain.CategoryGeneral,
	}
}
