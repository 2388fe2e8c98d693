package usda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smartlens/backend/internal/domain"
	"github.com/smartlens/backend/internal/vocab"
)

// Client handles communication with the USDA FoodData Central API, the
// branded-foods catalog. FDC has no direct barcode path, so code lookups
// go through the search endpoint filtered to Branded records.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	vocab       *vocab.Vocabulary
	logger      *zap.Logger
}

// NewClient creates a new USDA API client.
// USDA allows 1000 requests per hour: 1000/3600 ≈ 0.278 requests/sec.
func NewClient(apiKey, baseURL string, vocabulary *vocab.Vocabulary, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(0.278), 10),
		vocab:       vocabulary,
		logger:      logger,
	}
}

type searchResponseDTO struct {
	TotalHits   int       `json:"totalHits"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	Foods       []foodDTO `json:"foods"`
}

type foodDTO struct {
	FdcID           int               `json:"fdcId"`
	Description     string            `json:"description"`
	DataType        string            `json:"dataType"`
	GtinUpc         string            `json:"gtinUpc"`
	BrandOwner      string            `json:"brandOwner"`
	BrandName       string            `json:"brandName"`
	Ingredients     string            `json:"ingredients"`
	ServingSize     *float64          `json:"servingSize"`
	ServingSizeUnit string            `json:"servingSizeUnit"`
	FoodNutrients   []foodNutrientDTO `json:"foodNutrients"`
	FoodCategory    string            `json:"foodCategory"`
	LabelNutrients  *labelNutrients   `json:"labelNutrients"`
}

type foodNutrientDTO struct {
	NutrientID   int      `json:"nutrientId"`
	NutrientName string   `json:"nutrientName"`
	UnitName     string   `json:"unitName"`
	Value        *float64 `json:"value"`
}

// labelNutrients are the values printed on the packaging label, reported
// per serving. They take priority over the raw nutrient database.
type labelNutrients struct {
	Calories     *labelValue `json:"calories"`
	Protein      *labelValue `json:"protein"`
	SaturatedFat *labelValue `json:"saturatedFat"`
	Fiber        *labelValue `json:"fiber"`
	Sugars       *labelValue `json:"sugars"`
	Sodium       *labelValue `json:"sodium"`
}

type labelValue struct {
	Value *float64 `json:"value"`
}

// FetchByCode looks a product up by GTIN/UPC barcode via a filtered search,
// picking the hit whose gtinUpc matches the barcode and falling back to the
// first hit.
func (c *Client) FetchByCode(ctx context.Context, barcode string) (*domain.Product, error) {
	params := url.Values{}
	params.Set("query", barcode)
	params.Set("api_key", c.apiKey)
	params.Set("dataType", "Branded")
	params.Set("pageSize", "10")

	resp, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Foods) == 0 {
		return nil, domain.ErrProductNotFound
	}

	selected := &resp.Foods[0]
	for i := range resp.Foods {
		if resp.Foods[i].GtinUpc == barcode {
			selected = &resp.Foods[i]
			break
		}
	}
	return c.mapFood(selected), nil
}

// Search runs a free-text search across branded, foundation and survey
// records, sorted so branded hits come first.
func (c *Client) Search(ctx context.Context, query string, page, pageSize int) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("api_key", c.apiKey)
	params.Set("dataType", "Branded,Foundation,Survey (FNDDS)")
	params.Set("pageNumber", fmt.Sprintf("%d", page))
	params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	params.Set("sortBy", "dataType.keyword")
	params.Set("sortOrder", "asc")

	resp, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.Product, 0, len(resp.Foods))
	for i := range resp.Foods {
		hits = append(hits, *c.mapFood(&resp.Foods[i]))
	}
	c.logger.Debug("usda search",
		zap.String("query", query),
		zap.Int("hits", len(hits)))
	return hits, nil
}

// search executes the /v1/foods/search endpoint, retrying transient
// failures up to 3 times with linear backoff.
func (c *Client) search(ctx context.Context, params url.Values) (*searchResponseDTO, error) {
	reqURL := fmt.Sprintf("%s/v1/foods/search?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) || ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn("usda request failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			lastErr = err
			select {
			case <-time.After(time.Duration(attempt*500) * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		var searchResp searchResponseDTO
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("usda: decode response: %w", err)
		}
		return &searchResp, nil
	}
	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers and error
// handling.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("usda: create request: %w", err)
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
		return nil, fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}
	return body, nil
}
