package openproductsfacts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartlens/backend/internal/domain"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, zap.NewNop())
}

func TestFetchByCode(t *testing.T) {
	t.Run("minimal mapping with general category", func(t *testing.T) {
		client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/product/4006381333931", r.URL.Path)
			fmt.Fprint(w, `{
				"status": 1,
				"product": {
					"code": "4006381333931",
					"product_name": "Ballpoint Pen",
					"brands": "Stabilo"
				}
			}`)
		})

		product, err := client.FetchByCode(context.Background(), "4006381333931")
		require.NoError(t, err)
		assert.Equal(t, "Ballpoint Pen", product.Name)
		assert.Equal(t, domain.CategoryGeneral, product.Category)
		assert.Nil(t, product.Nutrition)
		assert.Nil(t, product.Beauty)
	})

	t.Run("status zero is not found", func(t *testing.T) {
		client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": 0}`)
		})

		_, err := client.FetchByCode(context.Background(), "0000000000000")
		assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	})

	t.Run("missing code falls back to the requested barcode", func(t *testing.T) {
		client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": 1, "product": {"product_name": "Pen"}}`)
		})

		product, err := client.FetchByCode(context.Background(), "123")
		require.NoError(t, err)
		assert.Equal(t, "123", product.Barcode)
	})
}
