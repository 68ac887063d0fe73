package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alextreichler/magicworld/internal/models"
)

// ListProducts returns every product, or only those of category when set.
func (c *Client) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	path := "/products"
	if category != "" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}
	raw, err := c.doJSON(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := decodeList(raw, &products, "products"); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	raw, err := c.doJSON(ctx, http.MethodGet, "/products/"+seg(slug), "", nil)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := decodeOne(raw, &p, "product"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, p models.Product) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/products", token, p)
	return err
}

// UpdateProduct saves p under the slug it was loaded with; p.Slug may differ
// when the admin renamed the product.
func (c *Client) UpdateProduct(ctx context.Context, token, slug string, p models.Product) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/products/"+seg(slug), token, p)
	return err
}

func (c *Client) DeleteProduct(ctx context.Context, token, slug string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/products/"+seg(slug), token, nil)
	return err
}

func (c *Client) BulkDeleteProducts(ctx context.Context, token string, slugs []string) error {
	body := map[string][]string{"slugs": slugs}
	_, err := c.doJSON(ctx, http.MethodPost, "/products/bulk-delete", token, body)
	return err
}
