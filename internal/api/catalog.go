package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"storefront/internal/models"
)

// ListParams are the paging and search parameters of list endpoints
type ListParams struct {
	Page   int
	Per    int
	Search string
	Extra  url.Values
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	for k, vals := range p.Extra {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Per > 0 {
		v.Set("per", strconv.Itoa(p.Per))
	}
	if p.Search != "" {
		v.Set("s", p.Search)
	}
	return v
}

func list[T any](ctx context.Context, c *Client, path string, params ListParams) (*models.Page[T], error) {
	var page models.Page[T]
	if err := c.get(ctx, path, params.values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return &page, nil
}

func (c *Client) ListProducts(ctx context.Context, params ListParams) (*models.Page[models.Product], error) {
	return list[models.Product](ctx, c, "products", params)
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := c.get(ctx, "products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &p, nil
}

// GetProductForms returns the forms asked on the product detail screen.
// The endpoint answers with either a bare array or a page envelope.
func (c *Client) GetProductForms(ctx context.Context, id string) ([]models.ProductForm, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "products/"+url.PathEscape(id)+"/forms", nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to get forms of product %s: %w", id, err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var forms []models.ProductForm
		if err := json.Unmarshal(raw, &forms); err != nil {
			return nil, fmt.Errorf("failed to decode forms of product %s: %w", id, err)
		}
		return forms, nil
	}

	var page models.Page[models.ProductForm]
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode forms of product %s: %w", id, err)
	}
	return page.Data, nil
}

func (c *Client) ListProductCategories(ctx context.Context, params ListParams) (*models.Page[models.ProductCategory], error) {
	return list[models.ProductCategory](ctx, c, "product-categories", params)
}

func (c *Client) ListProductTypes(ctx context.Context, params ListParams) (*models.Page[models.ProductType], error) {
	return list[models.ProductType](ctx, c, "product-types", params)
}

func (c *Client) ListVendors(ctx context.Context, params ListParams) (*models.Page[models.Vendor], error) {
	return list[models.Vendor](ctx, c, "vendors", params)
}

func (c *Client) ListSections(ctx context.Context, params ListParams) (*models.Page[models.Section], error) {
	return list[models.Section](ctx, c, "sections", params)
}

func (c *Client) ListAddresses(ctx context.Context, params ListParams) (*models.Page[models.Address], error) {
	return list[models.Address](ctx, c, "addresses", params)
}
