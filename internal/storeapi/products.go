package storeapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/kart-storefront/internal/domain/catalog"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

var (
	_ product.Catalog = (*Products)(nil)
	_ catalog.Lister  = (*Products)(nil)
)

// Products is the remote catalog service.
type Products struct {
	c *Client
}

func (s *Products) list(ctx context.Context, op, path string) ([]product.Product, error) {
	var products []product.Product
	err := s.c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   path,
		token:  s.c.bearer(),
		decode: func(d *jx.Decoder) (err error) {
			products, err = decodeProducts(d)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []product.Product{}
	}
	return products, nil
}

// ListMenu fetches the shopper-facing menu.
func (s *Products) ListMenu(ctx context.Context) ([]product.Product, error) {
	return s.list(ctx, "listMenu", "/auth/getmenutems")
}

// List fetches the full product list for the admin editor.
func (s *Products) List(ctx context.Context) ([]product.Product, error) {
	return s.list(ctx, "listProducts", "/auth/getproduct")
}

// Delete removes a product.
func (s *Products) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, call{
		op:     "deleteProduct",
		method: http.MethodDelete,
		path:   "/auth/delete/" + strconv.FormatInt(id, 10),
		token:  s.c.bearer(),
	})
}

// Update replaces a product record.
func (s *Products) Update(ctx context.Context, p product.Product) error {
	return s.c.do(ctx, call{
		op:     "updateProduct",
		method: http.MethodPut,
		path:   "/auth/updateproduct",
		token:  s.c.bearer(),
		body:   encodeProduct(p),
	})
}
