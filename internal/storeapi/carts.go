package storeapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/nav"
)

var (
	_ cart.Repository = (*Carts)(nil)
	_ nav.CartCounter = (*Carts)(nil)
)

// Carts is the remote cart service.
type Carts struct {
	c *Client
}

// List fetches the signed-in user's cart.
func (s *Carts) List(ctx context.Context) ([]cart.LineItem, error) {
	var items []cart.LineItem
	err := s.c.do(ctx, call{
		op:     "listCart",
		method: http.MethodGet,
		path:   "/cart/carts/",
		token:  s.c.bearer(),
		decode: func(d *jx.Decoder) (err error) {
			items, err = decodeLineItems(d)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []cart.LineItem{}
	}
	return items, nil
}

// Delete removes a line item.
func (s *Carts) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, call{
		op:     "deleteCartItem",
		method: http.MethodDelete,
		path:   "/cart/carts/" + strconv.FormatInt(id, 10),
		token:  s.c.bearer(),
	})
}

// Update persists a new quantity and price for a line item. The endpoint
// is called without credentials.
func (s *Carts) Update(ctx context.Context, id int64, u cart.Update) error {
	return s.c.do(ctx, call{
		op:     "updateCartItem",
		method: http.MethodPut,
		path:   "/cart/carts/" + strconv.FormatInt(id, 10),
		body:   encodeCartUpdate(u),
	})
}

// Count returns the number of line items in the cart.
func (s *Carts) Count(ctx context.Context) (int, error) {
	items, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
