// Package catalog implements the shopper-facing product listing.
package catalog

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Lister fetches the shopper product listing.
type Lister interface {
	ListMenu(ctx context.Context) ([]product.Product, error)
}

// Tile is one navigable product entry.
type Tile struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Image string
	Link  string
}

// Browser holds the fetched product tiles.
type Browser struct {
	products Lister
	tiles    []Tile
}

// NewBrowser creates a Browser.
func NewBrowser(products Lister) *Browser {
	return &Browser{products: products}
}

// Load fetches the listing and replaces the tiles.
func (b *Browser) Load(ctx context.Context) error {
	list, err := b.products.ListMenu(ctx)
	if err != nil {
		zctx.From(ctx).Error("Fetch menu items", zap.Error(err))
		return errors.Wrap(err, "list menu items")
	}

	tiles := make([]Tile, len(list))
	for i, p := range list {
		tiles[i] = Tile{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price,
			Image: p.Image,
			Link:  ProductLink(p.ID),
		}
	}
	b.tiles = tiles
	return nil
}

// Tiles returns the loaded tiles.
func (b *Browser) Tiles() []Tile {
	return b.tiles
}

// ProductLink is the route of a product detail page.
func ProductLink(id int64) string {
	return "/product/" + strconv.FormatInt(id, 10)
}
