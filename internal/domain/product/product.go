package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item owned by the remote catalog service.
type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Stock       int
	Description string
	Category    string
	Image       string
}

// Catalog is the remote catalog service as seen by the storefront.
type Catalog interface {
	// ListMenu returns the products shown to shoppers.
	ListMenu(ctx context.Context) ([]Product, error)
	// List returns every product, including ones hidden from shoppers.
	List(ctx context.Context) ([]Product, error)
	Delete(ctx context.Context, id int64) error
	Update(ctx context.Context, p Product) error
}
