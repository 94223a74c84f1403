package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart operations.
var (
	ErrItemNotFound   = errors.New("cart item not found")
	ErrEmptySelection = errors.New("no items selected")
)

// InvalidQuantityError indicates a quantity update below one.
type InvalidQuantityError struct {
	ItemID   int64
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for cart item %d, got %d", e.ItemID, e.Quantity)
}

// LineItem is one product entry within a user's cart.
//
// Price is the extended amount for the whole line, not a unit price.
type LineItem struct {
	ID       int64
	Product  ProductRef
	Quantity int
	Price    decimal.Decimal
}

// ProductRef holds the product fields embedded in a cart line item.
type ProductRef struct {
	Name  string
	Image string
}

// UnitPrice derives the per-unit price from the extended price.
// A zero quantity yields zero.
func (li LineItem) UnitPrice() decimal.Decimal {
	if li.Quantity == 0 {
		return decimal.Zero
	}
	return li.Price.Div(decimal.NewFromInt(int64(li.Quantity)))
}

// Repriced returns the extended price for a new quantity. The price is
// scaled by newQuantity/Quantity and rounded once to 2 decimal places; an
// unchanged quantity keeps the stored price as is. Only the rounded price is
// stored, so 100 at 3 taken to 1 and back to 3 becomes 99.99.
func (li LineItem) Repriced(newQuantity int) decimal.Decimal {
	if newQuantity == li.Quantity || li.Quantity == 0 {
		return li.Price
	}
	return li.Price.
		Mul(decimal.NewFromInt(int64(newQuantity))).
		Div(decimal.NewFromInt(int64(li.Quantity))).
		Round(2)
}

// Update is the body persisted when a line item quantity changes.
type Update struct {
	Quantity int
	Price    decimal.Decimal
}

// Repository is the remote cart service.
type Repository interface {
	List(ctx context.Context) ([]LineItem, error)
	Delete(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, u Update) error
}
