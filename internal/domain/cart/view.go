package cart

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Finalizer reports, once, that the cart was finalized by a checkout flow.
type Finalizer interface {
	Consume() bool
}

// Handoff is the payload passed to the checkout route. It lives in memory
// only and is lost when the program exits.
type Handoff struct {
	Items    []LineItem
	Subtotal decimal.Decimal
}

// View holds the transient state of the cart screen: the fetched line items
// and the ids selected for checkout.
//
// Mutations patch local state only after the remote call succeeds. A failed
// call leaves local state untouched and the error is returned to the caller.
type View struct {
	repo      Repository
	finalized Finalizer

	items    []LineItem
	selected map[int64]struct{}
}

// NewView creates a cart View. finalized may be nil.
func NewView(repo Repository, finalized Finalizer) *View {
	return &View{
		repo:      repo,
		finalized: finalized,
		selected:  make(map[int64]struct{}),
	}
}

// Load fetches the cart and replaces local state wholesale. When a checkout
// finalized the cart since the last load, local state is reset first.
func (v *View) Load(ctx context.Context) error {
	if v.finalized != nil && v.finalized.Consume() {
		zctx.From(ctx).Debug("Cart finalized, resetting view")
		v.reset()
	}

	items, err := v.repo.List(ctx)
	if err != nil {
		zctx.From(ctx).Error("Load cart", zap.Error(err))
		return errors.Wrap(err, "list cart")
	}
	v.items = items

	present := make(map[int64]struct{}, len(items))
	for _, it := range items {
		present[it.ID] = struct{}{}
	}
	for id := range v.selected {
		if _, ok := present[id]; !ok {
			delete(v.selected, id)
		}
	}
	return nil
}

func (v *View) reset() {
	v.items = nil
	clear(v.selected)
}

// SetQuantity changes the quantity of a line item and reprices it, persists
// the change remotely and then patches local state.
func (v *View) SetQuantity(ctx context.Context, id int64, quantity int) (LineItem, error) {
	idx := v.index(id)
	if idx < 0 {
		return LineItem{}, ErrItemNotFound
	}
	if quantity < 1 {
		return LineItem{}, &InvalidQuantityError{ItemID: id, Quantity: quantity}
	}

	item := v.items[idx]
	u := Update{
		Quantity: quantity,
		Price:    item.Repriced(quantity),
	}
	if err := v.repo.Update(ctx, id, u); err != nil {
		zctx.From(ctx).Error("Update cart item",
			zap.Int64("id", id),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
		return LineItem{}, errors.Wrapf(err, "update cart item %d", id)
	}

	item.Quantity = u.Quantity
	item.Price = u.Price
	v.items[idx] = item
	return item, nil
}

// Remove deletes a line item remotely, then drops it from the cart and
// from the selection.
func (v *View) Remove(ctx context.Context, id int64) error {
	idx := v.index(id)
	if idx < 0 {
		return ErrItemNotFound
	}
	if err := v.repo.Delete(ctx, id); err != nil {
		zctx.From(ctx).Error("Delete cart item", zap.Int64("id", id), zap.Error(err))
		return errors.Wrapf(err, "delete cart item %d", id)
	}

	v.items = slices.Delete(v.items, idx, idx+1)
	delete(v.selected, id)
	return nil
}

// ToggleSelect flips the selection state of id and reports whether it is
// now selected. Ids not present in the cart are ignored.
func (v *View) ToggleSelect(id int64) bool {
	if v.index(id) < 0 {
		return false
	}
	if _, ok := v.selected[id]; ok {
		delete(v.selected, id)
		return false
	}
	v.selected[id] = struct{}{}
	return true
}

// IsSelected reports whether id is in the selection set.
func (v *View) IsSelected(id int64) bool {
	_, ok := v.selected[id]
	return ok
}

// Subtotal sums the extended price of the selected line items.
func (v *View) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range v.items {
		if v.IsSelected(it.ID) {
			total = total.Add(it.Price)
		}
	}
	return total
}

// Selected returns the selected line items in cart order.
func (v *View) Selected() []LineItem {
	var out []LineItem
	for _, it := range v.items {
		if v.IsSelected(it.ID) {
			out = append(out, it)
		}
	}
	return out
}

// ProceedToCheckout builds the checkout payload from the selection.
func (v *View) ProceedToCheckout() (Handoff, error) {
	items := v.Selected()
	if len(items) == 0 {
		return Handoff{}, ErrEmptySelection
	}
	return Handoff{
		Items:    items,
		Subtotal: v.Subtotal(),
	}, nil
}

// Items returns a copy of the current line items.
func (v *View) Items() []LineItem {
	return slices.Clone(v.items)
}

// Len returns the number of line items.
func (v *View) Len() int {
	return len(v.items)
}

func (v *View) index(id int64) int {
	return slices.IndexFunc(v.items, func(it LineItem) bool { return it.ID == id })
}
