// Package admin implements the admin catalog editor: product listing,
// guarded deletion and the view/edit modal with its draft copy.
package admin

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Sentinel errors for editor misuse.
var (
	ErrNoEditor = errors.New("no product editor open")
	ErrReadOnly = errors.New("product editor is read-only")
)

// ValidationError lists the required draft fields that are missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Mode selects how the modal renders the product.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "view"
}

// Prompt is a destructive-action confirmation request.
type Prompt struct {
	Title   string
	Text    string
	Confirm string
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// Notifier surfaces outcomes to the user.
type Notifier interface {
	Success(title, text string)
	Error(title, text string)
}

// Draft is the editable copy of a product. Price and Stock are nil when
// the corresponding form field is empty.
type Draft struct {
	ID          int64
	Name        string
	Price       *decimal.Decimal
	Stock       *int
	Description string
	Category    string
	Image       string
}

func newDraft(p product.Product) Draft {
	price := p.Price
	stock := p.Stock
	return Draft{
		ID:          p.ID,
		Name:        p.Name,
		Price:       &price,
		Stock:       &stock,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
	}
}

func (d Draft) missing() []string {
	var fields []string
	if d.Name == "" {
		fields = append(fields, "name")
	}
	if d.Price == nil {
		fields = append(fields, "price")
	}
	if d.Stock == nil {
		fields = append(fields, "stock")
	}
	return fields
}

func (d Draft) product() product.Product {
	return product.Product{
		ID:          d.ID,
		Name:        d.Name,
		Price:       *d.Price,
		Stock:       *d.Stock,
		Description: d.Description,
		Category:    d.Category,
		Image:       d.Image,
	}
}

// Modal is the state of the open view/edit modal.
type Modal struct {
	Mode     Mode
	Original product.Product
	Draft    Draft
}

// Editor is the admin catalog editor view.
type Editor struct {
	catalog  product.Catalog
	confirm  Confirmer
	notifier Notifier

	products []product.Product
	modal    *Modal
}

// NewEditor creates an Editor.
func NewEditor(catalog product.Catalog, confirm Confirmer, notifier Notifier) *Editor {
	return &Editor{
		catalog:  catalog,
		confirm:  confirm,
		notifier: notifier,
	}
}

// Load fetches the full product list.
func (e *Editor) Load(ctx context.Context) error {
	list, err := e.catalog.List(ctx)
	if err != nil {
		zctx.From(ctx).Error("Fetch products", zap.Error(err))
		return errors.Wrap(err, "list products")
	}
	e.products = list
	return nil
}

// Products returns a copy of the product list.
func (e *Editor) Products() []product.Product {
	return slices.Clone(e.products)
}

// Delete asks for confirmation and, if given, deletes the product remotely
// and drops it from the list. It reports whether the product was deleted.
func (e *Editor) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := e.confirm.Confirm(ctx, Prompt{
		Title:   "Are you sure?",
		Text:    "You won't be able to revert this!",
		Confirm: "Yes, delete it!",
	})
	if err != nil {
		return false, errors.Wrap(err, "confirm delete")
	}
	if !ok {
		return false, nil
	}

	if err := e.catalog.Delete(ctx, id); err != nil {
		zctx.From(ctx).Error("Delete product", zap.Int64("id", id), zap.Error(err))
		e.notifier.Error("Error", "There was an error deleting the product.")
		return false, errors.Wrapf(err, "delete product %d", id)
	}

	e.products = slices.DeleteFunc(e.products, func(p product.Product) bool { return p.ID == id })
	e.notifier.Success("Deleted!", "The product has been deleted.")
	return true, nil
}

// OpenEditor opens the modal seeded with a copy of p.
func (e *Editor) OpenEditor(p product.Product, mode Mode) {
	e.modal = &Modal{
		Mode:     mode,
		Original: p,
		Draft:    newDraft(p),
	}
}

// Modal returns the open modal, if any.
func (e *Editor) Modal() (Modal, bool) {
	if e.modal == nil {
		return Modal{}, false
	}
	return *e.modal, true
}

// CloseEditor discards the draft and closes the modal.
func (e *Editor) CloseEditor() {
	e.modal = nil
}

func (e *Editor) editable() (*Modal, error) {
	if e.modal == nil {
		return nil, ErrNoEditor
	}
	if e.modal.Mode != ModeEdit {
		return nil, ErrReadOnly
	}
	return e.modal, nil
}

// SetName sets the draft name.
func (e *Editor) SetName(v string) error {
	m, err := e.editable()
	if err != nil {
		return err
	}
	m.Draft.Name = v
	return nil
}

// SetDescription sets the draft description.
func (e *Editor) SetDescription(v string) error {
	m, err := e.editable()
	if err != nil {
		return err
	}
	m.Draft.Description = v
	return nil
}

// SetPrice parses v into the draft price. An empty value clears it.
func (e *Editor) SetPrice(v string) error {
	m, err := e.editable()
	if err != nil {
		return err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		m.Draft.Price = nil
		return nil
	}
	price, err := decimal.NewFromString(v)
	if err != nil {
		return errors.Wrapf(err, "parse price %q", v)
	}
	m.Draft.Price = &price
	return nil
}

// SetStock parses v into the draft stock. An empty value clears it.
func (e *Editor) SetStock(v string) error {
	m, err := e.editable()
	if err != nil {
		return err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		m.Draft.Stock = nil
		return nil
	}
	stock, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "parse stock %q", v)
	}
	m.Draft.Stock = &stock
	return nil
}

// ApplyEdit validates the draft and persists it. On success the list entry
// is replaced and the modal closes; on any failure the list is unchanged
// and the modal stays open.
func (e *Editor) ApplyEdit(ctx context.Context) error {
	m, err := e.editable()
	if err != nil {
		return err
	}

	if missing := m.Draft.missing(); len(missing) > 0 {
		e.notifier.Error("Validation Error", "Please fill in all required fields.")
		return &ValidationError{Fields: missing}
	}

	updated := m.Draft.product()
	if err := e.catalog.Update(ctx, updated); err != nil {
		zctx.From(ctx).Error("Update product", zap.Int64("id", updated.ID), zap.Error(err))
		e.notifier.Error("Update Error", "There was an error updating the product.")
		return errors.Wrapf(err, "update product %d", updated.ID)
	}

	for i := range e.products {
		if e.products[i].ID == updated.ID {
			e.products[i] = updated
		}
	}
	e.notifier.Success("Updated!", "Product details have been updated.")
	e.CloseEditor()
	return nil
}
