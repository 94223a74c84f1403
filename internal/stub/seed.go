package stub

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
)

// DemoProducts is the catalog served by a fresh memory store.
func DemoProducts() []product.Product {
	return []product.Product{
		{ID: 1, Name: "Mechanical Keyboard", Price: decimal.RequireFromString("89.90"), Stock: 12, Description: "Hot-swap, brown switches", Category: "peripherals", Image: "keyboard.jpg"},
		{ID: 2, Name: "Gaming Mouse", Price: decimal.RequireFromString("49.50"), Stock: 30, Description: "16k DPI sensor", Category: "peripherals", Image: "mouse.jpg"},
		{ID: 3, Name: "27\" Monitor", Price: decimal.RequireFromString("279.00"), Stock: 4, Description: "1440p, 165 Hz", Category: "displays", Image: "monitor.jpg"},
		{ID: 4, Name: "USB-C Hub", Price: decimal.RequireFromString("35.00"), Stock: 0, Description: "7 ports", Category: "accessories", Image: "hub.jpg"},
		{ID: 5, Name: "Headset", Price: decimal.RequireFromString("64.99"), Stock: 9, Description: "Closed back, detachable mic", Category: "audio", Image: "headset.jpg"},
	}
}

// DemoSeed returns users admin/admin and shopper/shopper, the demo catalog
// and a two-item cart for the shopper.
func DemoSeed() (Seed, error) {
	admin, err := NewUser(1, "admin", session.RoleAdmin, "admin")
	if err != nil {
		return Seed{}, errors.Wrap(err, "admin user")
	}
	shopper, err := NewUser(2, "shopper", session.RoleUser, "shopper")
	if err != nil {
		return Seed{}, errors.Wrap(err, "shopper user")
	}

	products := DemoProducts()
	line := func(id int64, p product.Product, qty int) CartEntry {
		return CartEntry{
			UserID: shopper.ID,
			Item: cart.LineItem{
				ID:       id,
				Product:  cart.ProductRef{Name: p.Name, Image: p.Image},
				Quantity: qty,
				Price:    p.Price.Mul(decimal.NewFromInt(int64(qty))),
			},
		}
	}

	return Seed{
		Users:    []User{admin, shopper},
		Products: products,
		Carts: []CartEntry{
			line(1, products[0], 1),
			line(2, products[1], 2),
		},
	}, nil
}
