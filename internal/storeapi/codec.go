package storeapi

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
)

// The API is loose about scalar types: ids and prices may arrive as JSON
// numbers or as strings, and optional fields as null. The helpers below
// accept all of those.

func decodeInt64(d *jx.Decoder) (int64, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return 0, err
		}
		if n.IsInt() {
			return n.Int64()
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case jx.Null:
		return 0, d.Null()
	default:
		return 0, errors.Errorf("unexpected %s for integer", d.Next())
	}
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		if strings.TrimSpace(s) == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.TrimSpace(s))
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, errors.Errorf("unexpected %s for decimal", d.Next())
	}
}

func decodeString(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Null:
		return "", d.Null()
	case jx.Number:
		n, err := d.Num()
		return n.String(), err
	default:
		return "", errors.Errorf("unexpected %s for string", d.Next())
	}
}

// decodeLineItem reads {id, total, price, product{name, file}}.
func decodeLineItem(d *jx.Decoder) (cart.LineItem, error) {
	var li cart.LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			li.ID, err = decodeInt64(d)
		case "total":
			var n int64
			n, err = decodeInt64(d)
			li.Quantity = int(n)
		case "price":
			li.Price, err = decodeDecimal(d)
		case "product":
			if d.Next() == jx.Null {
				return d.Null()
			}
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "name", "ItemName":
					li.Product.Name, err = decodeString(d)
				case "file":
					li.Product.Image, err = decodeString(d)
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "field %q", key)
	})
	return li, err
}

func decodeLineItems(d *jx.Decoder) ([]cart.LineItem, error) {
	items := []cart.LineItem{}
	err := d.Arr(func(d *jx.Decoder) error {
		li, err := decodeLineItem(d)
		if err != nil {
			return err
		}
		items = append(items, li)
		return nil
	})
	return items, err
}

// decodeProduct reads {id, ItemName, price, stock, description, category, file}.
func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = decodeInt64(d)
		case "ItemName":
			p.Name, err = decodeString(d)
		case "price":
			p.Price, err = decodeDecimal(d)
		case "stock":
			var n int64
			n, err = decodeInt64(d)
			p.Stock = int(n)
		case "description":
			p.Description, err = decodeString(d)
		case "category":
			p.Category, err = decodeString(d)
		case "file":
			p.Image, err = decodeString(d)
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "field %q", key)
	})
	return p, err
}

func decodeProducts(d *jx.Decoder) ([]product.Product, error) {
	products := []product.Product{}
	err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	})
	return products, err
}

// decodeUser reads either {user:{...}} or the user object itself.
func decodeUser(d *jx.Decoder) (session.User, error) {
	var u session.User
	var fields func(d *jx.Decoder, key string) error
	fields = func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "user":
			err = d.Obj(fields)
		case "id":
			u.ID, err = decodeInt64(d)
		case "name":
			u.Name, err = decodeString(d)
		case "username":
			var name string
			name, err = decodeString(d)
			if u.Name == "" {
				u.Name = name
			}
		case "role":
			var role string
			role, err = decodeString(d)
			u.Role = session.Role(strings.ToUpper(role))
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "field %q", key)
	}
	err := d.Obj(fields)
	return u, err
}

func decodeToken(d *jx.Decoder) (string, error) {
	var token string
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "token", "accessToken":
			t, err := decodeString(d)
			if token == "" {
				token = t
			}
			return err
		default:
			return d.Skip()
		}
	})
	return token, err
}

func encodeCartUpdate(u cart.Update) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("total", func(e *jx.Encoder) { e.Int(u.Quantity) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(u.Price.String())) })
	})
	return e.Bytes()
}

// encodeProduct writes the full product record plus productId, the shape
// the update endpoint expects.
func encodeProduct(p product.Product) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("ItemName", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.String())) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("file", func(e *jx.Encoder) { e.Str(p.Image) })
		e.Field("productId", func(e *jx.Encoder) { e.Int64(p.ID) })
	})
	return e.Bytes()
}

func encodeCredentials(c session.Credentials) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("username", func(e *jx.Encoder) { e.Str(c.Username) })
		e.Field("password", func(e *jx.Encoder) { e.Str(c.Password) })
	})
	return e.Bytes()
}

// errorMessage extracts {"message": ...} or {"error": ...} from an error
// body, falling back to the trimmed text.
func errorMessage(body []byte) string {
	var msg string
	d := jx.DecodeBytes(body)
	if d.Next() == jx.Object {
		_ = d.Obj(func(d *jx.Decoder, key string) error {
			if (key == "message" || key == "error" || key == "msg") && d.Next() == jx.String && msg == "" {
				s, err := d.Str()
				msg = s
				return err
			}
			return d.Skip()
		})
		if msg != "" {
			return msg
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
		for !utf8.ValidString(text) {
			text = text[:len(text)-1]
		}
	}
	return text
}
