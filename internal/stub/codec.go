package stub

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
)

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, enc func(e *jx.Encoder)) {
	var e jx.Encoder
	enc(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("ItemName", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, p.Price) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("file", func(e *jx.Encoder) { e.Str(p.Image) })
	})
}

func encodeLineItem(e *jx.Encoder, li cart.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(li.ID) })
		e.Field("total", func(e *jx.Encoder) { e.Int(li.Quantity) })
		e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, li.Price) })
		e.Field("product", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("name", func(e *jx.Encoder) { e.Str(li.Product.Name) })
				e.Field("file", func(e *jx.Encoder) { e.Str(li.Product.Image) })
			})
		})
	})
}

func encodeUser(e *jx.Encoder, u session.User) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("user", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Int64(u.ID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(u.Name) })
				e.Field("role", func(e *jx.Encoder) { e.Str(string(u.Role)) })
			})
		})
	})
}

func readBody(r *http.Request) (*jx.Decoder, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return jx.DecodeBytes(data), nil
}

func readInt(d *jx.Decoder) (int64, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	default:
		return d.Int64()
	}
}

func readDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(strings.TrimSpace(s))
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	}
}

func decodeCredentials(d *jx.Decoder) (session.Credentials, error) {
	var c session.Credentials
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username", "name", "email":
			c.Username, err = d.Str()
		case "password":
			c.Password, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return c, err
}

// decodeCartUpdate reads {total, price}; both are required.
func decodeCartUpdate(d *jx.Decoder) (cart.Update, error) {
	var u cart.Update
	var hasTotal, hasPrice bool
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "total":
			n, err := readInt(d)
			u.Quantity, hasTotal = int(n), true
			return err
		case "price":
			p, err := readDecimal(d)
			u.Price, hasPrice = p, true
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return u, err
	}
	if !hasTotal || !hasPrice {
		return u, errors.New("total and price are required")
	}
	return u, nil
}

// decodeProductUpdate reads a product record keyed by productId.
func decodeProductUpdate(d *jx.Decoder) (product.Product, error) {
	var (
		p     product.Product
		hasID bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			p.ID, err = readInt(d)
			hasID = true
		case "ItemName":
			p.Name, err = d.Str()
		case "price":
			p.Price, err = readDecimal(d)
		case "stock":
			var n int64
			n, err = readInt(d)
			p.Stock = int(n)
		case "description":
			p.Description, err = d.Str()
		case "category":
			p.Category, err = d.Str()
		case "file":
			p.Image, err = d.Str()
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "field %q", key)
	})
	if err != nil {
		return p, err
	}
	if !hasID {
		return p, errors.New("productId is required")
	}
	return p, nil
}
