package storeapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
)

// --- Helpers ---

type staticToken string

func (t staticToken) Token() string { return string(t) }

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, staticToken(token), Options{})
	require.NoError(t, err)
	return c, &calls
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// --- Tests ---

func TestCarts_List(t *testing.T) {
	c, calls := newTestClient(t, "tok", respond(http.StatusOK, `[
		{"id": 1, "total": 2, "price": 100, "product": {"name": "Mug", "file": "mug.png"}},
		{"id": "2", "total": "1", "price": "49.50", "product": null}
	]`))

	items, err := c.Carts().List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(100).Equal(items[0].Price))
	assert.Equal(t, cart.ProductRef{Name: "Mug", Image: "mug.png"}, items[0].Product)

	assert.Equal(t, int64(2), items[1].ID)
	assert.True(t, decimal.RequireFromString("49.5").Equal(items[1].Price))

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/cart/carts/", got.path)
	assert.Equal(t, "Bearer tok", got.auth)
}

func TestCarts_ListEmpty(t *testing.T) {
	c, _ := newTestClient(t, "tok", respond(http.StatusOK, `[]`))

	items, err := c.Carts().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCarts_Count(t *testing.T) {
	c, _ := newTestClient(t, "tok", respond(http.StatusOK, `[{"id":1},{"id":2},{"id":3}]`))

	n, err := c.Carts().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCarts_UpdateSendsNoCredentials(t *testing.T) {
	c, calls := newTestClient(t, "tok", respond(http.StatusOK, `{}`))

	err := c.Carts().Update(context.Background(), 7, cart.Update{
		Quantity: 3,
		Price:    decimal.RequireFromString("150.75"),
	})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/cart/carts/7", got.path)
	assert.Empty(t, got.auth)
	assert.Equal(t, map[string]any{"total": float64(3), "price": 150.75}, got.body)
}

func TestCarts_Delete(t *testing.T) {
	c, calls := newTestClient(t, "tok", respond(http.StatusOK, ``))

	require.NoError(t, c.Carts().Delete(context.Background(), 9))
	got := (*calls)[0]
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/cart/carts/9", got.path)
	assert.Equal(t, "Bearer tok", got.auth)
}

func TestClient_NoTokenOmitsHeader(t *testing.T) {
	c, calls := newTestClient(t, "", respond(http.StatusOK, `[]`))

	_, err := c.Products().ListMenu(context.Background())
	require.NoError(t, err)
	assert.Empty(t, (*calls)[0].auth)
}

func TestProducts_Endpoints(t *testing.T) {
	body := `[{"id":4,"ItemName":"Castle Mug","price":250,"stock":10,"description":"d","category":"home","file":"m.png"}]`
	want := product.Product{
		ID:          4,
		Name:        "Castle Mug",
		Price:       decimal.NewFromInt(250),
		Stock:       10,
		Description: "d",
		Category:    "home",
		Image:       "m.png",
	}

	tests := []struct {
		name string
		call func(p *Products) ([]product.Product, error)
		path string
	}{
		{name: "menu", call: func(p *Products) ([]product.Product, error) { return p.ListMenu(context.Background()) }, path: "/auth/getmenutems"},
		{name: "admin list", call: func(p *Products) ([]product.Product, error) { return p.List(context.Background()) }, path: "/auth/getproduct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, "tok", respond(http.StatusOK, body))

			got, err := tt.call(c.Products())
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.True(t, want.Price.Equal(got[0].Price))
			got[0].Price = want.Price
			assert.Equal(t, want, got[0])
			assert.Equal(t, tt.path, (*calls)[0].path)
		})
	}
}

func TestProducts_Update(t *testing.T) {
	c, calls := newTestClient(t, "tok", respond(http.StatusOK, `{"message":"ok"}`))

	err := c.Products().Update(context.Background(), product.Product{
		ID:       5,
		Name:     "Plush",
		Price:    decimal.RequireFromString("650.00"),
		Stock:    7,
		Category: "toys",
	})
	require.NoError(t, err)

	got := (*calls)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/auth/updateproduct", got.path)
	assert.Equal(t, "Bearer tok", got.auth)
	assert.Equal(t, float64(5), got.body["productId"])
	assert.Equal(t, float64(5), got.body["id"])
	assert.Equal(t, "Plush", got.body["ItemName"])
	assert.Equal(t, float64(650), got.body["price"])
	assert.Equal(t, float64(7), got.body["stock"])
}

func TestProducts_Delete(t *testing.T) {
	c, calls := newTestClient(t, "tok", respond(http.StatusNoContent, ``))

	require.NoError(t, c.Products().Delete(context.Background(), 12))
	assert.Equal(t, "/auth/delete/12", (*calls)[0].path)
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
}

func TestClient_StatusError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "json message", status: http.StatusForbidden, body: `{"message":"admin only"}`, wantMsg: "admin only"},
		{name: "json error", status: http.StatusNotFound, body: `{"error":"no such item"}`, wantMsg: "no such item"},
		{name: "plain text", status: http.StatusBadGateway, body: " upstream down \n", wantMsg: "upstream down"},
		{name: "empty", status: http.StatusInternalServerError, body: ``, wantMsg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, "tok", respond(tt.status, tt.body))

			err := c.Carts().Delete(context.Background(), 1)

			var sErr *StatusError
			require.ErrorAs(t, err, &sErr)
			assert.Equal(t, tt.status, sErr.Code)
			assert.Equal(t, "deleteCartItem", sErr.Op)
			assert.Equal(t, tt.wantMsg, sErr.Message)
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestClient_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, "tok", respond(http.StatusOK, `{"not":"an array"}`))

	_, err := c.Carts().List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestAuth_LoginAndMe(t *testing.T) {
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			respond(http.StatusOK, `{"token":"abc"}`)(w, r)
		case "/auth/me":
			respond(http.StatusOK, `{"user":{"id":3,"username":"ana","role":"admin"}}`)(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	token, err := c.Auth().Login(context.Background(), session.Credentials{Username: "ana", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	u, err := c.Auth().Me(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, session.User{ID: 3, Name: "ana", Role: session.RoleAdmin}, u)

	require.Len(t, *calls, 2)
	assert.Equal(t, map[string]any{"username": "ana", "password": "pw"}, (*calls)[0].body)
	assert.Empty(t, (*calls)[0].auth)
	assert.Equal(t, "Bearer abc", (*calls)[1].auth)
}

func TestAuth_MeDefaultsToUserRole(t *testing.T) {
	c, _ := newTestClient(t, "", respond(http.StatusOK, `{"id":8,"name":"bo"}`))

	u, err := c.Auth().Me(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, session.RoleUser, u.Role)
	assert.Equal(t, "bo", u.Name)
}

func TestAuth_LoginRejected(t *testing.T) {
	c, _ := newTestClient(t, "", respond(http.StatusUnauthorized, `{"message":"invalid credentials"}`))

	_, err := c.Auth().Login(context.Background(), session.Credentials{Username: "x", Password: "y"})
	require.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestAuth_MeRejectedIsUnauthorized(t *testing.T) {
	tests := []struct {
		name             string
		status           int
		wantUnauthorized bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantUnauthorized: true},
		{name: "forbidden", status: http.StatusForbidden, wantUnauthorized: true},
		{name: "server error", status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, "", respond(tt.status, `{"message":"nope"}`))

			_, err := c.Auth().Me(context.Background(), "stale")
			require.Error(t, err)
			assert.Equal(t, tt.wantUnauthorized, errors.Is(err, session.ErrUnauthorized))
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestAuth_MeTransportErrorIsNotUnauthorized(t *testing.T) {
	c, err := New("http://127.0.0.1:1", nil, Options{})
	require.NoError(t, err)

	_, err = c.Auth().Me(context.Background(), "tok")
	require.Error(t, err)
	assert.False(t, errors.Is(err, session.ErrUnauthorized))
}
