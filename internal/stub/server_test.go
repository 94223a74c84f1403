package stub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/session"
	"github.com/xenking/kart-storefront/internal/storeapi"
)

// --- Helpers ---

type tokenHolder struct{ token string }

func (t *tokenHolder) Token() string { return t.token }

type fixture struct {
	url    string
	store  *MemoryStore
	tokens *tokenHolder
	api    *storeapi.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	seed, err := DemoSeed()
	require.NoError(t, err)

	store := NewMemoryStore(seed)
	srv := httptest.NewServer(NewServer(store, NewMemoryTokens()))
	t.Cleanup(srv.Close)

	holder := &tokenHolder{}
	api, err := storeapi.New(srv.URL, holder, storeapi.Options{})
	require.NoError(t, err)
	return &fixture{url: srv.URL, store: store, tokens: holder, api: api}
}

func (f *fixture) login(t *testing.T, name string) session.User {
	t.Helper()
	ctx := context.Background()
	token, err := f.api.Auth().Login(ctx, session.Credentials{Username: name, Password: name})
	require.NoError(t, err)
	f.tokens.token = token

	u, err := f.api.Auth().Me(ctx, token)
	require.NoError(t, err)
	return u
}

func (f *fixture) raw(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, f.url+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// --- Tests ---

func TestServer_Login(t *testing.T) {
	f := newFixture(t)

	u := f.login(t, "admin")
	assert.Equal(t, session.User{ID: 1, Name: "admin", Role: session.RoleAdmin}, u)

	_, err := f.api.Auth().Login(context.Background(), session.Credentials{Username: "admin", Password: "wrong"})
	assert.True(t, storeapi.IsStatus(err, http.StatusUnauthorized))

	_, err = f.api.Auth().Login(context.Background(), session.Credentials{Username: "nobody", Password: "x"})
	assert.True(t, storeapi.IsStatus(err, http.StatusUnauthorized))
}

func TestServer_RequiresToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.api.Products().ListMenu(context.Background())
	assert.True(t, storeapi.IsStatus(err, http.StatusUnauthorized))

	resp := f.raw(t, http.MethodGet, "/cart/carts/", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_MenuHidesOutOfStock(t *testing.T) {
	f := newFixture(t)
	f.login(t, "shopper")

	menu, err := f.api.Products().ListMenu(context.Background())
	require.NoError(t, err)
	for _, p := range menu {
		assert.Positive(t, p.Stock)
		assert.NotEqual(t, int64(4), p.ID)
	}
	assert.Len(t, menu, len(DemoProducts())-1)
}

func TestServer_AdminRoutesForbidShoppers(t *testing.T) {
	f := newFixture(t)
	f.login(t, "shopper")
	ctx := context.Background()

	_, err := f.api.Products().List(ctx)
	assert.True(t, storeapi.IsStatus(err, http.StatusForbidden))
	assert.True(t, storeapi.IsStatus(f.api.Products().Delete(ctx, 1), http.StatusForbidden))
}

func TestServer_AdminEditAndDelete(t *testing.T) {
	f := newFixture(t)
	f.login(t, "admin")
	ctx := context.Background()

	all, err := f.api.Products().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(DemoProducts()))

	edited := all[1]
	edited.Name = "Wireless Mouse"
	edited.Price = decimal.RequireFromString("54.00")
	require.NoError(t, f.api.Products().Update(ctx, edited))

	require.NoError(t, f.api.Products().Delete(ctx, 5))
	assert.True(t, storeapi.IsStatus(f.api.Products().Delete(ctx, 5), http.StatusNotFound))

	after, err := f.api.Products().List(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(DemoProducts())-1)
	assert.Equal(t, "Wireless Mouse", after[1].Name)
	assert.True(t, decimal.RequireFromString("54").Equal(after[1].Price))
}

func TestServer_UpdateProductValidation(t *testing.T) {
	f := newFixture(t)
	f.login(t, "admin")

	resp := f.raw(t, http.MethodPut, "/auth/updateproduct", f.tokens.token, `{"ItemName":"x","price":1,"stock":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "productId is required")

	resp = f.raw(t, http.MethodPut, "/auth/updateproduct", f.tokens.token, `{"productId":1,"ItemName":"","price":1,"stock":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_CartFlow(t *testing.T) {
	f := newFixture(t)
	f.login(t, "shopper")
	ctx := context.Background()
	carts := f.api.Carts()

	view := cart.NewView(carts, nil)
	require.NoError(t, view.Load(ctx))
	require.Equal(t, 2, view.Len())

	// Line 2 is 2 x 49.50 = 99.00; four units reprice to 198.00.
	li, err := view.SetQuantity(ctx, 2, 4)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("198").Equal(li.Price))

	items, err := carts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, items[1].Quantity)
	assert.True(t, decimal.RequireFromString("198").Equal(items[1].Price))

	require.NoError(t, view.Remove(ctx, 1))
	n, err := carts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestServer_CartIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	f.login(t, "admin")
	ctx := context.Background()

	items, err := f.api.Carts().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	err = f.api.Carts().Delete(ctx, 1)
	assert.True(t, storeapi.IsStatus(err, http.StatusNotFound))
}

func TestServer_CartUpdateWithoutToken(t *testing.T) {
	f := newFixture(t)

	resp := f.raw(t, http.MethodPut, "/cart/carts/1", "", `{"total":3,"price":269.70}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	items, err := f.store.CartItems(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Quantity)

	resp = f.raw(t, http.MethodPut, "/cart/carts/1", "", `{"total":0,"price":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.raw(t, http.MethodPut, "/cart/carts/99", "", `{"total":1,"price":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_UnknownRoute(t *testing.T) {
	f := newFixture(t)

	resp := f.raw(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
