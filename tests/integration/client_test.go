//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/session"
	"github.com/xenking/kart-storefront/internal/storage/file"
	"github.com/xenking/kart-storefront/internal/storeapi"
)

// TestStoreAPIClient drives the client stack the TUI uses against the
// running stub: sign in, persist the token, restore it and edit the cart.
func TestStoreAPIClient(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := file.NewSessionRepository(t.TempDir() + "/session.yaml")
	authClient, err := storeapi.New(baseURL, nil, storeapi.Options{Timeout: 10 * time.Second})
	require.NoError(t, err)
	sessions := session.NewManager(repo, authClient.Auth())
	api, err := storeapi.New(baseURL, sessions, storeapi.Options{Timeout: 10 * time.Second})
	require.NoError(t, err)

	s, err := sessions.Login(ctx, session.Credentials{Username: "shopper", Password: shopperPassword})
	require.NoError(t, err)
	assert.Equal(t, session.RoleUser, s.User.Role)

	restored := session.NewManager(repo, authClient.Auth())
	s2, err := restored.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.User, s2.User)

	view := cart.NewView(api.Carts(), nil)
	require.NoError(t, view.Load(ctx))
	if view.Len() == 0 {
		t.Skip("cart is empty")
	}
	item := view.Items()[0]

	updated, err := view.SetQuantity(ctx, item.ID, item.Quantity+1)
	require.NoError(t, err)
	assert.True(t, item.Repriced(item.Quantity+1).Equal(updated.Price))

	require.NoError(t, view.Load(ctx))
	got := view.Items()[0]
	assert.Equal(t, item.Quantity+1, got.Quantity)
	assert.True(t, updated.Price.Round(2).Equal(got.Price.Round(2)), "price %s persisted as %s", updated.Price, got.Price)
	assert.False(t, got.Price.LessThanOrEqual(decimal.Zero))

	require.NoError(t, sessions.Logout(ctx))
	_, err = repo.Get(ctx)
	require.ErrorIs(t, err, session.ErrNoToken)
}
