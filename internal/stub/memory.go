package stub

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

var (
	_ Store      = (*MemoryStore)(nil)
	_ TokenStore = (*MemoryTokens)(nil)
)

// CartEntry is a line item owned by a user.
type CartEntry struct {
	UserID int64
	Item   cart.LineItem
}

// Seed is the initial content of a MemoryStore.
type Seed struct {
	Users    []User
	Products []product.Product
	Carts    []CartEntry
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[int64]User
	products map[int64]product.Product
	carts    map[int64]CartEntry
}

// NewMemoryStore returns a store populated from seed.
func NewMemoryStore(seed Seed) *MemoryStore {
	s := &MemoryStore{
		users:    make(map[int64]User, len(seed.Users)),
		products: make(map[int64]product.Product, len(seed.Products)),
		carts:    make(map[int64]CartEntry, len(seed.Carts)),
	}
	for _, u := range seed.Users {
		s.users[u.ID] = u
	}
	for _, p := range seed.Products {
		s.products[p.ID] = p
	}
	for _, c := range seed.Carts {
		s.carts[c.Item.ID] = c
	}
	return s
}

func (s *MemoryStore) Products(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.SortedFunc(maps.Values(s.products), func(a, b product.Product) int {
		return cmp.Compare(a.ID, b.ID)
	}), nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return product.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return product.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *MemoryStore) CartItems(_ context.Context, userID int64) ([]cart.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []cart.LineItem{}
	for _, c := range s.carts {
		if c.UserID == userID {
			items = append(items, c.Item)
		}
	}
	slices.SortFunc(items, func(a, b cart.LineItem) int { return cmp.Compare(a.ID, b.ID) })
	return items, nil
}

func (s *MemoryStore) DeleteCartItem(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok || c.UserID != userID {
		return cart.ErrItemNotFound
	}
	delete(s.carts, id)
	return nil
}

func (s *MemoryStore) UpdateCartItem(_ context.Context, id int64, u cart.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return cart.ErrItemNotFound
	}
	c.Item.Quantity = u.Quantity
	c.Item.Price = u.Price
	s.carts[id] = c
	return nil
}

func (s *MemoryStore) UserByName(_ context.Context, name string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Name == name {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *MemoryStore) UserByID(_ context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// MemoryTokens is a TokenStore kept in process memory. Tokens never expire.
type MemoryTokens struct {
	mu     sync.RWMutex
	tokens map[string]int64
}

// NewMemoryTokens returns an empty token store.
func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{tokens: make(map[string]int64)}
}

func (t *MemoryTokens) Issue(_ context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[token] = userID
	return token, nil
}

func (t *MemoryTokens) Resolve(_ context.Context, token string) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.tokens[token]
	if !ok {
		return 0, ErrTokenNotFound
	}
	return id, nil
}
