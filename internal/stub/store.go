// Package stub is a development stand-in for the remote storefront API. It
// serves the same routes and JSON shapes the storefront client uses, backed
// by an in-memory or PostgreSQL store.
package stub

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
)

// Sentinel errors returned by stores.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("token not found")
)

// User is an account known to the stub server.
type User struct {
	ID           int64
	Name         string
	Role         session.Role
	PasswordHash []byte
}

// NewUser hashes password with bcrypt.
func NewUser(id int64, name string, role session.Role, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.Wrap(err, "hash password")
	}
	return User{ID: id, Name: name, Role: role, PasswordHash: hash}, nil
}

// CheckPassword reports whether password matches the stored hash.
func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}

// Public returns the identity exposed by /auth/me.
func (u User) Public() session.User {
	return session.User{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Store holds catalog, carts and users.
type Store interface {
	Products(ctx context.Context) ([]product.Product, error)
	// DeleteProduct returns product.ErrNotFound for an unknown id.
	DeleteProduct(ctx context.Context, id int64) error
	// UpdateProduct returns product.ErrNotFound for an unknown id.
	UpdateProduct(ctx context.Context, p product.Product) error

	CartItems(ctx context.Context, userID int64) ([]cart.LineItem, error)
	// DeleteCartItem returns cart.ErrItemNotFound unless the item exists
	// and belongs to userID.
	DeleteCartItem(ctx context.Context, userID, id int64) error
	// UpdateCartItem returns cart.ErrItemNotFound for an unknown id.
	UpdateCartItem(ctx context.Context, id int64, u cart.Update) error

	UserByName(ctx context.Context, name string) (User, error)
	UserByID(ctx context.Context, id int64) (User, error)

	Ping(ctx context.Context) error
}

// TokenStore issues and resolves bearer tokens.
type TokenStore interface {
	Issue(ctx context.Context, userID int64) (string, error)
	// Resolve returns ErrTokenNotFound for unknown or expired tokens.
	Resolve(ctx context.Context, token string) (int64, error)
}
