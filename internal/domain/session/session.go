// Package session holds the signed-in user and the bearer token used for
// authenticated calls to the remote store API.
package session

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNoToken is returned by a Repository that has no stored token.
	ErrNoToken = errors.New("no session token stored")
	// ErrUnauthorized is matched by Authenticator errors for a token or
	// credentials the API rejects.
	ErrUnauthorized = errors.New("unauthorized")
)

// Role is the authorization role of a user. The zero value is a guest.
type Role string

const (
	RoleGuest Role = ""
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the authenticated identity reported by the remote API.
type User struct {
	ID   int64
	Name string
	Role Role
}

// Session is a snapshot of the current user and its token.
type Session struct {
	User  User
	Token string
}

// SignedIn reports whether the session belongs to an identified user.
func (s Session) SignedIn() bool {
	return s.User.ID != 0
}

// IsAdmin reports whether the signed-in user has the admin role.
func (s Session) IsAdmin() bool {
	return s.SignedIn() && s.User.Role == RoleAdmin
}

// Credentials are the login form values.
type Credentials struct {
	Username string
	Password string
}

// Repository persists the session token between runs.
type Repository interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Authenticator exchanges credentials for a token and resolves a token to
// its user.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (string, error)
	Me(ctx context.Context, token string) (User, error)
}
