package storeapi

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-storefront/internal/domain/session"
)

var _ session.Authenticator = (*Auth)(nil)

// Auth is the remote authentication service.
type Auth struct {
	c *Client
}

// Login exchanges credentials for a bearer token.
func (s *Auth) Login(ctx context.Context, creds session.Credentials) (string, error) {
	var token string
	err := s.c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   encodeCredentials(creds),
		decode: func(d *jx.Decoder) (err error) {
			token, err = decodeToken(d)
			return err
		},
	})
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.New("login: empty token in response")
	}
	return token, nil
}

// Me resolves token to the user it belongs to.
func (s *Auth) Me(ctx context.Context, token string) (session.User, error) {
	var u session.User
	err := s.c.do(ctx, call{
		op:     "me",
		method: http.MethodGet,
		path:   "/auth/me",
		token:  token,
		decode: func(d *jx.Decoder) (err error) {
			u, err = decodeUser(d)
			return err
		},
	})
	if err != nil {
		return session.User{}, err
	}
	if u.Role == "" {
		u.Role = session.RoleUser
	}
	return u, nil
}
