package stub

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
)

type userKey struct{}

func userFrom(ctx context.Context) User {
	u, _ := ctx.Value(userKey{}).(User)
	return u
}

// Server serves the storefront API routes.
type Server struct {
	store  Store
	tokens TokenStore
	router *mux.Router
}

// NewServer registers the routes on a new router.
func NewServer(store Store, tokens TokenStore) *Server {
	s := &Server{store: store, tokens: tokens, router: mux.NewRouter()}

	r := s.router
	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.authed(s.me)).Methods(http.MethodGet)
	r.HandleFunc("/auth/getmenutems", s.authed(s.listMenu)).Methods(http.MethodGet)
	r.HandleFunc("/auth/getproduct", s.admin(s.listProducts)).Methods(http.MethodGet)
	r.HandleFunc("/auth/delete/{id:[0-9]+}", s.admin(s.deleteProduct)).Methods(http.MethodDelete)
	r.HandleFunc("/auth/updateproduct", s.admin(s.updateProduct)).Methods(http.MethodPut)

	r.HandleFunc("/cart/carts/", s.authed(s.listCart)).Methods(http.MethodGet)
	r.HandleFunc("/cart/carts/{id:[0-9]+}", s.authed(s.deleteCartItem)).Methods(http.MethodDelete)
	// Quantity updates are accepted without credentials.
	r.HandleFunc("/cart/carts/{id:[0-9]+}", s.updateCartItem).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return s
}

// Router exposes the router for route matching in middleware.
func (s *Server) Router() *mux.Router { return s.router }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return ""
	}
	return h[len(prefix):]
}

// authed resolves the bearer token to a user or answers 401.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		ctx := r.Context()
		id, err := s.tokens.Resolve(ctx, token)
		if errors.Is(err, ErrTokenNotFound) {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if err != nil {
			s.internal(ctx, w, "resolve token", err)
			return
		}
		u, err := s.store.UserByID(ctx, id)
		if errors.Is(err, ErrUserNotFound) {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if err != nil {
			s.internal(ctx, w, "load user", err)
			return
		}
		next(w, r.WithContext(context.WithValue(ctx, userKey{}, u)))
	}
}

// admin is authed plus a role check.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r.Context()).Role != session.RoleAdmin {
			writeMessage(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r)
	})
}

func (s *Server) internal(ctx context.Context, w http.ResponseWriter, op string, err error) {
	zctx.From(ctx).Error("Request failed", zap.String("op", op), zap.Error(err))
	writeMessage(w, http.StatusInternalServerError, "internal server error")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	creds, err := decodeCredentials(d)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed credentials")
		return
	}

	u, err := s.store.UserByName(ctx, creds.Username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.internal(ctx, w, "find user", err)
		return
	}
	if err != nil || !u.CheckPassword(creds.Password) {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		s.internal(ctx, w, "issue token", err)
		return
	}
	zctx.From(ctx).Info("User signed in", zap.Int64("user_id", u.ID))
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("token", func(e *jx.Encoder) { e.Str(token) })
		})
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context()).Public()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeUser(e, u) })
}

func (s *Server) writeProducts(w http.ResponseWriter, r *http.Request, keep func(product.Product) bool) {
	products, err := s.store.Products(r.Context())
	if err != nil {
		s.internal(r.Context(), w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range products {
				if keep(p) {
					encodeProduct(e, p)
				}
			}
		})
	})
}

// listMenu returns the products shoppers can buy: those in stock.
func (s *Server) listMenu(w http.ResponseWriter, r *http.Request) {
	s.writeProducts(w, r, func(p product.Product) bool { return p.Stock > 0 })
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.writeProducts(w, r, func(product.Product) bool { return true })
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	switch err := s.store.DeleteProduct(r.Context(), id); {
	case errors.Is(err, product.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "product not found")
	case err != nil:
		s.internal(r.Context(), w, "delete product", err)
	default:
		writeMessage(w, http.StatusOK, "product deleted")
	}
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := decodeProductUpdate(d)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Name == "" || p.Price.IsNegative() || p.Stock < 0 {
		writeMessage(w, http.StatusBadRequest, "name, price and stock must be valid")
		return
	}
	switch err := s.store.UpdateProduct(r.Context(), p); {
	case errors.Is(err, product.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "product not found")
	case err != nil:
		s.internal(r.Context(), w, "update product", err)
	default:
		writeMessage(w, http.StatusOK, "product updated")
	}
}

func (s *Server) listCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.CartItems(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.internal(r.Context(), w, "list cart", err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, li := range items {
				encodeLineItem(e, li)
			}
		})
	})
}

func (s *Server) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid cart item id")
		return
	}
	switch err := s.store.DeleteCartItem(r.Context(), userFrom(r.Context()).ID, id); {
	case errors.Is(err, cart.ErrItemNotFound):
		writeMessage(w, http.StatusNotFound, "cart item not found")
	case err != nil:
		s.internal(r.Context(), w, "delete cart item", err)
	default:
		writeMessage(w, http.StatusOK, "cart item deleted")
	}
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid cart item id")
		return
	}
	d, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := decodeCartUpdate(d)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if u.Quantity < 1 {
		writeMessage(w, http.StatusBadRequest, "total must be greater than 0")
		return
	}
	switch err := s.store.UpdateCartItem(r.Context(), id, u); {
	case errors.Is(err, cart.ErrItemNotFound):
		writeMessage(w, http.StatusNotFound, "cart item not found")
	case err != nil:
		s.internal(r.Context(), w, "update cart item", err)
	default:
		writeMessage(w, http.StatusOK, "cart item updated")
	}
}
