// Package nav implements the navigation shell: role-conditioned links, the
// cart badge, compact mode and the mobile menu toggle.
package nav

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/session"
)

// CompactScrollThreshold is the scroll offset past which the shell
// switches to compact mode.
const CompactScrollThreshold = 50

// CartPath is the link that carries the cart item badge.
const CartPath = "/cart"

// Link is a navigation entry.
type Link struct {
	To   string
	Text string
}

var (
	guestLinks = []Link{
		{To: "/"},
		{To: "/register"},
	}
	userLinks = []Link{
		{To: "/", Text: "Home"},
		{To: CartPath, Text: "Cart"},
		{To: "/product01", Text: "My orders"},
		{To: "/address", Text: "Address"},
	}
	adminLinks = []Link{
		{To: "/home", Text: "Home"},
		{To: "/order", Text: "Order"},
	}
)

// LinksFor returns the link set for a session.
func LinksFor(s session.Session) []Link {
	switch {
	case !s.SignedIn():
		return guestLinks
	case s.IsAdmin():
		return adminLinks
	default:
		return userLinks
	}
}

// SessionSource provides the current session.
type SessionSource interface {
	Current() session.Session
	Logout(ctx context.Context) error
}

// CartCounter counts items in the signed-in user's cart.
type CartCounter interface {
	Count(ctx context.Context) (int, error)
}

// Shell is the state of the navigation header. It is safe for concurrent
// use; no lock is held while the cart count is fetched.
type Shell struct {
	sessions SessionSource
	carts    CartCounter

	mu        sync.Mutex
	cartCount int
	compact   bool
	menuOpen  bool
}

// NewShell creates a Shell.
func NewShell(sessions SessionSource, carts CartCounter) *Shell {
	return &Shell{sessions: sessions, carts: carts}
}

// Links returns the links for the current session.
func (s *Shell) Links() []Link {
	return LinksFor(s.sessions.Current())
}

// Title is the brand line with the signed-in user's name.
func (s *Shell) Title() string {
	cur := s.sessions.Current()
	if !cur.SignedIn() {
		return "CS.SHOP | "
	}
	return "CS.SHOP | " + cur.User.Name
}

// RefreshCartCount fetches the cart item count when a user is signed in.
// Guests keep a zero count and no request is made.
func (s *Shell) RefreshCartCount(ctx context.Context) error {
	if !s.sessions.Current().SignedIn() {
		s.setCartCount(0)
		return nil
	}
	n, err := s.carts.Count(ctx)
	if err != nil {
		zctx.From(ctx).Error("Fetch cart count", zap.Error(err))
		return errors.Wrap(err, "count cart items")
	}
	s.setCartCount(n)
	return nil
}

func (s *Shell) setCartCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartCount = n
}

// CartCount is the last fetched cart item count.
func (s *Shell) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartCount
}

// Badge returns the badge count for a link and whether it is shown.
func (s *Shell) Badge(l Link) (int, bool) {
	n := s.CartCount()
	if l.To != CartPath || n <= 0 {
		return 0, false
	}
	return n, true
}

// SetScroll updates compact mode from a scroll offset.
func (s *Shell) SetScroll(y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compact = y > CompactScrollThreshold
}

// Compact reports whether link text is hidden.
func (s *Shell) Compact() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compact
}

// ToggleMenu opens or closes the mobile menu.
func (s *Shell) ToggleMenu() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuOpen = !s.menuOpen
	return s.menuOpen
}

// CloseMenu closes the mobile menu, as following a link does.
func (s *Shell) CloseMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuOpen = false
}

// MenuOpen reports whether the mobile menu is open.
func (s *Shell) MenuOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuOpen
}

// Logout ends the session and resets the badge.
func (s *Shell) Logout(ctx context.Context) error {
	if err := s.sessions.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartCount = 0
	s.menuOpen = false
	return nil
}
