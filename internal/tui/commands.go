package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-storefront/internal/domain/admin"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/catalog"
	"github.com/xenking/kart-storefront/internal/domain/checkout"
	"github.com/xenking/kart-storefront/internal/domain/nav"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
)

// services are the domain views behind the TUI. A view is only touched by
// the command that holds its busy flag, or by Update while the flag is
// clear; the model renders snapshots carried back in messages.
type services struct {
	ctx      context.Context
	sessions *session.Manager
	browser  *catalog.Browser
	cart     *cart.View
	editor   *admin.Editor
	checkout *checkout.Flow
	prompter *Prompter
	notices  *Notices

	// Header refreshes may overlap with login and logout.
	shellMu sync.Mutex
	shell   *nav.Shell
}

type linkSnapshot struct {
	label    string
	path     string
	badge    int
	hasBadge bool
}

type headerSnapshot struct {
	title string
	links []linkSnapshot
}

type cartSnapshot struct {
	items    []cart.LineItem
	selected map[int64]bool
	subtotal decimal.Decimal
}

type adminSnapshot struct {
	products []product.Product
	modal    admin.Modal
	open     bool
}

type startupMsg struct {
	session    session.Session
	header     headerSnapshot
	tiles      []catalog.Tile
	restoreErr error
	catalogErr error
	headerErr  error
}

// sessionMsg follows login and logout.
type sessionMsg struct {
	session session.Session
	header  headerSnapshot
	err     error
}

type headerMsg struct {
	header headerSnapshot
	err    error
}

type catalogMsg struct {
	tiles []catalog.Tile
	err   error
}

type cartMsg struct {
	snapshot cartSnapshot
	// counted is set when the item count may have changed.
	counted bool
	err     error
}

type adminMsg struct {
	snapshot adminSnapshot
	notices  []Notice
	err      error
}

type confirmMsg confirmRequest

type tickMsg struct {
	generation int
}

func linkLabel(l nav.Link) string {
	if l.Text != "" {
		return l.Text
	}
	switch l.To {
	case "/":
		return "Home"
	case "/register":
		return "Sign in"
	default:
		return l.To
	}
}

// headerLocked builds the header snapshot. shellMu must be held.
func (s *services) headerLocked() headerSnapshot {
	links := s.shell.Links()
	out := headerSnapshot{
		title: s.shell.Title(),
		links: make([]linkSnapshot, len(links)),
	}
	for i, l := range links {
		n, ok := s.shell.Badge(l)
		out.links[i] = linkSnapshot{label: linkLabel(l), path: l.To, badge: n, hasBadge: ok}
	}
	return out
}

func (s *services) refreshHeader(ctx context.Context) (headerSnapshot, error) {
	s.shellMu.Lock()
	defer s.shellMu.Unlock()
	err := s.shell.RefreshCartCount(ctx)
	return s.headerLocked(), err
}

func (s *services) cartSnapshot() cartSnapshot {
	items := s.cart.Items()
	selected := make(map[int64]bool, len(items))
	for _, it := range items {
		if s.cart.IsSelected(it.ID) {
			selected[it.ID] = true
		}
	}
	return cartSnapshot{
		items:    items,
		selected: selected,
		subtotal: s.cart.Subtotal(),
	}
}

func (s *services) adminSnapshot() adminSnapshot {
	modal, open := s.editor.Modal()
	return adminSnapshot{
		products: s.editor.Products(),
		modal:    modal,
		open:     open,
	}
}

// startup restores the session, then loads the catalog and the cart count
// concurrently. The loads are independent: one failing does not cancel the
// other.
func (s *services) startup() tea.Cmd {
	return func() tea.Msg {
		ctx := s.ctx
		lg := zctx.From(ctx)

		sess, restoreErr := s.sessions.Restore(ctx)
		if restoreErr != nil {
			lg.Warn("Restore session", zap.Error(restoreErr))
		}

		var (
			g          errgroup.Group
			header     headerSnapshot
			catalogErr error
			headerErr  error
		)
		g.Go(func() error {
			catalogErr = s.browser.Load(ctx)
			return nil
		})
		g.Go(func() error {
			header, headerErr = s.refreshHeader(ctx)
			return nil
		})
		_ = g.Wait()
		if catalogErr != nil {
			lg.Error("Start-up catalog load", zap.Error(catalogErr))
		}
		if headerErr != nil {
			lg.Error("Start-up cart count", zap.Error(headerErr))
		}

		return startupMsg{
			session:    sess,
			header:     header,
			tiles:      s.browser.Tiles(),
			restoreErr: restoreErr,
			catalogErr: catalogErr,
			headerErr:  headerErr,
		}
	}
}

func (s *services) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		err := s.browser.Load(s.ctx)
		return catalogMsg{tiles: s.browser.Tiles(), err: err}
	}
}

func (s *services) loadHeader() tea.Cmd {
	return func() tea.Msg {
		header, err := s.refreshHeader(s.ctx)
		return headerMsg{header: header, err: err}
	}
}

func (s *services) loadCart() tea.Cmd {
	return s.cartOp(true, func(ctx context.Context) error {
		return s.cart.Load(ctx)
	})
}

// cartOp runs op against the cart view and returns its new snapshot.
func (s *services) cartOp(counted bool, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := op(s.ctx)
		return cartMsg{snapshot: s.cartSnapshot(), counted: counted, err: err}
	}
}

func (s *services) loadAdmin() tea.Cmd {
	return s.adminOp(func(ctx context.Context) error {
		return s.editor.Load(ctx)
	})
}

// adminOp runs op against the editor and returns its new snapshot with the
// notices it raised.
func (s *services) adminOp(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := op(s.ctx)
		return adminMsg{
			snapshot: s.adminSnapshot(),
			notices:  s.notices.Drain(),
			err:      err,
		}
	}
}

// applyEdit copies the form values into the draft and saves it.
func (s *services) applyEdit(values formValues) tea.Cmd {
	return s.adminOp(func(ctx context.Context) error {
		if err := s.editor.SetName(values.name); err != nil {
			return err
		}
		if err := s.editor.SetDescription(values.description); err != nil {
			return err
		}
		if err := s.editor.SetPrice(values.price); err != nil {
			s.notices.Error("Validation Error", "Price must be a number.")
			return err
		}
		if err := s.editor.SetStock(values.stock); err != nil {
			s.notices.Error("Validation Error", "Stock must be a whole number.")
			return err
		}
		return s.editor.ApplyEdit(ctx)
	})
}

func (s *services) login(creds session.Credentials) tea.Cmd {
	return func() tea.Msg {
		sess, err := s.sessions.Login(s.ctx, creds)
		if err != nil {
			zctx.From(s.ctx).Warn("Login failed", zap.String("username", creds.Username), zap.Error(err))
			return sessionMsg{session: s.sessions.Current(), err: err}
		}
		header, err := s.refreshHeader(s.ctx)
		return sessionMsg{session: sess, header: header, err: err}
	}
}

func (s *services) logout() tea.Cmd {
	return func() tea.Msg {
		s.shellMu.Lock()
		defer s.shellMu.Unlock()
		if err := s.shell.Logout(s.ctx); err != nil {
			return sessionMsg{session: s.sessions.Current(), header: s.headerLocked(), err: errors.Wrap(err, "logout")}
		}
		return sessionMsg{session: s.sessions.Current(), header: s.headerLocked()}
	}
}
