// Package tui is the terminal front-end of the storefront: a bubbletea
// program with the home, cart, admin and sign-in screens over the domain
// views.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/admin"
	"github.com/xenking/kart-storefront/internal/domain/carousel"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/catalog"
	"github.com/xenking/kart-storefront/internal/domain/checkout"
	"github.com/xenking/kart-storefront/internal/domain/nav"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
)

// Screen identifies a top-level screen.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenCart
	ScreenAdmin
	ScreenLogin
)

func (s Screen) String() string {
	switch s {
	case ScreenCart:
		return "cart"
	case ScreenAdmin:
		return "admin"
	case ScreenLogin:
		return "login"
	default:
		return "home"
	}
}

const (
	// mobileWidth is the terminal width below which links move into the
	// toggled menu.
	mobileWidth = 60
	// rowHeight converts list rows into the shell's scroll units.
	rowHeight = 24
)

// Deps are the domain views the TUI drives.
type Deps struct {
	Sessions *session.Manager
	Shell    *nav.Shell
	Catalog  *catalog.Browser
	Cart     *cart.View
	Editor   *admin.Editor
	Checkout *checkout.Flow
	Carousel *carousel.Carousel
	// Prompter and Notices must be the Confirmer and Notifier the editor
	// was created with.
	Prompter *Prompter
	Notices  *Notices
	// CarouselInterval defaults to carousel.DefaultInterval.
	CarouselInterval time.Duration
}

// Model is the bubbletea model of the storefront.
type Model struct {
	svc      *services
	keys     KeyMap
	theme    Theme
	styles   styles
	carousel *carousel.Carousel
	interval time.Duration

	width  int
	height int

	screen     Screen
	session    session.Session
	header     headerSnapshot
	ready      bool
	menuCursor int

	// Home.
	tiles             []catalog.Tile
	homeCursor        int
	catalogBusy       bool
	carouselGen       int
	carouselScheduled bool

	// Cart.
	cart         cartSnapshot
	cartCursor   int
	cartBusy     bool
	checkoutOpen bool

	// Admin.
	products    []product.Product
	adminCursor int
	adminBusy   bool
	editForm    *editForm
	confirm     *confirmRequest
	notice      *Notice

	// Login.
	login     loginForm
	loginBusy bool

	status    string
	statusErr bool
}

// NewModel creates the model. ctx carries the logger used by commands.
func NewModel(ctx context.Context, deps Deps) Model {
	interval := deps.CarouselInterval
	if interval <= 0 {
		interval = carousel.DefaultInterval
	}
	theme := DefaultTheme
	return Model{
		svc: &services{
			ctx:      ctx,
			sessions: deps.Sessions,
			browser:  deps.Catalog,
			cart:     deps.Cart,
			editor:   deps.Editor,
			checkout: deps.Checkout,
			prompter: deps.Prompter,
			notices:  deps.Notices,
			shell:    deps.Shell,
		},
		keys:        DefaultKeyMap,
		theme:       theme,
		styles:      newStyles(theme),
		carousel:    deps.Carousel,
		interval:    interval,
		width:       80,
		height:      24,
		screen:      ScreenHome,
		catalogBusy: true,
		login:       newLoginForm(),
	}
}

// Init starts the session restore and the start-up loads.
func (model Model) Init() tea.Cmd {
	return tea.Batch(
		model.svc.startup(),
		model.svc.prompter.wait(),
	)
}

// Screen returns the active screen.
func (model Model) Screen() Screen {
	return model.screen
}

// Session returns the last known session.
func (model Model) Session() session.Session {
	return model.session
}

// screens lists the screens reachable for the current session, in tab
// order.
func (model Model) screens() []Screen {
	switch {
	case !model.session.SignedIn():
		return []Screen{ScreenHome, ScreenLogin}
	case model.session.IsAdmin():
		return []Screen{ScreenAdmin, ScreenHome}
	default:
		return []Screen{ScreenHome, ScreenCart}
	}
}

func (model Model) reachable(s Screen) bool {
	for _, candidate := range model.screens() {
		if candidate == s {
			return true
		}
	}
	return false
}

// switchTo mounts s. Every mount reloads the screen's data and closes the
// menu; leaving the home screen stops the carousel.
func (model Model) switchTo(s Screen) (Model, tea.Cmd) {
	if !model.reachable(s) {
		return model, nil
	}
	model.svc.shell.CloseMenu()
	model.menuCursor = 0
	if model.screen == ScreenHome && s != ScreenHome {
		model.carouselGen++
		model.carouselScheduled = false
	}
	model.screen = s

	switch s {
	case ScreenHome:
		var cmds []tea.Cmd
		if !model.catalogBusy {
			model.catalogBusy = true
			cmds = append(cmds, model.svc.loadCatalog())
		}
		cmds = append(cmds, model.startCarousel())
		return model, tea.Batch(cmds...)
	case ScreenCart:
		if model.cartBusy {
			return model, nil
		}
		model.cartBusy = true
		return model, model.svc.loadCart()
	case ScreenAdmin:
		if model.adminBusy {
			return model, nil
		}
		model.adminBusy = true
		return model, model.svc.loadAdmin()
	case ScreenLogin:
		model.login = newLoginForm()
	}
	return model, nil
}

func (model Model) nextScreen() (Model, tea.Cmd) {
	screens := model.screens()
	for i, s := range screens {
		if s == model.screen {
			return model.switchTo(screens[(i+1)%len(screens)])
		}
	}
	return model.switchTo(screens[0])
}

// homeScreen is the landing screen for the session's role.
func (model Model) homeScreen() Screen {
	if model.session.IsAdmin() {
		return ScreenAdmin
	}
	return ScreenHome
}

// startCarousel schedules the next banner tick for the current generation.
func (model *Model) startCarousel() tea.Cmd {
	if model.carouselScheduled || model.carousel == nil || model.carousel.Len() < 2 {
		return nil
	}
	model.carouselGen++
	model.carouselScheduled = true
	return model.tick()
}

func (model Model) tick() tea.Cmd {
	generation := model.carouselGen
	return tea.Tick(model.interval, func(time.Time) tea.Msg {
		return tickMsg{generation: generation}
	})
}

func (model *Model) setStatus(text string, isErr bool) {
	model.status = text
	model.statusErr = isErr
}

func (model *Model) setError(prefix string, err error) {
	model.setStatus(prefix+": "+err.Error(), true)
}

// mobile reports whether the terminal is too narrow for inline links.
func (model Model) mobile() bool {
	return model.width < mobileWidth
}

// syncScroll reports the active list position to the shell, which switches
// the header to compact mode past its threshold.
func (model Model) syncScroll() {
	var cursor int
	switch model.screen {
	case ScreenHome:
		cursor = model.homeCursor
	case ScreenCart:
		cursor = model.cartCursor
	case ScreenAdmin:
		cursor = model.adminCursor
	}
	model.svc.shell.SetScroll(cursor * rowHeight)
}

// Update handles messages.
func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := model.update(msg)
	m := next.(Model)
	m.syncScroll()
	return m, cmd
}

func (model Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		model.width = msg.Width
		model.height = msg.Height
		if !model.mobile() {
			model.svc.shell.CloseMenu()
		}
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(msg)

	case startupMsg:
		model.ready = true
		model.catalogBusy = false
		model.session = msg.session
		model.header = msg.header
		model.tiles = msg.tiles
		model.clampCursors()
		switch {
		case msg.restoreErr != nil:
			model.setError("Session restore failed", msg.restoreErr)
		case msg.catalogErr != nil:
			model.setError("Load failed", msg.catalogErr)
		case msg.headerErr != nil:
			model.setError("Cart count", msg.headerErr)
		}
		if home := model.homeScreen(); home != ScreenHome {
			return model.switchTo(home)
		}
		cmd := model.startCarousel()
		return model, cmd

	case sessionMsg:
		model.loginBusy = false
		wasSignedIn := model.session.SignedIn()
		model.session = msg.session
		if len(msg.header.links) > 0 {
			model.header = msg.header
		}
		if wasSignedIn == msg.session.SignedIn() {
			if msg.err != nil {
				if wasSignedIn {
					model.setError("Sign out failed", msg.err)
				} else {
					model.setError("Sign in failed", msg.err)
				}
			}
			return model, nil
		}
		if msg.session.SignedIn() {
			model.setStatus("Signed in as "+msg.session.User.Name, false)
		} else {
			model.cart = cartSnapshot{}
			model.products = nil
			model.setStatus("Signed out", false)
		}
		if msg.err != nil {
			model.setError("Cart count", msg.err)
		}
		return model.switchTo(model.homeScreen())

	case headerMsg:
		if len(msg.header.links) > 0 {
			model.header = msg.header
		}
		if msg.err != nil {
			model.setError("Cart count", msg.err)
		}
		return model, nil

	case catalogMsg:
		model.catalogBusy = false
		model.tiles = msg.tiles
		model.clampCursors()
		if msg.err != nil {
			model.setError("Load products", msg.err)
		}
		return model, nil

	case cartMsg:
		model.cartBusy = false
		model.cart = msg.snapshot
		model.clampCursors()
		if msg.err != nil {
			model.setStatus(cartErrorText(msg.err), true)
		}
		if msg.counted {
			return model, model.svc.loadHeader()
		}
		return model, nil

	case adminMsg:
		model.adminBusy = false
		model.products = msg.snapshot.products
		model.clampCursors()
		if !msg.snapshot.open {
			model.editForm = nil
		}
		if len(msg.notices) > 0 {
			last := msg.notices[len(msg.notices)-1]
			model.notice = &last
		} else if msg.err != nil {
			model.setError("Admin", msg.err)
		}
		return model, nil

	case confirmMsg:
		req := confirmRequest(msg)
		model.confirm = &req
		return model, model.svc.prompter.wait()

	case tickMsg:
		if msg.generation != model.carouselGen || model.screen != ScreenHome {
			return model, nil
		}
		model.carousel.Advance()
		return model, model.tick()
	}
	return model, nil
}

func cartErrorText(err error) string {
	var qtyErr *cart.InvalidQuantityError
	switch {
	case errors.As(err, &qtyErr):
		return "Quantity must be at least 1"
	case errors.Is(err, cart.ErrEmptySelection):
		return "Select at least one item to check out"
	default:
		return "Cart: " + err.Error()
	}
}

func (model *Model) clampCursors() {
	model.homeCursor = clamp(model.homeCursor, len(model.tiles))
	model.cartCursor = clamp(model.cartCursor, len(model.cart.items))
	model.adminCursor = clamp(model.adminCursor, len(model.products))
}

func clamp(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return model, tea.Quit
	}
	model.status = ""

	// Modals take every key while open.
	switch {
	case model.confirm != nil:
		return model.handleConfirmKey(msg)
	case model.notice != nil:
		model.notice = nil
		return model, nil
	case model.checkoutOpen:
		return model.handleCheckoutKey(msg)
	case model.editForm != nil:
		return model.handleEditKey(msg)
	}
	if model.svc.shell.MenuOpen() {
		if next, cmd, handled := model.handleMenuKey(msg); handled {
			return next, cmd
		}
	}
	if model.screen == ScreenLogin {
		return model.handleLoginKey(msg)
	}

	switch {
	case key.Matches(msg, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(msg, model.keys.NextScreen):
		return model.nextScreen()
	case key.Matches(msg, model.keys.Home):
		return model.switchTo(ScreenHome)
	case key.Matches(msg, model.keys.Cart):
		if !model.session.SignedIn() {
			return model.switchTo(ScreenLogin)
		}
		return model.switchTo(ScreenCart)
	case key.Matches(msg, model.keys.Admin):
		return model.switchTo(ScreenAdmin)
	case key.Matches(msg, model.keys.Menu):
		if model.mobile() {
			model.svc.shell.ToggleMenu()
			model.menuCursor = 0
		}
		return model, nil
	case key.Matches(msg, model.keys.Logout):
		if !model.session.SignedIn() {
			return model, nil
		}
		return model, model.svc.logout()
	}

	switch model.screen {
	case ScreenHome:
		return model.handleHomeKey(msg)
	case ScreenCart:
		return model.handleCartKey(msg)
	case ScreenAdmin:
		return model.handleAdminKey(msg)
	}
	return model, nil
}

// handleMenuKey drives the open link menu. Keys it does not use fall
// through to the screen.
func (model Model) handleMenuKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	links := model.header.links
	model.menuCursor = clamp(model.menuCursor, len(links))
	switch {
	case key.Matches(msg, model.keys.Menu), key.Matches(msg, model.keys.Cancel):
		model.svc.shell.CloseMenu()
	case key.Matches(msg, model.keys.Up):
		model.menuCursor = clamp(model.menuCursor-1, len(links))
	case key.Matches(msg, model.keys.Down):
		model.menuCursor = clamp(model.menuCursor+1, len(links))
	case key.Matches(msg, model.keys.Confirm):
		if len(links) == 0 {
			model.svc.shell.CloseMenu()
			return model, nil, true
		}
		next, cmd := model.follow(links[model.menuCursor].path)
		return next, cmd, true
	default:
		return model, nil, false
	}
	return model, nil, true
}

// screenFor maps a navigation path onto the screen that renders it.
func screenFor(path string) (Screen, bool) {
	switch path {
	case "/":
		return ScreenHome, true
	case nav.CartPath:
		return ScreenCart, true
	case "/home":
		return ScreenAdmin, true
	case "/register":
		return ScreenLogin, true
	}
	return 0, false
}

// follow opens the screen behind a link.
func (model Model) follow(path string) (Model, tea.Cmd) {
	model.svc.shell.CloseMenu()
	s, ok := screenFor(path)
	if !ok || !model.reachable(s) {
		model.setStatus("Not available here: "+path, false)
		return model, nil
	}
	return model.switchTo(s)
}

func (model Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Up):
		model.homeCursor = clamp(model.homeCursor-1, len(model.tiles))
	case key.Matches(msg, model.keys.Down):
		model.homeCursor = clamp(model.homeCursor+1, len(model.tiles))
	case key.Matches(msg, model.keys.Confirm):
		if len(model.tiles) > 0 {
			model.setStatus("Product page: "+model.tiles[model.homeCursor].Link, false)
		}
	}
	return model, nil
}

func (model Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Cancel):
		return model.switchTo(ScreenHome)
	case key.Matches(msg, model.keys.NextField):
		model.login.cycle(msg.String() == "shift+tab")
		return model, nil
	case key.Matches(msg, model.keys.Confirm):
		if model.loginBusy {
			return model, nil
		}
		creds := model.login.credentials()
		if creds.Username == "" || creds.Password == "" {
			model.setStatus("Enter a username and password", true)
			return model, nil
		}
		model.loginBusy = true
		model.setStatus("Signing in…", false)
		return model, model.svc.login(creds)
	}
	return model, model.login.update(msg)
}
