package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/admin"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// View renders the screen.
func (model Model) View() string {
	st := model.styles
	header := model.renderHeader()
	footer := model.renderFooter()

	bodyHeight := max(model.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	menuOpen := model.svc.shell.MenuOpen()

	var body string
	switch {
	case !model.ready:
		body = st.faint.Render("Loading…")
	case model.confirm != nil:
		body = model.renderConfirm()
	case model.notice != nil:
		body = model.renderNotice()
	case model.checkoutOpen:
		body = model.renderCheckout()
	case model.editForm != nil:
		body = model.renderEditForm()
	case menuOpen:
		body = model.renderMenu()
	default:
		body = model.renderScreen()
	}

	if model.confirm != nil || model.notice != nil || model.checkoutOpen || model.editForm != nil || menuOpen {
		body = lipgloss.Place(model.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	} else {
		body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (model Model) renderHeader() string {
	st := model.styles
	title := model.header.title
	if title == "" {
		title = "CS.SHOP | "
	}

	parts := []string{st.brand.Render(title)}
	if model.mobile() {
		for _, l := range model.header.links {
			if l.hasBadge {
				parts = append(parts, st.badge.Render(strconv.Itoa(l.badge)))
			}
		}
		h := model.keys.Menu.Help()
		parts = append(parts, st.help.Render("☰ "+h.Key+" "+h.Desc))
	} else {
		compact := model.svc.shell.Compact()
		for _, l := range model.header.links {
			label := l.label
			if compact {
				label = linkIcon(l.path)
			}
			if l.hasBadge {
				label += " " + st.badge.Render(strconv.Itoa(l.badge))
			}
			if model.linkActive(l.path) {
				parts = append(parts, st.selected.Render(" "+label+" "))
			} else {
				parts = append(parts, st.header.Render(" "+label+" "))
			}
		}
	}
	line := strings.Join(parts, " ")
	rule := st.faint.Render(strings.Repeat("─", max(model.width, 1)))
	return ansi.Truncate(line, model.width, "…") + "\n" + rule
}

// linkIcons replace link text in compact mode.
var linkIcons = map[string]string{
	"/":          "⌂",
	"/home":      "⌂",
	"/cart":      "◫",
	"/product01": "▤",
	"/address":   "✉",
	"/order":     "▦",
	"/register":  "→",
}

func linkIcon(path string) string {
	if icon, ok := linkIcons[path]; ok {
		return icon
	}
	return "•"
}

func (model Model) linkActive(path string) bool {
	s, ok := screenFor(path)
	return ok && model.screen == s
}

func (model Model) renderFooter() string {
	st := model.styles
	var status string
	switch {
	case model.status == "":
		status = ""
	case model.statusErr:
		status = st.failure.Render(model.status)
	default:
		status = st.success.Render(model.status)
	}
	return ansi.Truncate(status, model.width, "…") + "\n" + st.help.Render(ansi.Truncate(model.helpLine(), model.width, "…"))
}

func (model Model) helpLine() string {
	bindings := []key.Binding{model.keys.NextScreen}
	switch model.screen {
	case ScreenHome:
		bindings = append(bindings, model.keys.Down, model.keys.Up)
	case ScreenCart:
		bindings = append(bindings, model.keys.ToggleSelect, model.keys.Increase, model.keys.Decrease, model.keys.Delete, model.keys.Checkout)
	case ScreenAdmin:
		bindings = append(bindings, model.keys.View, model.keys.Edit, model.keys.Delete)
	case ScreenLogin:
		return "tab next field • enter sign in • esc back"
	}
	if model.mobile() {
		bindings = append(bindings, model.keys.Menu)
	}
	if model.session.SignedIn() {
		bindings = append(bindings, model.keys.Logout)
	}
	bindings = append(bindings, model.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func (model Model) renderScreen() string {
	switch model.screen {
	case ScreenCart:
		return model.renderCart()
	case ScreenAdmin:
		return model.renderAdmin()
	case ScreenLogin:
		return model.renderLogin()
	default:
		return model.renderHome()
	}
}

func (model Model) row(selected bool, text string) string {
	text = ansi.Truncate(text, max(model.width-2, 1), "…")
	if selected {
		return model.styles.selected.Render("▸ " + text)
	}
	return "  " + text
}

func (model Model) renderHome() string {
	st := model.styles
	var b strings.Builder

	if model.carousel != nil && model.carousel.Len() > 0 {
		dots := make([]string, model.carousel.Len())
		for i := range dots {
			dots[i] = "○"
			if i == model.carousel.Index() {
				dots[i] = "●"
			}
		}
		banner := st.modal.Render(st.title.Render(model.carousel.Current()) + "\n" + st.faint.Render(strings.Join(dots, " ")))
		b.WriteString(banner + "\n\n")
	}

	if len(model.tiles) == 0 {
		b.WriteString(st.faint.Render("No products available."))
		return b.String()
	}
	for i, t := range model.tiles {
		line := fmt.Sprintf("%-28s %s  %s", t.Name, st.price.Render(money(t.Price)), st.faint.Render(t.Link))
		b.WriteString(model.row(i == model.homeCursor, line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (model Model) renderCart() string {
	st := model.styles
	if len(model.cart.items) == 0 {
		if model.cartBusy {
			return st.faint.Render("Loading cart…")
		}
		return st.faint.Render("Your cart is empty.")
	}

	var b strings.Builder
	for i, it := range model.cart.items {
		mark := "[ ]"
		if model.cart.selected[it.ID] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %-24s x%-3d %s", mark, it.Product.Name, it.Quantity, st.price.Render(money(it.Price)))
		b.WriteString(model.row(i == model.cartCursor, line) + "\n")
	}
	b.WriteString("\n" + st.title.Render("Subtotal: ") + st.price.Render(money(model.cart.subtotal)))
	return b.String()
}

func (model Model) renderAdmin() string {
	st := model.styles
	if len(model.products) == 0 {
		if model.adminBusy {
			return st.faint.Render("Loading products…")
		}
		return st.faint.Render("No products.")
	}

	var b strings.Builder
	b.WriteString(st.faint.Render(fmt.Sprintf("  %-5s %-24s %10s %6s  %s", "ID", "Name", "Price", "Stock", "Category")) + "\n")
	for i, p := range model.products {
		line := fmt.Sprintf("%-5d %-24s %10s %6d  %s", p.ID, p.Name, money(p.Price), p.Stock, p.Category)
		b.WriteString(model.row(i == model.adminCursor, line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (model Model) renderLogin() string {
	st := model.styles
	body := st.title.Render("Sign in") + "\n\n" + model.login.render(st, true)
	if model.loginBusy {
		body += "\n\n" + st.faint.Render("Signing in…")
	}
	return st.modal.Render(body)
}

func (model Model) renderMenu() string {
	st := model.styles
	var b strings.Builder
	b.WriteString(st.title.Render("Menu") + "\n\n")
	for i, l := range model.header.links {
		label := l.label
		if l.hasBadge {
			label += " " + st.badge.Render(strconv.Itoa(l.badge))
		}
		b.WriteString(model.row(i == model.menuCursor, label) + "\n")
	}
	b.WriteString("\n" + st.help.Render("enter open • m/esc close"))
	return st.modal.Render(b.String())
}

func (model Model) renderConfirm() string {
	st := model.styles
	p := model.confirm.prompt
	return st.modal.Render(
		st.title.Render(p.Title) + "\n\n" +
			st.normal.Render(p.Text) + "\n\n" +
			st.failure.Render("enter/y "+p.Confirm) + "   " + st.help.Render("esc/n cancel"),
	)
}

func (model Model) renderNotice() string {
	st := model.styles
	title := st.failure.Render(model.notice.Title)
	if model.notice.Success {
		title = st.success.Render(model.notice.Title)
	}
	return st.modal.Render(
		title + "\n\n" +
			st.normal.Render(model.notice.Text) + "\n\n" +
			st.help.Render("press any key"),
	)
}

func (model Model) renderCheckout() string {
	st := model.styles
	h, ok := model.svc.checkout.Pending()
	if !ok {
		return st.modal.Render(st.faint.Render("Nothing to check out."))
	}
	var b strings.Builder
	b.WriteString(st.title.Render("Checkout") + "\n\n")
	for _, it := range h.Items {
		b.WriteString(fmt.Sprintf("%-24s x%-3d %s\n", it.Product.Name, it.Quantity, money(it.Price)))
	}
	b.WriteString("\n" + st.title.Render("Subtotal: ") + st.price.Render(money(h.Subtotal)) + "\n\n")
	b.WriteString(st.help.Render("enter place order • esc back to cart"))
	return st.modal.Render(b.String())
}

func (model Model) renderEditForm() string {
	st := model.styles
	f := model.editForm
	editable := f.mode == admin.ModeEdit

	heading := "Product details"
	hint := "esc close"
	if editable {
		heading = "Edit product"
		hint = "tab next field • enter save • esc cancel"
	}
	body := st.title.Render(heading) + "  " + st.faint.Render(f.title) + "\n\n" +
		f.render(st, editable) + "\n\n"
	if model.adminBusy {
		body += st.faint.Render("Saving…")
	} else {
		body += st.help.Render(hint)
	}
	return st.modal.Render(body)
}
