package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the storefront TUI.
type KeyMap struct {
	// Screen switching.
	NextScreen key.Binding
	Home       key.Binding
	Cart       key.Binding // Login screen for guests.
	Admin      key.Binding
	// Menu toggles the link menu on narrow terminals.
	Menu key.Binding

	// List movement.
	Up   key.Binding
	Down key.Binding

	// Cart.
	ToggleSelect key.Binding
	Increase     key.Binding
	Decrease     key.Binding
	Checkout     key.Binding

	// Cart and admin.
	Delete key.Binding

	// Admin.
	Edit key.Binding
	View key.Binding

	// Modals and forms.
	Confirm   key.Binding
	Cancel    key.Binding
	NextField key.Binding

	Logout key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	NextScreen: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next screen"),
	),
	Home: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "home"),
	),
	Cart: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "cart"),
	),
	Admin: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "admin"),
	),
	Menu: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "menu"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	ToggleSelect: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "select"),
	),
	Increase: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "more"),
	),
	Decrease: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "less"),
	),
	Checkout: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "checkout"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	View: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "view"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "next field"),
	),
	Logout: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "logout"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
