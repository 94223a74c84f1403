package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors of the storefront TUI.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Cursor row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BrandForeground  lipgloss.Color
	BadgeBackground  lipgloss.Color
	BadgeForeground  lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Outcomes.
	SuccessText lipgloss.Color
	ErrorText   lipgloss.Color
	PriceText   lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal theme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("39"),
	BrandForeground:  lipgloss.Color("213"),
	BadgeBackground:  lipgloss.Color("196"),
	BadgeForeground:  lipgloss.Color("231"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	SuccessText: lipgloss.Color("78"),
	ErrorText:   lipgloss.Color("203"),
	PriceText:   lipgloss.Color("220"),
}

// styles are the lipgloss styles derived from a theme.
type styles struct {
	normal   lipgloss.Style
	faint    lipgloss.Style
	selected lipgloss.Style
	header   lipgloss.Style
	brand    lipgloss.Style
	badge    lipgloss.Style
	help     lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	price    lipgloss.Style
	modal    lipgloss.Style
	title    lipgloss.Style
}

func newStyles(theme Theme) styles {
	return styles{
		normal: lipgloss.NewStyle().Foreground(theme.NormalText),
		faint:  lipgloss.NewStyle().Foreground(theme.FaintText),
		selected: lipgloss.NewStyle().
			Background(theme.SelectedBackground).
			Foreground(theme.SelectedForeground),
		header: lipgloss.NewStyle().Foreground(theme.HeaderForeground),
		brand:  lipgloss.NewStyle().Foreground(theme.BrandForeground).Bold(true),
		badge: lipgloss.NewStyle().
			Background(theme.BadgeBackground).
			Foreground(theme.BadgeForeground).
			Padding(0, 1),
		help:    lipgloss.NewStyle().Foreground(theme.HelpText),
		success: lipgloss.NewStyle().Foreground(theme.SuccessText).Bold(true),
		failure: lipgloss.NewStyle().Foreground(theme.ErrorText).Bold(true),
		price:   lipgloss.NewStyle().Foreground(theme.PriceText),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.BorderColor).
			Padding(1, 2),
		title: lipgloss.NewStyle().Foreground(theme.NormalText).Bold(true),
	}
}
