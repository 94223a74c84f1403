package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xenking/kart-storefront/internal/domain/admin"
	"github.com/xenking/kart-storefront/internal/domain/session"
)

// form is a vertical stack of labelled text inputs with one focused.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(labels ...string) form {
	inputs := make([]textinput.Model, len(labels))
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 32
		inputs[i] = in
	}
	f := form{labels: labels, inputs: inputs}
	f.inputs[0].Focus()
	return f
}

func (f *form) set(i int, v string) {
	f.inputs[i].SetValue(v)
}

func (f form) value(i int) string {
	return f.inputs[i].Value()
}

// cycle moves focus forward, or backward for shift+tab.
func (f *form) cycle(backward bool) {
	f.inputs[f.focus].Blur()
	if backward {
		f.focus = (f.focus + len(f.inputs) - 1) % len(f.inputs)
	} else {
		f.focus = (f.focus + 1) % len(f.inputs)
	}
	f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f form) render(st styles, editable bool) string {
	width := 0
	for _, l := range f.labels {
		width = max(width, lipgloss.Width(l))
	}
	var b strings.Builder
	for i, l := range f.labels {
		label := st.faint.Render(l + strings.Repeat(" ", width-lipgloss.Width(l)) + "  ")
		if editable {
			b.WriteString(label + f.inputs[i].View())
		} else {
			b.WriteString(label + st.normal.Render(f.inputs[i].Value()))
		}
		if i < len(f.labels)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

const (
	fieldName = iota
	fieldPrice
	fieldStock
	fieldDescription
)

type formValues struct {
	name        string
	price       string
	stock       string
	description string
}

// editForm is the admin view/edit modal.
type editForm struct {
	form
	mode  admin.Mode
	title string
}

func newEditForm(m admin.Modal) *editForm {
	f := &editForm{
		form:  newForm("Name", "Price", "Stock", "Description"),
		mode:  m.Mode,
		title: m.Original.Name,
	}
	d := m.Draft
	f.set(fieldName, d.Name)
	if d.Price != nil {
		f.set(fieldPrice, d.Price.String())
	}
	if d.Stock != nil {
		f.set(fieldStock, strconv.Itoa(*d.Stock))
	}
	f.set(fieldDescription, d.Description)
	if m.Mode != admin.ModeEdit {
		f.inputs[f.focus].Blur()
	}
	return f
}

func (f *editForm) values() formValues {
	return formValues{
		name:        f.value(fieldName),
		price:       f.value(fieldPrice),
		stock:       f.value(fieldStock),
		description: f.value(fieldDescription),
	}
}

// loginForm is the guest sign-in screen.
type loginForm struct {
	form
}

func newLoginForm() loginForm {
	f := loginForm{form: newForm("Username", "Password")}
	f.inputs[1].EchoMode = textinput.EchoPassword
	f.inputs[1].EchoCharacter = '•'
	return f
}

func (f loginForm) credentials() session.Credentials {
	return session.Credentials{
		Username: strings.TrimSpace(f.value(0)),
		Password: f.value(1),
	}
}
