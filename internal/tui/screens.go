package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xenking/kart-storefront/internal/domain/admin"
)

func (model Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := model.cart.items
	switch {
	case key.Matches(msg, model.keys.Up):
		model.cartCursor = clamp(model.cartCursor-1, len(items))
		return model, nil
	case key.Matches(msg, model.keys.Down):
		model.cartCursor = clamp(model.cartCursor+1, len(items))
		return model, nil
	}

	if model.cartBusy {
		return model, nil
	}

	switch {
	case key.Matches(msg, model.keys.Checkout):
		handoff, err := model.svc.cart.ProceedToCheckout()
		if err != nil {
			model.setStatus(cartErrorText(err), true)
			return model, nil
		}
		model.svc.checkout.Begin(handoff)
		model.checkoutOpen = true
		return model, nil
	}

	if len(items) == 0 {
		return model, nil
	}
	item := items[model.cartCursor]

	switch {
	case key.Matches(msg, model.keys.ToggleSelect):
		model.svc.cart.ToggleSelect(item.ID)
		model.cart = model.svc.cartSnapshot()
	case key.Matches(msg, model.keys.Increase), key.Matches(msg, model.keys.Decrease):
		quantity := item.Quantity + 1
		if key.Matches(msg, model.keys.Decrease) {
			quantity = item.Quantity - 1
		}
		model.cartBusy = true
		return model, model.svc.cartOp(false, func(ctx context.Context) error {
			_, err := model.svc.cart.SetQuantity(ctx, item.ID, quantity)
			return err
		})
	case key.Matches(msg, model.keys.Delete):
		model.cartBusy = true
		return model, model.svc.cartOp(true, func(ctx context.Context) error {
			return model.svc.cart.Remove(ctx, item.ID)
		})
	}
	return model, nil
}

// handleCheckoutKey finalizes or cancels the pending hand-off. Finalizing
// reloads the cart, which starts from a clean view.
func (model Model) handleCheckoutKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Confirm):
		model.checkoutOpen = false
		model.svc.checkout.Finalize()
		model.setStatus("Order placed", false)
		model.cartBusy = true
		return model, model.svc.loadCart()
	case key.Matches(msg, model.keys.Cancel):
		model.checkoutOpen = false
		model.svc.checkout.Cancel()
	}
	return model, nil
}

func (model Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Up):
		model.adminCursor = clamp(model.adminCursor-1, len(model.products))
		return model, nil
	case key.Matches(msg, model.keys.Down):
		model.adminCursor = clamp(model.adminCursor+1, len(model.products))
		return model, nil
	}

	if model.adminBusy || len(model.products) == 0 {
		return model, nil
	}
	p := model.products[model.adminCursor]

	switch {
	case key.Matches(msg, model.keys.Delete):
		model.adminBusy = true
		return model, model.svc.adminOp(func(ctx context.Context) error {
			_, err := model.svc.editor.Delete(ctx, p.ID)
			return err
		})
	case key.Matches(msg, model.keys.Edit), key.Matches(msg, model.keys.View):
		mode := admin.ModeView
		if key.Matches(msg, model.keys.Edit) {
			mode = admin.ModeEdit
		}
		model.svc.editor.OpenEditor(p, mode)
		m, _ := model.svc.editor.Modal()
		model.editForm = newEditForm(m)
	}
	return model, nil
}

func (model Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.adminBusy {
		return model, nil
	}
	switch {
	case key.Matches(msg, model.keys.Cancel):
		model.svc.editor.CloseEditor()
		model.editForm = nil
		return model, nil
	case model.editForm.mode != admin.ModeEdit:
		if key.Matches(msg, model.keys.Confirm) {
			model.svc.editor.CloseEditor()
			model.editForm = nil
		}
		return model, nil
	case key.Matches(msg, model.keys.NextField):
		model.editForm.cycle(msg.String() == "shift+tab")
		return model, nil
	case key.Matches(msg, model.keys.Confirm):
		model.adminBusy = true
		return model, model.svc.applyEdit(model.editForm.values())
	}
	return model, model.editForm.update(msg)
}

func (model Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch {
	case key.Matches(msg, model.keys.Confirm), msg.String() == "y":
		answer = true
	case key.Matches(msg, model.keys.Cancel), msg.String() == "n":
		answer = false
	default:
		return model, nil
	}
	model.confirm.reply <- answer
	model.confirm = nil
	return model, nil
}
