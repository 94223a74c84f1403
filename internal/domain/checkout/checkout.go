// Package checkout holds the hand-off between the cart and the checkout
// route.
package checkout

import (
	"sync"
	"sync/atomic"

	"github.com/xenking/kart-storefront/internal/domain/cart"
)

var _ cart.Finalizer = (*Signal)(nil)

// Signal is a one-shot "cart was just finalized" event. Notify arms it;
// Consume disarms it and reports whether it was armed.
type Signal struct {
	armed atomic.Bool
}

// Notify arms the signal. Repeated calls before Consume collapse into one.
func (s *Signal) Notify() {
	s.armed.Store(true)
}

// Consume reports whether the signal was armed and clears it.
func (s *Signal) Consume() bool {
	return s.armed.Swap(false)
}

// Flow carries a cart hand-off from the cart view to the checkout route.
// Nothing is persisted: the pending hand-off is lost when the process exits.
type Flow struct {
	signal *Signal

	mu      sync.Mutex
	pending *cart.Handoff
}

// NewFlow creates a Flow that arms signal when a checkout finalizes.
func NewFlow(signal *Signal) *Flow {
	return &Flow{signal: signal}
}

// Begin stores h as the pending hand-off, replacing any previous one.
func (f *Flow) Begin(h cart.Handoff) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = &h
}

// Pending returns the current hand-off, if any.
func (f *Flow) Pending() (cart.Handoff, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return cart.Handoff{}, false
	}
	return *f.pending, true
}

// Finalize drops the pending hand-off and arms the signal so the next cart
// load starts from a clean view.
func (f *Flow) Finalize() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return false
	}
	f.pending = nil
	f.signal.Notify()
	return true
}

// Cancel drops the pending hand-off without finalizing.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = nil
}
