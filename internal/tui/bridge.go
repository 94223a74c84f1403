package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xenking/kart-storefront/internal/domain/admin"
)

var (
	_ admin.Confirmer = (*Prompter)(nil)
	_ admin.Notifier  = (*Notices)(nil)
)

// confirmRequest is a pending confirmation. The answer is sent on reply
// exactly once.
type confirmRequest struct {
	prompt admin.Prompt
	reply  chan bool
}

// Prompter asks for confirmation through the TUI. Confirm is called from a
// command goroutine and blocks until the user answers in the confirm modal.
type Prompter struct {
	requests chan confirmRequest
}

// NewPrompter creates a Prompter.
func NewPrompter() *Prompter {
	return &Prompter{requests: make(chan confirmRequest)}
}

// Confirm shows p and waits for the answer or ctx cancellation.
func (p *Prompter) Confirm(ctx context.Context, prompt admin.Prompt) (bool, error) {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case p.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// wait delivers the next confirmation request to the model.
func (p *Prompter) wait() tea.Cmd {
	return func() tea.Msg {
		return confirmMsg(<-p.requests)
	}
}

// Notice is an outcome message shown in the notice dialog.
type Notice struct {
	Success bool
	Title   string
	Text    string
}

// Notices queues editor outcomes until the model drains them.
type Notices struct {
	mu      sync.Mutex
	pending []Notice
}

// NewNotices creates an empty queue.
func NewNotices() *Notices {
	return &Notices{}
}

// Success queues a success notice.
func (n *Notices) Success(title, text string) {
	n.push(Notice{Success: true, Title: title, Text: text})
}

// Error queues an error notice.
func (n *Notices) Error(title, text string) {
	n.push(Notice{Title: title, Text: text})
}

func (n *Notices) push(note Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, note)
}

// Drain returns and clears the queued notices.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}
