package app

import (
	"fmt"
	"io"
	"sync"

	"gallery-go/internal/gallery"
)

// TerminalNotifier renders notifications as single lines on a writer. It is
// the CLI's stand-in for the web UI's toasts.
type TerminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminalNotifier creates a notifier writing to w.
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

var _ gallery.Notifier = (*TerminalNotifier)(nil)

func (t *TerminalNotifier) Notify(n gallery.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prefix := "info"
	switch n.Severity {
	case gallery.SeverityWarning:
		prefix = "warn"
	case gallery.SeverityError:
		prefix = "error"
	}
	fmt.Fprintf(t.w, "[%s] %s\n", prefix, n.Message)
}
