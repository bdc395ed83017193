package testutil

import (
	"sync"

	"gallery-go/internal/gallery"
)

// RecorderNotifier captures notifications for assertions. Safe for
// concurrent use.
type RecorderNotifier struct {
	mu            sync.Mutex
	notifications []gallery.Notification
}

func NewRecorderNotifier() *RecorderNotifier {
	return &RecorderNotifier{}
}

func (n *RecorderNotifier) Notify(note gallery.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, note)
}

// Notifications returns every captured notification, in order.
func (n *RecorderNotifier) Notifications() []gallery.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]gallery.Notification(nil), n.notifications...)
}

// Messages returns the captured messages, in order.
func (n *RecorderNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := make([]string, len(n.notifications))
	for i, note := range n.notifications {
		msgs[i] = note.Message
	}
	return msgs
}

// Reset discards everything captured so far.
func (n *RecorderNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = nil
}

var _ gallery.Notifier = (*RecorderNotifier)(nil)
