package gallery

// Severity of a user-facing notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Notification is a transient, user-facing message (a toast). Failures that
// leave an entity in an errored status additionally persist an error message
// on the entry itself; notifications are fire-and-forget.
type Notification struct {
	ID       string
	Severity Severity
	Message  string
}

// Notifier delivers notifications to the user. Implementations must be safe
// for concurrent use: machines notify from background goroutines.
type Notifier interface {
	Notify(n Notification)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
