// Package notify wraps desktop notifications and sound alerts.
package notify

import "github.com/gen2brain/beeep"

// Notifier delivers notifications to the desktop.
type Notifier interface {
	// Notify sends a silent desktop notification.
	Notify(title, body string) error
	// Alert sends a desktop notification with the system alert sound.
	Alert(title, body string) error
}

// desktopNotifier implements Notifier by calling beeep directly.
type desktopNotifier struct{}

func (desktopNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

func (desktopNotifier) Alert(title, body string) error {
	return beeep.Alert(title, body, "")
}

// NewDesktop returns a Notifier backed by the platform notification service.
func NewDesktop() Notifier {
	return desktopNotifier{}
}

// Noop returns a Notifier that discards everything.
func Noop() Notifier {
	return noopNotifier{}
}

type noopNotifier struct{}

func (noopNotifier) Notify(title, body string) error { return nil }
func (noopNotifier) Alert(title, body string) error  { return nil }
