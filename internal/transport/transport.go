package transport

import (
	"context"

	"github.com/godbus/dbus/v5"
)

// D-Bus names fixed by the Secret Service specification.
const (
	BusName     = "org.freedesktop.secrets"
	ServicePath = dbus.ObjectPath("/org/freedesktop/secrets")

	ServiceInterface    = "org.freedesktop.Secret.Service"
	CollectionInterface = "org.freedesktop.Secret.Collection"
	ItemInterface       = "org.freedesktop.Secret.Item"
	PromptInterface     = "org.freedesktop.Secret.Prompt"
	SessionInterface    = "org.freedesktop.Secret.Session"
)

// NoObject is the sentinel object path the daemon uses to mean
// "no object": no prompt required, no session object, no alias bound.
const NoObject = dbus.ObjectPath("/")

// Optional converts the wire sentinel into an explicit presence flag.
// Callers should use this at the boundary instead of comparing
// against NoObject in business logic.
func Optional(path dbus.ObjectPath) (dbus.ObjectPath, bool) {
	if path == NoObject || path == "" {
		return NoObject, false
	}
	return path, true
}

// Signal is one remote signal delivered to a subscription.
type Signal struct {
	Path dbus.ObjectPath
	Name string // fully qualified, e.g. "org.freedesktop.Secret.Prompt.Completed"
	Body []any
}

// Subscription is a scoped stream of signals. Close releases the
// underlying match rule; it is safe to call more than once.
type Subscription struct {
	C <-chan Signal

	close func()
}

// Close releases the subscription. The channel is not closed; readers
// should select on their own cancellation signal as well.
func (s *Subscription) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

// Transport issues method calls and delivers signals from the secret
// service daemon. Implementations: Bus (live D-Bus connection) and
// Fake (in-memory, for tests).
type Transport interface {
	// Call invokes method (fully qualified "Interface.Member") on the
	// object at path and stores the reply values into ret.
	Call(ctx context.Context, path dbus.ObjectPath, method string, args []any, ret ...any) error

	// GetProperty reads a property (fully qualified name) of the
	// object at path.
	GetProperty(ctx context.Context, path dbus.ObjectPath, prop string) (dbus.Variant, error)

	// SetProperty writes a property of the object at path.
	SetProperty(ctx context.Context, path dbus.ObjectPath, prop string, value any) error

	// Notify invokes method on the object at path without waiting for
	// a reply. The daemon's response, including any error it returns,
	// is discarded.
	Notify(path dbus.ObjectPath, method string, args []any) error

	// Subscribe opens a signal stream scoped to exactly one object
	// path and one signal member.
	Subscribe(path dbus.ObjectPath, iface, member string) (*Subscription, error)

	// Close tears down the connection.
	Close() error
}
