package secretservice

import (
	"time"

	"github.com/dbus-secretservice/client-go/internal/transport"
)

// config holds configuration for the service connection.
type config struct {
	transport     transport.Transport
	promptTimeout time.Duration
	windowID      string
	noPrompts     bool
}

// Option configures the service connection.
type Option func(*config)

// WithPromptTimeout bounds how long operations wait for the user to
// answer a prompt. When the timeout elapses the prompt is dismissed
// and the operation fails with ErrPromptTimeout.
//
// The default is no timeout: a prompt blocks until the user responds,
// since a human may take arbitrary time.
func WithPromptTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.promptTimeout = timeout
	}
}

// WithWindowID attaches a window identifier to prompts so the daemon
// can parent its dialog to the calling application's window.
func WithWindowID(id string) Option {
	return func(c *config) {
		c.windowID = id
	}
}

// WithoutPrompting dismisses any prompt instead of showing it.
// Operations that would require user confirmation fail immediately
// with ErrPromptDismissed.
func WithoutPrompting() Option {
	return func(c *config) {
		c.noPrompts = true
	}
}

// withTransport runs the client over a caller-supplied transport
// instead of opening a session-bus connection. Test seam: the fake
// transport stands in for the session bus. The service takes
// ownership either way; Close closes the transport.
func withTransport(t transport.Transport) Option {
	return func(c *config) {
		c.transport = t
	}
}
