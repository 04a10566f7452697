// Package prompt resolves the asynchronous user-confirmation step
// that privileged Secret Service operations may return. The daemon
// hands back a prompt object reference; the caller must ask the
// daemon to display it and then wait for its Completed signal.
package prompt

import (
	"context"
	"errors"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/dbus-secretservice/client-go/internal/transport"
)

var (
	// ErrDismissed is returned when the user dismisses the prompt.
	ErrDismissed = errors.New("prompt dismissed")

	// ErrTimedOut is returned when no completion arrives within the
	// caller's timeout.
	ErrTimedOut = errors.New("prompt timed out")
)

// Resolve drives one prompt to completion and returns its result
// value.
//
// A sentinel path means the triggering operation already completed:
// Resolve returns immediately without touching the bus. Otherwise it
// subscribes to the Completed signal scoped to exactly this prompt
// object before asking the daemon to display it, so a fast completion
// cannot race past the wait. Completion signals for any other prompt
// object are ignored.
//
// timeout <= 0 blocks indefinitely, matching the expectation that a
// human may take arbitrary time to respond; ctx still cancels the
// wait. On timeout or cancellation a single best-effort Dismiss is
// sent without waiting for its reply, so Resolve returns as soon as
// the wait terminates. The signal subscription is released on every
// exit path.
func Resolve(ctx context.Context, t transport.Transport, path dbus.ObjectPath, windowID string, timeout time.Duration) (dbus.Variant, error) {
	if _, ok := transport.Optional(path); !ok {
		return dbus.Variant{}, nil
	}

	sub, err := t.Subscribe(path, transport.PromptInterface, "Completed")
	if err != nil {
		return dbus.Variant{}, err
	}
	defer sub.Close()

	if err := t.Call(ctx, path, transport.PromptInterface+".Prompt", []any{windowID}); err != nil {
		return dbus.Variant{}, err
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			dismiss(t, path)
			return dbus.Variant{}, ctx.Err()
		case <-expired:
			dismiss(t, path)
			return dbus.Variant{}, ErrTimedOut
		case sig := <-sub.C:
			if sig.Path != path {
				continue
			}
			var (
				dismissed bool
				result    dbus.Variant
			)
			if err := dbus.Store(sig.Body, &dismissed, &result); err != nil {
				return dbus.Variant{}, err
			}
			if dismissed {
				return dbus.Variant{}, ErrDismissed
			}
			return result, nil
		}
	}
}

// Dismiss asks the daemon to take down a prompt without completing
// it. Used by callers that have prompting disabled outright.
func Dismiss(ctx context.Context, t transport.Transport, path dbus.ObjectPath) error {
	return t.Call(ctx, path, transport.PromptInterface+".Dismiss", nil)
}

// dismiss is the fire-and-forget variant used on timeout and
// cancellation. The request is sent without waiting for the daemon's
// reply, so terminating the wait never blocks on a slow daemon, and
// its own failure does not change the outcome of the wait.
func dismiss(t transport.Transport, path dbus.ObjectPath) {
	_ = t.Notify(path, transport.PromptInterface+".Dismiss", nil)
}
