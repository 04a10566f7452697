package secretservice

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/dbus-secretservice/client-go/internal/prompt"
	"github.com/dbus-secretservice/client-go/internal/session"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrServiceClosed is returned when operations are attempted on a
	// closed service.
	ErrServiceClosed = errors.New("service has been closed")

	// ErrNoResult is returned when an alias or search lookup matches
	// nothing. It is an expected outcome, not a failure.
	ErrNoResult = errors.New("no matching object found")

	// ErrPromptDismissed is returned when the user dismisses a prompt
	// instead of confirming it. Callers can branch on it to tell
	// "cancelled" from "failed".
	ErrPromptDismissed = errors.New("prompt dismissed by user")

	// ErrPromptTimeout is returned when a prompt exceeds the
	// configured timeout. Callers can re-prompt or abandon.
	ErrPromptTimeout = errors.New("prompt timed out")
)

// ServiceError is implemented by all typed SDK errors.
type ServiceError interface {
	error
	ServiceError() // marker method
}

// TransportError represents a D-Bus level failure: the call could not
// be delivered or the daemon returned a bus error. Transport failures
// are fatal and never retried by the client.
type TransportError struct {
	Op   string // operation being performed, e.g. "Unlock"
	Name string // D-Bus error name, if the daemon returned one
	Err  error
}

func (e *TransportError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("transport error in %s: %s: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("transport error in %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError implements the ServiceError interface.
func (e *TransportError) ServiceError() {}

// NegotiationError represents a failed encryption session setup: the
// daemon rejected the algorithm or returned a malformed key exchange
// value. It is fatal at connect time.
type NegotiationError struct {
	Algorithm string
	Err       error
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("session negotiation failed for %q: %v", e.Algorithm, e.Err)
}

// Unwrap returns the underlying error.
func (e *NegotiationError) Unwrap() error {
	return e.Err
}

// ServiceError implements the ServiceError interface.
func (e *NegotiationError) ServiceError() {}

// CryptoError represents a failed secret encryption or decryption:
// wrong ciphertext length, bad IV, or invalid padding. Retrying
// cannot fix mismatched ciphertext, so nothing is retried, and the
// data is never silently truncated.
type CryptoError struct {
	Op  string // "encrypt" or "decrypt"
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *CryptoError) Unwrap() error {
	return e.Err
}

// ServiceError implements the ServiceError interface.
func (e *CryptoError) ServiceError() {}

// wrapError converts internal-package and raw D-Bus errors to the
// public error surface, so that errors.Is() and errors.As() work with
// the exported sentinels and types.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, prompt.ErrDismissed):
		return ErrPromptDismissed
	case errors.Is(err, prompt.ErrTimedOut):
		return ErrPromptTimeout
	}

	if isCryptoErr(err) {
		return &CryptoError{Op: op, Err: err}
	}

	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return &TransportError{Op: op, Name: dbusErr.Name, Err: err}
	}

	return err
}

// wrapNegotiationError classifies connect-time failures: malformed or
// rejected exchanges become NegotiationError, everything else is a
// transport failure.
func wrapNegotiationError(algorithm string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, session.ErrUnsupportedAlgorithm) || errors.Is(err, session.ErrMalformedExchange) {
		return &NegotiationError{Algorithm: algorithm, Err: err}
	}
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		// The daemon reports unsupported algorithms as a bus error on
		// OpenSession.
		if dbusErr.Name == "org.freedesktop.DBus.Error.NotSupported" {
			return &NegotiationError{Algorithm: algorithm, Err: err}
		}
		return &TransportError{Op: "OpenSession", Name: dbusErr.Name, Err: err}
	}
	return err
}

func isCryptoErr(err error) bool {
	return errors.Is(err, session.ErrInvalidCiphertext) ||
		errors.Is(err, session.ErrInvalidIV) ||
		errors.Is(err, session.ErrInvalidPadding)
}
