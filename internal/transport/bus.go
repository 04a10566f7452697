package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Bus is the live Transport over a private session-bus connection.
//
// The connection is private so that signal delivery is scoped to this
// client: prompt completion signals from a shared connection would be
// fanned out to every consumer in the process.
type Bus struct {
	conn *dbus.Conn

	mu     sync.Mutex
	closed bool
}

// Connect opens a private connection to the session bus.
func Connect(ctx context.Context) (*Bus, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &Bus{conn: conn}, nil
}

// NewBus wraps an existing connection. The caller keeps ownership of
// the connection's lifetime only until Close is called on the Bus.
func NewBus(conn *dbus.Conn) *Bus {
	return &Bus{conn: conn}
}

// Call implements Transport.
func (b *Bus) Call(ctx context.Context, path dbus.ObjectPath, method string, args []any, ret ...any) error {
	obj := b.conn.Object(BusName, path)
	call := obj.CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		return call.Err
	}
	if len(ret) == 0 {
		return nil
	}
	return call.Store(ret...)
}

// GetProperty implements Transport.
func (b *Bus) GetProperty(ctx context.Context, path dbus.ObjectPath, prop string) (dbus.Variant, error) {
	var v dbus.Variant
	err := b.Call(ctx, path, "org.freedesktop.DBus.Properties.Get", []any{interfaceOf(prop), memberOf(prop)}, &v)
	return v, err
}

// SetProperty implements Transport.
func (b *Bus) SetProperty(ctx context.Context, path dbus.ObjectPath, prop string, value any) error {
	return b.Call(ctx, path, "org.freedesktop.DBus.Properties.Set",
		[]any{interfaceOf(prop), memberOf(prop), dbus.MakeVariant(value)})
}

// Notify implements Transport. The message is flagged so the daemon
// does not send a reply; only a failure to place the message on the
// wire is reported.
func (b *Bus) Notify(path dbus.ObjectPath, method string, args []any) error {
	obj := b.conn.Object(BusName, path)
	call := obj.Go(method, dbus.FlagNoReplyExpected, nil, args...)
	return call.Err
}

// Subscribe implements Transport. The returned subscription owns a
// match rule on the bus; Close removes it.
func (b *Bus) Subscribe(path dbus.ObjectPath, iface, member string) (*Subscription, error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(iface),
		dbus.WithMatchMember(member),
	}
	if err := b.conn.AddMatchSignal(opts...); err != nil {
		return nil, fmt.Errorf("add match: %w", err)
	}

	raw := make(chan *dbus.Signal, 16)
	b.conn.Signal(raw)

	// The raw channel carries every signal the connection matches, so
	// with several live match rules it sees more than this
	// subscription's own signals.
	name := iface + "." + member
	out := make(chan Signal, 16)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig, ok := <-raw:
				if !ok {
					return
				}
				if !signalMatches(sig, path, name) {
					continue
				}
				select {
				case out <- Signal{Path: sig.Path, Name: sig.Name, Body: sig.Body}:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	return &Subscription{
		C: out,
		close: func() {
			once.Do(func() {
				close(done)
				b.conn.RemoveSignal(raw)
				_ = b.conn.RemoveMatchSignal(opts...)
			})
		},
	}, nil
}

// Close implements Transport. Idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.conn.Close()
}

// signalMatches reports whether a raw bus signal belongs to the
// subscription scoped to path and the fully qualified signal name.
func signalMatches(sig *dbus.Signal, path dbus.ObjectPath, name string) bool {
	return sig != nil && sig.Path == path && sig.Name == name
}

// interfaceOf splits the interface part off a fully qualified
// property or method name.
func interfaceOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

// memberOf returns the final component of a fully qualified name.
func memberOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}
