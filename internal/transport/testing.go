package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Fake is an in-memory Transport for tests. Replies are scripted per
// (path, method) with Handle; signals are injected with Emit; every
// call is recorded for later inspection.
//
// Since this package is internal, Fake is only reachable from this
// module's own tests.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]func(args []any) ([]any, error)
	props    map[string]dbus.Variant
	calls    []FakeCall
	subs     []*fakeSub
	closed   bool
}

// FakeCall is one recorded method call.
type FakeCall struct {
	Path   dbus.ObjectPath
	Method string
	Args   []any
}

type fakeSub struct {
	path   dbus.ObjectPath
	name   string
	ch     chan Signal
	closed bool
}

// NewFake creates an empty fake transport.
func NewFake() *Fake {
	return &Fake{
		handlers: make(map[string]func(args []any) ([]any, error)),
		props:    make(map[string]dbus.Variant),
	}
}

func fakeKey(path dbus.ObjectPath, method string) string {
	return string(path) + "#" + method
}

// Handle scripts the reply for method calls on the object at path.
func (f *Fake) Handle(path dbus.ObjectPath, method string, fn func(args []any) ([]any, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[fakeKey(path, method)] = fn
}

// Reply scripts a fixed reply for method calls on the object at path.
func (f *Fake) Reply(path dbus.ObjectPath, method string, values ...any) {
	f.Handle(path, method, func([]any) ([]any, error) {
		return values, nil
	})
}

// SetProp scripts a property value.
func (f *Fake) SetProp(path dbus.ObjectPath, prop string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props[fakeKey(path, prop)] = dbus.MakeVariant(value)
}

// Calls returns the recorded calls for one method, in order. An empty
// method returns every recorded call.
func (f *Fake) Calls(method string) []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FakeCall
	for _, c := range f.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Emit delivers a signal to every live subscription scoped to path.
func (f *Fake) Emit(path dbus.ObjectPath, name string, body ...any) {
	f.mu.Lock()
	subs := make([]*fakeSub, 0, len(f.subs))
	for _, s := range f.subs {
		if !s.closed && s.path == path && s.name == name {
			subs = append(subs, s)
		}
	}
	f.mu.Unlock()

	for _, s := range subs {
		s.ch <- Signal{Path: path, Name: name, Body: body}
	}
}

// OpenSubscriptions reports how many subscriptions have not been
// closed. Tests use it to catch leaked subscriptions.
func (f *Fake) OpenSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subs {
		if !s.closed {
			n++
		}
	}
	return n
}

// Call implements Transport.
func (f *Fake) Call(ctx context.Context, path dbus.ObjectPath, method string, args []any, ret ...any) error {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Path: path, Method: method, Args: args})
	fn := f.handlers[fakeKey(path, method)]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("fake: no handler for %s on %s", method, path)
	}
	reply, err := fn(args)
	if err != nil {
		return err
	}
	if len(ret) == 0 {
		return nil
	}
	return dbus.Store(reply, ret...)
}

// Notify implements Transport. The call is recorded before Notify
// returns; the scripted handler runs in the background and its reply
// and error are discarded, as with a message sent with no reply
// expected.
func (f *Fake) Notify(path dbus.ObjectPath, method string, args []any) error {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Path: path, Method: method, Args: args})
	fn := f.handlers[fakeKey(path, method)]
	f.mu.Unlock()

	if fn != nil {
		go fn(args)
	}
	return nil
}

// GetProperty implements Transport. An unscripted property is
// reported as a bus error, as a live daemon would.
func (f *Fake) GetProperty(ctx context.Context, path dbus.ObjectPath, prop string) (dbus.Variant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.props[fakeKey(path, prop)]
	if !ok {
		return dbus.Variant{}, dbus.Error{
			Name: "org.freedesktop.DBus.Error.UnknownProperty",
			Body: []any{fmt.Sprintf("no property %s on %s", prop, path)},
		}
	}
	return v, nil
}

// SetProperty implements Transport.
func (f *Fake) SetProperty(ctx context.Context, path dbus.ObjectPath, prop string, value any) error {
	f.SetProp(path, prop, value)
	return nil
}

// Subscribe implements Transport.
func (f *Fake) Subscribe(path dbus.ObjectPath, iface, member string) (*Subscription, error) {
	sub := &fakeSub{
		path: path,
		name: iface + "." + member,
		ch:   make(chan Signal, 16),
	}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()

	return &Subscription{
		C: sub.ch,
		close: func() {
			f.mu.Lock()
			sub.closed = true
			f.mu.Unlock()
		},
	}, nil
}

// Close implements Transport.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
