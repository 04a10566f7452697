package transport

import (
	"context"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestOptional(t *testing.T) {
	tests := []struct {
		name    string
		path    dbus.ObjectPath
		present bool
	}{
		{"sentinel root", NoObject, false},
		{"empty", dbus.ObjectPath(""), false},
		{"real path", dbus.ObjectPath("/org/freedesktop/secrets/collection/login"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := Optional(tt.path)
			if ok != tt.present {
				t.Errorf("Optional(%q) present = %v, want %v", tt.path, ok, tt.present)
			}
			if ok && path != tt.path {
				t.Errorf("Optional(%q) path = %q", tt.path, path)
			}
		})
	}
}

func TestNameSplitting(t *testing.T) {
	prop := ItemInterface + ".Label"
	if got := interfaceOf(prop); got != ItemInterface {
		t.Errorf("interfaceOf(%q) = %q, want %q", prop, got, ItemInterface)
	}
	if got := memberOf(prop); got != "Label" {
		t.Errorf("memberOf(%q) = %q, want %q", prop, got, "Label")
	}
}

func TestSignalMatches(t *testing.T) {
	path := dbus.ObjectPath("/org/freedesktop/secrets/prompt/p1")
	name := PromptInterface + ".Completed"

	tests := []struct {
		name string
		sig  *dbus.Signal
		want bool
	}{
		{"nil signal", nil, false},
		{"exact match", &dbus.Signal{Path: path, Name: name}, true},
		{"other path", &dbus.Signal{Path: "/other", Name: name}, false},
		{"other member", &dbus.Signal{Path: path, Name: PromptInterface + ".SomethingElse"}, false},
		{"other interface", &dbus.Signal{Path: path, Name: SessionInterface + ".Completed"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := signalMatches(tt.sig, path, name); got != tt.want {
				t.Errorf("signalMatches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFake_NotifyDoesNotAwaitHandler(t *testing.T) {
	f := NewFake()
	release := make(chan struct{})
	f.Handle(ServicePath, ServiceInterface+".Lock", func([]any) ([]any, error) {
		<-release
		return nil, nil
	})
	defer close(release)

	if err := f.Notify(ServicePath, ServiceInterface+".Lock", []any{"target"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	// The call is recorded even though the handler has not replied.
	calls := f.Calls(ServiceInterface + ".Lock")
	if len(calls) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(calls))
	}
	if calls[0].Args[0] != "target" {
		t.Errorf("recorded args = %v", calls[0].Args)
	}
}

func TestFake_SubscribeAndEmit(t *testing.T) {
	f := NewFake()
	path := dbus.ObjectPath("/org/freedesktop/secrets/prompt/p9")

	sub, err := f.Subscribe(path, PromptInterface, "Completed")
	if err != nil {
		t.Fatal(err)
	}

	f.Emit(dbus.ObjectPath("/other"), PromptInterface+".Completed", true)
	f.Emit(path, PromptInterface+".Completed", false, dbus.MakeVariant(""))

	select {
	case sig := <-sub.C:
		if sig.Path != path {
			t.Errorf("signal path = %q, want %q", sig.Path, path)
		}
		if dismissed, _ := sig.Body[0].(bool); dismissed {
			t.Error("received the signal for the wrong prompt")
		}
	default:
		t.Fatal("no signal delivered")
	}

	sub.Close()
	sub.Close() // idempotent
	if n := f.OpenSubscriptions(); n != 0 {
		t.Errorf("%d subscriptions still open after Close", n)
	}
}

func TestFake_RecordsCalls(t *testing.T) {
	f := NewFake()
	f.Reply(ServicePath, ServiceInterface+".ReadAlias", dbus.ObjectPath("/org/freedesktop/secrets/collection/login"))

	var path dbus.ObjectPath
	if err := f.Call(context.Background(), ServicePath, ServiceInterface+".ReadAlias", []any{"default"}, &path); err != nil {
		t.Fatal(err)
	}
	if path != "/org/freedesktop/secrets/collection/login" {
		t.Errorf("stored path = %q", path)
	}

	calls := f.Calls(ServiceInterface + ".ReadAlias")
	if len(calls) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(calls))
	}
	if calls[0].Args[0] != "default" {
		t.Errorf("recorded args = %v", calls[0].Args)
	}
}
