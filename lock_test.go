package secretservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/dbus-secretservice/client-go/internal/transport"
)

var (
	itemA = dbus.ObjectPath("/org/freedesktop/secrets/collection/login/a")
	itemB = dbus.ObjectPath("/org/freedesktop/secrets/collection/login/b")

	unlockMethod = transport.ServiceInterface + ".Unlock"
	lockMethod   = transport.ServiceInterface + ".Lock"
)

func TestUnlock_NoPromptNeeded(t *testing.T) {
	s, f := newFakeService(t)
	f.Reply(transport.ServicePath, unlockMethod,
		[]dbus.ObjectPath{itemA, itemB}, transport.NoObject)

	if err := s.Unlock(context.Background(), []dbus.ObjectPath{itemA, itemB}); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if prompts := f.Calls(transport.PromptInterface + ".Prompt"); len(prompts) != 0 {
		t.Errorf("Prompt called %d times for a promptless unlock", len(prompts))
	}
}

func TestUnlock_DelegatesToPromptOnce(t *testing.T) {
	s, f := newFakeService(t)
	promptPath := dbus.ObjectPath("/org/freedesktop/secrets/prompt/u1")

	f.Reply(transport.ServicePath, unlockMethod, []dbus.ObjectPath{itemA}, promptPath)
	f.Handle(promptPath, transport.PromptInterface+".Prompt", func([]any) ([]any, error) {
		f.Emit(promptPath, transport.PromptInterface+".Completed",
			false, dbus.MakeVariant([]dbus.ObjectPath{itemB}))
		return nil, nil
	})

	if err := s.Unlock(context.Background(), []dbus.ObjectPath{itemA, itemB}); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	unlocks := f.Calls(unlockMethod)
	if len(unlocks) != 1 {
		t.Fatalf("Unlock called %d times, want 1", len(unlocks))
	}
	if got, ok := unlocks[0].Args[0].([]dbus.ObjectPath); !ok || len(got) != 2 {
		t.Errorf("Unlock args = %v, want both target paths", unlocks[0].Args)
	}
	if prompts := f.Calls(transport.PromptInterface + ".Prompt"); len(prompts) != 1 {
		t.Errorf("Prompt called %d times, want exactly 1", len(prompts))
	}
}

func TestUnlock_Dismissed(t *testing.T) {
	s, f := newFakeService(t)
	promptPath := dbus.ObjectPath("/org/freedesktop/secrets/prompt/u2")

	f.Reply(transport.ServicePath, unlockMethod, []dbus.ObjectPath{}, promptPath)
	f.Handle(promptPath, transport.PromptInterface+".Prompt", func([]any) ([]any, error) {
		f.Emit(promptPath, transport.PromptInterface+".Completed", true, dbus.MakeVariant(""))
		return nil, nil
	})

	err := s.Unlock(context.Background(), []dbus.ObjectPath{itemA})
	if !errors.Is(err, ErrPromptDismissed) {
		t.Errorf("expected ErrPromptDismissed, got %v", err)
	}
}

func TestUnlock_Timeout(t *testing.T) {
	s, f := newFakeService(t, WithPromptTimeout(25*time.Millisecond))
	promptPath := dbus.ObjectPath("/org/freedesktop/secrets/prompt/u3")

	f.Reply(transport.ServicePath, unlockMethod, []dbus.ObjectPath{}, promptPath)
	f.Reply(promptPath, transport.PromptInterface+".Prompt")
	f.Reply(promptPath, transport.PromptInterface+".Dismiss")

	err := s.Unlock(context.Background(), []dbus.ObjectPath{itemA})
	if !errors.Is(err, ErrPromptTimeout) {
		t.Fatalf("expected ErrPromptTimeout, got %v", err)
	}
	if dismissals := f.Calls(transport.PromptInterface + ".Dismiss"); len(dismissals) != 1 {
		t.Errorf("Dismiss called %d times, want exactly 1", len(dismissals))
	}
}

func TestUnlock_WithoutPrompting(t *testing.T) {
	s, f := newFakeService(t, WithoutPrompting())
	promptPath := dbus.ObjectPath("/org/freedesktop/secrets/prompt/u4")

	f.Reply(transport.ServicePath, unlockMethod, []dbus.ObjectPath{}, promptPath)
	f.Reply(promptPath, transport.PromptInterface+".Dismiss")

	err := s.Unlock(context.Background(), []dbus.ObjectPath{itemA})
	if !errors.Is(err, ErrPromptDismissed) {
		t.Fatalf("expected ErrPromptDismissed, got %v", err)
	}
	if prompts := f.Calls(transport.PromptInterface + ".Prompt"); len(prompts) != 0 {
		t.Errorf("Prompt called %d times with prompting disabled", len(prompts))
	}
	if dismissals := f.Calls(transport.PromptInterface + ".Dismiss"); len(dismissals) != 1 {
		t.Errorf("Dismiss called %d times, want 1", len(dismissals))
	}
}

func TestLock_UsesLockMethod(t *testing.T) {
	s, f := newFakeService(t)
	f.Reply(transport.ServicePath, lockMethod, []dbus.ObjectPath{itemA}, transport.NoObject)

	if err := s.Lock(context.Background(), []dbus.ObjectPath{itemA}); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if locks := f.Calls(lockMethod); len(locks) != 1 {
		t.Errorf("Lock called %d times, want 1", len(locks))
	}
}

func TestUnlockItems(t *testing.T) {
	s, f := newFakeService(t)
	f.Reply(transport.ServicePath, unlockMethod, []dbus.ObjectPath{itemA}, transport.NoObject)

	items := []*Item{{service: s, path: itemA}}
	if err := s.UnlockItems(context.Background(), items); err != nil {
		t.Fatalf("UnlockItems() error = %v", err)
	}

	unlocks := f.Calls(unlockMethod)
	if len(unlocks) != 1 {
		t.Fatalf("Unlock called %d times, want 1", len(unlocks))
	}
	if got, ok := unlocks[0].Args[0].([]dbus.ObjectPath); !ok || len(got) != 1 || got[0] != itemA {
		t.Errorf("Unlock args = %v, want [%s]", unlocks[0].Args, itemA)
	}
}
