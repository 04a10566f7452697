package secretservice

import (
	"context"

	"github.com/godbus/dbus/v5"

	"github.com/dbus-secretservice/client-go/internal/transport"
)

// lockAction selects between the batched Lock and Unlock calls.
type lockAction int

const (
	actionLock lockAction = iota
	actionUnlock
)

func (a lockAction) method() string {
	if a == actionLock {
		return transport.ServiceInterface + ".Lock"
	}
	return transport.ServiceInterface + ".Unlock"
}

// Lock locks several objects (collections or items) in one batched
// call. Targets sharing a parent lock state share one confirmation
// prompt instead of prompting the user once per object.
func (s *Service) Lock(ctx context.Context, paths []dbus.ObjectPath) error {
	return s.lockUnlockAll(ctx, actionLock, paths)
}

// Unlock unlocks several objects (collections or items) in one
// batched call. See Lock.
func (s *Service) Unlock(ctx context.Context, paths []dbus.ObjectPath) error {
	return s.lockUnlockAll(ctx, actionUnlock, paths)
}

// UnlockItems unlocks items in one batch.
func (s *Service) UnlockItems(ctx context.Context, items []*Item) error {
	paths := make([]dbus.ObjectPath, 0, len(items))
	for _, item := range items {
		paths = append(paths, item.path)
	}
	return s.Unlock(ctx, paths)
}

// lockUnlockAll issues one batched lock-or-unlock call and resolves
// the shared prompt, if any. The outcome is the batch's aggregate
// result: the daemon's list of immediately-processed targets is not
// surfaced per path, a deliberate simplification.
func (s *Service) lockUnlockAll(ctx context.Context, action lockAction, paths []dbus.ObjectPath) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	var done []dbus.ObjectPath
	var promptPath dbus.ObjectPath
	err := s.bus.Call(ctx, transport.ServicePath, action.method(), []any{paths}, &done, &promptPath)
	if err != nil {
		return wrapError("LockUnlock", err)
	}

	_, err = s.resolvePrompt(ctx, promptPath)
	return err
}
