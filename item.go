package secretservice

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/dbus-secretservice/client-go/internal/session"
	"github.com/dbus-secretservice/client-go/internal/transport"
)

// Item is one stored secret together with its label and searchable
// attributes. It proxies one item object on the daemon.
type Item struct {
	service *Service
	path    dbus.ObjectPath
}

// Path returns the item's object path on the bus.
func (i *Item) Path() dbus.ObjectPath {
	return i.path
}

// GetSecret fetches and decrypts the item's secret.
func (i *Item) GetSecret(ctx context.Context) ([]byte, error) {
	secret, err := i.getSecret(ctx)
	if err != nil {
		return nil, err
	}
	plaintext, err := i.service.session.Decrypt(secret)
	if err != nil {
		return nil, wrapError("decrypt", err)
	}
	return plaintext, nil
}

// GetSecretContentType returns the MIME content type stored with the
// item's secret.
func (i *Item) GetSecretContentType(ctx context.Context) (string, error) {
	secret, err := i.getSecret(ctx)
	if err != nil {
		return "", err
	}
	return secret.ContentType, nil
}

func (i *Item) getSecret(ctx context.Context) (*session.Secret, error) {
	if err := i.service.checkClosed(); err != nil {
		return nil, err
	}
	var secret session.Secret
	err := i.service.bus.Call(ctx, i.path, transport.ItemInterface+".GetSecret",
		[]any{i.service.session.Path()}, &secret)
	if err != nil {
		return nil, wrapError("GetSecret", err)
	}
	return &secret, nil
}

// SetSecret replaces the item's secret.
func (i *Item) SetSecret(ctx context.Context, secret []byte, contentType string) error {
	if err := i.service.checkClosed(); err != nil {
		return err
	}
	wire, err := i.service.session.Encrypt(secret, contentType)
	if err != nil {
		return wrapError("encrypt", err)
	}
	err = i.service.bus.Call(ctx, i.path, transport.ItemInterface+".SetSecret", []any{*wire})
	return wrapError("SetSecret", err)
}

// Delete deletes the item. The daemon may require user confirmation.
func (i *Item) Delete(ctx context.Context) error {
	if err := i.service.checkClosed(); err != nil {
		return err
	}

	var promptPath dbus.ObjectPath
	err := i.service.bus.Call(ctx, i.path, transport.ItemInterface+".Delete", nil, &promptPath)
	if err != nil {
		return wrapError("Delete", err)
	}
	_, err = i.service.resolvePrompt(ctx, promptPath)
	return err
}

// Lock locks the item.
func (i *Item) Lock(ctx context.Context) error {
	return i.service.Lock(ctx, []dbus.ObjectPath{i.path})
}

// Unlock unlocks the item.
func (i *Item) Unlock(ctx context.Context) error {
	return i.service.Unlock(ctx, []dbus.ObjectPath{i.path})
}

// Locked reports whether the item is locked.
func (i *Item) Locked(ctx context.Context) (bool, error) {
	if err := i.service.checkClosed(); err != nil {
		return false, err
	}
	v, err := i.service.bus.GetProperty(ctx, i.path, transport.ItemInterface+".Locked")
	if err != nil {
		return false, wrapError("Locked", err)
	}
	locked, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("decode locked property: unexpected type %T", v.Value())
	}
	return locked, nil
}

// Label returns the item's display label.
func (i *Item) Label(ctx context.Context) (string, error) {
	if err := i.service.checkClosed(); err != nil {
		return "", err
	}
	v, err := i.service.bus.GetProperty(ctx, i.path, transport.ItemInterface+".Label")
	if err != nil {
		return "", wrapError("Label", err)
	}
	label, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("decode label property: unexpected type %T", v.Value())
	}
	return label, nil
}

// SetLabel changes the item's display label.
func (i *Item) SetLabel(ctx context.Context, label string) error {
	if err := i.service.checkClosed(); err != nil {
		return err
	}
	err := i.service.bus.SetProperty(ctx, i.path, transport.ItemInterface+".Label", label)
	return wrapError("SetLabel", err)
}

// Attributes returns the item's searchable attributes.
func (i *Item) Attributes(ctx context.Context) (map[string]string, error) {
	if err := i.service.checkClosed(); err != nil {
		return nil, err
	}
	v, err := i.service.bus.GetProperty(ctx, i.path, transport.ItemInterface+".Attributes")
	if err != nil {
		return nil, wrapError("Attributes", err)
	}
	var attributes map[string]string
	if err := dbus.Store([]any{v.Value()}, &attributes); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	return attributes, nil
}

// SetAttributes replaces the item's searchable attributes.
func (i *Item) SetAttributes(ctx context.Context, attributes map[string]string) error {
	if err := i.service.checkClosed(); err != nil {
		return err
	}
	err := i.service.bus.SetProperty(ctx, i.path, transport.ItemInterface+".Attributes", attributes)
	return wrapError("SetAttributes", err)
}

// Created returns when the item was created.
func (i *Item) Created(ctx context.Context) (time.Time, error) {
	return i.timeProperty(ctx, "Created")
}

// Modified returns when the item was last modified.
func (i *Item) Modified(ctx context.Context) (time.Time, error) {
	return i.timeProperty(ctx, "Modified")
}

func (i *Item) timeProperty(ctx context.Context, member string) (time.Time, error) {
	if err := i.service.checkClosed(); err != nil {
		return time.Time{}, err
	}
	v, err := i.service.bus.GetProperty(ctx, i.path, transport.ItemInterface+"."+member)
	if err != nil {
		return time.Time{}, wrapError(member, err)
	}
	var seconds uint64
	if err := dbus.Store([]any{v.Value()}, &seconds); err != nil {
		return time.Time{}, fmt.Errorf("decode time property: %w", err)
	}
	return time.Unix(int64(seconds), 0), nil
}
