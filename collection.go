package secretservice

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/dbus-secretservice/client-go/internal/transport"
)

// Collection is a named group of secret items, such as the default
// keyring. It proxies one collection object on the daemon.
type Collection struct {
	service *Service
	path    dbus.ObjectPath
}

// Path returns the collection's object path on the bus.
func (c *Collection) Path() dbus.ObjectPath {
	return c.path
}

// Items returns all items of the collection.
func (c *Collection) Items(ctx context.Context) ([]*Item, error) {
	if err := c.service.checkClosed(); err != nil {
		return nil, err
	}

	v, err := c.service.bus.GetProperty(ctx, c.path, transport.CollectionInterface+".Items")
	if err != nil {
		return nil, wrapError("Items", err)
	}
	var paths []dbus.ObjectPath
	if err := dbus.Store([]any{v.Value()}, &paths); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	items := make([]*Item, 0, len(paths))
	for _, path := range paths {
		items = append(items, &Item{service: c.service, path: path})
	}
	return items, nil
}

// CreateItem stores a secret in the collection. The secret is
// encrypted under the connection's session before it crosses the bus.
// With replace set, an existing item with the same attributes is
// overwritten. The daemon may require user confirmation.
func (c *Collection) CreateItem(ctx context.Context, label string, attributes map[string]string, secret []byte, replace bool, contentType string) (*Item, error) {
	if err := c.service.checkClosed(); err != nil {
		return nil, err
	}

	wire, err := c.service.session.Encrypt(secret, contentType)
	if err != nil {
		return nil, wrapError("encrypt", err)
	}

	properties := map[string]dbus.Variant{
		transport.ItemInterface + ".Label":      dbus.MakeVariant(label),
		transport.ItemInterface + ".Attributes": dbus.MakeVariant(attributes),
	}

	var itemPath, promptPath dbus.ObjectPath
	err = c.service.bus.Call(ctx, c.path, transport.CollectionInterface+".CreateItem",
		[]any{properties, *wire, replace}, &itemPath, &promptPath)
	if err != nil {
		return nil, wrapError("CreateItem", err)
	}

	if path, ok := transport.Optional(itemPath); ok {
		return &Item{service: c.service, path: path}, nil
	}

	result, err := c.service.resolvePrompt(ctx, promptPath)
	if err != nil {
		return nil, err
	}
	path, err := pathFromVariant(result)
	if err != nil {
		return nil, err
	}
	return &Item{service: c.service, path: path}, nil
}

// SearchItems searches the collection by attributes.
func (c *Collection) SearchItems(ctx context.Context, attributes map[string]string) ([]*Item, error) {
	if err := c.service.checkClosed(); err != nil {
		return nil, err
	}

	var paths []dbus.ObjectPath
	err := c.service.bus.Call(ctx, c.path, transport.CollectionInterface+".SearchItems",
		[]any{attributes}, &paths)
	if err != nil {
		return nil, wrapError("SearchItems", err)
	}

	items := make([]*Item, 0, len(paths))
	for _, path := range paths {
		items = append(items, &Item{service: c.service, path: path})
	}
	return items, nil
}

// Delete deletes the collection. The daemon may require user
// confirmation.
func (c *Collection) Delete(ctx context.Context) error {
	if err := c.service.checkClosed(); err != nil {
		return err
	}

	var promptPath dbus.ObjectPath
	err := c.service.bus.Call(ctx, c.path, transport.CollectionInterface+".Delete", nil, &promptPath)
	if err != nil {
		return wrapError("Delete", err)
	}
	_, err = c.service.resolvePrompt(ctx, promptPath)
	return err
}

// Lock locks the collection.
func (c *Collection) Lock(ctx context.Context) error {
	return c.service.Lock(ctx, []dbus.ObjectPath{c.path})
}

// Unlock unlocks the collection.
func (c *Collection) Unlock(ctx context.Context) error {
	return c.service.Unlock(ctx, []dbus.ObjectPath{c.path})
}

// Locked reports whether the collection is locked.
func (c *Collection) Locked(ctx context.Context) (bool, error) {
	if err := c.service.checkClosed(); err != nil {
		return false, err
	}
	v, err := c.service.bus.GetProperty(ctx, c.path, transport.CollectionInterface+".Locked")
	if err != nil {
		return false, wrapError("Locked", err)
	}
	locked, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("decode locked property: unexpected type %T", v.Value())
	}
	return locked, nil
}

// Label returns the collection's display label.
func (c *Collection) Label(ctx context.Context) (string, error) {
	if err := c.service.checkClosed(); err != nil {
		return "", err
	}
	v, err := c.service.bus.GetProperty(ctx, c.path, transport.CollectionInterface+".Label")
	if err != nil {
		return "", wrapError("Label", err)
	}
	label, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("decode label property: unexpected type %T", v.Value())
	}
	return label, nil
}

// SetLabel changes the collection's display label.
func (c *Collection) SetLabel(ctx context.Context, label string) error {
	if err := c.service.checkClosed(); err != nil {
		return err
	}
	err := c.service.bus.SetProperty(ctx, c.path, transport.CollectionInterface+".Label", label)
	return wrapError("SetLabel", err)
}
