package secretservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/dbus-secretservice/client-go/internal/prompt"
	"github.com/dbus-secretservice/client-go/internal/session"
	"github.com/dbus-secretservice/client-go/internal/transport"
)

// Encryption selects how secrets cross the bus.
type Encryption = session.Encryption

// Session algorithms.
const (
	// Plain transfers secrets unencrypted over the bus.
	Plain = session.Plain
	// DH encrypts secrets with a key agreed via Diffie-Hellman
	// (dh-ietf1024-sha256-aes128-cbc-pkcs7).
	DH = session.DH
)

// Service is the main entry point of the client. Connecting opens a
// private bus connection and negotiates the encryption session that
// secures every secret transfer for the connection's lifetime.
//
// A Service issues one request at a time; operations are strictly
// sequential as issued by the caller. Callers that need concurrent
// prompt flows should use independent connections, each with its own
// negotiated session.
type Service struct {
	bus     transport.Transport
	session *session.Session

	promptTimeout time.Duration
	windowID      string
	noPrompts     bool

	mu     sync.Mutex
	closed bool
}

// SearchItemsResult splits search matches by lock state. Locked items
// must be unlocked before their secrets can be read.
type SearchItemsResult struct {
	Unlocked []*Item
	Locked   []*Item
}

// Connect opens a connection to the secret service daemon and
// negotiates an encryption session.
func Connect(ctx context.Context, encryption Encryption, opts ...Option) (*Service, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	bus := cfg.transport
	if bus == nil {
		var err error
		bus, err = transport.Connect(ctx)
		if err != nil {
			return nil, &TransportError{Op: "Connect", Err: err}
		}
	}

	sess, err := session.Open(ctx, bus, encryption)
	if err != nil {
		_ = bus.Close()
		return nil, wrapNegotiationError(string(encryption), err)
	}

	return &Service{
		bus:           bus,
		session:       sess,
		promptTimeout: cfg.promptTimeout,
		windowID:      cfg.windowID,
		noPrompts:     cfg.noPrompts,
	}, nil
}

// checkClosed returns ErrServiceClosed if the service has been closed.
func (s *Service) checkClosed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServiceClosed
	}
	return nil
}

// Close closes the bus connection. Idempotent.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.bus.Close()
}

// Encryption returns the negotiated session algorithm.
func (s *Service) Encryption() Encryption {
	return s.session.Encryption()
}

// Collections returns all collections of the daemon.
func (s *Service) Collections(ctx context.Context) ([]*Collection, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	v, err := s.bus.GetProperty(ctx, transport.ServicePath, transport.ServiceInterface+".Collections")
	if err != nil {
		return nil, wrapError("Collections", err)
	}
	var paths []dbus.ObjectPath
	if err := dbus.Store([]any{v.Value()}, &paths); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}

	collections := make([]*Collection, 0, len(paths))
	for _, path := range paths {
		collections = append(collections, &Collection{service: s, path: path})
	}
	return collections, nil
}

// GetCollectionByAlias returns the collection bound to an alias, or
// ErrNoResult when the alias is unbound.
func (s *Service) GetCollectionByAlias(ctx context.Context, alias string) (*Collection, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	var path dbus.ObjectPath
	err := s.bus.Call(ctx, transport.ServicePath, transport.ServiceInterface+".ReadAlias",
		[]any{alias}, &path)
	if err != nil {
		return nil, wrapError("ReadAlias", err)
	}
	path, ok := transport.Optional(path)
	if !ok {
		return nil, ErrNoResult
	}
	return &Collection{service: s, path: path}, nil
}

// DefaultCollection returns the collection whose alias is "default".
func (s *Service) DefaultCollection(ctx context.Context) (*Collection, error) {
	return s.GetCollectionByAlias(ctx, "default")
}

// AnyCollection returns the default collection, falling back to the
// "session" collection and then to the first collection found.
func (s *Service) AnyCollection(ctx context.Context) (*Collection, error) {
	if c, err := s.DefaultCollection(ctx); err == nil {
		return c, nil
	}
	if c, err := s.GetCollectionByAlias(ctx, "session"); err == nil {
		return c, nil
	}
	collections, err := s.Collections(ctx)
	if err != nil {
		return nil, err
	}
	if len(collections) == 0 {
		return nil, ErrNoResult
	}
	return collections[0], nil
}

// CreateCollection creates a new collection with a label and an
// optional alias. The daemon may require user confirmation.
func (s *Service) CreateCollection(ctx context.Context, label, alias string) (*Collection, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	properties := map[string]dbus.Variant{
		transport.CollectionInterface + ".Label": dbus.MakeVariant(label),
	}

	var collectionPath, promptPath dbus.ObjectPath
	err := s.bus.Call(ctx, transport.ServicePath, transport.ServiceInterface+".CreateCollection",
		[]any{properties, alias}, &collectionPath, &promptPath)
	if err != nil {
		return nil, wrapError("CreateCollection", err)
	}

	if path, ok := transport.Optional(collectionPath); ok {
		return &Collection{service: s, path: path}, nil
	}

	result, err := s.resolvePrompt(ctx, promptPath)
	if err != nil {
		return nil, err
	}
	path, err := pathFromVariant(result)
	if err != nil {
		return nil, err
	}
	return &Collection{service: s, path: path}, nil
}

// SetAlias binds an alias to a collection.
func (s *Service) SetAlias(ctx context.Context, alias string, collection *Collection) error {
	if err := s.checkClosed(); err != nil {
		return err
	}
	err := s.bus.Call(ctx, transport.ServicePath, transport.ServiceInterface+".SetAlias",
		[]any{alias, collection.path})
	return wrapError("SetAlias", err)
}

// SearchItems searches every collection by attributes. Matches are
// split into unlocked and locked items.
func (s *Service) SearchItems(ctx context.Context, attributes map[string]string) (*SearchItemsResult, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	var unlocked, locked []dbus.ObjectPath
	err := s.bus.Call(ctx, transport.ServicePath, transport.ServiceInterface+".SearchItems",
		[]any{attributes}, &unlocked, &locked)
	if err != nil {
		return nil, wrapError("SearchItems", err)
	}

	result := &SearchItemsResult{
		Unlocked: make([]*Item, 0, len(unlocked)),
		Locked:   make([]*Item, 0, len(locked)),
	}
	for _, path := range unlocked {
		result.Unlocked = append(result.Unlocked, &Item{service: s, path: path})
	}
	for _, path := range locked {
		result.Locked = append(result.Locked, &Item{service: s, path: path})
	}
	return result, nil
}

// GetSecrets fetches and decrypts the secrets of several items in one
// round trip, keyed by item path.
func (s *Service) GetSecrets(ctx context.Context, items []*Item) (map[dbus.ObjectPath][]byte, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	paths := make([]dbus.ObjectPath, 0, len(items))
	for _, item := range items {
		paths = append(paths, item.path)
	}

	var secrets map[dbus.ObjectPath]session.Secret
	err := s.bus.Call(ctx, transport.ServicePath, transport.ServiceInterface+".GetSecrets",
		[]any{paths, s.session.Path()}, &secrets)
	if err != nil {
		return nil, wrapError("GetSecrets", err)
	}

	out := make(map[dbus.ObjectPath][]byte, len(secrets))
	for path, secret := range secrets {
		plaintext, err := s.session.Decrypt(&secret)
		if err != nil {
			return nil, wrapError("decrypt", err)
		}
		out[path] = plaintext
	}
	return out, nil
}

// resolvePrompt drives a prompt returned by a privileged operation to
// completion, honoring the service's prompt policy.
func (s *Service) resolvePrompt(ctx context.Context, path dbus.ObjectPath) (dbus.Variant, error) {
	if s.noPrompts {
		if _, ok := transport.Optional(path); ok {
			_ = prompt.Dismiss(ctx, s.bus, path)
			return dbus.Variant{}, ErrPromptDismissed
		}
		return dbus.Variant{}, nil
	}
	result, err := prompt.Resolve(ctx, s.bus, path, s.windowID, s.promptTimeout)
	if err != nil {
		return dbus.Variant{}, wrapError("Prompt", err)
	}
	return result, nil
}

// pathFromVariant extracts an object path carried in a prompt result.
func pathFromVariant(v dbus.Variant) (dbus.ObjectPath, error) {
	var path dbus.ObjectPath
	if err := dbus.Store([]any{v.Value()}, &path); err != nil {
		return "", fmt.Errorf("decode prompt result: %w", err)
	}
	return path, nil
}
