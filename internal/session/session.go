package session

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/godbus/dbus/v5"

	"github.com/dbus-secretservice/client-go/internal/transport"
)

// Encryption selects the session algorithm negotiated with the daemon.
type Encryption string

const (
	// Plain transfers secrets unencrypted.
	Plain Encryption = "plain"
	// DH encrypts secrets with an AES-128 key agreed via
	// Diffie-Hellman over the IETF 1024-bit MODP group.
	DH Encryption = "dh-ietf1024-sha256-aes128-cbc-pkcs7"
)

// randReader is the entropy source for private exponents and IVs.
var randReader io.Reader = rand.Reader

// SetRandReaderForTesting replaces the entropy source and returns a
// function restoring the original. Test use only; unreachable outside
// this module because the package is internal.
func SetRandReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}

// Secret is the wire form of one secret value: signature (oayays).
type Secret struct {
	Session     dbus.ObjectPath
	Parameters  []byte // IV; empty for plain sessions
	Value       []byte
	ContentType string
}

// Session is the negotiated encryption context of one connection.
// It is created exactly once at connection start and immutable
// afterwards; the same key material secures every secret transfer on
// the connection.
type Session struct {
	encryption Encryption
	path       dbus.ObjectPath
	key        []byte // nil for plain sessions
}

// Open negotiates a session with the daemon. For DH it generates an
// ephemeral keypair, performs the exchange and derives the AES key;
// the private exponent does not outlive this call.
func Open(ctx context.Context, t transport.Transport, kind Encryption) (*Session, error) {
	switch kind {
	case Plain:
		return openPlain(ctx, t)
	case DH:
		return openDH(ctx, t)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, kind)
	}
}

func openPlain(ctx context.Context, t transport.Transport) (*Session, error) {
	var (
		output dbus.Variant
		path   dbus.ObjectPath
	)
	err := t.Call(ctx, transport.ServicePath, transport.ServiceInterface+".OpenSession",
		[]any{string(Plain), dbus.MakeVariant("")}, &output, &path)
	if err != nil {
		return nil, err
	}
	return &Session{encryption: Plain, path: path}, nil
}

func openDH(ctx context.Context, t transport.Transport) (*Session, error) {
	private, public, err := newKeypair(randReader)
	if err != nil {
		return nil, err
	}

	var (
		output dbus.Variant
		path   dbus.ObjectPath
	)
	err = t.Call(ctx, transport.ServicePath, transport.ServiceInterface+".OpenSession",
		[]any{string(DH), dbus.MakeVariant(public.Bytes())}, &output, &path)
	if err != nil {
		return nil, err
	}

	serverPublic, ok := output.Value().([]byte)
	if !ok || len(serverPublic) == 0 {
		return nil, ErrMalformedExchange
	}
	shared, err := sharedSecret(serverPublic, private)
	if err != nil {
		return nil, err
	}
	key, err := deriveKey(shared)
	if err != nil {
		return nil, err
	}
	return &Session{encryption: DH, path: path, key: key}, nil
}

// Path returns the server-side session object reference.
func (s *Session) Path() dbus.ObjectPath {
	return s.path
}

// Encryption returns the negotiated algorithm.
func (s *Session) Encryption() Encryption {
	return s.encryption
}

// Encrypt wraps plaintext into a wire Secret. DH sessions draw a
// fresh random IV for every call; plain sessions pass the value
// through with an empty IV.
func (s *Session) Encrypt(plaintext []byte, contentType string) (*Secret, error) {
	if s.encryption == Plain {
		value := make([]byte, len(plaintext))
		copy(value, plaintext)
		return &Secret{Session: s.path, Parameters: []byte{}, Value: value, ContentType: contentType}, nil
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	iv := make([]byte, block.BlockSize())
	if _, err := io.ReadFull(randReader, iv); err != nil {
		return nil, fmt.Errorf("generate IV: %w", err)
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	value := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(value, padded)

	return &Secret{Session: s.path, Parameters: iv, Value: value, ContentType: contentType}, nil
}

// Decrypt unwraps a wire Secret. Invalid lengths and invalid padding
// are reported as errors; Decrypt never returns truncated data.
func (s *Session) Decrypt(secret *Secret) ([]byte, error) {
	if s.encryption == Plain {
		value := make([]byte, len(secret.Value))
		copy(value, secret.Value)
		return value, nil
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	if len(secret.Parameters) != block.BlockSize() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIV, len(secret.Parameters), block.BlockSize())
	}
	if len(secret.Value) == 0 || len(secret.Value)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidCiphertext, len(secret.Value))
	}

	padded := make([]byte, len(secret.Value))
	cipher.NewCBCDecrypter(block, secret.Parameters).CryptBlocks(padded, secret.Value)

	return pkcs7Unpad(padded, block.BlockSize())
}
