package session

import "errors"

var (
	// ErrUnsupportedAlgorithm is returned when the daemon rejects the
	// requested session algorithm.
	ErrUnsupportedAlgorithm = errors.New("algorithm not supported by daemon")

	// ErrMalformedExchange is returned when the daemon's public key
	// exchange value is missing or outside the valid group range.
	ErrMalformedExchange = errors.New("malformed key exchange value")

	// ErrInvalidCiphertext is returned when a ciphertext's length is
	// not a positive multiple of the cipher block size.
	ErrInvalidCiphertext = errors.New("invalid ciphertext length")

	// ErrInvalidIV is returned when a secret's IV length does not
	// equal the cipher block size.
	ErrInvalidIV = errors.New("invalid IV length")

	// ErrInvalidPadding is returned when PKCS#7 padding validation
	// fails after decryption.
	ErrInvalidPadding = errors.New("invalid padding")
)
