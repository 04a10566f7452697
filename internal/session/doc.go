// Package session negotiates the per-connection encryption session of
// the Secret Service protocol and encrypts and decrypts every secret
// payload that crosses the bus.
//
// # Algorithms
//
// Two algorithms are defined by the protocol:
//
//   - "plain": secrets cross the bus unencrypted. No key material is
//     held; encrypt and decrypt are identity transforms over an empty
//     IV.
//
//   - "dh-ietf1024-sha256-aes128-cbc-pkcs7": a Diffie-Hellman exchange
//     over the IETF 1024-bit MODP group (RFC 2409, generator 2)
//     establishes a shared secret, from which an AES-128 key is
//     derived with HKDF-SHA256 (empty salt, empty info). Secrets are
//     AES-128-CBC encrypted with PKCS#7 padding and a fresh random
//     16-byte IV per call.
//
// # Security notes
//
// The session is negotiated exactly once per connection and immutable
// afterwards; the private exponent is discarded as soon as the key is
// derived. IVs must never repeat under one key: Encrypt draws a fresh
// IV from crypto/rand on every call.
package session
