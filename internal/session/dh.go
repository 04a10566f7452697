package session

import (
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

// IETF 1024-bit MODP group (RFC 2409, second Oakley group).
const modp1024Hex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE65381" +
	"FFFFFFFFFFFFFFFF"

const (
	// groupSize is the size of the group modulus in bytes. Private
	// exponents and padded shared secrets are this long.
	groupSize = 128

	// AESKeySize is the size of the derived AES-128 key in bytes.
	AESKeySize = 16
)

var (
	dhPrime     *big.Int
	dhGenerator = big.NewInt(2)
)

func init() {
	p, ok := new(big.Int).SetString(modp1024Hex, 16)
	if !ok {
		panic("session: bad modp1024 prime constant")
	}
	dhPrime = p
}

// newKeypair draws a random 1024-bit private exponent from r and
// computes the matching public value g^x mod p.
func newKeypair(r io.Reader) (private, public *big.Int, err error) {
	buf := make([]byte, groupSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, fmt.Errorf("generate private exponent: %w", err)
	}
	private = new(big.Int).SetBytes(buf)
	public = new(big.Int).Exp(dhGenerator, private, dhPrime)
	return private, public, nil
}

// sharedSecret computes B^x mod p from the daemon's public value B
// and our private exponent x. The daemon's value must lie in the
// open interval (1, p-1).
func sharedSecret(serverPublic []byte, private *big.Int) ([]byte, error) {
	b := new(big.Int).SetBytes(serverPublic)
	one := big.NewInt(1)
	pMinusOne := new(big.Int).Sub(dhPrime, one)
	if b.Cmp(one) <= 0 || b.Cmp(pMinusOne) >= 0 {
		return nil, ErrMalformedExchange
	}
	return new(big.Int).Exp(b, private, dhPrime).Bytes(), nil
}

// deriveKey derives the AES-128 session key from the shared secret.
//
// The shared secret is left-padded with zeros to the full group size
// before derivation, and the HKDF runs with empty salt and empty
// info. Both details are load-bearing: the daemon performs the same
// computation, and any deviation yields a key that silently fails to
// interoperate.
func deriveKey(shared []byte) ([]byte, error) {
	if len(shared) > groupSize {
		return nil, ErrMalformedExchange
	}
	padded := make([]byte, groupSize)
	copy(padded[groupSize-len(shared):], shared)

	key := make([]byte, AESKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, padded, nil, nil), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return key, nil
}
