package solana

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKeySize is the length of an account address in bytes.
const PublicKeySize = 32

// PublicKey is a Solana account address.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes a base58 address and checks its length.
func ParsePublicKey(s string) (PublicKey, error) {
	var key PublicKey
	decoded, err := base58.Decode(s)
	if err != nil {
		return key, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return PublicKeyFromBytes(decoded)
}

// MustParsePublicKey is like ParsePublicKey but panics on error.
// Intended for compile-time constants such as program IDs.
func MustParsePublicKey(s string) PublicKey {
	key, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return key
}

// PublicKeyFromBytes copies a 32-byte slice into a PublicKey.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var key PublicKey
	if len(b) != PublicKeySize {
		return key, fmt.Errorf("invalid address length: got %d bytes, want %d", len(b), PublicKeySize)
	}
	copy(key[:], b)
	return key, nil
}

// String returns the base58 encoding of the key.
func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

// IsZero reports whether every byte of the key is zero.
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}
