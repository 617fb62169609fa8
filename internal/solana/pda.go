package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// Metaplex Token Metadata program ID.
var MetadataProgramID = MustParsePublicKey("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// PDA seed limits enforced by the runtime.
const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

const pdaMarker = "ProgramDerivedAddress"

var (
	// ErrInvalidSeeds is returned when seeds exceed runtime limits.
	ErrInvalidSeeds = errors.New("invalid seeds")

	// ErrOnCurve is returned when a candidate address lies on the ed25519 curve.
	ErrOnCurve = errors.New("address is on the ed25519 curve")

	// ErrNoViableBump is returned when no bump seed yields an off-curve address.
	ErrNoViableBump = errors.New("unable to find a viable program address bump seed")
)

// CreateProgramAddress hashes seeds with the program ID and rejects on-curve results.
// sha256(seeds... || programID || "ProgramDerivedAddress")
func CreateProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return PublicKey{}, fmt.Errorf("%w: %d seeds, max %d", ErrInvalidSeeds, len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return PublicKey{}, fmt.Errorf("%w: seed of %d bytes, max %d", ErrInvalidSeeds, len(seed), MaxSeedLength)
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var key PublicKey
	copy(key[:], h.Sum(nil))

	if IsOnCurve(key[:]) {
		return PublicKey{}, ErrOnCurve
	}
	return key, nil
}

// FindProgramAddress searches bump seeds from 255 down to 0 and returns the
// first off-curve address with its bump.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		key, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return key, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return PublicKey{}, 0, err
		}
	}

	return PublicKey{}, 0, ErrNoViableBump
}

// FindMetadataAddress derives the Metaplex metadata account for a mint.
// Seeds: ["metadata", metaplex_program_id, mint]
func FindMetadataAddress(mint PublicKey) (PublicKey, error) {
	seeds := [][]byte{
		[]byte("metadata"),
		MetadataProgramID[:],
		mint[:],
	}
	key, _, err := FindProgramAddress(seeds, MetadataProgramID)
	if err != nil {
		return PublicKey{}, fmt.Errorf("derive metadata address for %s: %w", mint, err)
	}
	return key, nil
}

// IsOnCurve reports whether b is a valid compressed ed25519 point.
func IsOnCurve(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
