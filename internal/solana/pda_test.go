package solana

import (
	"bytes"
	"errors"
	"testing"

	"filippo.io/edwards25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePublicKey(t *testing.T) {
	key, err := ParsePublicKey("11111111111111111111111111111111")
	require.NoError(t, err)
	assert.True(t, key.IsZero())
	assert.Equal(t, "11111111111111111111111111111111", key.String())

	usdc := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	key, err = ParsePublicKey(usdc)
	require.NoError(t, err)
	assert.False(t, key.IsZero())
	assert.Equal(t, usdc, key.String())
}

func TestParsePublicKey_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad alphabet", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl"},
		{"too short", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePublicKey(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestMetadataProgramID(t *testing.T) {
	assert.Equal(t, "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s", MetadataProgramID.String())
}

func TestIsOnCurve(t *testing.T) {
	generator := edwards25519.NewGeneratorPoint().Bytes()
	assert.True(t, IsOnCurve(generator))
	assert.False(t, IsOnCurve([]byte{1, 2, 3}))
}

func TestFindProgramAddress_Deterministic(t *testing.T) {
	mint := MustParsePublicKey("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	seeds := [][]byte{[]byte("metadata"), MetadataProgramID[:], mint[:]}

	first, bump, err := FindProgramAddress(seeds, MetadataProgramID)
	require.NoError(t, err)

	second, bump2, err := FindProgramAddress(seeds, MetadataProgramID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, bump, bump2)
	assert.False(t, IsOnCurve(first[:]), "PDA must be off curve")

	// The returned bump reproduces the address.
	recreated, err := CreateProgramAddress(append(seeds, []byte{bump}), MetadataProgramID)
	require.NoError(t, err)
	assert.Equal(t, first, recreated)

	// Every higher bump lands on the curve.
	for b := 255; b > int(bump); b-- {
		_, err := CreateProgramAddress(append(seeds, []byte{byte(b)}), MetadataProgramID)
		assert.True(t, errors.Is(err, ErrOnCurve), "bump %d", b)
	}
}

func TestFindMetadataAddress(t *testing.T) {
	tests := []struct {
		name string
		mint string
		want string
	}{
		{"usdc", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "5x38Kp4hvdomTCnCrAny4UtMUt5rQBdB6px2K1Ui45Wq"},
		{"wrapped sol", "So11111111111111111111111111111111111111112", "6dM4TqWyWJsbx7obrdLcviBkTafD5E8av61zfU6jq57X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mint := MustParsePublicKey(tt.mint)
			got, err := FindMetadataAddress(mint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.False(t, bytes.Equal(got[:], mint[:]))
		})
	}
}

func TestCreateProgramAddress_SeedLimits(t *testing.T) {
	long := bytes.Repeat([]byte{1}, MaxSeedLength+1)
	_, err := CreateProgramAddress([][]byte{long}, MetadataProgramID)
	assert.ErrorIs(t, err, ErrInvalidSeeds)

	many := make([][]byte, MaxSeeds+1)
	_, _, err = FindProgramAddress(many[:MaxSeeds], MetadataProgramID)
	assert.ErrorIs(t, err, ErrInvalidSeeds, "bump pushes seed count over the limit")
}
