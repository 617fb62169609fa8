// Package metadata decodes Metaplex Token Metadata accounts.
package metadata

import (
	"errors"
	"fmt"
	"strings"

	"solana-token-info/internal/solana"
)

// ErrDecodeFailed is returned when account data does not match the metadata layout.
var ErrDecodeFailed = errors.New("metadata decode failed")

// Key identifies the account type stored by the Token Metadata program.
type Key uint8

// Account keys used by the Token Metadata program.
const (
	KeyUninitialized Key = iota
	KeyEditionV1
	KeyMasterEditionV1
	KeyReservationListV1
	KeyMetadataV1
	KeyReservationListV2
	KeyMasterEditionV2
	KeyEditionMarker
	KeyUseAuthorityRecord
	KeyCollectionAuthorityRecord
	KeyTokenOwnedEscrow
	KeyTokenRecord
	KeyMetadataDelegate
	KeyEditionMarkerV2
	KeyHolderDelegate
)

var keyNames = [...]string{
	"Uninitialized",
	"EditionV1",
	"MasterEditionV1",
	"ReservationListV1",
	"MetadataV1",
	"ReservationListV2",
	"MasterEditionV2",
	"EditionMarker",
	"UseAuthorityRecord",
	"CollectionAuthorityRecord",
	"TokenOwnedEscrow",
	"TokenRecord",
	"MetadataDelegate",
	"EditionMarkerV2",
	"HolderDelegate",
}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// TokenStandard classifies the asset.
type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
	TokenStandardProgrammableNonFungible
	TokenStandardProgrammableNonFungibleEdition
)

var tokenStandardNames = [...]string{
	"NonFungible",
	"FungibleAsset",
	"Fungible",
	"NonFungibleEdition",
	"ProgrammableNonFungible",
	"ProgrammableNonFungibleEdition",
}

func (s TokenStandard) String() string {
	if int(s) < len(tokenStandardNames) {
		return tokenStandardNames[s]
	}
	return fmt.Sprintf("TokenStandard(%d)", uint8(s))
}

// UseMethod describes how a Uses counter is consumed.
type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)

func (m UseMethod) String() string {
	switch m {
	case UseMethodBurn:
		return "Burn"
	case UseMethodMultiple:
		return "Multiple"
	case UseMethodSingle:
		return "Single"
	default:
		return fmt.Sprintf("UseMethod(%d)", uint8(m))
	}
}

// Creator is one entry of the creators list.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// Collection references the collection NFT.
type Collection struct {
	Verified bool
	Key      solana.PublicKey
}

// Uses is the usage counter.
type Uses struct {
	UseMethod UseMethod
	Remaining uint64
	Total     uint64
}

// CollectionDetails is present on collection parent NFTs.
// Version 1 carries Size; version 2 carries opaque padding.
type CollectionDetails struct {
	Version uint8
	Size    uint64
	Padding [8]byte
}

// ProgrammableConfig holds the rule set of a programmable NFT.
type ProgrammableConfig struct {
	RuleSet *solana.PublicKey
}

// Metadata is a decoded Token Metadata account.
// Optional fields are nil when absent; Creators is nil when absent and
// non-nil (possibly empty) when present.
type Metadata struct {
	Key                  Key
	UpdateAuthority      solana.PublicKey
	Mint                 solana.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *TokenStandard
	Collection           *Collection
	Uses                 *Uses
	CollectionDetails    *CollectionDetails
	ProgrammableConfig   *ProgrammableConfig
}

// Decode parses Metadata account data.
// Layout (borsh):
// key(1) | updateAuthority(32) | mint(32) | name | symbol | uri |
// sellerFeeBasisPoints(u16) | Option<Vec<Creator>> | primarySaleHappened(bool) |
// isMutable(bool) | Option<u8> editionNonce | Option<TokenStandard> |
// Option<Collection> | Option<Uses> | Option<CollectionDetails> |
// Option<ProgrammableConfig>
//
// Fields after isMutable were added in later program versions; data ending
// before them decodes those fields as absent.
func Decode(data []byte) (*Metadata, error) {
	r := &reader{buf: data}
	m := &Metadata{}

	if err := decodeRequired(r, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if err := decodeOptional(r, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	return m, nil
}

func decodeRequired(r *reader, m *Metadata) error {
	key, err := r.u8()
	if err != nil {
		return err
	}
	m.Key = Key(key)
	if m.Key != KeyMetadataV1 {
		return fmt.Errorf("unexpected account key %s", m.Key)
	}

	if m.UpdateAuthority, err = r.pubkey(); err != nil {
		return fmt.Errorf("update authority: %w", err)
	}
	if m.Mint, err = r.pubkey(); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	if m.Name, err = paddedString(r); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if m.Symbol, err = paddedString(r); err != nil {
		return fmt.Errorf("symbol: %w", err)
	}
	if m.URI, err = paddedString(r); err != nil {
		return fmt.Errorf("uri: %w", err)
	}
	if m.SellerFeeBasisPoints, err = r.u16(); err != nil {
		return fmt.Errorf("seller fee basis points: %w", err)
	}
	if m.Creators, err = decodeCreators(r); err != nil {
		return fmt.Errorf("creators: %w", err)
	}
	if m.PrimarySaleHappened, err = r.boolean(); err != nil {
		return fmt.Errorf("primary sale happened: %w", err)
	}
	if m.IsMutable, err = r.boolean(); err != nil {
		return fmt.Errorf("is mutable: %w", err)
	}
	return nil
}

// decodeOptional reads the trailing Option fields, stopping quietly at end of data.
func decodeOptional(r *reader, m *Metadata) error {
	steps := []struct {
		name string
		fn   func(*reader, *Metadata) error
	}{
		{"edition nonce", decodeEditionNonce},
		{"token standard", decodeTokenStandard},
		{"collection", decodeCollection},
		{"uses", decodeUses},
		{"collection details", decodeCollectionDetails},
		{"programmable config", decodeProgrammableConfig},
	}

	for _, step := range steps {
		if r.remaining() == 0 {
			return nil
		}
		if err := step.fn(r, m); err != nil {
			if errors.Is(err, errShortBuffer) {
				return nil
			}
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

// paddedString reads a borsh string and drops the NUL padding older accounts carry.
func paddedString(r *reader) (string, error) {
	s, err := r.str()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s, "\x00"), nil
}

func decodeCreators(r *reader) ([]Creator, error) {
	some, err := r.option()
	if err != nil || !some {
		return nil, err
	}
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	// Each creator is 34 bytes; reject lengths the buffer cannot hold.
	if int64(n)*34 > int64(r.remaining()) {
		return nil, fmt.Errorf("%w: %d creators", errShortBuffer, n)
	}
	creators := make([]Creator, 0, n)
	for i := uint32(0); i < n; i++ {
		var c Creator
		if c.Address, err = r.pubkey(); err != nil {
			return nil, err
		}
		if c.Verified, err = r.boolean(); err != nil {
			return nil, err
		}
		if c.Share, err = r.u8(); err != nil {
			return nil, err
		}
		creators = append(creators, c)
	}
	return creators, nil
}

func decodeEditionNonce(r *reader, m *Metadata) error {
	some, err := r.option()
	if err != nil || !some {
		return err
	}
	nonce, err := r.u8()
	if err != nil {
		return err
	}
	m.EditionNonce = &nonce
	return nil
}

func decodeTokenStandard(r *reader, m *Metadata) error {
	some, err := r.option()
	if err != nil || !some {
		return err
	}
	v, err := r.u8()
	if err != nil {
		return err
	}
	if int(v) >= len(tokenStandardNames) {
		return fmt.Errorf("unknown token standard %d", v)
	}
	ts := TokenStandard(v)
	m.TokenStandard = &ts
	return nil
}

func decodeCollection(r *reader, m *Metadata) error {
	some, err := r.option()
	if err != nil || !some {
		return err
	}
	var c Collection
	if c.Verified, err = r.boolean(); err != nil {
		return err
	}
	if c.Key, err = r.pubkey(); err != nil {
		return err
	}
	m.Collection = &c
	return nil
}

func decodeUses(r *reader, m *Metadata) error {
	some, err := r.option()
	if err != nil || !some {
		return err
	}
	method, err := r.u8()
	if err != nil {
		return err
	}
	if method > uint8(UseMethodSingle) {
		return fmt.Errorf("unknown use method %d", method)
	}
	u := Uses{UseMethod: UseMethod(method)}
	if u.Remaining, err = r.u64(); err != nil {
		return err
	}
	if u.Total, err = r.u64(); err != nil {
		return err
	}
	m.Uses = &u
	return nil
}

func decodeCollectionDetails(r *reader, m *Metadata) error {
	some, err := r.option()
	if err != nil || !some {
		return err
	}
	variant, err := r.u8()
	if err != nil {
		return err
	}
	d := CollectionDetails{Version: variant + 1}
	switch variant {
	case 0:
		if d.Size, err = r.u64(); err != nil {
			return err
		}
	case 1:
		b, err := r.take(len(d.Padding))
		if err != nil {
			return err
		}
		copy(d.Padding[:], b)
	default:
		return fmt.Errorf("unknown collection details variant %d", variant)
	}
	m.CollectionDetails = &d
	return nil
}

func decodeProgrammableConfig(r *reader, m *Metadata) error {
	some, err := r.option()
	if err != nil || !some {
		return err
	}
	variant, err := r.u8()
	if err != nil {
		return err
	}
	if variant != 0 {
		return fmt.Errorf("unknown programmable config variant %d", variant)
	}
	var pc ProgrammableConfig
	hasRuleSet, err := r.option()
	if err != nil {
		return err
	}
	if hasRuleSet {
		ruleSet, err := r.pubkey()
		if err != nil {
			return err
		}
		pc.RuleSet = &ruleSet
	}
	m.ProgrammableConfig = &pc
	return nil
}
