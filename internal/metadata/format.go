package metadata

import (
	"fmt"
	"strings"
)

func (c Creator) String() string {
	return fmt.Sprintf("{address: %s, verified: %t, share: %d}", c.Address, c.Verified, c.Share)
}

func (c Collection) String() string {
	return fmt.Sprintf("{verified: %t, key: %s}", c.Verified, c.Key)
}

func (u Uses) String() string {
	return fmt.Sprintf("{use method: %s, remaining: %d, total: %d}", u.UseMethod, u.Remaining, u.Total)
}

func (d CollectionDetails) String() string {
	if d.Version == 2 {
		return fmt.Sprintf("V2 {padding: %v}", d.Padding[:])
	}
	return fmt.Sprintf("V1 {size: %d}", d.Size)
}

func (p ProgrammableConfig) String() string {
	if p.RuleSet == nil {
		return "V1 {rule set: none}"
	}
	return fmt.Sprintf("V1 {rule set: %s}", p.RuleSet)
}

// Lines renders the metadata fields one per line. Optional fields appear only when present.
func (m *Metadata) Lines() []string {
	lines := []string{
		"key: " + m.Key.String(),
		"update authority: " + m.UpdateAuthority.String(),
		"mint: " + m.Mint.String(),
		"name: " + m.Name,
		"symbol: " + m.Symbol,
		"uri: " + m.URI,
		fmt.Sprintf("seller fee basis points: %d", m.SellerFeeBasisPoints),
	}

	if m.Creators != nil {
		parts := make([]string, len(m.Creators))
		for i, c := range m.Creators {
			parts[i] = c.String()
		}
		lines = append(lines, "creators: ["+strings.Join(parts, ", ")+"]")
	}

	lines = append(lines,
		fmt.Sprintf("primary sale happened: %t", m.PrimarySaleHappened),
		fmt.Sprintf("is mutable: %t", m.IsMutable),
	)

	if m.EditionNonce != nil {
		lines = append(lines, fmt.Sprintf("edition nonce: %d", *m.EditionNonce))
	}
	if m.TokenStandard != nil {
		lines = append(lines, "token standard: "+m.TokenStandard.String())
	}
	if m.Collection != nil {
		lines = append(lines, "collection: "+m.Collection.String())
	}
	if m.Uses != nil {
		lines = append(lines, "uses: "+m.Uses.String())
	}
	if m.CollectionDetails != nil {
		lines = append(lines, "collection details: "+m.CollectionDetails.String())
	}
	if m.ProgrammableConfig != nil {
		lines = append(lines, "programmable config: "+m.ProgrammableConfig.String())
	}

	return lines
}
