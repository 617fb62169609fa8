package token

import (
	"sort"
	"strings"

	"solana-token-info/internal/enrich"
	"solana-token-info/internal/metadata"
	"solana-token-info/internal/solana"
)

// Report outcomes.
const (
	OutcomeFull    = "full"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// AccountRecord is the state read from the mint account.
type AccountRecord struct {
	Owner  solana.PublicKey // owning token program
	Supply string           // formatted by FormatSupply
}

// Report is the aggregated view of one token. It is not modified after Aggregate returns.
type Report struct {
	Address    solana.PublicKey
	Account    AccountRecord
	Metadata   *metadata.Metadata // nil when the metadata account could not be read
	Enrichment enrich.Info
}

// Outcome reports whether metadata was available.
func (r *Report) Outcome() string {
	if r.Metadata == nil {
		return OutcomePartial
	}
	return OutcomeFull
}

// String renders the report as text. The account section is always present,
// the metadata section only when decoded, followed by enrichment lines sorted by key.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("information collected from account:\n")
	sb.WriteString("owner program: " + r.Account.Owner.String() + "\n")
	sb.WriteString("total supply: " + strings.ToLower(r.Account.Supply) + "\n")

	if r.Metadata != nil {
		sb.WriteString("\ninformation collected from metadata:\n")
		for _, line := range r.Metadata.Lines() {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	keys := make([]string, 0, len(r.Enrichment))
	for k := range r.Enrichment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(strings.ToLower(k) + ": " + strings.ToLower(r.Enrichment[k]) + "\n")
	}

	return sb.String()
}
