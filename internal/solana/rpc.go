package solana

import "context"

// RPCClient defines the subset of the Solana RPC HTTP interface used for token lookups.
type RPCClient interface {
	// GetTokenSupply returns the raw supply and decimals of an SPL token mint.
	GetTokenSupply(ctx context.Context, mint string) (*TokenAmount, error)

	// GetAccountInfo retrieves account info by public key.
	// Returns nil if account not found.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// CallObserver receives the outcome of every RPC call.
type CallObserver interface {
	ObserveRPCCall(method string, seconds float64, err error)
}
