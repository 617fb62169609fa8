package token

import "errors"

// Aggregation errors. Only account-state failures reach the caller of Aggregate;
// metadata and enrichment failures are logged and degrade the report.
var (
	// ErrInvalidAmount is returned when a raw supply is not a valid u64.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrOverflow is returned when decimal scaling exceeds the u64 range.
	ErrOverflow = errors.New("decimal scaling overflow")

	// ErrLookupFailed is returned when an RPC lookup fails or finds no account.
	ErrLookupFailed = errors.New("lookup failed")
)
