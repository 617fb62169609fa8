package stub

import (
	"context"
	"errors"
	"sync"
	"time"

	"solana-token-info/internal/solana"
)

// ErrNotFound is returned when a token supply is not registered.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
// Maps must be populated before the client is shared between goroutines.
type RPCClient struct {
	Supplies map[string]*solana.TokenAmount
	Accounts map[string]*solana.AccountInfo

	// Errors forces a failure for a (method, address) pair, keyed as "method:address".
	Errors map[string]error

	// Delay is applied to every call before answering; honours ctx cancellation.
	Delay time.Duration

	mu    sync.Mutex
	calls map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Supplies: make(map[string]*solana.TokenAmount),
		Accounts: make(map[string]*solana.AccountInfo),
		Errors:   make(map[string]error),
		calls:    make(map[string]int),
	}
}

// ErrorKey builds the Errors map key for a method and address.
func ErrorKey(method, address string) string {
	return method + ":" + address
}

// Calls returns how many times method was invoked for address.
func (c *RPCClient) Calls(method, address string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[ErrorKey(method, address)]
}

func (c *RPCClient) record(ctx context.Context, method, address string) error {
	c.mu.Lock()
	c.calls[ErrorKey(method, address)]++
	c.mu.Unlock()

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.Delay):
		}
	}

	if err, ok := c.Errors[ErrorKey(method, address)]; ok {
		return err
	}
	return nil
}

// GetTokenSupply returns the registered supply for mint.
func (c *RPCClient) GetTokenSupply(ctx context.Context, mint string) (*solana.TokenAmount, error) {
	if err := c.record(ctx, "getTokenSupply", mint); err != nil {
		return nil, err
	}
	amount, ok := c.Supplies[mint]
	if !ok {
		return nil, ErrNotFound
	}
	return amount, nil
}

// GetAccountInfo returns the registered account, or nil when absent.
func (c *RPCClient) GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error) {
	if err := c.record(ctx, "getAccountInfo", pubkey); err != nil {
		return nil, err
	}
	return c.Accounts[pubkey], nil
}
