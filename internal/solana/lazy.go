package solana

import (
	"context"
	"sync"
	"sync/atomic"
)

// LazyClient constructs its HTTPClient on first use and reuses it afterwards.
// It is safe for concurrent use.
type LazyClient struct {
	once   sync.Once
	build  func() *HTTPClient
	client atomic.Pointer[HTTPClient]
}

// NewLazyClient returns a LazyClient that calls build exactly once.
func NewLazyClient(build func() *HTTPClient) *LazyClient {
	return &LazyClient{build: build}
}

func (l *LazyClient) get() *HTTPClient {
	l.once.Do(func() {
		l.client.Store(l.build())
	})
	return l.client.Load()
}

// GetTokenSupply implements RPCClient.
func (l *LazyClient) GetTokenSupply(ctx context.Context, mint string) (*TokenAmount, error) {
	return l.get().GetTokenSupply(ctx, mint)
}

// GetAccountInfo implements RPCClient.
func (l *LazyClient) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	return l.get().GetAccountInfo(ctx, pubkey)
}

// Initialized reports whether the underlying client has been built.
func (l *LazyClient) Initialized() bool {
	return l.client.Load() != nil
}

// Close releases the underlying client's connections if it was ever built.
func (l *LazyClient) Close() {
	if c := l.client.Load(); c != nil {
		c.Close()
	}
}
