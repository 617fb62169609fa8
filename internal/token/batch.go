package token

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"solana-token-info/internal/solana"
)

// Batch defaults.
const (
	DefaultConcurrency  = 8
	DefaultTokenTimeout = 60 * time.Second
)

// Result is the outcome of one address in a batch.
type Result struct {
	Address solana.PublicKey
	Report  *Report
	Err     error
	Elapsed time.Duration
}

// AggregateAll aggregates every address with at most concurrency calls in
// flight. Results keep the input order; a failed address does not affect the others.
func (a *Aggregator) AggregateAll(ctx context.Context, addrs []solana.PublicKey, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(addrs))

	// Plain group: no shared cancellation between addresses.
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			start := time.Now()
			report, err := a.Aggregate(ctx, addr)
			results[i] = Result{
				Address: addr,
				Report:  report,
				Err:     err,
				Elapsed: time.Since(start),
			}
			return nil
		})
	}
	g.Wait()

	return results
}
