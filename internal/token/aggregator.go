// Package token aggregates on-chain and off-chain information about SPL tokens.
package token

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"solana-token-info/internal/enrich"
	"solana-token-info/internal/metadata"
	"solana-token-info/internal/solana"
)

// Enricher fetches off-chain data referenced by a metadata URI.
type Enricher interface {
	Enrich(ctx context.Context, uri string) (enrich.Info, error)
}

// ReportRecorder counts aggregation outcomes.
type ReportRecorder interface {
	RecordReport(outcome string)
}

// Aggregator builds token reports from the RPC client, the metadata decoder
// and the off-chain enricher. It holds no per-request state and is safe for
// concurrent use.
type Aggregator struct {
	rpc      solana.RPCClient
	enricher Enricher
	decode   func([]byte) (*metadata.Metadata, error)
	recorder ReportRecorder
	timeout  time.Duration
	logger   *zap.Logger
}

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// WithTokenTimeout bounds a single Aggregate call, including enrichment.
func WithTokenTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		a.timeout = d
	}
}

// WithReportRecorder reports every outcome to r.
func WithReportRecorder(r ReportRecorder) AggregatorOption {
	return func(a *Aggregator) {
		a.recorder = r
	}
}

// WithDecoder replaces the metadata decoder.
func WithDecoder(decode func([]byte) (*metadata.Metadata, error)) AggregatorOption {
	return func(a *Aggregator) {
		a.decode = decode
	}
}

// NewAggregator creates an Aggregator. rpc is shared by all calls.
func NewAggregator(rpc solana.RPCClient, enricher Enricher, logger *zap.Logger, opts ...AggregatorOption) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		rpc:      rpc,
		enricher: enricher,
		decode:   metadata.Decode,
		logger:   logger.Named("aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate reads the mint account and the metadata account concurrently,
// then enriches from the metadata URI.
//
// An account-state failure fails the whole call. A metadata failure yields a
// report without metadata and without enrichment. Enrichment failures yield
// an empty enrichment map.
func (a *Aggregator) Aggregate(ctx context.Context, addr solana.PublicKey) (*Report, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	logger := a.logger.With(zap.String("address", addr.String()))

	var (
		account AccountRecord
		meta    *metadata.Metadata
		metaErr error
	)

	// The account branch is fatal and cancels the group; the metadata branch never is.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := a.lookupAccount(gctx, addr)
		if err != nil {
			return err
		}
		account = rec
		return nil
	})
	g.Go(func() error {
		meta, metaErr = a.lookupMetadata(gctx, addr)
		return nil
	})

	if err := g.Wait(); err != nil {
		a.record(OutcomeFailed)
		return nil, err
	}

	report := &Report{
		Address:    addr,
		Account:    account,
		Enrichment: enrich.Info{},
	}

	if metaErr != nil {
		logger.Warn("Metadata unavailable, reporting account state only", zap.Error(metaErr))
		a.record(OutcomePartial)
		return report, nil
	}
	report.Metadata = meta

	if a.enricher != nil {
		info, err := a.enricher.Enrich(ctx, meta.URI)
		if err != nil {
			logger.Warn("Off-chain enrichment failed", zap.String("uri", meta.URI), zap.Error(err))
		} else {
			report.Enrichment = info
		}
	}

	a.record(report.Outcome())
	return report, nil
}

// lookupAccount fetches supply and owner of the mint account concurrently.
func (a *Aggregator) lookupAccount(ctx context.Context, addr solana.PublicKey) (AccountRecord, error) {
	var (
		supply *solana.TokenAmount
		info   *solana.AccountInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		supply, err = a.rpc.GetTokenSupply(gctx, addr.String())
		if err != nil {
			return fmt.Errorf("%w: get token supply for %s: %w", ErrLookupFailed, addr, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		info, err = a.rpc.GetAccountInfo(gctx, addr.String())
		if err != nil {
			return fmt.Errorf("%w: get account info for %s: %w", ErrLookupFailed, addr, err)
		}
		if info == nil {
			return fmt.Errorf("%w: account %s not found", ErrLookupFailed, addr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return AccountRecord{}, err
	}

	owner, err := solana.ParsePublicKey(info.Owner)
	if err != nil {
		return AccountRecord{}, fmt.Errorf("%w: owner of %s: %w", ErrLookupFailed, addr, err)
	}

	formatted, err := FormatSupply(supply.Amount, supply.Decimals)
	if err != nil {
		return AccountRecord{}, fmt.Errorf("supply of %s: %w", addr, err)
	}

	return AccountRecord{Owner: owner, Supply: formatted}, nil
}

// lookupMetadata derives the metadata account, fetches it and decodes it.
func (a *Aggregator) lookupMetadata(ctx context.Context, addr solana.PublicKey) (*metadata.Metadata, error) {
	pda, err := solana.FindMetadataAddress(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	info, err := a.rpc.GetAccountInfo(ctx, pda.String())
	if err != nil {
		return nil, fmt.Errorf("%w: get metadata account %s: %w", ErrLookupFailed, pda, err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: metadata account %s not found", ErrLookupFailed, pda)
	}

	data, err := info.DecodedData()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", metadata.ErrDecodeFailed, err)
	}

	meta, err := a.decode(data)
	if err != nil {
		return nil, fmt.Errorf("metadata account %s: %w", pda, err)
	}
	return meta, nil
}

func (a *Aggregator) record(outcome string) {
	if a.recorder != nil {
		a.recorder.RecordReport(outcome)
	}
}
