package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"solana-token-info/internal/config"
	"solana-token-info/internal/enrich"
	"solana-token-info/internal/logging"
	"solana-token-info/internal/observability"
	"solana-token-info/internal/solana"
	"solana-token-info/internal/token"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
	rpc     *solana.LazyClient
	agg     *token.Aggregator
}

func newApp(opts rootOptions) (*app, error) {
	config.LoadEnvFile(opts.envFile)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.rpcEndpoint != "" {
		cfg.RPC.Endpoint = opts.rpcEndpoint
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics := observability.NewMetrics(observability.DefaultNamespace, prometheus.DefaultRegisterer)

	rpcCfg := cfg.RPC
	rpc := solana.NewLazyClient(func() *solana.HTTPClient {
		clientOpts := []solana.ClientOption{
			solana.WithTimeout(rpcCfg.Timeout),
			solana.WithObserver(metrics),
		}
		if rpcCfg.RateLimit > 0 {
			clientOpts = append(clientOpts, solana.WithRateLimit(rpcCfg.RateLimit, rpcCfg.Burst))
		}
		logger.Debug("Creating RPC client", zap.String("endpoint", rpcCfg.Endpoint))
		return solana.NewHTTPClient(rpcCfg.Endpoint, clientOpts...)
	})

	enricher := enrich.New(logger,
		enrich.WithTimeout(cfg.Enrichment.Timeout),
		enrich.WithDNSTimeout(cfg.Enrichment.DNSTimeout),
		enrich.WithMaxBodySize(cfg.Enrichment.MaxBodyBytes),
		enrich.WithFailureRecorder(metrics),
	)

	agg := token.NewAggregator(rpc, enricher, logger,
		token.WithTokenTimeout(cfg.Batch.TokenTimeout),
		token.WithReportRecorder(metrics),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		rpc:     rpc,
		agg:     agg,
	}, nil
}

func (a *app) close() {
	a.rpc.Close()
	_ = a.logger.Sync()
}
