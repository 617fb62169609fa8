package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"solana-token-info/internal/output"
	"solana-token-info/internal/solana"
	"solana-token-info/internal/token"
)

var reportOpts struct {
	concurrency int
}

var reportCmd = &cobra.Command{
	Use:   "report <address>...",
	Short: "Print a report for each token address",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReport,
}

func init() {
	addConcurrencyFlag(reportCmd)
}

// addConcurrencyFlag registers --concurrency on cmd. The root command and
// report share it because a bare invocation runs a report.
func addConcurrencyFlag(cmd *cobra.Command) {
	cmd.Flags().IntVar(&reportOpts.concurrency, "concurrency", 0, "maximum tokens aggregated at once (default from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(rootOpts)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	concurrency := a.cfg.Batch.Concurrency
	if reportOpts.concurrency > 0 {
		concurrency = reportOpts.concurrency
	}

	start := time.Now()
	results := collect(ctx, a.agg, args, concurrency)
	total := time.Since(start)

	out := cmd.OutOrStdout()
	for _, r := range results {
		output.WriteResult(out, r)
	}
	output.WriteSummary(out, results, total)

	if output.Failed(results) {
		return errSomeFailed
	}
	return nil
}

// collect aggregates every valid address and reports invalid ones as failed
// results, keeping the argument order.
func collect(ctx context.Context, agg *token.Aggregator, args []string, concurrency int) []token.Result {
	results := make([]token.Result, len(args))

	var (
		valid   []solana.PublicKey
		indices []int
	)
	for i, arg := range args {
		addr, err := solana.ParsePublicKey(arg)
		if err != nil {
			results[i] = token.Result{Err: fmt.Errorf("%q: %w", arg, err)}
			continue
		}
		valid = append(valid, addr)
		indices = append(indices, i)
	}

	for j, r := range agg.AggregateAll(ctx, valid, concurrency) {
		results[indices[j]] = r
	}
	return results
}
