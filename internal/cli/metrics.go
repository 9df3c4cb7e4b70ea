package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eng-universe/blogsearch/internal/metrics"
	"github.com/spf13/cobra"
)

const shutdownGrace = 5 * time.Second

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve the /metrics Prometheus-exposition endpoint.",
	Long: `metrics starts an HTTP server on METRICS_PORT exposing
crawler_pages_total, indexer_docs_total, and search_latency_ms. The
registry it serves is empty in this process: counters only accumulate from
within the same process that records them, so metrics is meant to run
alongside an otherwise-instrumented crawl/index deployment that shares this
process, not as a standalone dashboard over another process's state.`,
	Run: func(cmd *cobra.Command, args []string) {
		runMetrics()
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics() {
	cfg := mustSettings()
	reg := metrics.New()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	addr := fmt.Sprintf(":%d", cfg.MetricsPort())
	server := &http.Server{Addr: addr, Handler: mux}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Printf("metrics listening on %s\n", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
