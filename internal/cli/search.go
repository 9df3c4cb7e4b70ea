package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/eng-universe/blogsearch/internal/embeddings"
	"github.com/eng-universe/blogsearch/internal/metrics"
	"github.com/eng-universe/blogsearch/internal/search"
	"github.com/eng-universe/blogsearch/internal/store"
	"github.com/spf13/cobra"
)

var (
	searchMode     string
	searchLimit    int
	searchDocCache bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run one query against idx:blogs and print the ranked results.",
	Long: `search exercises the planner directly, without standing up an
HTTP API in front of it: useful for smoke-testing a freshly built index
and for exercising keyword, semantic, and hybrid ranking from a terminal.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(strings.Join(args, " "))
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "hybrid", "keyword, semantic, or hybrid")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchDocCache, "doc-cache", false,
		"warm an in-process doc:* cache at startup instead of hydrating each result with a store round-trip")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(query string) {
	cfg := mustSettings()
	sink := newSink(cfg)
	reg := metrics.New()

	storeClient, err := store.New(cfg.RedisURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer storeClient.Close()

	provider, lateBackend := embeddings.New(embeddings.BackendConfig{
		Provider:                  cfg.EmbeddingsProvider(),
		Dim:                       cfg.EmbeddingsDim(),
		HuggingFaceAPIKey:         cfg.HuggingFaceAPIKey(),
		HuggingFaceEmbeddingModel: cfg.HuggingFaceEmbeddingModel(),
		PylateBaseURL:             cfg.PylateBaseURL(),
		PylateModel:               cfg.PylateModel(),
		PylateAPIKey:              cfg.PylateAPIKey(),
	})

	planner := search.New(storeClient, provider, lateBackend, sink, reg, search.Config{
		IndexName:     cfg.IndexName(),
		DocKey:        cfg.DocKey,
		EmbeddingsDim: cfg.EmbeddingsDim(),
	})

	if searchDocCache {
		cache, err := search.NewDocCache(context.Background(), storeClient, cfg.DocKeyPrefix()+"*")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		planner = planner.WithDocCache(cache)
	}

	mode := search.Mode(strings.ToLower(searchMode))
	if cfg.KeywordOnly() {
		mode = search.ModeKeyword
	}
	results, latencyMs, err := planner.Search(context.Background(), query, mode, searchLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Printf("no results (%.1f ms)\n", latencyMs)
		return
	}
	fmt.Printf("%d result(s) in %.1f ms\n\n", len(results), latencyMs)
	for i, r := range results {
		fmt.Printf("%d. [%.4f] %s\n   %s\n   %s\n\n", i+1, r.Score, r.Title, r.URL, r.Snippet)
	}
}
