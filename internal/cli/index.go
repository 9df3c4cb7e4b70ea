package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eng-universe/blogsearch/internal/config"
	"github.com/eng-universe/blogsearch/internal/embeddings"
	"github.com/eng-universe/blogsearch/internal/extractor"
	"github.com/eng-universe/blogsearch/internal/indexer"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/internal/metrics"
	"github.com/eng-universe/blogsearch/internal/objectstore"
	"github.com/eng-universe/blogsearch/internal/storage"
	"github.com/eng-universe/blogsearch/internal/store"
	"github.com/spf13/cobra"
)

var indexLocalOutDir string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Drain raw:queue into the searchable doc:{doc_id} hashes.",
	Long: `index pops ids off raw:queue, re-derives the cleaned article from
its stored crawl:doc:{id} record, computes or delegates its embedding
depending on EMBEDDINGS_PROVIDER, and upserts the resulting doc:{doc_id}
hash the search planner reads. It runs until interrupted, or — when
INDEXER_EXIT_ON_IDLE is set — until the queue has been empty for
INDEXER_IDLE_GRACE_S.`,
	Run: func(cmd *cobra.Command, args []string) {
		runIndex()
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexLocalOutDir, "local-dir", "./data", "base directory raw HTML was stored under locally, when R2 is not configured")
	rootCmd.AddCommand(indexCmd)
}

func runIndex() {
	cfg := mustSettings()
	sink := newSink(cfg)
	reg := metrics.New()

	storeClient, err := store.New(cfg.RedisURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer storeClient.Close()

	rawSink, err := indexRawSink(cfg, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	provider, lateBackend := embeddings.New(embeddings.BackendConfig{
		Provider:                  cfg.EmbeddingsProvider(),
		Dim:                       cfg.EmbeddingsDim(),
		HuggingFaceAPIKey:         cfg.HuggingFaceAPIKey(),
		HuggingFaceEmbeddingModel: cfg.HuggingFaceEmbeddingModel(),
		PylateBaseURL:             cfg.PylateBaseURL(),
		PylateModel:               cfg.PylateModel(),
		PylateAPIKey:              cfg.PylateAPIKey(),
	})

	var sideChannel *objectstore.Store
	if cfg.R2Configured() {
		sideChannel, err = objectstore.New(cfg.R2Endpoint(), cfg.R2Bucket(), cfg.R2AccessKey(), cfg.R2SecretKey(), cfg.R2UseSSL())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}

	idx := indexer.New(
		storeClient,
		rawSink,
		extractor.NewDomExtractor(sink),
		provider,
		lateBackend,
		sideChannelOrNil(sideChannel),
		cfg.KeyDoc,
		cfg.DocKey,
		sink,
		reg,
		indexer.Config{
			KeywordOnly:       cfg.KeywordOnly(),
			EmbeddingsDim:     cfg.EmbeddingsDim(),
			RawQueueKey:       cfg.KeyRawQueue(),
			IndexerIdleGrace:  cfg.IndexerIdleGrace(),
			ExitOnIdle:        cfg.IndexerExitOnIdle(),
			EmptyPollInterval: 2 * time.Second,
		},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := idx.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func indexRawSink(cfg config.Settings, sink metadata.MetadataSink) (storage.RawSink, error) {
	if !cfg.R2Configured() {
		return storage.NewLocalSink(indexLocalOutDir, sink), nil
	}
	objStore, err := objectstore.New(cfg.R2Endpoint(), cfg.R2Bucket(), cfg.R2AccessKey(), cfg.R2SecretKey(), cfg.R2UseSSL())
	if err != nil {
		return nil, err
	}
	return storage.NewObjectSink(objStore, sink), nil
}

// sideChannelOrNil adapts a possibly-nil *objectstore.Store into the
// indexer's sideChannel interface without the indexer package needing to
// know objectstore exists; a nil *objectstore.Store here correctly becomes
// a nil sideChannel, since the indexer only ever calls Put through the
// interface value's method set when it's non-nil.
func sideChannelOrNil(s *objectstore.Store) interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
} {
	if s == nil {
		return nil
	}
	return s
}
