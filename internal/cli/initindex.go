package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/eng-universe/blogsearch/internal/index"
	"github.com/eng-universe/blogsearch/internal/store"
	"github.com/spf13/cobra"
)

var initIndexCmd = &cobra.Command{
	Use:   "init-index",
	Short: "Create the idx:blogs full-text + vector index.",
	Long: `init-index issues FT.CREATE for the doc: keyspace, with the
embedding VECTOR field present unless KEYWORD_ONLY is set. Creating an
already-existing index is treated as success.`,
	Run: func(cmd *cobra.Command, args []string) {
		runInitIndex()
	},
}

func init() {
	rootCmd.AddCommand(initIndexCmd)
}

func runInitIndex() {
	cfg := mustSettings()

	storeClient, err := store.New(cfg.RedisURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer storeClient.Close()

	schema := index.Schema{
		Name:          cfg.IndexName(),
		Prefix:        cfg.DocKeyPrefix(),
		EmbeddingsDim: cfg.EmbeddingsDim(),
		VectorEnabled: !cfg.KeywordOnly(),
	}

	if err := index.Create(context.Background(), storeClient, schema); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("index %s ready (vector field %v)\n", schema.Name, schema.VectorEnabled)
}
