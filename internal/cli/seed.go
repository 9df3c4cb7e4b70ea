package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/eng-universe/blogsearch/internal/frontier"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/internal/store"
	"github.com/eng-universe/blogsearch/pkg/urlutil"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Admit SEED_START_URLS into the crawl frontier.",
	Long: `seed enqueues every URL in SEED_START_URLS as a depth-0 seed item,
then enqueues each supported blog's sitemap locations alongside it so the
first crawl pass discovers articles through both paths.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSeed()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed() {
	cfg := mustSettings()
	sink := newSink(cfg)

	storeClient, err := store.New(cfg.RedisURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer storeClient.Close()

	fr := frontier.New(storeClient, cfg.KeyQueue(), cfg.KeyDelay(), cfg.KeySeen(), cfg.KeyNextAllowed, unixNow)

	seedURLs := cfg.SeedStartURLs()
	if len(seedURLs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: SEED_START_URLS is empty; nothing to seed.")
		os.Exit(1)
	}

	ctx := context.Background()
	for _, raw := range seedURLs {
		seedOne(ctx, fr, sink, raw)
	}
}

// seedOne normalizes and enqueues a single seed URL, then enqueues the
// sitemap locations known for its domain.
func seedOne(ctx context.Context, fr *frontier.Frontier, sink metadata.MetadataSink, raw string) {
	parsed, err := url.Parse(raw)
	if err != nil {
		sink.RecordError("cmd", "seedOne", metadata.CauseContentInvalid, err, metadata.NewAttr(metadata.AttrURL, raw))
		return
	}
	normalized, ok := urlutil.Normalize(*parsed)
	if !ok {
		sink.RecordError("cmd", "seedOne", metadata.CauseContentInvalid, fmt.Errorf("could not normalize %q", raw))
		return
	}

	item := frontier.CrawlItem{URL: normalized.String(), Source: frontier.SourceSeed, Depth: 0}
	if _, err := fr.Enqueue(ctx, item, true); err != nil {
		sink.RecordError("cmd", "seedOne.enqueue", metadata.CauseStoreFailure, err, metadata.NewAttr(metadata.AttrURL, item.URL))
		return
	}
	fmt.Printf("seeded %s\n", item.URL)

	for _, sitemapURL := range sitemapURLsForDomain(normalized.Hostname()) {
		sitemapItem := frontier.CrawlItem{URL: sitemapURL, Source: frontier.SourceSitemap, Depth: 0}
		if _, err := fr.Enqueue(ctx, sitemapItem, true); err != nil {
			sink.RecordError("cmd", "seedOne.enqueueSitemap", metadata.CauseStoreFailure, err, metadata.NewAttr(metadata.AttrURL, sitemapURL))
			continue
		}
		fmt.Printf("seeded sitemap %s\n", sitemapURL)
	}
}

// SeedOneForTest exposes seedOne to the package's external test package.
func SeedOneForTest(ctx context.Context, fr *frontier.Frontier, sink metadata.MetadataSink, raw string) {
	seedOne(ctx, fr, sink, raw)
}
