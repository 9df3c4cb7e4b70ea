package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eng-universe/blogsearch/internal/config"
	"github.com/eng-universe/blogsearch/internal/crawler"
	"github.com/eng-universe/blogsearch/internal/fetcher"
	"github.com/eng-universe/blogsearch/internal/frontier"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/internal/metrics"
	"github.com/eng-universe/blogsearch/internal/objectstore"
	"github.com/eng-universe/blogsearch/internal/robots"
	"github.com/eng-universe/blogsearch/internal/storage"
	"github.com/eng-universe/blogsearch/internal/store"
	"github.com/spf13/cobra"
)

var (
	crawlMaxDocs     int64
	crawlExitOnIdle  bool
	crawlIdleGrace   time.Duration
	crawlLocalOutDir string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the crawl worker pool against the shared frontier.",
	Long: `crawl starts CRAWLER_CONCURRENCY workers that pop items off the
frontier, check robots.txt, respect per-domain crawl delay, fetch the page,
enqueue discovered links and sitemap entries, and persist admitted articles
for the indexer to pick up. It runs until interrupted, or until --max-docs
documents have been stored, or (with --exit-on-idle) until the frontier has
been empty for --idle-grace.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCrawl()
	},
}

func init() {
	crawlCmd.Flags().Int64Var(&crawlMaxDocs, "max-docs", 0, "stop after persisting this many documents (0 = unbounded)")
	crawlCmd.Flags().BoolVar(&crawlExitOnIdle, "exit-on-idle", false, "stop once the frontier has been empty for --idle-grace")
	crawlCmd.Flags().DurationVar(&crawlIdleGrace, "idle-grace", 30*time.Second, "how long the frontier must stay empty before --exit-on-idle stops the pool")
	crawlCmd.Flags().StringVar(&crawlLocalOutDir, "local-dir", "./data", "base directory for locally stored raw HTML when R2 is not configured")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl() {
	cfg := mustSettings()
	sink := newSink(cfg)
	reg := metrics.New()

	storeClient, err := store.New(cfg.RedisURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer storeClient.Close()

	allowList, err := defaultAllowList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	rawSink, err := newRawSink(cfg, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	robotsCache := robots.NewCache(storeClient, &http.Client{Timeout: cfg.RequestTimeout()}, cfg.UserAgent(), cfg.KeyRobots, sink)
	htmlFetcher := fetcher.NewHTMLFetcher(sink, cfg.RequestTimeout())
	writer := storage.NewWriter(storeClient, rawSink, cfg.KeyDocSeq(), cfg.KeyDoc, cfg.KeyRawQueue())

	workerCfg := crawler.Config{
		UserAgent:         cfg.UserAgent(),
		DepthLimit:        cfg.CrawlDepthLimit(),
		AllowExternal:     cfg.AllowExternal(),
		CrawlDelayDefault: cfg.CrawlDelayDefault(),
		RequeueBatch:      100,
		EmptyPollInterval: 2 * time.Second,
		MaxDocs:           crawlMaxDocs,
	}

	stop := &crawler.StopSignal{}
	counter := &crawler.DocCounter{}

	concurrency := cfg.CrawlerConcurrency()
	if concurrency <= 0 {
		concurrency = 1
	}

	// One Frontier is shared by every worker: it holds no in-process state
	// beyond its key names and clock, so concurrent use is exactly as safe
	// as concurrent use of the underlying store client.
	fr := frontier.New(storeClient, cfg.KeyQueue(), cfg.KeyDelay(), cfg.KeySeen(), cfg.KeyNextAllowed, unixNow)

	workers := make([]*crawler.Worker, 0, concurrency)
	for i := 0; i < concurrency; i++ {
		workers = append(workers, crawler.NewWorker(i, fr, robotsCache, htmlFetcher, allowList, writer, sink, reg, workerCfg, stop, counter))
	}
	pool := crawler.NewPool(workers, stop)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if crawlExitOnIdle {
		go crawler.WatchIdle(ctx, fr, stop, sink, 2*time.Second, crawlIdleGrace)
	}

	if err := pool.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("crawl finished: %d document(s) stored\n", counter.Count())
}

// newRawSink picks the object-store or local-filesystem RawSink depending
// on whether R2 credentials are present.
func newRawSink(cfg config.Settings, sink metadata.MetadataSink) (storage.RawSink, error) {
	if !cfg.R2Configured() {
		return storage.NewLocalSink(crawlLocalOutDir, sink), nil
	}
	objStore, err := objectstore.New(cfg.R2Endpoint(), cfg.R2Bucket(), cfg.R2AccessKey(), cfg.R2SecretKey(), cfg.R2UseSSL())
	if err != nil {
		return nil, err
	}
	return storage.NewObjectSink(objStore, sink), nil
}
