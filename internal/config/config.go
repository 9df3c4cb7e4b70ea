package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings is the fully-resolved runtime configuration shared by every
// subcommand (seed, crawl, index, init-index, metrics). It is built once
// from the environment at process start and passed down by value to every
// component that needs it; nothing in the pipeline re-reads os.Getenv.
type Settings struct {
	//===============
	// Store connection
	//===============
	// Connection string for the shared coordination store (Redis-compatible).
	redisURL string

	//===============
	// Crawl scope
	//===============
	// User-Agent string sent with every HTTP request and matched against
	// robots.txt groups.
	userAgent string
	// Domains permitted as crawl targets.
	seedDomains []string
	// Absolute URLs used to seed the frontier.
	seedStartURLs []string
	// Whether links leaving the seed domain set may be enqueued.
	allowExternal bool

	//===============
	// Limits
	//===============
	// Maximum number of hyperlink hops from a seed URL.
	crawlDepthLimit int
	// Maximum number of concurrent crawl worker goroutines per process.
	crawlerConcurrency int

	//===============
	// Politeness
	//===============
	// Fallback per-domain delay applied when robots.txt specifies neither
	// Crawl-delay nor Request-rate.
	crawlDelayDefault time.Duration

	//===============
	// Fetch
	//===============
	// Maximum duration of a single fetch request.
	requestTimeout time.Duration

	//===============
	// Logging
	//===============
	// Minimum log level emitted by the crawler process ("debug", "info",
	// "warn", "error").
	crawlLog string

	//===============
	// Embeddings
	//===============
	// Which embedding backend to use: "dummy", "huggingface", "pylate"/"colbert".
	embeddingsProvider string
	// Expected embedding vector length.
	embeddingsDim int
	// When true, the search planner never attempts semantic or hybrid modes
	// even if a query requests them.
	keywordOnly               bool
	huggingFaceAPIKey         string
	huggingFaceEmbeddingModel string
	pylateBaseURL             string
	pylateModel               string
	pylateAPIKey              string

	//===============
	// Search
	//===============
	debugSearch bool

	//===============
	// Indexer lifecycle
	//===============
	// When true, the indexer exits after observing an idle queue for
	// indexerIdleGrace instead of running forever.
	indexerExitOnIdle bool
	indexerIdleGrace  time.Duration

	//===============
	// HTTP surfaces
	//===============
	metricsPort int
	apiPort     int

	//===============
	// Object storage (raw HTML persistence)
	//===============
	r2Endpoint  string
	r2Bucket    string
	r2AccessKey string
	r2SecretKey string
	r2UseSSL    bool

	//===============
	// Store key overrides
	//===============
	// Every store key the pipeline touches has an overridable name so that
	// multiple deployments can share one Redis instance without collision.
	keyQueue        string
	keyDelay        string
	keySeen         string
	keyRawQueue     string
	keyRobots       string // format string, one %s placeholder for domain
	keyNextAllow    string // format string, one %s placeholder for domain
	keyDocSeq       string
	keyDocPrefix    string // format string, one %s placeholder for doc id
	keyIndexName    string
	keyDocKeyPrefix string
}

const (
	defaultUserAgent          = "eng-universe-blogsearch/1.0"
	defaultCrawlDepthLimit    = 3
	defaultCrawlerConcurrency = 10
	defaultCrawlDelaySeconds  = 1
	defaultRequestTimeoutS    = 10
	defaultCrawlLog           = "info"
	defaultEmbeddingsProvider = "dummy"
	defaultEmbeddingsDim      = 384
	defaultIndexerIdleGraceS  = 30
	defaultMetricsPort        = 9090
	defaultAPIPort            = 8080
)

// FromEnv builds Settings by reading the process environment, falling back
// to the defaults documented alongside each field. It never returns a
// partially-valid Settings: malformed numeric or boolean env vars fall back
// to defaults rather than aborting startup, since a typo in an optional
// override should not take the whole process down.
func FromEnv() Settings {
	return Settings{
		redisURL: getEnvOr("REDIS_URL", "redis://localhost:6379/0"),

		userAgent:     getEnvOr("EU_USER_AGENT", defaultUserAgent),
		seedDomains:   splitCSV(os.Getenv("SEED_DOMAINS")),
		seedStartURLs: splitCSV(os.Getenv("SEED_START_URLS")),
		allowExternal: getEnvBool("CRAWL_ALLOW_EXTERNAL", false),

		crawlDepthLimit:    getEnvInt("CRAWL_DEPTH_LIMIT", defaultCrawlDepthLimit),
		crawlerConcurrency: getEnvInt("CRAWLER_CONCURRENCY", defaultCrawlerConcurrency),

		crawlDelayDefault: time.Duration(getEnvInt("CRAWL_DELAY_DEFAULT_S", defaultCrawlDelaySeconds)) * time.Second,

		requestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_S", defaultRequestTimeoutS)) * time.Second,

		crawlLog: getEnvOr("CRAWL_LOG", defaultCrawlLog),

		embeddingsProvider:        strings.ToLower(getEnvOr("EMBEDDINGS_PROVIDER", defaultEmbeddingsProvider)),
		embeddingsDim:             getEnvInt("EMBEDDINGS_DIM", defaultEmbeddingsDim),
		keywordOnly:               getEnvBool("KEYWORD_ONLY", false),
		huggingFaceAPIKey:         os.Getenv("HUGGINGFACE_API_KEY"),
		huggingFaceEmbeddingModel: getEnvOr("HUGGINGFACE_EMBEDDINGS_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
		pylateBaseURL:             os.Getenv("PYLATE_BASE_URL"),
		pylateModel:               os.Getenv("PYLATE_MODEL"),
		pylateAPIKey:              os.Getenv("PYLATE_API_KEY"),

		debugSearch: getEnvBool("DEBUG_SEARCH", false),

		indexerExitOnIdle: getEnvBool("INDEXER_EXIT_ON_IDLE", false),
		indexerIdleGrace:  time.Duration(getEnvInt("INDEXER_IDLE_GRACE_S", defaultIndexerIdleGraceS)) * time.Second,

		metricsPort: getEnvInt("METRICS_PORT", defaultMetricsPort),
		apiPort:     getEnvInt("API_PORT", defaultAPIPort),

		r2Endpoint:  os.Getenv("R2_ENDPOINT"),
		r2Bucket:    os.Getenv("R2_BUCKET"),
		r2AccessKey: os.Getenv("R2_ACCESS_KEY_ID"),
		r2SecretKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		r2UseSSL:    getEnvBool("R2_USE_SSL", true),

		keyQueue:        getEnvOr("STORE_KEY_QUEUE", "crawl:queue"),
		keyDelay:        getEnvOr("STORE_KEY_DELAY", "crawl:delay"),
		keySeen:         getEnvOr("STORE_KEY_SEEN", "crawl:seen"),
		keyRawQueue:     getEnvOr("RAW_QUEUE_KEY", "raw:queue"),
		keyRobots:       getEnvOr("STORE_KEY_ROBOTS_FMT", "robots:%s"),
		keyNextAllow:    getEnvOr("STORE_KEY_NEXT_ALLOWED_FMT", "robots:next_allowed:%s"),
		keyDocSeq:       getEnvOr("STORE_KEY_DOC_SEQ", "crawl:doc_seq"),
		keyDocPrefix:    getEnvOr("STORE_KEY_DOC_FMT", "crawl:doc:%s"),
		keyIndexName:    getEnvOr("STORE_INDEX_NAME", "idx:blogs"),
		keyDocKeyPrefix: getEnvOr("STORE_DOC_KEY_PREFIX", "doc:"),
	}
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the one invariant that, unlike a missing env var,
// aborts startup: EMBEDDINGS_DIM must be positive. An empty seed set is
// not rejected here.
func (s Settings) Validate() error {
	if s.embeddingsDim <= 0 {
		return fmt.Errorf("invalid config: EMBEDDINGS_DIM must be positive, got %d", s.embeddingsDim)
	}
	return nil
}

func (s Settings) RedisURL() string { return s.redisURL }

func (s Settings) UserAgent() string       { return s.userAgent }
func (s Settings) SeedDomains() []string   { return append([]string(nil), s.seedDomains...) }
func (s Settings) SeedStartURLs() []string { return append([]string(nil), s.seedStartURLs...) }
func (s Settings) AllowExternal() bool     { return s.allowExternal }

func (s Settings) CrawlDepthLimit() int             { return s.crawlDepthLimit }
func (s Settings) CrawlerConcurrency() int          { return s.crawlerConcurrency }
func (s Settings) CrawlDelayDefault() time.Duration { return s.crawlDelayDefault }
func (s Settings) RequestTimeout() time.Duration    { return s.requestTimeout }
func (s Settings) CrawlLog() string                 { return s.crawlLog }

func (s Settings) EmbeddingsProvider() string        { return s.embeddingsProvider }
func (s Settings) EmbeddingsDim() int                { return s.embeddingsDim }
func (s Settings) KeywordOnly() bool                 { return s.keywordOnly }
func (s Settings) HuggingFaceAPIKey() string         { return s.huggingFaceAPIKey }
func (s Settings) HuggingFaceEmbeddingModel() string { return s.huggingFaceEmbeddingModel }
func (s Settings) PylateBaseURL() string             { return s.pylateBaseURL }
func (s Settings) PylateModel() string               { return s.pylateModel }
func (s Settings) PylateAPIKey() string              { return s.pylateAPIKey }

func (s Settings) DebugSearch() bool { return s.debugSearch }

func (s Settings) IndexerExitOnIdle() bool         { return s.indexerExitOnIdle }
func (s Settings) IndexerIdleGrace() time.Duration { return s.indexerIdleGrace }

func (s Settings) MetricsPort() int { return s.metricsPort }
func (s Settings) APIPort() int     { return s.apiPort }

func (s Settings) R2Endpoint() string  { return s.r2Endpoint }
func (s Settings) R2Bucket() string    { return s.r2Bucket }
func (s Settings) R2AccessKey() string { return s.r2AccessKey }
func (s Settings) R2SecretKey() string { return s.r2SecretKey }
func (s Settings) R2UseSSL() bool      { return s.r2UseSSL }
func (s Settings) R2Configured() bool  { return s.r2Endpoint != "" && s.r2Bucket != "" }

func (s Settings) KeyQueue() string                    { return s.keyQueue }
func (s Settings) KeyDelay() string                    { return s.keyDelay }
func (s Settings) KeySeen() string                     { return s.keySeen }
func (s Settings) KeyRawQueue() string                 { return s.keyRawQueue }
func (s Settings) KeyRobots(domain string) string      { return fmt.Sprintf(s.keyRobots, domain) }
func (s Settings) KeyNextAllowed(domain string) string { return fmt.Sprintf(s.keyNextAllow, domain) }
func (s Settings) KeyDocSeq() string                   { return s.keyDocSeq }
func (s Settings) KeyDoc(id string) string             { return fmt.Sprintf(s.keyDocPrefix, id) }
func (s Settings) IndexName() string                   { return s.keyIndexName }
func (s Settings) DocKeyPrefix() string                { return s.keyDocKeyPrefix }
func (s Settings) DocKey(docID string) string          { return s.keyDocKeyPrefix + docID }

//===============
// Test/builder overrides
//===============
// The With* methods exist so tests can start from FromEnv's defaults and
// override only the fields a scenario cares about, without setting
// environment variables.

func (s Settings) WithRedisURL(v string) Settings                 { s.redisURL = v; return s }
func (s Settings) WithUserAgent(v string) Settings                { s.userAgent = v; return s }
func (s Settings) WithSeedDomains(v []string) Settings            { s.seedDomains = v; return s }
func (s Settings) WithSeedStartURLs(v []string) Settings          { s.seedStartURLs = v; return s }
func (s Settings) WithAllowExternal(v bool) Settings              { s.allowExternal = v; return s }
func (s Settings) WithCrawlDepthLimit(v int) Settings             { s.crawlDepthLimit = v; return s }
func (s Settings) WithCrawlerConcurrency(v int) Settings          { s.crawlerConcurrency = v; return s }
func (s Settings) WithCrawlDelayDefault(v time.Duration) Settings { s.crawlDelayDefault = v; return s }
func (s Settings) WithRequestTimeout(v time.Duration) Settings    { s.requestTimeout = v; return s }
func (s Settings) WithEmbeddingsProvider(v string) Settings       { s.embeddingsProvider = v; return s }
func (s Settings) WithEmbeddingsDim(v int) Settings               { s.embeddingsDim = v; return s }
func (s Settings) WithKeywordOnly(v bool) Settings                { s.keywordOnly = v; return s }
func (s Settings) WithIndexerExitOnIdle(v bool) Settings          { s.indexerExitOnIdle = v; return s }
func (s Settings) WithIndexerIdleGrace(v time.Duration) Settings  { s.indexerIdleGrace = v; return s }
