package config_test

import (
	"testing"
	"time"

	"github.com/eng-universe/blogsearch/internal/config"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"REDIS_URL", "EU_USER_AGENT", "SEED_DOMAINS", "SEED_START_URLS",
		"CRAWL_ALLOW_EXTERNAL", "CRAWL_DEPTH_LIMIT", "CRAWLER_CONCURRENCY",
		"CRAWL_DELAY_DEFAULT_S", "REQUEST_TIMEOUT_S", "CRAWL_LOG",
		"EMBEDDINGS_PROVIDER", "EMBEDDINGS_DIM", "KEYWORD_ONLY",
		"INDEXER_EXIT_ON_IDLE", "INDEXER_IDLE_GRACE_S", "METRICS_PORT",
		"API_PORT", "RAW_QUEUE_KEY", "STORE_KEY_QUEUE",
	} {
		t.Setenv(key, "")
	}

	cfg := config.FromEnv()

	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL())
	require.Equal(t, "eng-universe-blogsearch/1.0", cfg.UserAgent())
	require.Empty(t, cfg.SeedDomains())
	require.Empty(t, cfg.SeedStartURLs())
	require.False(t, cfg.AllowExternal())
	require.Equal(t, 3, cfg.CrawlDepthLimit())
	require.Equal(t, 10, cfg.CrawlerConcurrency())
	require.Equal(t, time.Second, cfg.CrawlDelayDefault())
	require.Equal(t, 10*time.Second, cfg.RequestTimeout())
	require.Equal(t, "info", cfg.CrawlLog())
	require.Equal(t, "dummy", cfg.EmbeddingsProvider())
	require.Equal(t, 384, cfg.EmbeddingsDim())
	require.False(t, cfg.KeywordOnly())
	require.Equal(t, 9090, cfg.MetricsPort())
	require.Equal(t, 8080, cfg.APIPort())
	require.False(t, cfg.R2Configured())
	require.Equal(t, "raw:queue", cfg.KeyRawQueue())
	require.Equal(t, "crawl:queue", cfg.KeyQueue())
	require.Equal(t, "idx:blogs", cfg.IndexName())
	require.Equal(t, "doc:", cfg.DocKeyPrefix())
	require.Equal(t, "doc:abc123", cfg.DocKey("abc123"))
}

func TestFromEnvReadsOverrides(t *testing.T) {
	t.Setenv("SEED_DOMAINS", "stripe.com, netflixtechblog.com ,")
	t.Setenv("SEED_START_URLS", "https://stripe.com/blog")
	t.Setenv("CRAWL_DEPTH_LIMIT", "5")
	t.Setenv("KEYWORD_ONLY", "true")
	t.Setenv("RAW_QUEUE_KEY", "custom:raw")

	cfg := config.FromEnv()

	require.Equal(t, []string{"stripe.com", "netflixtechblog.com"}, cfg.SeedDomains())
	require.Equal(t, []string{"https://stripe.com/blog"}, cfg.SeedStartURLs())
	require.Equal(t, 5, cfg.CrawlDepthLimit())
	require.True(t, cfg.KeywordOnly())
	require.Equal(t, "custom:raw", cfg.KeyRawQueue())
}

func TestFromEnvMalformedNumericFallsBackToDefault(t *testing.T) {
	t.Setenv("CRAWL_DEPTH_LIMIT", "not-a-number")

	cfg := config.FromEnv()

	require.Equal(t, 3, cfg.CrawlDepthLimit())
}

func TestValidateRejectsNonPositiveEmbeddingsDim(t *testing.T) {
	cfg := config.FromEnv().WithEmbeddingsDim(0)
	require.Error(t, cfg.Validate())

	cfg = config.FromEnv().WithEmbeddingsDim(384)
	require.NoError(t, cfg.Validate())
}

func TestR2ConfiguredRequiresEndpointAndBucket(t *testing.T) {
	t.Setenv("R2_ENDPOINT", "")
	t.Setenv("R2_BUCKET", "")
	require.False(t, config.FromEnv().R2Configured())

	t.Setenv("R2_ENDPOINT", "https://r2.example.com")
	t.Setenv("R2_BUCKET", "blogsearch")
	require.True(t, config.FromEnv().R2Configured())
}

func TestKeyRobotsAndNextAllowedFormatByDomain(t *testing.T) {
	cfg := config.FromEnv()
	require.Equal(t, "robots:stripe.com", cfg.KeyRobots("stripe.com"))
	require.Equal(t, "robots:next_allowed:stripe.com", cfg.KeyNextAllowed("stripe.com"))
}
