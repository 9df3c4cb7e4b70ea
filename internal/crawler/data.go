package crawler

import (
	"sync/atomic"
	"time"
)

// Config bundles the tunables a Worker needs from Settings without
// importing the config package directly, so tests can construct one
// inline.
type Config struct {
	UserAgent         string
	DepthLimit        int
	AllowExternal     bool
	CrawlDelayDefault time.Duration
	RequeueBatch      int
	EmptyPollInterval time.Duration
	MaxDocs           int64 // 0 means unbounded
}

// StopSignal is a shared, goroutine-safe flag every worker polls at the
// top of its loop.
type StopSignal struct {
	flag atomic.Bool
}

func (s *StopSignal) Set()        { s.flag.Store(true) }
func (s *StopSignal) IsSet() bool { return s.flag.Load() }

// DocCounter is the shared max-docs budget counter. It is
// the one piece of in-memory mutable state workers touch concurrently,
// and the increment never performs I/O under its implicit lock.
type DocCounter struct {
	count atomic.Int64
}

// Increment adds one and reports whether the configured limit has now
// been reached. A limit of 0 means unbounded; Increment always reports
// false in that case.
func (d *DocCounter) Increment(limit int64) bool {
	n := d.count.Add(1)
	return limit > 0 && n >= limit
}

func (d *DocCounter) Count() int64 {
	return d.count.Load()
}

// CrawlMetrics is the optional counter sink a Worker reports completed
// fetches to. A nil CrawlMetrics is valid: metric emission is optional.
type CrawlMetrics interface {
	RecordCrawl(domain string)
}
