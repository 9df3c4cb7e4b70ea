package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/eng-universe/blogsearch/internal/metadata"
)

// frontierDepth is the narrow slice of frontier.Frontier the idle
// supervisor needs: just enough to decide whether the crawl has run dry.
type frontierDepth interface {
	QueueLen(ctx context.Context) (int64, error)
	DelayLen(ctx context.Context) (int64, error)
}

// Pool runs a fixed-size group of Workers against the same Frontier,
// each in its own goroutine. It does not watch for an idle frontier
// itself; the separate WatchIdle sets StopSignal once the queue and the
// delay set have both stayed empty for an idle grace period.
type Pool struct {
	workers []*Worker
	stop    *StopSignal
}

func NewPool(workers []*Worker, stop *StopSignal) *Pool {
	return &Pool{workers: workers, stop: stop}
}

// Run starts every worker and blocks until all of them return, which
// happens when stop is set or ctx is cancelled. The first worker error
// is returned once every worker has exited; a worker exiting on
// a store error is expected to be restarted by a supervisor, which here
// means the caller of Run.
func (p *Pool) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, len(p.workers))

	for i, w := range p.workers {
		wg.Add(1)
		go func(i int, w *Worker) {
			defer wg.Done()
			errs[i] = w.Run(ctx)
		}(i, w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// WatchIdle polls frontier depth every interval and sets stop once both
// crawl:queue and crawl:delay have been empty for idleGrace. It runs
// until ctx is cancelled or stop is already set, and is meant to run in
// its own goroutine alongside Pool.Run.
func WatchIdle(ctx context.Context, f frontierDepth, stop *StopSignal, sink metadata.MetadataSink, pollInterval, idleGrace time.Duration) {
	var idleSince time.Time

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if stop.IsSet() {
				return
			}
			queueLen, err := f.QueueLen(ctx)
			if err != nil {
				sink.RecordError("crawler", "WatchIdle", metadata.CauseStoreFailure, err)
				continue
			}
			delayLen, err := f.DelayLen(ctx)
			if err != nil {
				sink.RecordError("crawler", "WatchIdle", metadata.CauseStoreFailure, err)
				continue
			}

			if queueLen == 0 && delayLen == 0 {
				if idleSince.IsZero() {
					idleSince = time.Now()
				} else if time.Since(idleSince) >= idleGrace {
					stop.Set()
					return
				}
			} else {
				idleSince = time.Time{}
			}
		}
	}
}
