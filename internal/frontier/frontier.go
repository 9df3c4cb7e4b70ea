package frontier

import (
	"context"

	"github.com/eng-universe/blogsearch/internal/store"
)

/*
Frontier Responsibilities
  - Maintain FIFO ordering of pending crawl work
  - Deduplicate URLs at admission time, globally, across every worker
  - Hold URLs whose domain is rate-limited until they become eligible again

Frontier knows nothing about fetching, extraction, or storage: it is
state plus ordering, backed entirely by the shared coordination store so
that N worker processes can cooperate through it. There is no
in-process queue or set here by design — see DESIGN.md.
*/

// storeClient is the slice of store.Client the frontier depends on.
type storeClient interface {
	PushRight(ctx context.Context, key, value string) error
	PopLeft(ctx context.Context, key string) (string, bool, error)
	Length(ctx context.Context, key string) (int64, error)
	SeenAdd(ctx context.Context, key, member string) (bool, error)
	DelayedAdd(ctx context.Context, key, member string, score float64) error
	DelayedDue(ctx context.Context, key string, maxScore float64) ([]string, error)
	DelayedRemoveBatch(ctx context.Context, key string, members []string) ([]bool, error)
	DelayedCard(ctx context.Context, key string) (int64, error)
	PushRightBatch(ctx context.Context, key string, values []string) error
	Reserve(ctx context.Context, key string, now, delaySeconds float64) (store.ReservationResult, error)
}

// Clock returns the current unix time in seconds. Exists so tests can
// control "now" instead of relying on wall-clock time.
type Clock func() float64

// Frontier is the coordination-store-backed crawl queue.
type Frontier struct {
	store     storeClient
	queueKey  string
	delayKey  string
	seenKey   string
	nextAllow func(domain string) string
	now       Clock
}

func New(store storeClient, queueKey, delayKey, seenKey string, nextAllowedKey func(string) string, now Clock) *Frontier {
	return &Frontier{
		store:     store,
		queueKey:  queueKey,
		delayKey:  delayKey,
		seenKey:   seenKey,
		nextAllow: nextAllowedKey,
		now:       now,
	}
}

// Enqueue admits item into the frontier. When dedupe is true (the normal
// case), item.URL is atomically added to the seen set first; the item is
// only appended to the queue if that add was the first one ever, giving
// at-most-once admission across every concurrent caller.
func (f *Frontier) Enqueue(ctx context.Context, item CrawlItem, dedupe bool) (bool, error) {
	if dedupe {
		added, err := f.store.SeenAdd(ctx, f.seenKey, item.URL)
		if err != nil {
			return false, err
		}
		if !added {
			return false, nil
		}
	}
	if err := f.store.PushRight(ctx, f.queueKey, item.Serialize()); err != nil {
		return false, err
	}
	return true, nil
}

// Dequeue pops the next item off the queue, or (_, false, nil) if empty.
func (f *Frontier) Dequeue(ctx context.Context) (CrawlItem, bool, error) {
	raw, ok, err := f.store.PopLeft(ctx, f.queueKey)
	if err != nil || !ok {
		return CrawlItem{}, false, err
	}
	item, err := Deserialize(raw)
	if err != nil {
		return CrawlItem{}, false, err
	}
	return item, true, nil
}

// Delay schedules item to become eligible for requeue at whenTS (unix
// seconds).
func (f *Frontier) Delay(ctx context.Context, item CrawlItem, whenTS float64) error {
	return f.store.DelayedAdd(ctx, f.delayKey, item.Serialize(), whenTS)
}

// RequeueDelayed moves every delayed item whose score is <= now back onto
// the queue, in ascending score order, removing each from the delay set
// as it's moved. Both legs are pipelined. Concurrent callers racing on
// the same member are safe: ZREM is conditional, so only the caller that
// actually removed a member re-enqueues it.
func (f *Frontier) RequeueDelayed(ctx context.Context, max int) (int, error) {
	due, err := f.store.DelayedDue(ctx, f.delayKey, f.now())
	if err != nil {
		return 0, err
	}
	if len(due) > max {
		due = due[:max]
	}
	if len(due) == 0 {
		return 0, nil
	}

	removed, err := f.store.DelayedRemoveBatch(ctx, f.delayKey, due)
	if err != nil {
		return 0, err
	}
	won := make([]string, 0, len(due))
	for i, member := range due {
		if removed[i] {
			won = append(won, member)
		}
	}
	if err := f.store.PushRightBatch(ctx, f.queueKey, won); err != nil {
		return 0, err
	}
	return len(won), nil
}

// QueueLen and DelayLen expose frontier depth for idle-shutdown checks.
func (f *Frontier) QueueLen(ctx context.Context) (int64, error) {
	return f.store.Length(ctx, f.queueKey)
}

func (f *Frontier) DelayLen(ctx context.Context) (int64, error) {
	return f.store.DelayedCard(ctx, f.delayKey)
}

// ReserveNextAllowed is the atomic scripted CAS on a domain's
// reservation key: if the stored
// "next allowed" timestamp for domain has already elapsed, it's advanced
// by delaySeconds and the caller may fetch now; otherwise the caller must
// Delay its item until the returned timestamp.
func (f *Frontier) ReserveNextAllowed(ctx context.Context, domain string, delaySeconds float64) (bool, float64, error) {
	res, err := f.store.Reserve(ctx, f.nextAllow(domain), f.now(), delaySeconds)
	if err != nil {
		return false, 0, err
	}
	return res.Reserved, res.NextAllowed, nil
}
