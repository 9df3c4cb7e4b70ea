package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

/*
Client is the typed façade every pipeline component (frontier, robots
cache, indexer, search planner) talks to instead of importing go-redis
directly.

Responsibilities
  - Own the single go-redis connection pool for a process
  - Expose the narrow set of operations the coordination store keyspace
    actually needs: list push/pop, sorted-set scheduling, set membership,
    hash records, atomic scalar CAS, and raw RediSearch commands
  - Translate redis.Nil into plain (zero value, false, nil) results rather
    than forcing every caller to special-case it

Client does not know about domains, URLs, or documents. It only knows
about keys, members, and scores.
*/
type Client struct {
	rdb *redis.Client
}

// New dials a Redis-compatible store from a connection URL
// (e.g. "redis://localhost:6379/0").
func New(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse redis url: %w", err)
	}
	return &Client{rdb: redis.NewClient(opts)}, nil
}

// NewFromRedis wraps an already-constructed go-redis client. Used in tests
// to point a Client at a miniredis instance.
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

//===============
// Lists (crawl:queue)
//===============

func (c *Client) PushRight(ctx context.Context, key, value string) error {
	return c.rdb.RPush(ctx, key, value).Err()
}

// PopLeft returns (value, true, nil) when an item was dequeued, or
// ("", false, nil) when the list was empty.
func (c *Client) PopLeft(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.LPop(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *Client) Length(ctx context.Context, key string) (int64, error) {
	return c.rdb.LLen(ctx, key).Result()
}

// PushRightBatch appends values in order as one pipelined round-trip.
func (c *Client) PushRightBatch(ctx context.Context, key string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, v := range values {
			pipe.RPush(ctx, key, v)
		}
		return nil
	})
	return err
}

//===============
// Sorted sets (crawl:delay)
//===============

func (c *Client) DelayedAdd(ctx context.Context, key, member string, score float64) error {
	return c.rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

// DelayedDue returns every member whose score is <= maxScore, in ascending
// score order, so callers can preserve scheduling order when requeueing.
func (c *Client) DelayedDue(ctx context.Context, key string, maxScore float64) ([]string, error) {
	return c.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "-inf",
		Max: formatScore(maxScore),
	}).Result()
}

func (c *Client) DelayedRemove(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return c.rdb.ZRem(ctx, key, args...).Err()
}

func (c *Client) DelayedCard(ctx context.Context, key string) (int64, error) {
	return c.rdb.ZCard(ctx, key).Result()
}

// DelayedRemoveBatch removes members as one pipelined round-trip and
// reports, per member, whether this caller actually removed it. The
// per-member result is what makes concurrent requeue callers safe: ZREM
// is conditional, so only the caller that removed a member gets true
// back and may re-enqueue it.
func (c *Client) DelayedRemoveBatch(ctx context.Context, key string, members []string) ([]bool, error) {
	if len(members) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.IntCmd, len(members))
	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, m := range members {
			cmds[i] = pipe.ZRem(ctx, key, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	removed := make([]bool, len(members))
	for i, cmd := range cmds {
		removed[i] = cmd.Val() > 0
	}
	return removed, nil
}

//===============
// Sets (crawl:seen)
//===============

// SeenAdd reports whether member was newly added (true) or already present
// (false); this is the at-most-once admission primitive.
func (c *Client) SeenAdd(ctx context.Context, key, member string) (bool, error) {
	n, err := c.rdb.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Client) SeenContains(ctx context.Context, key, member string) (bool, error) {
	return c.rdb.SIsMember(ctx, key, member).Result()
}

func (c *Client) SeenCard(ctx context.Context, key string) (int64, error) {
	return c.rdb.SCard(ctx, key).Result()
}

//===============
// Hashes (robots:{domain}, crawl:doc:{id}, doc:{doc_id})
//===============

func (c *Client) HashSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		values = append(values, k, v)
	}
	return c.rdb.HSet(ctx, key, values...).Err()
}

func (c *Client) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Client) HashExists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

//===============
// Scalars (crawl:doc_seq)
//===============

func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// ScanKeys returns every key matching the given glob pattern (e.g.
// "doc:*"), iterating SCAN cursors to completion rather than blocking
// the store with a single KEYS call. Used by the search planner's
// optional doc-cache warm-up.
func (c *Client) ScanKeys(ctx context.Context, match string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.rdb.Scan(ctx, cursor, match, 200).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

//===============
// Raw command execution (FT.CREATE / FT.SEARCH)
//===============

// RawCommand executes an arbitrary Redis command, used for RediSearch
// verbs that have no first-class go-redis method (FT.CREATE, FT.SEARCH).
// There is no dedicated RediSearch client in use here; the raw command
// path through go-redis covers both verbs.
func (c *Client) RawCommand(ctx context.Context, args ...interface{}) (interface{}, error) {
	cmd := c.rdb.Do(ctx, args...)
	res, err := cmd.Result()
	if err != nil {
		return nil, &StoreError{
			Message:   err.Error(),
			Retryable: err != redis.Nil,
			Cause:     ErrCauseCommandFailure,
			Key:       fmt.Sprint(args...),
		}
	}
	return res, nil
}

//===============
// Atomic scalar CAS via Lua
//===============

// reservationScript implements the exact semantics required for per-domain
// crawl spacing: if the stored "next allowed" timestamp has already
// elapsed, advance it by delay and report success; otherwise report the
// timestamp the caller must wait until. The whole check-then-set happens
// inside Redis so concurrent crawler processes never race on the same
// domain's reservation.
var reservationScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local delay = tonumber(ARGV[2])
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current <= now then
    local next_allowed = now + delay
    redis.call("SET", KEYS[1], next_allowed)
    return {1, next_allowed}
end
return {0, current}
`)

// ReservationResult is the outcome of a single reservation attempt.
type ReservationResult struct {
	Reserved    bool
	NextAllowed float64
}

// Reserve atomically checks and advances the per-domain "next allowed"
// timestamp stored at key. now and delaySeconds are both in seconds.
func (c *Client) Reserve(ctx context.Context, key string, now, delaySeconds float64) (ReservationResult, error) {
	res, err := reservationScript.Run(ctx, c.rdb, []string{key}, now, delaySeconds).Result()
	if err != nil {
		return ReservationResult{}, &StoreError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseScriptFailure,
			Key:       key,
		}
	}
	parts, ok := res.([]interface{})
	if !ok || len(parts) != 2 {
		return ReservationResult{}, fmt.Errorf("store: unexpected reservation script result %v", res)
	}
	reserved, _ := toInt64(parts[0])
	nextAllowed, _ := toFloat64(parts[1])
	return ReservationResult{
		Reserved:    reserved == 1,
		NextAllowed: nextAllowed,
	}, nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case string:
		var out int64
		_, err := fmt.Sscanf(n, "%d", &out)
		return out, err == nil
	default:
		return 0, false
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case string:
		var out float64
		_, err := fmt.Sscanf(n, "%f", &out)
		return out, err == nil
	default:
		return 0, false
	}
}

func formatScore(score float64) string {
	return fmt.Sprintf("%f", score)
}
