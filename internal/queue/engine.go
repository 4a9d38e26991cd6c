package queue

import (
	"context"
	"crypto/subtle"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"github.com/iliyamo/ticketing-core/internal/config"
)

// Status reports a caller's current position in an event's admission
// queue, or the minted token once they have been released.
type Status struct {
	InQueue           bool
	QueueToken        string
	Position          int64
	Total             int64
	EstimatedWaitSecs int64
}

// Engine runs the fair batched admission queue: a Redis sorted set per
// event (score = enqueue time), a monotonic batch cursor advanced
// atomically, and direct-GET token issuance once a waiter's score falls
// at or below the cursor.
type Engine struct {
	rdb *redis.Client
	cfg config.QueueConfig

	admitted atomic.Int64
}

func NewEngine(rdb *redis.Client, cfg config.QueueConfig) *Engine {
	return &Engine{rdb: rdb, cfg: cfg}
}

// AdmittedCount returns the lock-free running total of tokens minted by
// this engine since process start, used by the in-process stats reporter.
func (e *Engine) AdmittedCount() int64 {
	return e.admitted.Load()
}

// BatchSize returns the configured N admitted per batch advance, echoed
// back to clients on every enter/status response per §6.
func (e *Engine) BatchSize() int {
	return e.cfg.BatchSize
}

// BatchIntervalSecs returns the configured T between batch advances, in
// whole seconds, echoed back to clients on every enter/status response.
func (e *Engine) BatchIntervalSecs() int64 {
	return int64(e.cfg.BatchInterval.Seconds())
}

// batchAdvanceScript advances the batch cursor for an event's queue at
// most once per BatchInterval, moving it to the score of the BatchSize'th
// waiter past the current cursor. It is a single script so the
// read-compare-write of the cursor and timestamp never races across
// concurrent callers hitting enter/status at once.
var batchAdvanceScript = redis.NewScript(`
local last_time_key = KEYS[1]
local cursor_key = KEYS[2]
local queue_key = KEYS[3]
local batch_interval = tonumber(ARGV[1])
local batch_size = tonumber(ARGV[2])
local current_time = tonumber(ARGV[3])

local last_time = tonumber(redis.call('GET', last_time_key) or '0')
if (current_time - last_time) < batch_interval then
    local cursor = redis.call('GET', cursor_key)
    if cursor == false then return '0' end
    return cursor
end

local cursor = tonumber(redis.call('GET', cursor_key) or '0')

local members
if cursor == 0 then
    members = redis.call('ZRANGEBYSCORE', queue_key, '-inf', '+inf', 'WITHSCORES', 'LIMIT', 0, batch_size)
else
    members = redis.call('ZRANGEBYSCORE', queue_key, '(' .. tostring(cursor), '+inf', 'WITHSCORES', 'LIMIT', 0, batch_size)
end

if #members == 0 then
    redis.call('SET', last_time_key, tostring(current_time))
    redis.call('EXPIRE', last_time_key, 86400)
    local cur = redis.call('GET', cursor_key)
    if cur == false then return '0' end
    return cur
end

local new_cursor = members[#members]

redis.call('SET', cursor_key, tostring(new_cursor))
redis.call('EXPIRE', cursor_key, 86400)
redis.call('SET', last_time_key, tostring(current_time))
redis.call('EXPIRE', last_time_key, 86400)

return tostring(new_cursor)
`)

func queueKey(eventID uint64) string       { return fmt.Sprintf("queue:event:%d", eventID) }
func cursorKey(eventID uint64) string      { return fmt.Sprintf("queue_batch_cursor:event:%d", eventID) }
func lastAdvanceKey(eventID uint64) string { return fmt.Sprintf("queue_batch_last_time:event:%d", eventID) }
func tokenKey(eventID, userID uint64) string {
	return fmt.Sprintf("queue_token:event:%d:user:%d", eventID, userID)
}
func historyKey(eventID uint64) string { return fmt.Sprintf("queue_history:event:%d", eventID) }

func (e *Engine) advanceBatch(ctx context.Context, eventID uint64, now time.Time) (float64, error) {
	res, err := batchAdvanceScript.Run(ctx, e.rdb,
		[]string{lastAdvanceKey(eventID), cursorKey(eventID), queueKey(eventID)},
		e.cfg.BatchInterval.Seconds(), e.cfg.BatchSize, float64(now.UnixNano())/1e9,
	).Text()
	if err != nil {
		return 0, err
	}
	var cursor float64
	_, err = fmt.Sscanf(res, "%g", &cursor)
	return cursor, err
}

func (e *Engine) issueToken(ctx context.Context, eventID, userID uint64) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	if err := e.rdb.SetEx(ctx, tokenKey(eventID, userID), token, e.cfg.TokenTTL).Err(); err != nil {
		return "", err
	}
	e.admitted.Inc()
	return token, nil
}

func (e *Engine) recordProcessing(ctx context.Context, eventID uint64, now time.Time) {
	key := historyKey(eventID)
	ts := float64(now.UnixNano()) / 1e9
	e.rdb.ZAdd(ctx, key, redis.Z{Score: ts, Member: fmt.Sprintf("%v", ts)})
	e.rdb.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%v", ts-3600))
	e.rdb.Expire(ctx, key, 24*time.Hour)
}

func (e *Engine) recentRate(ctx context.Context, eventID uint64, now time.Time) float64 {
	key := historyKey(eventID)
	ts := float64(now.UnixNano()) / 1e9
	n, err := e.rdb.ZCount(ctx, key, fmt.Sprintf("%v", ts-60), fmt.Sprintf("%v", ts)).Result()
	if err != nil || n <= 0 {
		return 0
	}
	return float64(n) / 60.0
}

// estimatedWait blends a batch-based estimate (60%) with a
// measured-throughput estimate (40%) to damp transient rate spikes while
// still reacting to sustained change in admission speed.
func (e *Engine) estimatedWait(ctx context.Context, eventID uint64, position int64, now time.Time) int64 {
	batchesAhead := int64(0)
	if position > 1 {
		batchesAhead = int64(math.Ceil(float64(position-1) / float64(e.cfg.BatchSize)))
	}
	base := float64(batchesAhead) * e.cfg.BatchInterval.Seconds()

	rate := e.recentRate(ctx, eventID, now)
	if rate <= 0 {
		return int64(math.Max(base, 0))
	}
	rateEstimate := float64(position) / rate
	estimate := base*0.6 + rateEstimate*0.4
	return int64(math.Max(estimate, 0))
}

// MintImmediate issues a token without enqueueing, for events that are not
// queue-gated. The caller (the queue handler) is responsible for deciding
// gating from the event's is_hot/queue_enabled flags; the engine itself
// holds no event metadata.
func (e *Engine) MintImmediate(ctx context.Context, eventID, userID uint64) (Status, error) {
	token, err := e.issueToken(ctx, eventID, userID)
	if err != nil {
		return Status{}, err
	}
	return Status{InQueue: false, QueueToken: token}, nil
}

// Enter enrolls userID in eventID's queue if not already present, opportunistically
// advances the batch cursor, and returns either a released token or the
// caller's current wait position. Both the enter and status HTTP routes
// call this same method: inserting only on absence makes repeated polls
// idempotent and preserves the caller's original enqueue score.
func (e *Engine) Enter(ctx context.Context, eventID, userID uint64, now time.Time) (Status, error) {
	qKey := queueKey(eventID)
	ts := float64(now.UnixNano()) / 1e9
	member := fmt.Sprintf("%d", userID)

	existing, err := e.rdb.ZScore(ctx, qKey, member).Result()
	if err != nil && err != redis.Nil {
		return Status{}, err
	}
	if err == redis.Nil {
		if err := e.rdb.ZAdd(ctx, qKey, redis.Z{Score: ts, Member: member}).Err(); err != nil {
			return Status{}, err
		}
		existing = ts
	}

	cursor, err := e.advanceBatch(ctx, eventID, now)
	if err != nil {
		return Status{}, err
	}

	if cursor > 0 && existing <= cursor {
		token, err := e.issueToken(ctx, eventID, userID)
		if err != nil {
			return Status{}, err
		}
		e.rdb.ZRem(ctx, qKey, member)
		e.recordProcessing(ctx, eventID, now)
		total, _ := e.rdb.ZCard(ctx, qKey).Result()
		return Status{InQueue: false, QueueToken: token, Total: total}, nil
	}

	rank, err := e.rdb.ZRank(ctx, qKey, member).Result()
	total, _ := e.rdb.ZCard(ctx, qKey).Result()
	var position int64
	if err == redis.Nil {
		position = total
	} else if err != nil {
		return Status{}, err
	} else {
		position = rank + 1
	}

	return Status{
		InQueue:           true,
		Position:          position,
		Total:             total,
		EstimatedWaitSecs: e.estimatedWait(ctx, eventID, position, now),
	}, nil
}

// ValidateToken reports whether token is the currently issued queue token
// for (eventID, userID). O(1) direct lookup, no queue traversal.
func (e *Engine) ValidateToken(ctx context.Context, eventID, userID uint64, token string) (bool, error) {
	stored, err := e.rdb.Get(ctx, tokenKey(eventID, userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return token != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}

func randomToken() (string, error) {
	return newURLSafeToken(32)
}
