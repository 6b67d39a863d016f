// Package cache wraps the Redis client used as a read-through accelerator
// in front of the durable store. Nothing here is authoritative: a failed or
// stale read always degrades to a cache miss.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client is a thin wrapper over a go-redis Cmdable, scoped to the two key
// families this system needs: per-user daily enrolment lists and per-campaign
// probability-distribution snapshots.
type Client struct {
	rdb goredis.Cmdable
}

// New creates a Client from an address ("host:port"), password and db index.
func New(addr, password string, db int) *Client {
	return &Client{rdb: goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// NewWithCmdable wraps an already-constructed Cmdable.
func NewWithCmdable(rdb goredis.Cmdable) *Client {
	return &Client{rdb: rdb}
}

// Ping verifies connectivity, used by the health handler.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection, if the wrapped Cmdable owns one.
// For a Cmdable passed to NewWithCmdable that has no Close method of its own,
// this is a no-op.
func (c *Client) Close() error {
	if closer, ok := c.rdb.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func enrolmentKey(userID int32, day time.Time) string {
	return fmt.Sprintf("user-%d:enrolled-campaigns:%s", userID, day.Format("2006-01-02"))
}

func probDistKey(campaignID int32) string {
	return fmt.Sprintf("campaign-%d:prob-dist", campaignID)
}

// IsEnrolled reports whether the user's enrolment list for the given day
// already contains campaignID. An absent key reports false with no error;
// any other read error is returned wrapped, together with false, so the
// caller can log it and fall through to the durable store.
func (c *Client) IsEnrolled(ctx context.Context, userID, campaignID int32, day time.Time) (bool, error) {
	key := enrolmentKey(userID, day)
	entries, err := c.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("read enrolment cache %s: %w", key, err)
	}
	want := strconv.Itoa(int(campaignID))
	for _, e := range entries {
		if e == want {
			return true, nil
		}
	}
	return false, nil
}

// AppendEnrolment records that the user has resolved a draw (of any outcome)
// against campaignID today. Errors are expected to be logged and swallowed
// by the caller: a missed write only costs a self-repairing cache miss later.
func (c *Client) AppendEnrolment(ctx context.Context, userID, campaignID int32, day time.Time) error {
	key := enrolmentKey(userID, day)
	if err := c.rdb.RPush(ctx, key, strconv.Itoa(int(campaignID))).Err(); err != nil {
		return fmt.Errorf("append enrolment cache %s: %w", key, err)
	}
	return nil
}

// ProbDistEntry is one coupon type's id and probability, as cached.
type ProbDistEntry struct {
	CouponTypeID int32
	Probability  float32
}

// GetProbDist reads a campaign's cached probability distribution. ok is false
// on a cache miss; callers must fall back to a durable-store read.
func (c *Client) GetProbDist(ctx context.Context, campaignID int32) (entries []ProbDistEntry, ok bool, err error) {
	key := probDistKey(campaignID)
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read prob-dist cache %s: %w", key, err)
	}

	parts := strings.Split(raw, ",")
	out := make([]ProbDistEntry, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		fields := strings.SplitN(p, ":", 2)
		if len(fields) != 2 {
			return nil, false, fmt.Errorf("malformed prob-dist cache entry %q", p)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, false, fmt.Errorf("malformed prob-dist cache id %q: %w", fields[0], err)
		}
		prob, err := strconv.ParseFloat(fields[1], 32)
		if err != nil {
			return nil, false, fmt.Errorf("malformed prob-dist cache probability %q: %w", fields[1], err)
		}
		out = append(out, ProbDistEntry{CouponTypeID: int32(id), Probability: float32(prob)})
	}
	return out, true, nil
}

// SetProbDist writes a campaign's probability distribution to the cache.
// Campaigns are immutable once created, so this key is effectively
// write-once: no invalidation path is needed.
func (c *Client) SetProbDist(ctx context.Context, campaignID int32, entries []ProbDistEntry) error {
	key := probDistKey(campaignID)
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%d:%s", e.CouponTypeID, strconv.FormatFloat(float64(e.Probability), 'f', -1, 32)))
	}
	if err := c.rdb.Set(ctx, key, strings.Join(parts, ","), 0).Err(); err != nil {
		return fmt.Errorf("write prob-dist cache %s: %w", key, err)
	}
	return nil
}
