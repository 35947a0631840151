// Package redisstore keeps frequency tables in Redis sorted sets.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/store"
)

const (
	statsKey = "stats"
	runsKey  = "runs"
)

// Options holds configuration for connecting to a Redis server.
type Options struct {
	// Address is the host:port of the Redis server.
	Address string
	// Password is the password used to authenticate.
	Password string
	// DB is the database index to select.
	DB int
	// Namespace suffixes every key, e.g. "verb:napkin".
	Namespace string
}

// DefaultOptions returns the historical layout: port 6380, database 5.
func DefaultOptions() Options {
	return Options{
		Address:   "localhost:6380",
		DB:        5,
		Namespace: "napkin",
	}
}

type redisStore struct {
	client    *redis.Client
	namespace string
}

// Open creates a client for opts. No traffic is sent until the first
// command; callers Ping before use.
func Open(opts Options) store.Store {
	if opts.Namespace == "" {
		opts.Namespace = DefaultOptions().Namespace
	}
	log.Debug("Opening Redis connection", "address", opts.Address, "db", opts.DB, "namespace", opts.Namespace)
	return &redisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Address,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		namespace: opts.Namespace,
	}
}

// OpenURL creates a client from a redis:// URI.
func OpenURL(url, namespace string) (store.Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if namespace == "" {
		namespace = DefaultOptions().Namespace
	}
	return &redisStore{client: redis.NewClient(opts), namespace: namespace}, nil
}

func (s *redisStore) key(name string) string {
	return name + ":" + s.namespace
}

// Close closes the underlying client.
func (s *redisStore) Close() error {
	log.Debug("Closing Redis connection")
	return s.client.Close()
}

// Ping tests connectivity to Redis.
func (s *redisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Increment bumps term in the sorted set of cat.
func (s *redisStore) Increment(ctx context.Context, cat category.Category, term string) error {
	if err := s.client.ZIncrBy(ctx, s.key(string(cat)), 1, term).Err(); err != nil {
		return fmt.Errorf("redis zincrby failed for %s: %w", cat, err)
	}
	return nil
}

// TopN returns the highest-scored members. Ties follow Redis ordering:
// members with equal score come in reverse lexicographic order.
func (s *redisStore) TopN(ctx context.Context, cat category.Category, n int) ([]store.Entry, error) {
	if n == 0 {
		return nil, nil
	}
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	zs, err := s.client.ZRevRangeWithScores(ctx, s.key(string(cat)), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange failed for %s: %w", cat, err)
	}
	entries := make([]store.Entry, 0, len(zs))
	for _, z := range zs {
		entries = append(entries, store.Entry{Term: fmt.Sprint(z.Member), Count: int64(z.Score)})
	}
	return entries, nil
}

// IncrementStat bumps a field of the stats hash.
func (s *redisStore) IncrementStat(ctx context.Context, name string) error {
	if err := s.client.HIncrBy(ctx, s.key(statsKey), name, 1).Err(); err != nil {
		return fmt.Errorf("redis hincrby failed for %s: %w", name, err)
	}
	return nil
}

// SetTokenCount overwrites the token field of the stats hash.
func (s *redisStore) SetTokenCount(ctx context.Context, n int64) error {
	if err := s.client.HSet(ctx, s.key(statsKey), category.TokenStat, n).Err(); err != nil {
		return fmt.Errorf("redis hset failed: %w", err)
	}
	return nil
}

// Stats reads the stats hash.
func (s *redisStore) Stats(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, s.key(statsKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

// Reset deletes every table and the stats hash of the namespace, keeping
// the run history.
func (s *redisStore) Reset(ctx context.Context) error {
	log.Debug("Clearing napkin keys", "namespace", s.namespace)
	pattern := "*:" + s.namespace
	runs := s.key(runsKey)

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		doomed := keys[:0]
		for _, k := range keys {
			if k != runs && strings.HasSuffix(k, ":"+s.namespace) {
				doomed = append(doomed, k)
			}
		}
		if len(doomed) > 0 {
			if err := s.client.Del(ctx, doomed...).Err(); err != nil {
				return fmt.Errorf("redis del failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

type runRecord struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Lang      string    `json:"lang"`
	Flushed   bool      `json:"flushed"`
	Tokens    int64     `json:"tokens"`
	StartedAt time.Time `json:"started_at"`
}

// RecordRun pushes a JSON run record onto the runs list.
func (s *redisStore) RecordRun(ctx context.Context, r store.Run) error {
	data, err := json.Marshal(runRecord(r))
	if err != nil {
		return err
	}
	if err := s.client.LPush(ctx, s.key(runsKey), data).Err(); err != nil {
		return fmt.Errorf("redis lpush failed: %w", err)
	}
	return nil
}

// Runs returns the most recent runs first; limit <= 0 returns all.
func (s *redisStore) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := s.client.LRange(ctx, s.key(runsKey), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange failed: %w", err)
	}
	runs := make([]store.Run, 0, len(raw))
	for _, item := range raw {
		var rec runRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		runs = append(runs, store.Run(rec))
	}
	return runs, nil
}
