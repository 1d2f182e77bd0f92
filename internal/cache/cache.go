// Package cache provides a two-tier TTL cache: a remote Redis tier with an
// in-process map fallback. Cache failures are absorbed here — a broken or
// absent remote tier degrades to local-only operation and never fails the
// request path.
package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coinwatch/coinpulse/internal/domain/errs"
	"github.com/coinwatch/coinpulse/internal/logger"
)

// CoinsTTL is how long the coin market listing stays cached.
const CoinsTTL = 2 * time.Minute

const (
	recentHistoryTTL = 5 * time.Minute
	oldHistoryTTL    = time.Hour
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Store is the two-tier cache. Both tiers hold the same marshalled JSON
// payload, so repeated hits decode byte-identical values regardless of which
// tier answered. The local tier grows unbounded until process restart;
// entries expire by TTL only.
type Store struct {
	rdb   *redis.Client // nil disables the remote tier
	mu    sync.Mutex
	local map[string]entry
}

// New creates a Store. Passing a nil client runs the cache local-only.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, local: make(map[string]entry)}
}

// Key derives a deterministic cache key from a namespace and query
// parameters: sorted "k:v" pairs joined by "|", prefixed "namespace:".
// Identical parameters produce identical keys regardless of map order.
func Key(namespace string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+":"+params[name])
	}
	return namespace + ":" + strings.Join(pairs, "|")
}

// HistoryTTL picks the TTL for a history window ending at to: recent windows
// (ending within the last 24h) may still be revised upstream and get a short
// TTL; fully historical windows are immutable and cache for an hour.
func HistoryTTL(to time.Time) time.Duration {
	if to.After(time.Now().Add(-24 * time.Hour)) {
		return recentHistoryTTL
	}
	return oldHistoryTTL
}

// Get looks the key up remote-tier-first and unmarshals the cached payload
// into dest. Any remote failure is logged and treated as a miss. Expired
// local entries are deleted on read. Returns true only when dest was filled.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			uerr := json.Unmarshal(data, dest)
			if uerr == nil {
				return true
			}
			logger.L().Warn().Str("key", key).
				Err(&errs.CacheError{Op: "get", Tier: "remote", Err: uerr}).
				Msg("remote cache held undecodable payload, falling through")
		case err != redis.Nil:
			logger.L().Warn().Str("key", key).
				Err(&errs.CacheError{Op: "get", Tier: "remote", Err: err}).
				Msg("remote cache get failed, falling back to local tier")
		}
	}

	s.mu.Lock()
	e, ok := s.local[key]
	if ok && time.Now().After(e.expiresAt) {
		delete(s.local, key)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	if err := json.Unmarshal(e.payload, dest); err != nil {
		logger.L().Warn().Str("key", key).
			Err(&errs.CacheError{Op: "get", Tier: "local", Err: err}).
			Msg("local cache held undecodable payload")
		return false
	}
	return true
}

// Set writes the value to both tiers with the given TTL. The remote write is
// best-effort; the local write always happens.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.L().Warn().Str("key", key).Err(err).Msg("cache set skipped, value not serializable")
		return
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
			logger.L().Warn().Str("key", key).
				Err(&errs.CacheError{Op: "set", Tier: "remote", Err: err}).
				Msg("remote cache set failed")
		}
	}

	s.mu.Lock()
	s.local[key] = entry{payload: data, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

// Delete removes the key from both tiers.
func (s *Store) Delete(ctx context.Context, key string) {
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			logger.L().Warn().Str("key", key).
				Err(&errs.CacheError{Op: "delete", Tier: "remote", Err: err}).
				Msg("remote cache delete failed")
		}
	}
	s.mu.Lock()
	delete(s.local, key)
	s.mu.Unlock()
}

// RemoteEnabled reports whether a remote tier is configured.
func (s *Store) RemoteEnabled() bool { return s.rdb != nil }

// Ping checks remote tier connectivity; nil when no remote tier is
// configured. Used by the readiness probe only.
func (s *Store) Ping(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}
