package cache

import (
	"context"
	"encoding/hex"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/crossbuild/sdkgen/internal/logging"
	"github.com/crossbuild/sdkgen/internal/vfs"
)

// Runner performs the actual work for a cache miss, returning the path
// (or other string-encoded result) that Engine will memoize.
type Runner func(ctx context.Context) (string, error)

// Engine is the cache engine of spec §4.H: it deduplicates concurrent
// requests for the same query within one process (singleflight), then
// consults a persistent store, falling back to running the query and
// recording its result only on success.
type Engine struct {
	store *Store
	fs    vfs.FS
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewEngine builds an Engine over an already-open Store.
func NewEngine(store *Store, fs vfs.FS) *Engine {
	return &Engine{store: store, fs: fs}
}

// Stats reports cumulative hit/miss counts for diagnostics. The
// `cache stats` CLI command does not use it; it prints the store's
// record count only.
type Stats struct {
	Hits   int64
	Misses int64
}

func (e *Engine) Stats() Stats {
	return Stats{Hits: e.hits.Load(), Misses: e.misses.Load()}
}

// GC sweeps every persisted record and evicts those whose artifact no
// longer exists on disk, the same read-time validation rule Get
// applies lazily (spec §4.H), surfaced here for the `cache gc` CLI
// supplement so a caller can reclaim stale records without first
// requesting each key.
func (e *Engine) GC(ctx context.Context) (evicted, kept int, err error) {
	records, err := e.store.All(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, rec := range records {
		key, decodeErr := hex.DecodeString(rec.KeyHex)
		if decodeErr != nil {
			continue
		}
		if e.fs.Exists(ctx, rec.ResultPath) {
			kept++
			continue
		}
		if delErr := e.store.Delete(ctx, key); delErr != nil {
			logging.Get().Warn().Err(delErr).Msg("cache gc: failed to evict stale record")
			continue
		}
		evicted++
	}
	return evicted, kept, nil
}

// Get resolves q: at most one concurrent execution of run proceeds per
// key within this process; a valid persistent-cache record short-
// circuits it entirely.
func (e *Engine) Get(ctx context.Context, q Query, run Runner) (string, error) {
	key := Hash(q)
	keyHex := hex.EncodeToString(key)

	result, err, _ := e.group.Do(keyHex, func() (any, error) {
		if cached, ok, _ := e.store.Get(ctx, key); ok {
			if e.fs.Exists(ctx, cached) {
				e.hits.Add(1)
				return cached, nil
			}
			logging.Get().Debug().Msgf("cache: evicting stale record for %s (%s missing)", q.QueryTypeName(), cached)
			_ = e.store.Delete(ctx, key)
		}

		out, runErr := run(ctx)
		if runErr != nil {
			return "", runErr
		}
		e.misses.Add(1)
		if putErr := e.store.Put(ctx, key, out); putErr != nil {
			logging.Get().Warn().Err(putErr).Msg("cache: failed to persist result; next run will retry")
		}
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
