package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbuild/sdkgen/internal/vfs"
)

type countingQuery struct {
	Name string
}

func (q countingQuery) QueryTypeName() string       { return "cache.countingQuery" }
func (q countingQuery) HashFields(fh *FieldHasher) { fh.String(q.Name) }

func TestEngine_SecondCallIsACacheHit(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)

	fsys := vfs.NewVirtual()
	require.NoError(t, fsys.OpenWrite(ctx, "/out/result.txt", strings.NewReader("")))
	engine := NewEngine(store, fsys)

	var runs atomic.Int64
	run := func(ctx context.Context) (string, error) {
		runs.Add(1)
		return "/out/result.txt", nil
	}

	q := countingQuery{Name: "a"}
	first, err := engine.Get(ctx, q, run)
	require.NoError(t, err)
	assert.Equal(t, "/out/result.txt", first)

	second, err := engine.Get(ctx, q, run)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int64(1), runs.Load())
	assert.Equal(t, int64(1), engine.Stats().Hits)
	assert.Equal(t, int64(1), engine.Stats().Misses)
}

func TestEngine_ConcurrentSameKeyRunsOnce(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	fsys := vfs.NewVirtual()
	require.NoError(t, fsys.OpenWrite(ctx, "/out/result.txt", strings.NewReader("")))
	engine := NewEngine(store, fsys)

	var runs atomic.Int64
	run := func(ctx context.Context) (string, error) {
		runs.Add(1)
		return "/out/result.txt", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.Get(ctx, countingQuery{Name: "concurrent"}, run)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), runs.Load())
}

func TestEngine_EvictsRecordWhoseArtifactIsGone(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	fsys := vfs.NewVirtual()
	engine := NewEngine(store, fsys)

	q := countingQuery{Name: "vanishing"}
	require.NoError(t, store.Put(ctx, Hash(q), "/missing/path"))

	var runs atomic.Int64
	run := func(ctx context.Context) (string, error) {
		runs.Add(1)
		return "/missing/path", nil
	}
	_, err = engine.Get(ctx, q, run)
	require.NoError(t, err)
	assert.Equal(t, int64(1), runs.Load())
}

func TestEngine_GCEvictsOnlyRecordsWithMissingArtifacts(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	fsys := vfs.NewVirtual()
	require.NoError(t, fsys.OpenWrite(ctx, "/out/present.txt", strings.NewReader("")))
	engine := NewEngine(store, fsys)

	require.NoError(t, store.Put(ctx, Hash(countingQuery{Name: "present"}), "/out/present.txt"))
	require.NoError(t, store.Put(ctx, Hash(countingQuery{Name: "gone"}), "/out/gone.txt"))

	evicted, kept, err := engine.GC(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, kept)
	assert.Equal(t, 1, store.Count())
}
