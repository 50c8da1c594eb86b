package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crossbuild/sdkgen/internal/cache"
	"github.com/crossbuild/sdkgen/internal/config"
	"github.com/crossbuild/sdkgen/internal/logging"
	"github.com/crossbuild/sdkgen/internal/vfs"
)

// cacheCmd groups the `cache stats`/`cache gc` supplement (SPEC_FULL
// §12): a thin surface over the store's record count and the cache
// engine's "evict records whose artifact vanished" rule, useful for
// inspecting the incremental-rerun scenario from spec §8 scenario 2
// without re-running a full recipe.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or maintain the persistent cache store",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of records currently in the cache",
	RunE:  runCacheStats,
}

var cacheGCCmd = &cobra.Command{
	Use:   "gc",
	Short: "Evict cache records whose artifact no longer exists on disk",
	RunE:  runCacheGC,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheGCCmd)
}

// maintenancePaths builds a bare config.Paths carrying only the two
// fields cache maintenance needs (SourceRoot, CachePath); the bundle-
// related fields require an artifact ID this command has no use for.
func maintenancePaths() config.Paths {
	return config.Paths{
		SourceRoot: sharedFlags.sourceRoot,
		CachePath:  filepath.Join(sharedFlags.sourceRoot, ".sdkgen", "cache"),
	}
}

func openCacheForMaintenance() (*cache.Engine, *cache.Store, error) {
	logging.Setup(maintenancePaths(), sharedFlags.verbose)
	store, err := cache.OpenStore(maintenancePaths().CachePath)
	if err != nil {
		return nil, nil, err
	}
	fs := &vfs.Real{}
	return cache.NewEngine(store, fs), store, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	_, store, err := openCacheForMaintenance()
	if err != nil {
		return err
	}
	fmt.Printf("cache records: %d\n", store.Count())
	return nil
}

func runCacheGC(cmd *cobra.Command, args []string) error {
	engine, _, err := openCacheForMaintenance()
	if err != nil {
		return err
	}
	evicted, kept, err := engine.GC(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("evicted %d stale record(s), kept %d\n", evicted, kept)
	return nil
}
