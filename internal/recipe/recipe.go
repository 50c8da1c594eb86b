// Package recipe defines the shared orchestration contract every SDK
// flavor pipeline implements (spec §4.J): a Recipe's MakeSDK must be
// idempotent, so incremental runs leave existing files in place and
// non-incremental runs start from a clean output tree.
package recipe

import (
	"context"

	"github.com/crossbuild/sdkgen/internal/cache"
	"github.com/crossbuild/sdkgen/internal/config"
	"github.com/crossbuild/sdkgen/internal/httpclient"
	"github.com/crossbuild/sdkgen/internal/vfs"
)

// Environment bundles every suspension-point-capable dependency a
// recipe pipeline needs, so recipes take one argument instead of
// threading four through every step function.
type Environment struct {
	FS      vfs.FS
	HTTP    *httpclient.Client
	Engine  *cache.Engine
	Paths   config.Paths

	// Incremental, when false, means MakeSDK must delete any existing
	// output tree before (re)building it.
	Incremental bool
}

// Recipe is one SDK flavor's build pipeline.
type Recipe interface {
	MakeSDK(ctx context.Context, env Environment) error
}

// PrepareSDKRoot enforces the incremental/non-incremental contract
// every recipe's first step relies on: a fresh root when non-
// incremental, the existing tree preserved otherwise.
func PrepareSDKRoot(ctx context.Context, env Environment, sdkRoot string) error {
	if !env.Incremental && env.FS.Exists(ctx, sdkRoot) {
		if err := env.FS.RemoveRecursively(ctx, sdkRoot); err != nil {
			return err
		}
	}
	return env.FS.CreateDirAll(ctx, sdkRoot)
}
