package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/crossbuild/sdkgen/internal/cache"
	"github.com/crossbuild/sdkgen/internal/config"
	"github.com/crossbuild/sdkgen/internal/httpclient"
	"github.com/crossbuild/sdkgen/internal/logging"
	"github.com/crossbuild/sdkgen/internal/recipe"
	"github.com/crossbuild/sdkgen/internal/triple"
	"github.com/crossbuild/sdkgen/internal/vfs"
)

// sharedFlags holds the flags common to every make-*-sdk subcommand
// (spec §6 "Shared flags").
var sharedFlags struct {
	bundleVersion string
	sdkName       string
	incremental   bool
	verbose       bool
	offline       bool
	host          string
	target        string
	targetArch    string
	hostArch      string // deprecated, kept for compatibility
	swiftVersion  string
	swiftBranch   string
	hostSwiftPkg  string
	targetSwiftPkg string
	hostToolchain bool
	sourceRoot    string
}

var rootCmd = &cobra.Command{
	Use:   "sdkgen",
	Short: "Assemble cross-compilation SDK bundles",
	Long: "sdkgen downloads compiler binaries, target runtime libraries, and\n" +
		"system headers for a (host, target) pair, rearranges them into a\n" +
		"portable artifact bundle, and emits the JSON descriptors a package\n" +
		"manager needs to drive a cross-build.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&sharedFlags.bundleVersion, "bundle-version", "0.0.1", "artifact bundle version")
	pf.StringVar(&sharedFlags.sdkName, "sdk-name", "", "override the generated SDK identifier")
	pf.BoolVar(&sharedFlags.incremental, "incremental", false, "reuse an existing bundle tree instead of rebuilding from scratch")
	pf.BoolVar(&sharedFlags.verbose, "verbose", false, "enable debug-level logging")
	pf.BoolVar(&sharedFlags.offline, "offline", false, "fail every network call; only cache hits succeed")
	pf.StringVar(&sharedFlags.host, "host", defaultHostTriple(), "host triple (where the compiler runs)")
	pf.StringVar(&sharedFlags.target, "target", "", "target triple (what the compiler produces code for)")
	pf.StringVar(&sharedFlags.targetArch, "target-arch", "", "target architecture shorthand, combined with the recipe's OS/env")
	pf.StringVar(&sharedFlags.hostArch, "host-arch", "", "deprecated: use --host instead")
	pf.StringVar(&sharedFlags.swiftVersion, "swift-version", "6.0.3-RELEASE", "Swift toolchain version")
	pf.StringVar(&sharedFlags.swiftBranch, "swift-branch", "release/6.0", "Swift release branch")
	pf.StringVar(&sharedFlags.hostSwiftPkg, "host-swift-package-path", "", "path to a pre-downloaded host Swift package, skipping its download")
	pf.StringVar(&sharedFlags.targetSwiftPkg, "target-swift-package-path", "", "path to a pre-downloaded target Swift package")
	pf.BoolVar(&sharedFlags.hostToolchain, "host-toolchain", true, "include a host Swift toolchain in the bundle")
	pf.StringVar(&sharedFlags.sourceRoot, "source-root", ".", "directory under which Bundles/ and .sdkgen/ are created")

	rootCmd.AddCommand(makeLinuxSDKCmd, makeWasmSDKCmd, makeFreeBSDSDKCmd, cacheCmd)
}

// Execute runs the root command; main just calls this and exits
// non-zero on error, per spec §6's exit-code contract.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sdkgen: "+err.Error())
		os.Exit(1)
	}
}

func defaultHostTriple() string {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	}
	switch runtime.GOOS {
	case "darwin":
		return arch + "-apple-macosx"
	case "windows":
		return arch + "-unknown-windows-msvc"
	default:
		return arch + "-unknown-linux-gnu"
	}
}

// runtimeDeps bundles the constructed FS/HTTP/cache handles every
// subcommand needs, built once from the resolved shared flags.
type runtimeDeps struct {
	fs     vfs.FS
	http   *httpclient.Client
	store  *cache.Store
	engine *cache.Engine
	paths  config.Paths
	env    recipe.Environment
}

// buildRuntime constructs the shared engine/fs/http handles and the
// Paths value for one run, wiring --offline into the HTTP client's
// stub per spec §9 "offline mode is the canonical way to prove a run
// requires no network."
func buildRuntime(artifactID, targetTriple, sdkDirName string) (*runtimeDeps, error) {
	paths := config.NewPaths(sharedFlags.sourceRoot, artifactID, targetTriple, sdkDirName)
	logging.Setup(paths, sharedFlags.verbose)

	fs := &vfs.Real{}
	if err := fs.CreateDirAll(context.Background(), paths.CachePath); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	store, err := cache.OpenStore(paths.CachePath)
	if err != nil {
		return nil, err
	}
	engine := cache.NewEngine(store, fs)

	client := httpclient.New(httpclient.WithOffline(sharedFlags.offline), httpclient.WithMaxRedirects(5))

	env := recipe.Environment{
		FS:          fs,
		HTTP:        client,
		Engine:      engine,
		Paths:       paths,
		Incremental: sharedFlags.incremental,
	}
	return &runtimeDeps{fs: fs, http: client, store: store, engine: engine, paths: paths, env: env}, nil
}

func parseTriple(s string) triple.Triple {
	return triple.Parse(s, true)
}
