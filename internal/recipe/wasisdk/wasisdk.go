// Package wasisdk implements the WebAssembly/WASI SDK flavor pipeline
// of spec §4.J.2: assembling a sysroot for wasm32-wasi targets (plain,
// threaded, or embedded) from a target Swift package directory and a
// WASI sysroot directory, with an optional host-swift-package overlay.
package wasisdk

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/crossbuild/sdkgen/internal/metadata"
	"github.com/crossbuild/sdkgen/internal/procexec"
	"github.com/crossbuild/sdkgen/internal/recipe"
	"github.com/crossbuild/sdkgen/internal/triple"
)

// TargetKind selects which WASI target flavor a triple belongs to,
// since each gets distinct toolset compiler/linker options (spec
// §4.J.2 "Toolset adjustments").
type TargetKind int

const (
	TargetPlain TargetKind = iota
	TargetThreaded
	TargetEmbedded
)

// targetSubdirs is the fixed set of target-Swift-package subdirectories
// rsynced into the SDK, plus the optional CoreFoundation one appended
// separately when present.
var targetSubdirs = []string{
	"clang",
	"swift/clang",
	"swift/wasi",
	"swift_static/clang",
	"swift_static/wasi",
	"swift_static/shims",
}

// lldbArtifacts are removed from a copied host-swift toolchain: this
// generator never ships a debugger inside a cross SDK.
var lldbArtifacts = []string{
	"lib/liblldb.so", "lib/liblldb.dylib", "bin/lldb", "bin/lldb-server", "bin/lldb-argdumper",
}

// Recipe builds one WASI SDK bundle covering one or more wasm32-wasi
// target triples.
type Recipe struct {
	ArtifactID       string
	SwiftVersion     string
	HostSwiftPackage string // optional; empty means skip the toolchain overlay
	TargetSwiftPackage string
	WASISysrootPath  string
	Targets          []TargetSpec

	// BundleVersion is the artifact-bundle manifest's version field;
	// empty means use SwiftVersion.
	BundleVersion string
}

func (r Recipe) bundleVersion() string {
	if r.BundleVersion != "" {
		return r.BundleVersion
	}
	return r.SwiftVersion
}

// TargetSpec pairs a target triple with the kind of WASI variant it
// builds (spec §4.J.2's "plain wasm32-wasi, threaded, embedded").
type TargetSpec struct {
	Triple triple.Triple
	Kind   TargetKind
}

var _ recipe.Recipe = Recipe{}

// MakeSDK runs the WASI pipeline (spec §4.J.2).
func (r Recipe) MakeSDK(ctx context.Context, env recipe.Environment) error {
	sdkRoot := env.Paths.SDKRootPath

	if err := recipe.PrepareSDKRoot(ctx, env, sdkRoot); err != nil {
		return fmt.Errorf("prepare sdk root: %w", err)
	}

	if r.HostSwiftPackage != "" {
		if err := r.overlayHostToolchain(ctx, env); err != nil {
			return fmt.Errorf("overlay host toolchain: %w", err)
		}
	}

	if err := r.copyTargetSwiftPackage(ctx, env, sdkRoot); err != nil {
		return fmt.Errorf("copy target swift package: %w", err)
	}

	autolink := env.Paths.ToolchainBinDir + "/swift-autolink-extract"
	if !env.FS.Exists(ctx, autolink) {
		if err := env.FS.CreateSymlink(ctx, "swift", autolink); err != nil {
			return fmt.Errorf("create swift-autolink-extract symlink: %w", err)
		}
	}

	wasiSDKPath := env.Paths.ArtifactBundlePath + "/" + r.ArtifactID + "/WASI.sdk"
	if err := rsync(ctx, r.WASISysrootPath+"/.", wasiSDKPath); err != nil {
		return fmt.Errorf("rsync wasi sysroot: %w", err)
	}

	return r.emitMetadata(ctx, env, sdkRoot)
}

// overlayHostToolchain copies the host-swift package's usr/ tree into
// the toolchain, then deletes every lldb artifact: a WASI cross SDK
// never ships a debugger (spec §4.J.2).
func (r Recipe) overlayHostToolchain(ctx context.Context, env recipe.Environment) error {
	if err := rsync(ctx, r.HostSwiftPackage+"/usr/.", env.Paths.ToolchainDir); err != nil {
		return err
	}
	for _, rel := range lldbArtifacts {
		target := env.Paths.ToolchainDir + "/" + rel
		if env.FS.Exists(ctx, target) {
			if err := env.FS.RemoveRecursively(ctx, target); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyTargetSwiftPackage rsyncs the fixed subdirectory set (plus an
// optional swift_static/CoreFoundation) out of the target Swift
// package into sdkRoot's usr/lib (spec §4.J.2).
func (r Recipe) copyTargetSwiftPackage(ctx context.Context, env recipe.Environment, sdkRoot string) error {
	subdirs := append([]string{}, targetSubdirs...)
	coreFoundation := r.TargetSwiftPackage + "/usr/lib/swift_static/CoreFoundation"
	if env.FS.Exists(ctx, coreFoundation) {
		subdirs = append(subdirs, "swift_static/CoreFoundation")
	}

	for _, sub := range subdirs {
		src := r.TargetSwiftPackage + "/usr/lib/" + sub
		if !env.FS.Exists(ctx, src) {
			continue
		}
		dst := sdkRoot + "/usr/lib/" + sub
		if err := env.FS.CreateDirAll(ctx, dst); err != nil {
			return err
		}
		if err := rsync(ctx, src+"/.", dst); err != nil {
			return err
		}
	}
	return nil
}

// rsync copies src into dst with `rsync -a`, preserving symlinks and
// permissions the way the recipe's archive/copy steps elsewhere in
// this generator do via `cp -a` and the archive package's subprocess
// dispatch; rsync's `src/.` trailing-dot convention copies src's
// contents into dst rather than creating a nested directory.
func rsync(ctx context.Context, src, dst string) error {
	_, err := procexec.Run(ctx, procexec.Spec{
		Path:   "rsync",
		Args:   []string{"-a", src, dst + "/"},
		Stdout: procexec.StdioDiscard,
		Stderr: procexec.StdioPipe,
	})
	return err
}

// compilerExtraOptions returns the per-target-kind C/C++ and Swift
// extraCLIOptions plus linker options spec §4.J.2's "Toolset
// adjustments" names.
func compilerExtraOptions(kind TargetKind) (cOpts, swiftXccOpts, linkerOpts, cDefines []string) {
	switch kind {
	case TargetThreaded:
		cOpts = []string{"-matomics", "-mbulk-memory", "-mthread-model", "posix", "-pthread", "-ftls-model=local-exec"}
		for _, o := range cOpts {
			swiftXccOpts = append(swiftXccOpts, "-Xcc", o)
		}
		linkerOpts = []string{"--import-memory", "--export-memory", "--shared-memory", "--max-memory=1073741824"}
	case TargetEmbedded:
		swiftXccOpts = []string{"-static-stdlib", "-enable-experimental-feature", "Embedded", "-wmo"}
		linkerOpts = []string{"-Xlinker", "-lc++", "-Xlinker", "-lswift_Concurrency"}
		cDefines = []string{"-D__EMBEDDED_SWIFT__"}
	}
	return
}

func (r Recipe) emitMetadata(ctx context.Context, env recipe.Environment, sdkRoot string) error {
	// swift-sdk.json and the per-target toolset files live one level
	// above the .sdk directory itself (spec §4.K, §6); sdkRootPath then
	// names the .sdk directory relative to that level.
	tripleDir := path.Dir(sdkRoot)
	sdkRootPath := metadata.RelativeTo(tripleDir, sdkRoot)

	targetTriples := make(map[string]metadata.TargetTripleConfig, len(r.Targets))
	for _, spec := range r.Targets {
		cOpts, swiftXccOpts, linkerOpts, cDefines := compilerExtraOptions(spec.Kind)

		toolset := metadata.NewToolset("", swiftXccOpts)
		if len(cOpts) > 0 || len(cDefines) > 0 {
			toolset.CCompiler = &metadata.CompilerOptions{ExtraCLIOptions: append(cOpts, cDefines...)}
			toolset.CXXCompiler = &metadata.CompilerOptions{ExtraCLIOptions: append(cOpts, cDefines...)}
		}
		if len(linkerOpts) > 0 {
			toolset.Linker = &metadata.CompilerOptions{ExtraCLIOptions: linkerOpts}
		}

		toolsetName := "toolset-" + spec.Triple.String() + ".json"
		encoded, err := metadata.MarshalIndented(toolset)
		if err != nil {
			return err
		}
		if err := env.FS.OpenWrite(ctx, tripleDir+"/"+toolsetName, strings.NewReader(string(encoded))); err != nil {
			return err
		}

		targetTriples[spec.Triple.String()] = metadata.TargetTripleConfig{
			SDKRootPath:  sdkRootPath,
			ToolsetPaths: []string{toolsetName},
		}
	}

	desc := metadata.NewSDKDescriptor(targetTriples)
	encodedDesc, err := metadata.MarshalIndented(desc)
	if err != nil {
		return err
	}
	if err := env.FS.OpenWrite(ctx, tripleDir+"/swift-sdk.json", strings.NewReader(string(encodedDesc))); err != nil {
		return err
	}

	manifest := metadata.NewBundleManifest(r.ArtifactID, r.bundleVersion(), []metadata.BundleVariant{
		{Path: r.ArtifactID},
	})
	encodedManifest, err := metadata.MarshalIndented(manifest)
	if err != nil {
		return err
	}
	return env.FS.OpenWrite(ctx, env.Paths.ArtifactBundlePath+"/info.json", strings.NewReader(string(encodedManifest)))
}
