// Package linuxglibc implements the Linux-glibc SDK flavor pipeline of
// spec §4.J.1: assembling a cross-compilation sysroot for a Debian/
// Ubuntu/RHEL-family target from a remote Swift tarball, a caller-
// supplied local package, or a throwaway Docker container.
package linuxglibc

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/crossbuild/sdkgen/internal/archive"
	"github.com/crossbuild/sdkgen/internal/catalog"
	"github.com/crossbuild/sdkgen/internal/metadata"
	"github.com/crossbuild/sdkgen/internal/pathrewrite"
	"github.com/crossbuild/sdkgen/internal/pkgindex"
	"github.com/crossbuild/sdkgen/internal/procexec"
	"github.com/crossbuild/sdkgen/internal/query"
	"github.com/crossbuild/sdkgen/internal/recipe"
	"github.com/crossbuild/sdkgen/internal/sdkerr"
	"github.com/crossbuild/sdkgen/internal/triple"
)

// TargetSourceKind selects how the target distribution's sysroot is
// acquired.
type TargetSourceKind int

const (
	TargetRemoteTarball TargetSourceKind = iota
	TargetLocalPackage
	TargetDocker
)

// TargetSource is the target-source input of spec §4.J.1.
type TargetSource struct {
	Kind            TargetSourceKind
	LocalPath       string // TargetLocalPackage
	DockerBaseImage string // TargetDocker
}

// HostSourceKind selects how the host Swift toolchain is acquired.
type HostSourceKind int

const (
	HostRemoteTarball HostSourceKind = iota
	HostLocalPackage
	HostPreinstalled
)

// HostSource is the host-source input of spec §4.J.1.
type HostSource struct {
	Kind      HostSourceKind
	LocalPath string
}

// Recipe builds one Linux-glibc SDK flavor.
type Recipe struct {
	ArtifactID   string
	SDKDirName   string
	TargetTriple triple.Triple
	HostTriple   triple.Triple
	Distribution string // "ubuntu" | "debian" | "rhel"
	DistVersion  string
	SwiftVersion string
	SwiftBranch  string
	LLDVersion   string
	TargetSource TargetSource
	HostSource   HostSource

	// BundleVersion is the artifact-bundle manifest's version field
	// (spec §4.K document 3); empty means use SwiftVersion, matching
	// the CLI's --bundle-version default.
	BundleVersion string
}

func (r Recipe) bundleVersion() string {
	if r.BundleVersion != "" {
		return r.BundleVersion
	}
	return r.SwiftVersion
}

var _ recipe.Recipe = Recipe{}

// distSubdirs is the fixed set of Swift package subdirectories copied
// into the SDK's usr/lib and usr/include for a remote-tarball or
// local-package target source (spec §4.J.1 step 3).
var distSubdirs = []string{
	"swift/linux",
	"swift_static/linux",
	"swift_static/shims",
	"swift/dispatch",
	"swift/os",
	"swift/CoreFoundation",
}

// darwinOnlyToolchainDirs are removed from an unpacked host toolchain
// since this generator never targets them (spec §4.J.1 step 4).
var darwinOnlyToolchainDirs = []string{
	"iphoneos", "iphonesimulator",
	"watchos", "watchsimulator",
	"appletvos", "appletvsimulator",
}

var redundantToolchainBinaries = []string{
	"sourcekit-lsp", "docc", "dsymutil", "swift-package", "swift-package-collection", "clangd",
}

// MakeSDK runs the full pipeline. It is idempotent: PrepareSDKRoot
// clears the output tree only when env.Incremental is false.
func (r Recipe) MakeSDK(ctx context.Context, env recipe.Environment) error {
	sdkRoot := env.Paths.SDKRootPath

	// Step 1: fresh SDK root.
	if err := recipe.PrepareSDKRoot(ctx, env, sdkRoot); err != nil {
		return fmt.Errorf("prepare sdk root: %w", err)
	}

	// Step 2: enqueue downloads through the cache engine.
	downloads, err := r.planDownloads(env)
	if err != nil {
		return err
	}
	paths, err := r.runDownloads(ctx, env, downloads)
	if err != nil {
		return fmt.Errorf("download artifacts: %w", err)
	}

	// Step 3: acquire the target sysroot.
	if err := r.acquireTargetSysroot(ctx, env, sdkRoot, paths); err != nil {
		return fmt.Errorf("acquire target sysroot: %w", err)
	}

	// Step 4: unpack host Swift toolchain.
	if err := r.unpackHostToolchain(ctx, env, paths); err != nil {
		return fmt.Errorf("unpack host toolchain: %w", err)
	}

	// Step 5: unpack LLVM/lld, if this run needed it.
	if err := r.unpackLLVM(ctx, env, paths); err != nil {
		return fmt.Errorf("unpack llvm: %w", err)
	}

	// Step 6: distribution packages (non-Docker only).
	if r.TargetSource.Kind != TargetDocker {
		if err := r.unpackDistributionPackages(ctx, env, sdkRoot); err != nil {
			return fmt.Errorf("unpack distribution packages: %w", err)
		}
	}

	// Step 7: fix absolute symlinks.
	if err := pathrewrite.FixAbsoluteSymlinks(ctx, env.FS, sdkRoot); err != nil {
		return fmt.Errorf("fix absolute symlinks: %w", err)
	}

	// Step 8: patch glibc modulemap, if present.
	modulemapPath := sdkRoot + "/usr/include/glibc.modulemap"
	if env.FS.Exists(ctx, modulemapPath) {
		if err := pathrewrite.FixGlibcModulemap(ctx, env.FS, modulemapPath, sdkRoot+"/usr/include/private_includes"); err != nil {
			return fmt.Errorf("patch glibc modulemap: %w", err)
		}
	}

	// Step 9: lib -> usr/lib convenience symlink.
	if !env.FS.Exists(ctx, sdkRoot+"/lib") {
		if err := env.FS.CreateSymlink(ctx, "usr/lib", sdkRoot+"/lib"); err != nil {
			return fmt.Errorf("create lib symlink: %w", err)
		}
	}

	// Step 10: ensure swift-autolink-extract exists.
	autolink := env.Paths.ToolchainBinDir + "/swift-autolink-extract"
	if !env.FS.Exists(ctx, autolink) {
		if err := env.FS.CreateSymlink(ctx, "swift", autolink); err != nil {
			return fmt.Errorf("create swift-autolink-extract symlink: %w", err)
		}
	}

	// Step 11: legacy SDKSettings.json for old Swift versions.
	if needsLegacySDKSettings(r.SwiftVersion) {
		if err := r.emitLegacySDKSettings(ctx, env, sdkRoot); err != nil {
			return fmt.Errorf("emit legacy sdk settings: %w", err)
		}
	}

	// Step 12: metadata emitter.
	return r.emitMetadata(ctx, env, sdkRoot)
}

func (r Recipe) planDownloads(env recipe.Environment) ([]catalog.Artifact, error) {
	var plan []catalog.Artifact

	needsHostSwift := r.HostSource.Kind == HostRemoteTarball
	needsHostLLVM := r.HostTriple.Family() != triple.OSFamilyLinux && swiftMajorBelow(r.SwiftVersion, 6)

	if needsHostSwift {
		plan = append(plan, catalog.HostSwift(r.HostTriple, r.SwiftVersion, env.Paths))
	}
	if needsHostLLVM {
		plan = append(plan, catalog.HostLLVM(r.HostTriple, r.LLDVersion, env.Paths))
	}
	if r.TargetSource.Kind == TargetRemoteTarball {
		plan = append(plan, catalog.TargetSwift(r.TargetTriple, r.Distribution, r.DistVersion, r.SwiftVersion, env.Paths))
	}
	return plan, nil
}

// runDownloads runs every planned artifact's download through the
// cache engine and returns a role->localPath map. The downloads run
// one after another, in plan order; nothing fans them out in parallel.
// The first failure stops the loop and is returned.
func (r Recipe) runDownloads(ctx context.Context, env recipe.Environment, plan []catalog.Artifact) (map[string]string, error) {
	paths := make(map[string]string, len(plan))
	for _, a := range plan {
		q := query.DownloadArtifact{URL: a.URL, LocalPath: a.LocalPath}
		resolved, err := env.Engine.Get(ctx, q, func(ctx context.Context) (string, error) {
			return q.Run(ctx, env.HTTP, nil)
		})
		if err != nil {
			return nil, err
		}
		paths[a.Role] = resolved
	}
	return paths, nil
}

func (r Recipe) acquireTargetSysroot(ctx context.Context, env recipe.Environment, sdkRoot string, downloaded map[string]string) error {
	switch r.TargetSource.Kind {
	case TargetRemoteTarball:
		return extractDistSubset(ctx, env, downloaded["target_swift"], sdkRoot, distSubdirs)
	case TargetLocalPackage:
		return extractDistSubset(ctx, env, r.TargetSource.LocalPath, sdkRoot, distSubdirs)
	case TargetDocker:
		return r.acquireFromDocker(ctx, env, sdkRoot)
	default:
		return fmt.Errorf("unknown target source kind %d", r.TargetSource.Kind)
	}
}

// extractDistSubset extracts archivePath to a scoped temp dir, then
// copies only the fixed subdirectory set into sdkRoot's usr/lib and
// usr/include (spec §4.J.1 step 3's "copy a fixed set of subdirectories").
func extractDistSubset(ctx context.Context, env recipe.Environment, archivePath, sdkRoot string, subdirs []string) error {
	return env.FS.InTempDir(ctx, func(tmp string) error {
		if err := archive.Extract(ctx, archivePath, tmp, archive.Options{StripComponents: 1}); err != nil {
			return err
		}
		for _, sub := range subdirs {
			src := tmp + "/usr/lib/" + sub
			if !env.FS.Exists(ctx, src) {
				continue
			}
			dst := sdkRoot + "/usr/lib/" + sub
			if err := copyTree(ctx, env, src, dst); err != nil {
				return err
			}
		}
		includeSrc := tmp + "/usr/include"
		if env.FS.Exists(ctx, includeSrc) {
			if err := copyTree(ctx, env, includeSrc, sdkRoot+"/usr/include"); err != nil {
				return err
			}
		}
		return nil
	})
}

// copyTree copies src onto dst, preserving symlinks as symlinks rather
// than following them: vfs.FS.Copy only handles single files, so a
// whole-directory copy shells out to `cp -a`, matching the subprocess-
// dispatch convention the archive package uses for the same reason.
// FixAbsoluteSymlinks re-enumerates the result afterward, so it sees
// these symlinks at their final sdkRoot-relative depth.
func copyTree(ctx context.Context, env recipe.Environment, src, dst string) error {
	if err := env.FS.CreateDirAll(ctx, dst); err != nil {
		return err
	}
	_, err := procexec.Run(ctx, procexec.Spec{
		Path:   "cp",
		Args:   []string{"-a", src + "/.", dst + "/"},
		Stdout: procexec.StdioDiscard,
		Stderr: procexec.StdioPipe,
	})
	return err
}

func needsLegacySDKSettings(swiftVersion string) bool {
	if strings.HasPrefix(swiftVersion, "6.0") {
		return true
	}
	var major, minor int
	if _, err := fmt.Sscanf(swiftVersion, "%d.%d", &major, &minor); err != nil {
		return false
	}
	return major < 5 || (major == 5 && minor < 10)
}

// swiftMajorBelow reports whether swiftVersion's major component is
// strictly less than n (e.g. "5.10.1-RELEASE" is below 6).
func swiftMajorBelow(swiftVersion string, n int) bool {
	head := strings.SplitN(swiftVersion, ".", 2)[0]
	var major int
	for _, c := range head {
		if c < '0' || c > '9' {
			break
		}
		major = major*10 + int(c-'0')
	}
	return major < n
}

func (r Recipe) emitLegacySDKSettings(ctx context.Context, env recipe.Environment, sdkRoot string) error {
	settings := metadata.NewSDKSettings(r.ArtifactID, r.SDKDirName, r.SwiftVersion)
	encoded, err := metadata.MarshalIndented(settings)
	if err != nil {
		return err
	}
	return writeJSON(ctx, env, sdkRoot+"/SDKSettings.json", encoded)
}

func (r Recipe) emitMetadata(ctx context.Context, env recipe.Environment, sdkRoot string) error {
	// swift-sdk.json and toolset.json live one level above the .sdk
	// directory itself (spec §4.K, §6); sdkRootPath then names the .sdk
	// directory relative to that level instead of always being ".".
	tripleDir := path.Dir(sdkRoot)

	toolset := metadata.NewToolset("", nil)
	encodedToolset, err := metadata.MarshalIndented(toolset)
	if err != nil {
		return err
	}
	if err := writeJSON(ctx, env, tripleDir+"/toolset.json", encodedToolset); err != nil {
		return err
	}

	desc := metadata.NewSDKDescriptor(map[string]metadata.TargetTripleConfig{
		r.TargetTriple.String(): {
			SDKRootPath:  metadata.RelativeTo(tripleDir, sdkRoot),
			ToolsetPaths: []string{"toolset.json"},
		},
	})
	encodedDesc, err := metadata.MarshalIndented(desc)
	if err != nil {
		return err
	}
	if err := writeJSON(ctx, env, tripleDir+"/swift-sdk.json", encodedDesc); err != nil {
		return err
	}

	manifest := metadata.NewBundleManifest(r.ArtifactID, r.bundleVersion(), []metadata.BundleVariant{
		{Path: r.ArtifactID + "/" + r.TargetTriple.String()},
	})
	encodedManifest, err := metadata.MarshalIndented(manifest)
	if err != nil {
		return err
	}
	return writeJSON(ctx, env, env.Paths.ArtifactBundlePath+"/info.json", encodedManifest)
}

func writeJSON(ctx context.Context, env recipe.Environment, path string, data []byte) error {
	return env.FS.OpenWrite(ctx, path, bytes.NewReader(data))
}

// unpackHostToolchain extracts the host Swift toolchain into
// toolchain/usr, then deletes the Darwin-only platform directories and
// the host-side binaries this SDK never needs (spec §4.J.1 step 4). A
// HostPreinstalled source skips extraction entirely.
func (r Recipe) unpackHostToolchain(ctx context.Context, env recipe.Environment, downloaded map[string]string) error {
	var archivePath string
	switch r.HostSource.Kind {
	case HostRemoteTarball:
		archivePath = downloaded["host_swift"]
	case HostLocalPackage:
		archivePath = r.HostSource.LocalPath
	case HostPreinstalled:
		return nil
	}
	if archivePath == "" {
		return nil
	}

	q := query.TarExtract{Archive: archivePath, Dest: env.Paths.ToolchainDir, OutputSubpath: "."}
	if _, err := env.Engine.Get(ctx, q, func(ctx context.Context) (string, error) { return q.Run(ctx) }); err != nil {
		return err
	}

	for _, dir := range darwinOnlyToolchainDirs {
		target := env.Paths.ToolchainDir + "/lib/swift/" + dir
		if env.FS.Exists(ctx, target) {
			if err := env.FS.RemoveRecursively(ctx, target); err != nil {
				return err
			}
		}
	}
	for _, bin := range redundantToolchainBinaries {
		target := env.Paths.ToolchainBinDir + "/" + bin
		if env.FS.Exists(ctx, target) {
			if err := env.FS.RemoveRecursively(ctx, target); err != nil {
				return err
			}
		}
	}
	return nil
}

// unpackLLVM extracts the LLVM/lld tarball (stripping the top-level
// clang+llvm-* directory) and copies bin/lld to ld.lld in the
// toolchain's bin dir, when this run downloaded one at all (spec
// §4.J.1 step 5).
func (r Recipe) unpackLLVM(ctx context.Context, env recipe.Environment, downloaded map[string]string) error {
	archivePath, ok := downloaded["host_llvm"]
	if !ok || archivePath == "" {
		return nil
	}

	dest := env.Paths.CachePath + "/llvm-" + r.LLDVersion
	q := query.TarExtract{Archive: archivePath, Dest: dest, OutputSubpath: ".", HasStrip: true, StripComponents: 1}
	extracted, err := env.Engine.Get(ctx, q, func(ctx context.Context) (string, error) { return q.Run(ctx) })
	if err != nil {
		return err
	}

	src := extracted + "/bin/lld"
	dst := env.Paths.ToolchainBinDir + "/ld.lld"
	if env.FS.Exists(ctx, src) {
		return env.FS.Copy(ctx, src, dst)
	}
	return nil
}

func (r Recipe) unpackDistributionPackages(ctx context.Context, env recipe.Environment, sdkRoot string) error {
	if r.Distribution != "ubuntu" && r.Distribution != "debian" {
		return &sdkerr.DistributionDoesNotSupportArchitecture{Distribution: r.Distribution, Arch: r.TargetTriple.Arch}
	}
	baseURL := mirrorFor(r.Distribution)
	debianArch := debianArchName(r.TargetTriple)
	packagesPath := fmt.Sprintf("dists/%s/main/binary-%s/Packages.gz", r.DistVersion, debianArch)

	idx, err := pkgindex.Fetch(ctx, env.HTTP, baseURL, packagesPath)
	if err != nil {
		return err
	}
	required := []string{"libc6-dev", "linux-libc-dev"}
	entries, err := pkgindex.RequirePackages(idx, required)
	if err != nil {
		return err
	}
	for _, e := range entries {
		url, _ := idx.URL(e.Package)
		q := query.DownloadFile{URL: url, LocalDir: env.Paths.CachePath}
		resolved, err := env.Engine.Get(ctx, q, func(ctx context.Context) (string, error) {
			return q.Run(ctx, env.HTTP)
		})
		if err != nil {
			return err
		}
		if err := env.FS.InTempDir(ctx, func(tmp string) error {
			if err := archive.Extract(ctx, resolved, tmp, archive.Options{}); err != nil {
				return err
			}
			return copyTree(ctx, env, tmp, sdkRoot)
		}); err != nil {
			return err
		}
	}
	return nil
}

func mirrorFor(distribution string) string {
	switch distribution {
	case "ubuntu":
		return "http://archive.ubuntu.com/ubuntu"
	case "debian":
		return "http://deb.debian.org/debian"
	default:
		return ""
	}
}

func debianArchName(t triple.Triple) string {
	switch {
	case strings.HasPrefix(t.Arch, "x86_64"), strings.HasPrefix(t.Arch, "amd64"):
		return "amd64"
	case strings.HasPrefix(t.Arch, "aarch64"), strings.HasPrefix(t.Arch, "arm64"):
		return "arm64"
	case strings.HasPrefix(t.Arch, "armv7"), t.Arch == "arm" && strings.HasPrefix(t.SubArch, "v7"):
		return "armhf"
	default:
		return t.Arch
	}
}
