// Package freebsd implements the BSD SDK flavor pipeline of spec
// §4.J.3: a FreeBSD sysroot built from a release's base.txz, with an
// optional Swift toolchain overlay.
package freebsd

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/crossbuild/sdkgen/internal/archive"
	"github.com/crossbuild/sdkgen/internal/metadata"
	"github.com/crossbuild/sdkgen/internal/procexec"
	"github.com/crossbuild/sdkgen/internal/query"
	"github.com/crossbuild/sdkgen/internal/recipe"
	"github.com/crossbuild/sdkgen/internal/sdkerr"
	"github.com/crossbuild/sdkgen/internal/triple"
)

// baseSubsets is the fixed set of base.txz top-level entries extracted
// into the sysroot; everything else (kernel, boot loader, etc.) is
// irrelevant to cross-compiling userspace code (spec §4.J.3).
var baseSubsets = []string{"lib", "usr/include", "usr/lib"}

// releaseBaseURL is the FreeBSD release mirror this generator fetches
// from; every supported major line (14.3+ and 15+) uses this one base
// URL.
const releaseBaseURL = "https://download.freebsd.org/ftp/releases"

// Recipe builds one FreeBSD SDK bundle for a single target triple.
type Recipe struct {
	ArtifactID   string
	SDKDirName   string
	TargetTriple triple.Triple
	Major, Minor int

	// SwiftToolchainPath, when non-empty, overlays a caller-supplied
	// Swift toolchain's usr/local/swift/{lib,include} onto the sysroot
	// (spec §4.J.3's "optionally overlay").
	SwiftToolchainPath string
	SwiftVersion       string

	// BundleVersion is the artifact-bundle manifest's version field;
	// empty means use SwiftVersion.
	BundleVersion string
}

var _ recipe.Recipe = Recipe{}

func (r Recipe) bundleVersion() string {
	if r.BundleVersion != "" {
		return r.BundleVersion
	}
	return r.SwiftVersion
}

func (r Recipe) releaseName() string {
	return fmt.Sprintf("%d.%d-RELEASE", r.Major, r.Minor)
}

// freebsdArchName maps a parsed triple's arch field to the name
// FreeBSD's release layout uses in its download path.
func freebsdArchName(t triple.Triple) (string, error) {
	switch {
	case strings.HasPrefix(t.Arch, "x86_64"), strings.HasPrefix(t.Arch, "amd64"):
		return "amd64", nil
	case strings.HasPrefix(t.Arch, "aarch64"), strings.HasPrefix(t.Arch, "arm64"):
		return "arm64", nil
	default:
		return "", &sdkerr.DistributionDoesNotSupportArchitecture{Distribution: "freebsd", Arch: t.Arch}
	}
}

func (r Recipe) baseTxzURL() (string, error) {
	arch, err := freebsdArchName(r.TargetTriple)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s/base.txz", releaseBaseURL, arch, r.releaseName()), nil
}

// MakeSDK runs the FreeBSD pipeline (spec §4.J.3).
func (r Recipe) MakeSDK(ctx context.Context, env recipe.Environment) error {
	sdkRoot := env.Paths.SDKRootPath

	if err := recipe.PrepareSDKRoot(ctx, env, sdkRoot); err != nil {
		return fmt.Errorf("prepare sdk root: %w", err)
	}

	if err := r.extractBase(ctx, env, sdkRoot); err != nil {
		return fmt.Errorf("extract base.txz: %w", err)
	}

	if r.SwiftToolchainPath != "" {
		if err := r.overlaySwiftToolchain(ctx, env, sdkRoot); err != nil {
			return fmt.Errorf("overlay swift toolchain: %w", err)
		}
	}

	return r.emitMetadata(ctx, env, sdkRoot)
}

// extractBase downloads base.txz through the cache engine, then
// extracts only baseSubsets into sdkRoot, each rooted where it belongs
// (lib at sysroot root, usr/include and usr/lib under usr/).
func (r Recipe) extractBase(ctx context.Context, env recipe.Environment, sdkRoot string) error {
	url, err := r.baseTxzURL()
	if err != nil {
		return err
	}

	q := query.DownloadFile{URL: url, LocalDir: env.Paths.CachePath}
	archivePath, err := env.Engine.Get(ctx, q, func(ctx context.Context) (string, error) {
		return q.Run(ctx, env.HTTP)
	})
	if err != nil {
		return err
	}

	return env.FS.InTempDir(ctx, func(tmp string) error {
		if err := archive.Extract(ctx, archivePath, tmp, archive.Options{}); err != nil {
			return err
		}
		for _, sub := range baseSubsets {
			src := tmp + "/" + sub
			if !env.FS.Exists(ctx, src) {
				continue
			}
			dst := sdkRoot + "/" + sub
			if err := env.FS.CreateDirAll(ctx, dst); err != nil {
				return err
			}
			if _, err := procexec.Run(ctx, procexec.Spec{
				Path:   "cp",
				Args:   []string{"-a", src + "/.", dst + "/"},
				Stdout: procexec.StdioDiscard,
				Stderr: procexec.StdioPipe,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// overlaySwiftToolchain copies usr/local/swift/lib/swift* into
// usr/lib and usr/local/swift/include into usr/include (spec §4.J.3).
func (r Recipe) overlaySwiftToolchain(ctx context.Context, env recipe.Environment, sdkRoot string) error {
	libSrc := r.SwiftToolchainPath + "/usr/local/swift/lib"
	if env.FS.Exists(ctx, libSrc) {
		if _, err := procexec.Run(ctx, procexec.Spec{
			Path:   "sh",
			Args:   []string{"-c", fmt.Sprintf("cp -a %s/swift* %s/", shellQuote(libSrc), shellQuote(sdkRoot+"/usr/lib"))},
			Stdout: procexec.StdioDiscard,
			Stderr: procexec.StdioPipe,
		}); err != nil {
			return err
		}
	}
	includeSrc := r.SwiftToolchainPath + "/usr/local/swift/include"
	if env.FS.Exists(ctx, includeSrc) {
		if _, err := procexec.Run(ctx, procexec.Spec{
			Path:   "cp",
			Args:   []string{"-a", includeSrc + "/.", sdkRoot + "/usr/include/"},
			Stdout: procexec.StdioDiscard,
			Stderr: procexec.StdioPipe,
		}); err != nil {
			return err
		}
	}
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// emitMetadata writes the toolset (selecting lld and the FreeBSD
// Swift runtime rpaths), the SDK descriptor, and the bundle manifest
// (spec §4.J.3, §4.K).
func (r Recipe) emitMetadata(ctx context.Context, env recipe.Environment, sdkRoot string) error {
	// swift-sdk.json and toolset.json live one level above the .sdk
	// directory itself (spec §4.K, §6); sdkRootPath then names the .sdk
	// directory relative to that level instead of always being ".".
	tripleDir := path.Dir(sdkRoot)

	toolset := metadata.NewToolset("", nil)
	toolset.Linker = &metadata.CompilerOptions{
		Path: "ld.lld",
		ExtraCLIOptions: []string{
			"-Xlinker", "-rpath", "-Xlinker", "/usr/local/swift/lib:/usr/local/swift/lib/swift/freebsd",
		},
	}
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
