// Package catalog derives the set of downloadable artifacts a recipe
// needs from its (host triple, target triple, versions, paths) inputs,
// per spec §4.G. It is a pure function of its inputs — no I/O, no
// caching — so recipes can compute the full download plan before
// touching the network.
package catalog

import (
	"fmt"
	"strings"

	"github.com/crossbuild/sdkgen/internal/config"
	"github.com/crossbuild/sdkgen/internal/triple"
)

// Artifact is one entry in the download plan: a remote location plus
// the conventionally-named local path it should land at.
type Artifact struct {
	Role        string // "host_swift", "host_llvm", "target_swift"
	URL         string
	LocalPath   string
	IsPrebuilt  bool
}

// LocalName builds the stable "<role>_<component>_<version>_<triple>.<ext>"
// naming convention every downloaded artifact uses.
func LocalName(role, component, version, tripleStr, ext string) string {
	return fmt.Sprintf("%s_%s_%s_%s.%s", role, component, version, tripleStr, strings.TrimPrefix(ext, "."))
}

// swiftPlatformFallbacks maps a (distribution, version) pair too old to
// have its own Swift binary distribution onto the nearest compatible
// published artifact identifier.
var swiftPlatformFallbacks = map[string]string{
	"debian-11": "ubuntu20.04",
	"debian-12": "ubuntu22.04",
}

// SwiftPlatformID derives the Swift binary-distribution identifier for
// a Linux distribution name/version, applying swiftPlatformFallbacks.
// The fallbacks apply for every Swift version; the Swift version is not
// an input here.
func SwiftPlatformID(distribution, version string) string {
	key := strings.ToLower(distribution) + "-" + version
	if fallback, ok := swiftPlatformFallbacks[key]; ok {
		return fallback
	}
	return strings.ToLower(distribution) + version
}

// HostSwift derives the host Swift toolchain artifact: an "-osx.pkg"
// under the "xcode" path when the host is macOS, or an Amazon Linux 2 tarball
// (chosen for its old glibc, maximizing compatibility) on Linux, with
// an "-aarch64" suffix on ARM hosts.
func HostSwift(host triple.Triple, swiftVersion string, paths config.Paths) Artifact {
	switch host.Family() {
	case triple.OSFamilyDarwin:
		name := fmt.Sprintf("swift-%s-osx.pkg", swiftVersion)
		return Artifact{
			Role:       "host_swift",
			URL:        fmt.Sprintf("https://download.swift.org/swift-%s-release/xcode/swift-%s-RELEASE/%s", swiftVersion, swiftVersion, name),
			LocalPath:  paths.CachePath + "/" + LocalName("host", "swift", swiftVersion, host.String(), "pkg"),
			IsPrebuilt: true,
		}
	default:
		archSuffix := ""
		if strings.HasPrefix(host.Arch, "aarch64") || strings.HasPrefix(host.Arch, "arm64") {
			archSuffix = "-aarch64"
		}
		name := fmt.Sprintf("swift-%s-RELEASE-amazonlinux2%s.tar.gz", swiftVersion, archSuffix)
		return Artifact{
			Role:       "host_swift",
			URL:        fmt.Sprintf("https://download.swift.org/swift-%s-release/amazonlinux2%s/swift-%s-RELEASE/%s", swiftVersion, archSuffix, swiftVersion, name),
			LocalPath:  paths.CachePath + "/" + LocalName("host", "swift", swiftVersion, host.String(), "tar.gz"),
			IsPrebuilt: true,
		}
	}
}

// HostLLVM derives the host LLVM/Clang artifact from a GitHub release
// tarball. SourceFallback flips the same catalog entry to the LLVM
// source tarball (is_prebuilt=false) when the prebuilt release cannot
// satisfy a cache-invalidated build.
func HostLLVM(host triple.Triple, lldVersion string, paths config.Paths) Artifact {
	name := fmt.Sprintf("clang+llvm-%s-%s.tar.xz", lldVersion, host.Format())
	return Artifact{
		Role:       "host_llvm",
		URL:        fmt.Sprintf("https://github.com/llvm/llvm-project/releases/download/llvmorg-%s/%s", lldVersion, name),
		LocalPath:  paths.CachePath + "/" + LocalName("host", "llvm", lldVersion, host.String(), "tar.xz"),
		IsPrebuilt: true,
	}
}

// SourceFallback returns a's entry rewritten to point at the LLVM
// project source tarball instead of a prebuilt release.
func SourceFallback(a Artifact, lldVersion string, paths config.Paths) Artifact {
	name := fmt.Sprintf("llvm-project-%s.src.tar.xz", lldVersion)
	a.URL = fmt.Sprintf("https://github.com/llvm/llvm-project/releases/download/llvmorg-%s/%s", lldVersion, name)
	a.IsPrebuilt = false
	return a
}

// TargetSwift derives the target-platform Swift tarball artifact for
// remote-tarball target sources.
func TargetSwift(target triple.Triple, distribution, distVersion, swiftVersion string, paths config.Paths) Artifact {
	platformID := SwiftPlatformID(distribution, distVersion)
	name := fmt.Sprintf("swift-%s-RELEASE-%s.tar.gz", swiftVersion, platformID)
	return Artifact{
		Role:       "target_swift",
		URL:        fmt.Sprintf("https://download.swift.org/swift-%s-release/%s/swift-%s-RELEASE/%s", swiftVersion, platformID, swiftVersion, name),
		LocalPath:  paths.CachePath + "/" + LocalName("target", "swift", swiftVersion, target.String(), "tar.gz"),
		IsPrebuilt: true,
	}
}
