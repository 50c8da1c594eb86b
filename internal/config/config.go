// Package config holds the immutable value types used to drive one SDK
// assembly run (Versions, Paths) plus the optional process-wide defaults
// file (sdkgen.toml) that seeds them.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// VersionConfiguration is immutable once constructed; see spec §3.
type VersionConfiguration struct {
	SwiftVersion       string
	SwiftBranch        string
	LLDVersion         string
	LinuxDistribution  string
	LinuxArchSuffix    string
}

// Paths is immutable once constructed; see spec §3. All fields are
// derived from the arguments of NewPaths.
type Paths struct {
	SourceRoot        string
	ArtifactBundlePath string
	CachePath         string
	SDKRootPath       string
	ToolchainDir      string
	ToolchainBinDir   string
}

// NewPaths derives a Paths value from a source root, artifact id,
// target triple and SDK directory name. SDKRootPath and ToolchainDir
// are siblings under <bundle>/<artifactID>/<targetTriple>, so both are
// descendants of ArtifactBundlePath; ToolchainBinDir is inside
// ToolchainDir, not inside SDKRootPath.
func NewPaths(sourceRoot, artifactID, targetTriple, sdkDirName string) Paths {
	bundle := filepath.Join(sourceRoot, "Bundles", artifactID+".artifactbundle")
	sdkRoot := filepath.Join(bundle, artifactID, targetTriple, sdkDirName)
	toolchainDir := filepath.Join(bundle, artifactID, targetTriple, "swift.xctoolchain", "usr")
	return Paths{
		SourceRoot:         sourceRoot,
		ArtifactBundlePath: bundle,
		CachePath:          filepath.Join(sourceRoot, ".sdkgen", "cache"),
		SDKRootPath:        sdkRoot,
		ToolchainDir:       toolchainDir,
		ToolchainBinDir:    filepath.Join(toolchainDir, "bin"),
	}
}

// Defaults are the generator-wide knobs that LoadDefaults can read from
// an optional sdkgen.toml at a caller-given path. The CLI does not call
// LoadDefaults; its flag defaults are set in code. Defaults never
// replace the per-run Versions/Paths values, which are always
// constructed in code.
type Defaults struct {
	Swift struct {
		Version string `toml:"version"`
		Branch  string `toml:"branch"`
	} `toml:"swift"`
	LLD struct {
		Version string `toml:"version"`
	} `toml:"lld"`
	HTTP struct {
		MaxRedirects   int `toml:"max_redirects"`
		MaxParallel    int `toml:"max_parallel_downloads"`
	} `toml:"http"`
	Process struct {
		TeardownGraceSeconds int `toml:"teardown_grace_seconds"`
	} `toml:"process"`
	Cache struct {
		Directory string `toml:"directory"`
	} `toml:"cache"`
}

// DefaultDefaults returns the built-in defaults used when no sdkgen.toml
// is present.
func DefaultDefaults() Defaults {
	var d Defaults
	d.Swift.Version = "6.0.3-RELEASE"
	d.Swift.Branch = "release/6.0"
	d.LLD.Version = "17.0.6"
	d.HTTP.MaxRedirects = 5
	d.HTTP.MaxParallel = 4
	d.Process.TeardownGraceSeconds = 5
	d.Cache.Directory = ".sdkgen/cache"
	return d
}

// LoadDefaults reads sdkgen.toml at path if it exists, decoding onto the
// built-in defaults (decoded fields overwrite, everything else keeps its
// default). Returns DefaultDefaults() unchanged if path does not exist.
func LoadDefaults(path string) (Defaults, error) {
	d := DefaultDefaults()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return d, nil
	}
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return Defaults{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return d, nil
}
