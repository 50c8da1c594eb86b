package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths_Nesting(t *testing.T) {
	p := NewPaths("/src", "6.0.3-RELEASE_ubuntu_jammy_x86_64", "x86_64-unknown-linux-gnu", "ubuntu-jammy.sdk")

	assert.True(t, isDescendant(p.ArtifactBundlePath, p.SourceRoot))
	assert.True(t, isDescendant(p.SDKRootPath, p.ArtifactBundlePath))
	assert.True(t, isDescendant(p.ToolchainBinDir, p.SDKRootPath) || isDescendant(p.ToolchainBinDir, p.ArtifactBundlePath))
}

func isDescendant(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func TestLoadDefaults_MissingFileReturnsBuiltins(t *testing.T) {
	d, err := LoadDefaults(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDefaults(), d)
}

func TestLoadDefaults_OverridesMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sdkgen.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[swift]
version = "5.10.1-RELEASE"

[http]
max_parallel_downloads = 8
`), 0o644))

	d, err := LoadDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "5.10.1-RELEASE", d.Swift.Version)
	assert.Equal(t, 8, d.HTTP.MaxParallel)
	assert.Equal(t, DefaultDefaults().LLD.Version, d.LLD.Version)
}
