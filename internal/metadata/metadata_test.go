package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalIndented_UsesTwoSpacesAndNoSlashEscaping(t *testing.T) {
	ts := NewToolset("toolchain/usr", []string{"-sdk", "/path"})
	out, err := MarshalIndented(ts)
	require.NoError(t, err)
	assert.Contains(t, string(out), "  \"schemaVersion\"")
	assert.NotContains(t, string(out), `\/`)
}

func TestSDKDescriptor_MapKeysAreSorted(t *testing.T) {
	desc := NewSDKDescriptor(map[string]TargetTripleConfig{
		"x86_64-unknown-linux-gnu":  {SDKRootPath: "b"},
		"aarch64-unknown-linux-gnu": {SDKRootPath: "a"},
	})
	out, err := MarshalIndented(desc)
	require.NoError(t, err)
	aIdx := strings.Index(string(out), "aarch64")
	xIdx := strings.Index(string(out), "x86_64")
	assert.Less(t, aIdx, xIdx)
}

func TestBundleManifest_OmitsSupportedTriplesWhenUniversal(t *testing.T) {
	manifest := NewBundleManifest("swift-6.0.3_ubuntu_jammy", "6.0.3", []BundleVariant{{Path: "swift-linux"}})
	out, err := MarshalIndented(manifest)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "supportedTriples")
}

func TestRelativeTo_StripsSDKRootPrefix(t *testing.T) {
	rel := RelativeTo("/bundles/x.artifactbundle/x/target/ubuntu.sdk", "/bundles/x.artifactbundle/x/target/ubuntu.sdk/usr/lib")
	assert.Equal(t, "usr/lib", rel)
}

func TestRelativeTo_PanicsWhenPathNotUnderRoot(t *testing.T) {
	assert.Panics(t, func() {
		RelativeTo("/sdk/root", "/somewhere/else")
	})
}
