package freebsd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbuild/sdkgen/internal/sdkerr"
	"github.com/crossbuild/sdkgen/internal/triple"
)

func TestBaseTxzURL_AMD64(t *testing.T) {
	r := Recipe{TargetTriple: triple.Parse("x86_64-unknown-freebsd14.3", true), Major: 14, Minor: 3}
	url, err := r.baseTxzURL()
	require.NoError(t, err)
	assert.Equal(t, "https://download.freebsd.org/ftp/releases/amd64/14.3-RELEASE/base.txz", url)
}

func TestBaseTxzURL_ARM64(t *testing.T) {
	r := Recipe{TargetTriple: triple.Parse("aarch64-unknown-freebsd15.0", true), Major: 15, Minor: 0}
	url, err := r.baseTxzURL()
	require.NoError(t, err)
	assert.Equal(t, "https://download.freebsd.org/ftp/releases/arm64/15.0-RELEASE/base.txz", url)
}

func TestBaseTxzURL_UnsupportedArchFails(t *testing.T) {
	r := Recipe{TargetTriple: triple.Parse("riscv64-unknown-freebsd14.3", true), Major: 14, Minor: 3}
	_, err := r.baseTxzURL()
	require.Error(t, err)
	var target *sdkerr.DistributionDoesNotSupportArchitecture
	assert.ErrorAs(t, err, &target)
}
