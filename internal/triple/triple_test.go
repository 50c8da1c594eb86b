package triple

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CanonicalOrder(t *testing.T) {
	tr := Parse("x86_64-unknown-linux-gnu", true)
	assert.Equal(t, "x86_64", tr.Arch)
	assert.Equal(t, "unknown", tr.Vendor)
	assert.Equal(t, "linux", tr.OS)
	assert.Equal(t, "gnu", tr.Environment)
	assert.Equal(t, ObjectFormatELF, tr.ObjectFormat)
}

func TestParse_PermutedOrderNormalizesTheSame(t *testing.T) {
	permuted := Parse("x86_64-linux-gnu", true)
	canonical := Parse("x86_64-unknown-linux-gnu", true)
	assert.Equal(t, canonical.Arch, permuted.Arch)
	assert.Equal(t, canonical.OS, permuted.OS)
	assert.Equal(t, canonical.Environment, permuted.Environment)
}

func TestParse_ARMCanonicalization(t *testing.T) {
	tr := Parse("armv7-none-linux-androideabi", false)
	assert.Equal(t, "arm", tr.Arch)
	assert.Equal(t, "v7", tr.SubArch)
}

func TestParse_DarwinObjectFormat(t *testing.T) {
	tr := Parse("arm64-apple-macosx14.0", false)
	assert.Equal(t, ObjectFormatMachO, tr.ObjectFormat)
	assert.Equal(t, OSFamilyDarwin, tr.Family())
	assert.True(t, tr.OSVersion.Present)
	assert.Equal(t, 14, tr.OSVersion.Major)
}

func TestParse_WindowsIsCOFF(t *testing.T) {
	tr := Parse("x86_64-pc-windows-msvc", false)
	assert.Equal(t, ObjectFormatCOFF, tr.ObjectFormat)
}

func TestParse_WasiIsWasm(t *testing.T) {
	tr := Parse("wasm32-unknown-wasi", false)
	assert.Equal(t, ObjectFormatWasm, tr.ObjectFormat)
	assert.Equal(t, OSFamilyWASI, tr.Family())
}

func TestParse_EmptyStringPreservesRawAndIsAllZero(t *testing.T) {
	tr := Parse("", true)
	assert.Equal(t, "", tr.Arch)
	assert.Equal(t, "", tr.OS)
	assert.Equal(t, "", tr.Vendor)
	assert.Equal(t, "", tr.String())
}

func TestParse_RoundTripsThroughFormat(t *testing.T) {
	inputs := []string{
		"x86_64-unknown-linux-gnu",
		"aarch64-unknown-linux-gnu",
		"arm64-apple-macosx14.0",
		"wasm32-unknown-wasi",
		"x86_64-pc-windows-msvc",
	}
	for _, in := range inputs {
		first := Parse(in, true)
		second := Parse(first.Format(), true)
		require.Equal(t, first.Arch, second.Arch, in)
		require.Equal(t, first.Vendor, second.Vendor, in)
		require.Equal(t, first.OS, second.OS, in)
		require.Equal(t, first.Environment, second.Environment, in)
	}
}
