package pkgindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePackages = `Package: libc6-dev
Version: 2.31-0ubuntu9
Architecture: amd64
Filename: pool/main/g/glibc/libc6-dev_2.31-0ubuntu9_amd64.deb
SHA256: abc123

Package: linux-libc-dev
Version: 5.4.0-26.30
Architecture: amd64
Filename: pool/main/l/linux/linux-libc-dev_5.4.0-26.30_amd64.deb
SHA256: def456
`

func TestParseStanzas_ExtractsEachPackage(t *testing.T) {
	entries := ParseStanzas([]byte(samplePackages))
	require.Len(t, entries, 2)
	assert.Equal(t, "2.31-0ubuntu9", entries["libc6-dev"].Version)
	assert.Equal(t, "pool/main/l/linux/linux-libc-dev_5.4.0-26.30_amd64.deb", entries["linux-libc-dev"].Filename)
}

func TestIndex_URLJoinsBaseAndFilename(t *testing.T) {
	idx := Index{BaseURL: "http://archive.ubuntu.com/ubuntu/", Packages: ParseStanzas([]byte(samplePackages))}
	url, ok := idx.URL("libc6-dev")
	require.True(t, ok)
	assert.Equal(t, "http://archive.ubuntu.com/ubuntu/pool/main/g/glibc/libc6-dev_2.31-0ubuntu9_amd64.deb", url)
}

func TestRequirePackages_ReportsMissingNames(t *testing.T) {
	idx := Index{Packages: ParseStanzas([]byte(samplePackages))}
	_, err := RequirePackages(idx, []string{"libc6-dev", "does-not-exist"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestRequirePackages_AllPresentSucceeds(t *testing.T) {
	idx := Index{Packages: ParseStanzas([]byte(samplePackages))}
	found, err := RequirePackages(idx, []string{"libc6-dev"})
	require.NoError(t, err)
	assert.Contains(t, found, "libc6-dev")
}
