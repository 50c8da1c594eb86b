package archive

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestTarGz builds a tiny tar.gz fixture using the standard
// library purely for test-data generation; production extraction
// still goes through the external tar binary via Extract.
func writeTestTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
}

// writeTestGz builds a standalone (non-tar) .gz fixture.
func writeTestGz(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()
	_, err = gw.Write([]byte(content))
	require.NoError(t, err)
}
