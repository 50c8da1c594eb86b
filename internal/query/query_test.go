package query

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbuild/sdkgen/internal/cache"
)

func TestDownloadFile_DestPathUsesLastComponent(t *testing.T) {
	q := DownloadFile{URL: "https://example.com/a/b/swift-6.0.3.tar.gz", LocalDir: "/cache"}
	assert.Equal(t, "/cache/swift-6.0.3.tar.gz", q.destPath())
}

func TestTarExtract_HashChangesWithStripComponents(t *testing.T) {
	a := TarExtract{Archive: "x.tar.gz", Dest: "/d", OutputSubpath: "usr"}
	b := a
	b.HasStrip = true
	b.StripComponents = 1
	assert.NotEqual(t, cache.Hash(a), cache.Hash(b))
}

func TestTarExtract_Run_ExtractsAndReturnsTrackedPath(t *testing.T) {
	dir := t.TempDir()
	archivePath := dir + "/payload.tar.gz"
	writeTarGz(t, archivePath, map[string]string{"usr/lib/x.txt": "hi"})

	dest := t.TempDir()
	q := TarExtract{Archive: archivePath, Dest: dest, OutputSubpath: "usr/lib"}
	out, err := q.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dest+"/usr/lib", out)
	assert.FileExists(t, dest+"/usr/lib/x.txt")
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	gw := gzip.NewWriter(f)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
}
