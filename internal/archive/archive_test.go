package archive

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbuild/sdkgen/internal/sdkerr"
)

func TestExtract_UnknownSuffixReturnsUnknownArchiveFormat(t *testing.T) {
	err := Extract(context.Background(), "/tmp/payload.rar", t.TempDir(), Options{})
	require.Error(t, err)
	var target *sdkerr.UnknownArchiveFormat
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, ".rar", target.Ext)
}

func TestSuffixOf(t *testing.T) {
	assert.Equal(t, ".gz", suffixOf("archive.tar.gz"))
	assert.Equal(t, "noext", suffixOf("noext"))
}

func TestExtract_TarGzRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	archivePath := srcDir + "/payload.tar.gz"

	writeTestTarGz(t, archivePath, map[string]string{"hello.txt": "hi there"})

	err := Extract(context.Background(), archivePath, destDir, Options{})
	require.NoError(t, err)
	assert.FileExists(t, destDir+"/hello.txt")
}

func TestExtract_TxzIsRegisteredInDispatch(t *testing.T) {
	srcDir := t.TempDir()
	archivePath := srcDir + "/base.txz"
	require.NoError(t, os.WriteFile(archivePath, []byte{}, 0o644))

	for _, entry := range dispatch {
		if entry.suffix == ".txz" {
			return
		}
	}
	t.Fatal(".txz not registered in dispatch")
}

func TestExtract_PlainGzInflatesToDesuffixedName(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	archivePath := srcDir + "/Packages.gz"

	writeTestGz(t, archivePath, "Package: libc6-dev\n")

	err := Extract(context.Background(), archivePath, destDir, Options{})
	require.NoError(t, err)
	out, err := os.ReadFile(destDir + "/Packages")
	require.NoError(t, err)
	assert.Equal(t, "Package: libc6-dev\n", string(out))
}

func TestExtract_TarGzSuffixDoesNotFallThroughToPlainGz(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	archivePath := srcDir + "/payload.tar.gz"
	writeTestTarGz(t, archivePath, map[string]string{"hello.txt": "hi there"})

	err := Extract(context.Background(), archivePath, destDir, Options{})
	require.NoError(t, err)
	// A real tar extraction produces hello.txt, not a desuffixed
	// "payload.tar" copy of the compressed bytes.
	assert.FileExists(t, destDir+"/hello.txt")
	assert.NoFileExists(t, destDir+"/payload.tar")
}
