package pathrewrite

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbuild/sdkgen/internal/vfs"
)

func TestFixAbsoluteSymlinks_RewritesToRelativeAndVerifiesResolution(t *testing.T) {
	ctx := context.Background()
	fsys := vfs.NewVirtual()
	require.NoError(t, fsys.OpenWrite(ctx, "/sysroot/usr/lib/libc.so.6", strings.NewReader("binary")))
	require.NoError(t, fsys.CreateSymlink(ctx, "/usr/lib/libc.so.6", "/sysroot/usr/lib/libc.so"))

	require.NoError(t, FixAbsoluteSymlinks(ctx, fsys, "/sysroot"))

	target, err := fsys.ReadSymlinkTarget(ctx, "/sysroot/usr/lib/libc.so")
	require.NoError(t, err)
	assert.Equal(t, "../../usr/lib/libc.so.6", target)
}

func TestFixAbsoluteSymlinks_DeletesEtcTargetedLinks(t *testing.T) {
	ctx := context.Background()
	fsys := vfs.NewVirtual()
	require.NoError(t, fsys.CreateSymlink(ctx, "/etc/localtime", "/sysroot/etc/localtime"))

	require.NoError(t, FixAbsoluteSymlinks(ctx, fsys, "/sysroot"))
	assert.False(t, fsys.Exists(ctx, "/sysroot/etc/localtime"))
}

func TestFixAbsoluteSymlinks_FailsWhenResolutionBroken(t *testing.T) {
	ctx := context.Background()
	fsys := vfs.NewVirtual()
	// no backing file for the target: rewritten link cannot resolve.
	require.NoError(t, fsys.CreateSymlink(ctx, "/usr/lib/missing.so", "/sysroot/usr/lib/missing.so.link"))

	err := FixAbsoluteSymlinks(ctx, fsys, "/sysroot")
	require.Error(t, err)
}

func TestFixGlibcModulemap_FlattensHeaderAndWritesForwarder(t *testing.T) {
	ctx := context.Background()
	fsys := vfs.NewVirtual()
	modulemap := `module glibc [system] {
  header "/usr/include/x86_64-linux-gnu/bits/uuid.h"
  export *
}
`
	require.NoError(t, fsys.OpenWrite(ctx, "/sysroot/usr/include/glibc.modulemap", strings.NewReader(modulemap)))

	require.NoError(t, FixGlibcModulemap(ctx, fsys, "/sysroot/usr/include/glibc.modulemap", "/sysroot/usr/include/private_includes"))

	r, err := fsys.OpenRead(ctx, "/sysroot/usr/include/glibc.modulemap")
	require.NoError(t, err)
	defer r.Close()
	content, _ := io.ReadAll(r)
	assert.Contains(t, string(content), `header "private_includes/bits_uuid.h"`)

	fr, err := fsys.OpenRead(ctx, "/sysroot/usr/include/private_includes/bits_uuid.h")
	require.NoError(t, err)
	defer fr.Close()
	forwarding, _ := io.ReadAll(fr)
	assert.Equal(t, "#include <linux/uuid.h>\n", string(forwarding))
}
