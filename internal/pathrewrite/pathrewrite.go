// Package pathrewrite implements the two sysroot-surgery passes every
// recipe runs after unpacking a target distribution (spec §4.L):
// rewriting absolute symlinks to sysroot-relative ones, and flattening
// glibc's modulemap header references into a private, portable layout.
package pathrewrite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/crossbuild/sdkgen/internal/sdkerr"
	"github.com/crossbuild/sdkgen/internal/vfs"
)

// FixAbsoluteSymlinks walks sysroot and rewrites every symlink whose
// target is absolute to a sysroot-relative path, verifying after each
// rewrite that the link still resolves to an existing file (symlinks
// may chain). A symlink whose target is under /etc is deleted outright
// instead of rewritten, since it can never resolve inside the sysroot.
func FixAbsoluteSymlinks(ctx context.Context, fsys vfs.FS, sysroot string) error {
	links, err := fsys.EnumerateSymlinks(ctx, sysroot)
	if err != nil {
		return fmt.Errorf("enumerate symlinks under %s: %w", sysroot, err)
	}

	for _, link := range links {
		target, err := fsys.ReadSymlinkTarget(ctx, link)
		if err != nil {
			return fmt.Errorf("read symlink %s: %w", link, err)
		}
		if !strings.HasPrefix(target, "/") {
			continue
		}
		if strings.HasPrefix(target, "/etc") {
			if err := fsys.RemoveRecursively(ctx, link); err != nil {
				return fmt.Errorf("remove /etc-targeted symlink %s: %w", link, err)
			}
			continue
		}

		depth := strings.Count(strings.TrimPrefix(filepath.Dir(link), sysroot), string(filepath.Separator))
		relative := strings.Repeat("../", depth) + strings.TrimPrefix(target, "/")

		if err := fsys.CreateSymlink(ctx, relative, link); err != nil {
			return fmt.Errorf("rewrite symlink %s -> %s: %w", link, relative, err)
		}
		if !resolves(ctx, fsys, link) {
			return &sdkerr.SymlinkFixupFailed{Src: link, Dst: relative}
		}
	}
	return nil
}

// resolves reports whether link ultimately points at an existing file,
// following symlink chains.
func resolves(ctx context.Context, fsys vfs.FS, link string) bool {
	seen := map[string]bool{}
	current := link
	for i := 0; i < 40; i++ {
		if seen[current] {
			return false
		}
		seen[current] = true
		if !fsys.Exists(ctx, current) {
			return false
		}
		target, err := fsys.ReadSymlinkTarget(ctx, current)
		if err != nil {
			// current is a regular file/dir, not a symlink: chain resolved.
			return true
		}
		if strings.HasPrefix(target, "/") {
			current = target
		} else {
			current = filepath.Join(filepath.Dir(current), target)
		}
	}
	return false
}

var glibcHeaderDirective = regexp.MustCompile(`header "(/usr/include/(?:[\w.-]+-linux-gnu/)?([^"]+))"`)

// FixGlibcModulemap rewrites every `header "/usr/include/[<arch>-linux-gnu/]<path>"`
// directive in modulemapPath to point at a flattened private header
// under privateIncludesDir, writing a one-line forwarding header at
// each new path.
func FixGlibcModulemap(ctx context.Context, fsys vfs.FS, modulemapPath, privateIncludesDir string) error {
	r, err := fsys.OpenRead(ctx, modulemapPath)
	if err != nil {
		return fmt.Errorf("read modulemap %s: %w", modulemapPath, err)
	}
	raw, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return fmt.Errorf("read modulemap %s: %w", modulemapPath, err)
	}

	var forwardingErr error
	rewritten := glibcHeaderDirective.ReplaceAllFunc(raw, func(match []byte) []byte {
		groups := glibcHeaderDirective.FindSubmatch(match)
		headerPath := string(groups[2])
		flattened := strings.ReplaceAll(headerPath, "/", "_")

		forwardingPath := filepath.Join(privateIncludesDir, flattened)
		if err := fsys.OpenWrite(ctx, forwardingPath, strings.NewReader("#include <linux/uuid.h>\n")); err != nil && forwardingErr == nil {
			forwardingErr = err
		}

		return []byte(fmt.Sprintf(`header "private_includes/%s"`, flattened))
	})
	if forwardingErr != nil {
		return fmt.Errorf("write forwarding header: %w", forwardingErr)
	}

	if err := fsys.OpenWrite(ctx, modulemapPath, bytes.NewReader(rewritten)); err != nil {
		return fmt.Errorf("write modulemap %s: %w", modulemapPath, err)
	}
	return nil
}
