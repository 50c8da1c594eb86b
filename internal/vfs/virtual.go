package vfs

import (
	"bytes"
	"context"
	"fmt"
	"hash"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type vnode struct {
	isDir        bool
	data         []byte
	symlinkDest  string
	isSymlink    bool
}

// Virtual is an in-memory FS implementation for unit tests, sharing
// identical path semantics with Real (forward-slash paths, directories
// implied by their contents).
type Virtual struct {
	mu    sync.Mutex
	nodes map[string]*vnode
}

var _ FS = (*Virtual)(nil)

// NewVirtual returns an empty in-memory filesystem rooted at "/".
func NewVirtual() *Virtual {
	return &Virtual{nodes: map[string]*vnode{"/": {isDir: true}}}
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
}

func (v *Virtual) ensureParents(p string) {
	dir := path.Dir(p)
	for dir != "/" {
		if _, ok := v.nodes[dir]; !ok {
			v.nodes[dir] = &vnode{isDir: true}
		}
		dir = path.Dir(dir)
	}
	if _, ok := v.nodes["/"]; !ok {
		v.nodes["/"] = &vnode{isDir: true}
	}
}

func (v *Virtual) OpenRead(_ context.Context, p string) (io.ReadCloser, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n, ok := v.nodes[clean(p)]
	if !ok || n.isDir {
		return nil, fmt.Errorf("open %s: not found", p)
	}
	return io.NopCloser(bytes.NewReader(n.data)), nil
}

func (v *Virtual) OpenWrite(_ context.Context, p string, data io.Reader) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read source for %s: %w", p, err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	cp := clean(p)
	v.ensureParents(cp)
	v.nodes[cp] = &vnode{data: buf}
	return nil
}

func (v *Virtual) Hash(ctx context.Context, p string, newHash func() hash.Hash) ([]byte, error) {
	r, err := v.OpenRead(ctx, p)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	h := newHash()
	if _, err := io.Copy(h, r); err != nil {
		return nil, fmt.Errorf("hash %s: %w", p, err)
	}
	return h.Sum(nil), nil
}

func (v *Virtual) Exists(_ context.Context, p string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.nodes[clean(p)]
	return ok
}

func (v *Virtual) IsDir(_ context.Context, p string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	n, ok := v.nodes[clean(p)]
	return ok && n.isDir
}

func (v *Virtual) Copy(_ context.Context, src, dst string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	cs := clean(src)
	n, ok := v.nodes[cs]
	if !ok || n.isDir {
		return fmt.Errorf("copy %s: not found", src)
	}
	cd := clean(dst)
	v.ensureParents(cd)
	cpData := append([]byte(nil), n.data...)
	v.nodes[cd] = &vnode{data: cpData}
	return nil
}

func (v *Virtual) CreateDirAll(_ context.Context, p string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	cp := clean(p)
	v.ensureParents(cp)
	if existing, ok := v.nodes[cp]; ok && !existing.isDir {
		return fmt.Errorf("mkdir %s: exists as file", p)
	}
	v.nodes[cp] = &vnode{isDir: true}
	return nil
}

func (v *Virtual) RemoveRecursively(_ context.Context, p string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	cp := clean(p)
	prefix := cp + "/"
	for k := range v.nodes {
		if k == cp || strings.HasPrefix(k, prefix) {
			delete(v.nodes, k)
		}
	}
	return nil
}

func (v *Virtual) CreateSymlink(_ context.Context, target, linkPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	cp := clean(linkPath)
	v.ensureParents(cp)
	v.nodes[cp] = &vnode{isSymlink: true, symlinkDest: target}
	return nil
}

func (v *Virtual) ReadSymlinkTarget(_ context.Context, linkPath string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n, ok := v.nodes[clean(linkPath)]
	if !ok || !n.isSymlink {
		return "", fmt.Errorf("readlink %s: not a symlink", linkPath)
	}
	return n.symlinkDest, nil
}

func (v *Virtual) EnumerateSymlinks(_ context.Context, dir string) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	prefix := clean(dir)
	if prefix != "/" {
		prefix += "/"
	}
	var links []string
	for k, n := range v.nodes {
		if n.isSymlink && strings.HasPrefix(k, prefix) {
			links = append(links, k)
		}
	}
	sort.Strings(links)
	return links, nil
}

func (v *Virtual) InTempDir(ctx context.Context, f func(dir string) error) error {
	dir := "/tmp/" + uuid.NewString()
	if err := v.CreateDirAll(ctx, dir); err != nil {
		return err
	}
	defer v.RemoveRecursively(ctx, dir)
	return f(dir)
}
