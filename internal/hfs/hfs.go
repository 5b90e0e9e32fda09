// Package hfs implements the file-system façade that binds a storage
// pool to a root key and provides put/get/open/size/flush over it.
package hfs

import (
	"io"
	"sort"
	"strings"

	"github.com/basinfs/hfs/internal/hfserr"
	"github.com/basinfs/hfs/internal/node"
	"github.com/basinfs/hfs/internal/pool"
)

// SentinelRoot is the all-zero key designating a detached local root
// that need not exist in any pool.
var SentinelRoot = strings.Repeat("0", node.KeyLen)

// StringSet distinguishes an unordered collection of strings from an
// ordered one at the Put call site, since Go's type switch cannot tell
// two identically-shaped slice types apart otherwise.
type StringSet []string

// HFS binds a Pool to a root key and offers the high-level operations
// a caller walks a hash-tree file system with.
type HFS struct {
	pool *pool.Pool
	root string
}

// Open returns an HFS bound to pool p and root key. An empty root
// defaults to SentinelRoot.
func Open(p *pool.Pool, root string) *HFS {
	if root == "" {
		root = SentinelRoot
	}
	return &HFS{pool: p, root: root}
}

// Root returns the key this façade resolves paths against.
func (h *HFS) Root() string { return h.root }

// Put dispatches on the runtime kind of item: byte buffers and streams
// go straight to the pool; ordered and unordered string collections and
// string-to-string mappings are rendered to their canonical blob form
// first; Node values commit themselves, recursively persisting their
// own payload.
func (h *HFS) Put(item any) (string, error) {
	switch v := item.(type) {
	case []byte:
		return h.pool.PutBytes(v)
	case string:
		return h.pool.PutBytes([]byte(v))
	case io.Reader:
		return h.pool.Put(v)
	case StringSet:
		sorted := append([]string(nil), v...)
		sort.Strings(sorted)
		return h.pool.PutBytes([]byte(joinLines(sorted)))
	case []string:
		return h.pool.PutBytes([]byte(joinLines(v)))
	case map[string]string:
		return h.pool.PutBytes([]byte(renderMapping(v)))
	case node.Node:
		return v.Commit(h.pool)
	default:
		return "", hfserr.New(hfserr.Unsupported, "put: unsupported input type")
	}
}

// Get returns a fresh, independently positioned stream over key.
func (h *HFS) Get(key string) (io.ReadCloser, error) {
	return h.pool.Get(key)
}

// GetBytes reads all bytes stored at key.
func (h *HFS) GetBytes(key string) ([]byte, error) {
	r, err := h.pool.Get(key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, hfserr.Wrap(hfserr.IO, "read object", err)
	}
	return b, nil
}

// GetText decodes the bytes at key as UTF-8 text. Go's string/[]byte
// conversions never reject or mutate invalid byte sequences, so this is
// already byte-lossless for arbitrary input.
func (h *HFS) GetText(key string) (string, error) {
	b, err := h.GetBytes(key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Open resolves a POSIX-style absolute path by walking container
// children from the root key, returning the terminal Node. A missing
// segment, or a root key absent from the pool, is reported as NotFound.
func (h *HFS) Open(path string) (node.Node, error) {
	rootText, err := h.GetText(h.root)
	if err != nil {
		return nil, err
	}
	pos, err := node.Load(h.pool, rootText)
	if err != nil {
		return nil, err
	}

	for _, seg := range splitPath(path) {
		container, ok := pos.(node.Container)
		if !ok {
			return nil, hfserr.New(hfserr.NotFound, "path segment "+seg+": not a container")
		}
		childKey, ok := container.Child(seg)
		if !ok {
			return nil, hfserr.New(hfserr.NotFound, "path segment "+seg)
		}
		childText, err := h.GetText(childKey)
		if err != nil {
			return nil, err
		}
		pos, err = node.Load(h.pool, childText)
		if err != nil {
			return nil, err
		}
	}
	return pos, nil
}

// Size reports the byte length stored at key, 0 if absent.
func (h *HFS) Size(key string) (int64, error) { return h.pool.Size(key) }

// Flush durably persists the underlying pool's pack table.
func (h *HFS) Flush() error { return h.pool.Flush() }

func joinLines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderMapping(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(m[k])
		b.WriteByte('\n')
	}
	return b.String()
}
