package main

import (
	"path/filepath"

	"github.com/basinfs/hfs/internal/hfs"
	"github.com/basinfs/hfs/internal/pool"
	"github.com/basinfs/hfs/internal/refs"
)

// openPool resolves and opens the pool directory for the current
// invocation.
func openPool() (*pool.Pool, error) {
	dir, err := poolDir()
	if err != nil {
		return nil, err
	}
	return pool.Open(dir)
}

// refsPath places the ref database as a sibling of the pool directory,
// so a pool can be relocated together with its refs in one move.
func refsPath(dir string) string {
	return filepath.Join(filepath.Dir(dir), "refs.db")
}

func openRefs() (*refs.Store, string, error) {
	dir, err := poolDir()
	if err != nil {
		return nil, "", err
	}
	s, err := refs.Open(refsPath(dir))
	return s, dir, err
}

// resolveRoot turns a ref name or literal root key into a root key,
// falling back to the configured default ref when ref is empty.
func resolveRoot(ref string) (string, error) {
	if ref == "" {
		name, err := defaultRefName()
		if err != nil {
			return "", err
		}
		ref = name
	}
	if len(ref) == 64 {
		return ref, nil
	}
	s, _, err := openRefs()
	if err != nil {
		return "", err
	}
	defer s.Close()
	return s.Get(ref)
}

func openHFS(root string) (*hfs.HFS, *pool.Pool, error) {
	p, err := openPool()
	if err != nil {
		return nil, nil, err
	}
	return hfs.Open(p, root), p, nil
}
