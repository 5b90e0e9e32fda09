package pool

import (
	"os"
	"path/filepath"
)

// fanout is the maximum number of entries a trie directory is allowed to
// hold before the next insert at that level is pushed into a fresh
// 2-hex-character subdirectory.
const fanout = 250

// locate resolves the on-disk path for key by descending the adaptive
// fan-out trie two hex characters at a time. It mirrors the reference
// placement rule exactly, including creating a subdirectory as a side
// effect of resolving a path that does not yet exist: callers that only
// want to read must still call this, since the reference implementation
// does the same in its own getter.
//
// At each level: if a file named with the remainder of the key already
// exists in the current directory, that is the path. Otherwise, if the
// next-level subdirectory is absent, place the object in the current
// directory as long as it holds fewer than fanout entries; once it
// holds fanout or more, create the subdirectory and recurse into it one
// nibble-pair at a time.
func (p *Pool) locate(key string) (string, error) {
	dir := p.root
	for i := 0; i < len(key); i += 2 {
		remainder := key[i:]
		candidate := filepath.Join(dir, remainder)
		if _, err := os.Lstat(candidate); err == nil {
			return candidate, nil
		}

		nibble := key[i : i+2]
		next := filepath.Join(dir, nibble)
		if _, err := os.Lstat(next); err != nil {
			entries, rerr := os.ReadDir(dir)
			if rerr != nil {
				return "", rerr
			}
			if len(entries) < fanout {
				return candidate, nil
			}
			if err := os.Mkdir(next, 0o755); err != nil && !os.IsExist(err) {
				return "", err
			}
			return filepath.Join(next, key[i+2:]), nil
		}
		dir = next
	}
	// len(key) is always even (hex digest), so the loop above always
	// returns before falling through.
	return filepath.Join(dir, key), nil
}
