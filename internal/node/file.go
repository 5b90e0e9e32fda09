package node

import "strconv"

// FileNode addresses a blob of file content plus metadata. It has no
// container payload: its `_data` key points straight at the content.
type FileNode struct {
	Base
}

// NewFile constructs a FileNode over a content key already committed
// to the pool.
func NewFile(dataKey string, attrs map[string]string) *FileNode {
	return &FileNode{Base: Base{dataKey: dataKey, attrs: cloneAttrs(attrs)}}
}

// Access returns the explicit "access" attribute parsed as octal if
// present, 0o100777 if "exec" is set, else 0o100666.
func (f *FileNode) Access() int {
	if v, ok := f.attrs["access"]; ok {
		if n, err := strconv.ParseInt(v, 8, 64); err == nil {
			return int(n)
		}
	}
	if _, ok := f.attrs["exec"]; ok {
		return 0o100777
	}
	return 0o100666
}

// Nlink is always 1 for a file.
func (f *FileNode) Nlink() int { return 1 }

// Commit writes the envelope over the already-known data key; a
// FileNode never commits new payload bytes of its own.
func (f *FileNode) Commit(store Store) (string, error) {
	size, err := store.Size(f.dataKey)
	if err != nil {
		return "", err
	}
	f.size = size
	return commitEnvelope(store, tagFile, f.dataKey, f.attrs)
}
