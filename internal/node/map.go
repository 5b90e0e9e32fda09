package node

import (
	"sort"
	"strings"

	"github.com/basinfs/hfs/internal/hfserr"
)

// MapNode maps arbitrary name strings to child keys. Names are
// themselves stored as blobs; the payload holds only the two fixed-
// width keys per entry, sorted by the name's key.
type MapNode struct {
	Base
	Entries map[string]string // name -> child key
}

// NewMap constructs a MapNode over the given name -> child key entries.
func NewMap(entries map[string]string, attrs map[string]string) *MapNode {
	cp := make(map[string]string, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	return &MapNode{Base: Base{attrs: cloneAttrs(attrs)}, Entries: cp}
}

func (m *MapNode) Access() int { return containerAccess(m.attrs) }
func (m *MapNode) Nlink() int  { return len(m.Entries) + 2 }

// Child looks up name directly; no pool access is required once the
// map is resolved in memory.
func (m *MapNode) Child(name string) (string, bool) {
	v, ok := m.Entries[name]
	return v, ok
}

type mapPair struct{ nameKey, childKey string }

func (m *MapNode) Commit(store Store) (string, error) {
	pairs := make([]mapPair, 0, len(m.Entries))
	for name, childKey := range m.Entries {
		nameKey, err := store.PutBytes([]byte(name))
		if err != nil {
			return "", err
		}
		pairs = append(pairs, mapPair{nameKey: nameKey, childKey: childKey})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].nameKey < pairs[j].nameKey })

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.nameKey)
		b.WriteString(p.childKey)
		b.WriteByte('\n')
	}
	payload := b.String()

	dataKey, err := store.PutBytes([]byte(payload))
	if err != nil {
		return "", err
	}
	m.dataKey = dataKey
	m.size = int64(len(payload))
	return commitEnvelope(store, tagMap, dataKey, m.attrs)
}

func loadMap(store Store, dataKey string, attrs map[string]string) (Node, error) {
	text, err := readAllText(store, dataKey)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]string)
	for _, line := range splitLines(text) {
		if len(line) != 2*KeyLen {
			return nil, hfserr.New(hfserr.InvalidStructure, "short map payload line")
		}
		nameKey := line[:KeyLen]
		childKey := line[KeyLen:]
		name, err := readAllText(store, nameKey)
		if err != nil {
			return nil, err
		}
		// Duplicate name_key lines: last occurrence wins.
		entries[name] = childKey
	}
	return &MapNode{Base: Base{dataKey: dataKey, attrs: attrs}, Entries: entries}, nil
}
