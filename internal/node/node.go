// Package node implements the structure layer: the four typed
// overlays (file, list, set, map) that sit on top of the pool's flat
// blob store and give it POSIX-flavored shape. Every variant shares a
// common attribute envelope and a Commit/Load pair whose canonical
// byte encoding guarantees that identical logical content always
// produces the same key.
package node

import (
	"encoding/hex"
	"io"
	"sort"
	"strconv"
	"strings"

	"lukechampine.com/blake3"

	"github.com/basinfs/hfs/internal/hfserr"
)

// KeyLen is L, the hex-character length of a pool key.
const KeyLen = 64

// Store is the subset of the pool's contract a Node needs to commit
// itself and to resolve its own payload.
type Store interface {
	PutBytes(data []byte) (string, error)
	Get(key string) (io.ReadCloser, error)
	Size(key string) (int64, error)
}

// Node is the common capability every variant supports: committing
// itself into a Store and reporting the POSIX-flavored metadata a
// read-only mount adapter would read off it.
type Node interface {
	Commit(store Store) (string, error)
	Data() string
	Size() int64
	Time() float64
	Access() int
	Uid() int
	Gid() int
	Nlink() int
}

// Container is implemented by the three container variants (list, set,
// map) and resolves a single path segment to a child key.
type Container interface {
	Node
	Child(name string) (string, bool)
}

// Base holds the envelope state shared by every variant: the data key,
// the raw (un-hashed) attribute map, and the cached size of the
// payload blob.
type Base struct {
	dataKey string
	attrs   map[string]string
	size    int64
}

func (b *Base) Data() string { return b.dataKey }
func (b *Base) Size() int64  { return b.size }

func (b *Base) setSize(s int64) { b.size = s }

// Time returns the "time" attribute as a float, or 0 if absent.
func (b *Base) Time() float64 {
	v, ok := b.attrs["time"]
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func (b *Base) Uid() int { return parseIntAttr(b.attrs, "uid", 0) }
func (b *Base) Gid() int { return parseIntAttr(b.attrs, "gid", 0) }

func parseIntAttr(attrs map[string]string, key string, dflt int) int {
	v, ok := attrs[key]
	if !ok {
		return dflt
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return dflt
	}
	return n
}

type sizeSetter interface{ setSize(int64) }

// tag hashes a fixed variant name the same way every registered type
// name is hashed, producing the `_node` envelope value.
func tag(name string) string {
	sum := blake3.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}

var (
	tagFile = tag("file")
	tagList = tag("list")
	tagSet  = tag("set")
	tagMap  = tag("map")
)

type loader func(store Store, dataKey string, attrs map[string]string) (Node, error)

var registry = map[string]loader{}

func register(t string, l loader) {
	registry[t] = l
}

func init() {
	register(tagFile, func(store Store, dataKey string, attrs map[string]string) (Node, error) {
		return &FileNode{Base: Base{dataKey: dataKey, attrs: attrs}}, nil
	})
	register(tagList, loadList)
	register(tagSet, loadSet)
	register(tagMap, loadMap)
}

// Load parses a canonical envelope blob and dispatches by its `_node`
// tag to the matching variant's loader. An unrecognized tag, or an
// envelope missing `_data`/`_node`, fails closed rather than guessing a
// variant.
func Load(store Store, envelopeText string) (Node, error) {
	attrs, err := parseMapping(envelopeText)
	if err != nil {
		return nil, err
	}
	t, ok := attrs["_node"]
	if !ok {
		return nil, hfserr.New(hfserr.InvalidStructure, "envelope missing _node")
	}
	dataKey, ok := attrs["_data"]
	if !ok {
		return nil, hfserr.New(hfserr.InvalidStructure, "envelope missing _data")
	}
	delete(attrs, "_node")
	delete(attrs, "_data")

	build, ok := registry[t]
	if !ok {
		return nil, hfserr.New(hfserr.InvalidStructure, "unknown node tag "+t)
	}
	n, err := build(store, dataKey, attrs)
	if err != nil {
		return nil, err
	}
	size, err := store.Size(dataKey)
	if err != nil {
		return nil, hfserr.Wrap(hfserr.IO, "size node payload", err)
	}
	if ss, ok := n.(sizeSetter); ok {
		ss.setSize(size)
	}
	return n, nil
}

// commitEnvelope renders attrs plus _data/_node in canonical mapping
// form and puts the resulting blob, returning the node's key.
func commitEnvelope(store Store, t, dataKey string, attrs map[string]string) (string, error) {
	m := make(map[string]string, len(attrs)+2)
	for k, v := range attrs {
		m[k] = v
	}
	m["_data"] = dataKey
	m["_node"] = t
	return store.PutBytes([]byte(renderMapping(m)))
}

func cloneAttrs(attrs map[string]string) map[string]string {
	cp := make(map[string]string, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return cp
}

// renderMapping renders m in the canonical mapping-blob form: ascending
// key order, one "<k>: <v>\n" line per entry.
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

// parseMapping is the inverse of renderMapping. A line with no ": "
// separator is kept with an empty value, matching a plain partition on
// a missing separator.
func parseMapping(text string) (map[string]string, error) {
	attrs := make(map[string]string)
	for _, line := range splitLines(text) {
		if line == "" {
			continue
		}
		if idx := strings.Index(line, ": "); idx >= 0 {
			attrs[line[:idx]] = line[idx+2:]
		} else {
			attrs[line] = ""
		}
	}
	return attrs, nil
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func readAllText(store Store, key string) (string, error) {
	r, err := store.Get(key)
	if err != nil {
		return "", err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return "", hfserr.Wrap(hfserr.IO, "read node payload", err)
	}
	return string(b), nil
}

func containerAccess(attrs map[string]string) int {
	if v, ok := attrs["access"]; ok {
		if n, err := strconv.ParseInt(v, 8, 64); err == nil {
			return int(n)
		}
	}
	return 0o40777
}
