package node

import "sort"

// SetNode is an unordered collection of child keys; the payload is
// sorted ascending and a child's name-lookup key is the key itself.
type SetNode struct {
	Base
	Children []string
}

// NewSet constructs a SetNode over the given child keys.
func NewSet(children []string, attrs map[string]string) *SetNode {
	return &SetNode{
		Base:     Base{attrs: cloneAttrs(attrs)},
		Children: append([]string(nil), children...),
	}
}

func (s *SetNode) Access() int { return containerAccess(s.attrs) }
func (s *SetNode) Nlink() int  { return len(s.Children) + 2 }

// Child returns name unchanged if it is a member: the key already is
// the child reference.
func (s *SetNode) Child(name string) (string, bool) {
	for _, c := range s.Children {
		if c == name {
			return name, true
		}
	}
	return "", false
}

func (s *SetNode) Commit(store Store) (string, error) {
	sorted := append([]string(nil), s.Children...)
	sort.Strings(sorted)
	payload := renderLines(sorted)
	dataKey, err := store.PutBytes([]byte(payload))
	if err != nil {
		return "", err
	}
	s.dataKey = dataKey
	s.size = int64(len(payload))
	return commitEnvelope(store, tagSet, dataKey, s.attrs)
}

func loadSet(store Store, dataKey string, attrs map[string]string) (Node, error) {
	text, err := readAllText(store, dataKey)
	if err != nil {
		return nil, err
	}
	return &SetNode{
		Base:     Base{dataKey: dataKey, attrs: attrs},
		Children: splitLines(text),
	}, nil
}
