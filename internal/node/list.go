package node

import "strconv"

// ListNode is an ordered sequence of child keys; the payload preserves
// insertion order and name-lookup is by integer index.
type ListNode struct {
	Base
	Children []string
}

// NewList constructs a ListNode over the given child keys, in order.
func NewList(children []string, attrs map[string]string) *ListNode {
	return &ListNode{
		Base:     Base{attrs: cloneAttrs(attrs)},
		Children: append([]string(nil), children...),
	}
}

func (l *ListNode) Access() int { return containerAccess(l.attrs) }
func (l *ListNode) Nlink() int  { return len(l.Children) + 2 }

// Child converts name to an integer index into Children.
func (l *ListNode) Child(name string) (string, bool) {
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || i >= len(l.Children) {
		return "", false
	}
	return l.Children[i], true
}

func (l *ListNode) Commit(store Store) (string, error) {
	payload := renderLines(l.Children)
	dataKey, err := store.PutBytes([]byte(payload))
	if err != nil {
		return "", err
	}
	l.dataKey = dataKey
	l.size = int64(len(payload))
	return commitEnvelope(store, tagList, dataKey, l.attrs)
}

func loadList(store Store, dataKey string, attrs map[string]string) (Node, error) {
	text, err := readAllText(store, dataKey)
	if err != nil {
		return nil, err
	}
	return &ListNode{
		Base:     Base{dataKey: dataKey, attrs: attrs},
		Children: splitLines(text),
	}, nil
}

// renderLines renders items one per line in the given order.
func renderLines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b []byte
	for _, it := range items {
		b = append(b, it...)
		b = append(b, '\n')
	}
	return string(b)
}
