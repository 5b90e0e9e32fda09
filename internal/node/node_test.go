package node

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/basinfs/hfs/internal/pool"
)

func mustPool(t *testing.T) *pool.Pool {
	t.Helper()
	p, err := pool.Open(t.TempDir())
	if err != nil {
		t.Fatalf("pool.Open: %v", err)
	}
	return p
}

func TestFileNodeDefaultAccess(t *testing.T) {
	p := mustPool(t)
	dataKey, err := p.PutBytes([]byte("data"))
	if err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	f := NewFile(dataKey, map[string]string{"title": "t"})
	key, err := f.Commit(p)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	text, err := readAllText(p, key)
	if err != nil {
		t.Fatalf("readAllText: %v", err)
	}
	loaded, err := Load(p, text)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Access() != 0o100666 {
		t.Fatalf("Access() = %o, want 0100666", loaded.Access())
	}
	if loaded.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", loaded.Size())
	}
}

func TestFileNodeExecAccess(t *testing.T) {
	p := mustPool(t)
	dataKey, _ := p.PutBytes([]byte("bin"))
	f := NewFile(dataKey, map[string]string{"exec": "1"})
	if f.Access() != 0o100777 {
		t.Fatalf("Access() = %o, want 0100777", f.Access())
	}
}

func TestFileNodeExplicitAccess(t *testing.T) {
	p := mustPool(t)
	dataKey, _ := p.PutBytes([]byte("x"))
	f := NewFile(dataKey, map[string]string{"access": "644"})
	if f.Access() != 0o644 {
		t.Fatalf("Access() = %o, want 0644", f.Access())
	}
}

func TestEnvelopeRoundTripIsHashStable(t *testing.T) {
	p := mustPool(t)
	dataKey, _ := p.PutBytes([]byte("payload"))
	f := NewFile(dataKey, map[string]string{"title": "hello", "time": "123"})

	k1, err := f.Commit(p)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	text, err := readAllText(p, k1)
	if err != nil {
		t.Fatalf("readAllText: %v", err)
	}
	loaded, err := Load(p, text)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	k2, err := loaded.Commit(p)
	if err != nil {
		t.Fatalf("re-commit: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("round trip not hash-stable: %s != %s", k1, k2)
	}
}

func TestMapNodeCanonicalizesConstructionOrder(t *testing.T) {
	p := mustPool(t)
	aKey, _ := p.PutBytes([]byte("A"))
	bKey, _ := p.PutBytes([]byte("B"))

	m1 := NewMap(map[string]string{"a": aKey, "b": bKey}, nil)
	m2 := NewMap(map[string]string{"b": bKey, "a": aKey}, nil)

	k1, err := m1.Commit(p)
	if err != nil {
		t.Fatalf("Commit m1: %v", err)
	}
	k2, err := m2.Commit(p)
	if err != nil {
		t.Fatalf("Commit m2: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("construction order affected key: %s != %s", k1, k2)
	}
}

func TestMapNodePathLookupRoundTrip(t *testing.T) {
	p := mustPool(t)
	child, _ := p.PutBytes([]byte("child contents"))
	m := NewMap(map[string]string{"f": child}, nil)
	key, err := m.Commit(p)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	text, err := readAllText(p, key)
	if err != nil {
		t.Fatalf("readAllText: %v", err)
	}
	loaded, err := Load(p, text)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	container, ok := loaded.(Container)
	if !ok {
		t.Fatalf("loaded node is not a Container")
	}
	got, ok := container.Child("f")
	if !ok {
		t.Fatalf("expected child \"f\" to resolve")
	}
	if got != child {
		t.Fatalf("Child(\"f\") = %s, want %s", got, child)
	}
}

func TestListNodeOrderAndIndexLookup(t *testing.T) {
	p := mustPool(t)
	a, _ := p.PutBytes([]byte("A"))
	b, _ := p.PutBytes([]byte("B"))
	c, _ := p.PutBytes([]byte("C"))

	l := NewList([]string{a, b, c}, nil)
	key, err := l.Commit(p)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	text, _ := readAllText(p, key)
	loaded, err := Load(p, text)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	container := loaded.(Container)
	got, ok := container.Child("1")
	if !ok || got != b {
		t.Fatalf("Child(\"1\") = %q, %v, want %q, true", got, ok, b)
	}
}

func TestSetNodeCanonicalOrderIsSorted(t *testing.T) {
	p := mustPool(t)
	s1 := NewSet([]string{"c", "a", "b"}, nil)
	s2 := NewSet([]string{"a", "b", "c"}, nil)

	k1, err := s1.Commit(p)
	if err != nil {
		t.Fatalf("Commit s1: %v", err)
	}
	k2, err := s2.Commit(p)
	if err != nil {
		t.Fatalf("Commit s2: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("set keys differ by construction order: %s != %s", k1, k2)
	}
}

func TestEmptyContainersHaveStableKeys(t *testing.T) {
	p := mustPool(t)

	l1, _ := NewList(nil, nil).Commit(p)
	l2, _ := NewList([]string{}, nil).Commit(p)
	if l1 != l2 {
		t.Fatalf("empty list keys differ: %s != %s", l1, l2)
	}

	s1, _ := NewSet(nil, nil).Commit(p)
	m1, _ := NewMap(nil, nil).Commit(p)
	if s1 == "" || m1 == "" {
		t.Fatal("empty containers must still produce a key")
	}
}

func TestMapNodeEntriesSurviveReload(t *testing.T) {
	p := mustPool(t)
	aKey, _ := p.PutBytes([]byte("A"))
	bKey, _ := p.PutBytes([]byte("B"))
	want := map[string]string{"a": aKey, "b": bKey}

	m := NewMap(want, nil)
	key, err := m.Commit(p)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	text, err := readAllText(p, key)
	if err != nil {
		t.Fatalf("readAllText: %v", err)
	}
	loaded, err := Load(p, text)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.(*MapNode).Entries
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Entries mismatch after reload (-want +got):\n%s", diff)
	}
}

func TestLoadUnknownTagFailsClosed(t *testing.T) {
	p := mustPool(t)
	_, err := Load(p, "_node: deadbeef\n_data: 0000\n")
	if err == nil {
		t.Fatal("expected error for unknown _node tag")
	}
}

func TestLoadMissingFieldsFailsClosed(t *testing.T) {
	p := mustPool(t)
	_, err := Load(p, "title: x\n")
	if err == nil {
		t.Fatal("expected error for envelope missing _node/_data")
	}
}

func TestContainerDefaultAccessAndNlink(t *testing.T) {
	p := mustPool(t)
	aKey, _ := p.PutBytes([]byte("A"))
	bKey, _ := p.PutBytes([]byte("B"))
	m := NewMap(map[string]string{"a": aKey, "b": bKey}, nil)
	key, err := m.Commit(p)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	text, _ := readAllText(p, key)
	loaded, err := Load(p, text)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Access() != 0o40777 {
		t.Fatalf("Access() = %o, want 040777", loaded.Access())
	}
	if loaded.Nlink() != 4 {
		t.Fatalf("Nlink() = %d, want 4", loaded.Nlink())
	}
}
