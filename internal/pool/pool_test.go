package pool

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/basinfs/hfs/internal/hfserr"
)

func mustOpen(t *testing.T) *Pool {
	t.Helper()
	p, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return p
}

func TestPutBytesRoundTrip(t *testing.T) {
	p := mustOpen(t)
	data := []byte("hello")

	key, err := p.PutBytes(data)
	if err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	if want := hashKey(data); key != want {
		t.Fatalf("key = %s, want %s", key, want)
	}

	r, err := p.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestPutBytesIsKeyedByHash(t *testing.T) {
	p := mustOpen(t)
	data := []byte("some content that determines its own key")
	key, err := p.PutBytes(data)
	if err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	if key != hashKey(data) {
		t.Fatalf("key %s does not equal hash of content", key)
	}
}

func TestPackBoundary(t *testing.T) {
	p := mustOpen(t)

	small := bytes.Repeat([]byte{'a'}, PackLimit-1)
	large := bytes.Repeat([]byte{'b'}, PackLimit)

	smallKey, err := p.PutBytes(small)
	if err != nil {
		t.Fatalf("PutBytes small: %v", err)
	}
	largeKey, err := p.PutBytes(large)
	if err != nil {
		t.Fatalf("PutBytes large: %v", err)
	}

	if _, ok := p.pack[smallKey]; !ok {
		t.Fatalf("object of %d bytes should be packed", PackLimit-1)
	}
	if _, ok := p.pack[largeKey]; ok {
		t.Fatalf("object of %d bytes should not be packed", PackLimit)
	}
	path, err := p.locate(largeKey)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
}

func TestRepeatedPutIsIdempotent(t *testing.T) {
	p := mustOpen(t)
	data := bytes.Repeat([]byte{'x'}, PackLimit+10)

	key1, err := p.PutBytes(data)
	if err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	key2, err := p.PutBytes(data)
	if err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	if key1 != key2 {
		t.Fatalf("keys differ: %s vs %s", key1, key2)
	}
}

func TestGetMissingKeyIsNotFound(t *testing.T) {
	p := mustOpen(t)
	_, err := p.Get("0000000000000000000000000000000000000000000000000000000000000000")
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	var kind hfserr.Kind
	var ok bool
	if kind, ok = hfserr.Of(err); !ok || kind != hfserr.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSizeOfMissingKeyIsZero(t *testing.T) {
	p := mustOpen(t)
	size, err := p.Size("ff00000000000000000000000000000000000000000000000000000000000000")
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 0 {
		t.Fatalf("size = %d, want 0", size)
	}
}

func TestFanoutAt250Entries(t *testing.T) {
	p := mustOpen(t)

	// Distinct large blobs, enough to fill the root directory past the
	// 250-entry threshold and force later inserts into 2-hex-character
	// subdirectories.
	for i := 0; i < 260; i++ {
		data := append([]byte{byte(i), byte(i >> 8)}, bytes.Repeat([]byte{'z'}, PackLimit)...)
		if _, err := p.PutBytes(data); err != nil {
			t.Fatalf("PutBytes #%d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(p.root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) > 512 {
		t.Fatalf("root directory holds %d entries, want <= 512", len(entries))
	}
}

func TestPutSeekableStream(t *testing.T) {
	p := mustOpen(t)
	data := bytes.Repeat([]byte("stream"), 1000)
	r := bytes.NewReader(data)

	key, err := p.Put(r)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if key != hashKey(data) {
		t.Fatalf("key mismatch")
	}

	got, err := p.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer got.Close()
	readBack, err := io.ReadAll(got)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(readBack, data) {
		t.Fatal("round trip mismatch")
	}
}

type nonSeekableReader struct{ r io.Reader }

func (n *nonSeekableReader) Read(p []byte) (int, error) { return n.r.Read(p) }

func TestPutNonSeekableStream(t *testing.T) {
	p := mustOpen(t)
	data := bytes.Repeat([]byte("fused"), 1000)
	r := &nonSeekableReader{r: bytes.NewReader(data)}

	key, err := p.Put(r)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if key != hashKey(data) {
		t.Fatalf("key mismatch")
	}
}

func TestFlushAndReopenRecoversPackedObjects(t *testing.T) {
	dir := t.TempDir()
	p, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data := []byte("packed across reopen")
	key, err := p.PutBytes(data)
	if err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	r, err := reopened.Get(key)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestAbortedPutLeavesNoCorruptFile(t *testing.T) {
	p := mustOpen(t)
	large := bytes.Repeat([]byte{'q'}, PackLimit+5)
	key := hashKey(large)

	path, err := p.locate(key)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}

	// Simulate a crash between staging and rename: a stray temp file in
	// the staging directory must never be visible under the key's
	// canonical location.
	stray, err := os.CreateTemp(p.stagingDir, "obj-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	stray.Write(large[:len(large)/2])
	stray.Close()

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("object should not exist yet, stat err = %v", err)
	}

	gotKey, err := p.PutBytes(large)
	if err != nil {
		t.Fatalf("PutBytes after simulated crash: %v", err)
	}
	if gotKey != key {
		t.Fatalf("key = %s, want %s", gotKey, key)
	}

	r, err := p.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, large) {
		t.Fatal("recovered object does not match original content")
	}
}

func TestEmptyBlobHasStableKey(t *testing.T) {
	p := mustOpen(t)
	key1, err := p.PutBytes(nil)
	if err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	key2, err := p.PutBytes([]byte{})
	if err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	if key1 != key2 {
		t.Fatalf("empty blob keys differ: %s vs %s", key1, key2)
	}
}

func TestOpenCreatesStagingDir(t *testing.T) {
	p := mustOpen(t)
	// Sanity check the staging directory exists as documented in the
	// on-disk layout.
	if _, err := os.Stat(filepath.Join(p.root, "_")); err != nil {
		t.Fatalf("staging directory missing: %v", err)
	}
}
