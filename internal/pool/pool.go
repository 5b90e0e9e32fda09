// Package pool implements the storage layer of the hash file system: a
// content-addressable blob store rooted at a local directory. Objects
// are addressed by the hex digest of their bytes; small objects are
// packed inline in memory and persisted to a single side file, large
// objects are written as individual files under an adaptive fan-out
// trie so no directory accumulates more entries than it can handle
// cheaply.
package pool

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/basinfs/hfs/internal/hfserr"
)

// PackLimit is the byte-length threshold below which a directly-supplied
// byte buffer is packed inline rather than written as its own file.
const PackLimit = 1024

// Pool is a local-directory content-addressable object store. A Pool's
// state is fully owned by its instance: there is no package-level
// cache, and nothing prevents two independent Pool values from pointing
// at the same directory.
type Pool struct {
	root       string
	stagingDir string

	mu   sync.Mutex
	pack map[string][]byte
}

// Open binds a Pool to dir, creating the directory and its staging
// subdirectory if necessary, and loading any existing pack file.
func Open(dir string) (*Pool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, hfserr.Wrap(hfserr.IO, "create pool directory", err)
	}
	staging := filepath.Join(dir, "_")
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, hfserr.Wrap(hfserr.IO, "create staging directory", err)
	}

	p := &Pool{
		root:       dir,
		stagingDir: staging,
		pack:       make(map[string][]byte),
	}
	if err := loadPack(dir, p.pack); err != nil {
		return nil, hfserr.Wrap(hfserr.IO, "load pack file", err)
	}
	return p, nil
}

// PutBytes stores data, packing it inline if it is shorter than
// PackLimit and otherwise writing it as an individual file through the
// atomic stage-then-rename path.
func (p *Pool) PutBytes(data []byte) (string, error) {
	key := hashKey(data)

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(data) < PackLimit {
		buf := make([]byte, len(data))
		copy(buf, data)
		p.pack[key] = buf
		return key, nil
	}

	path, err := p.locate(key)
	if err != nil {
		return "", hfserr.Wrap(hfserr.IO, "locate object", err)
	}
	if _, err := os.Lstat(path); err == nil {
		return key, nil
	}

	tmp, err := os.CreateTemp(p.stagingDir, "obj-*")
	if err != nil {
		return "", hfserr.Wrap(hfserr.IO, "stage object", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", hfserr.Wrap(hfserr.IO, "write staged object", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", hfserr.Wrap(hfserr.IO, "close staged object", err)
	}
	if err := finalize(tmp.Name(), path); err != nil {
		return "", err
	}
	return key, nil
}

// Put stores the bytes read from r, choosing the seekable or
// non-seekable streaming path depending on whether r implements
// io.Seeker and can actually seek (a pipe behind an *os.File cannot,
// and takes the non-seekable path). Unlike PutBytes, streamed objects are never packed: the
// content length is not known up front without a first pass, and the
// reference implementation this mirrors always file-stores stream
// input regardless of its size.
func (p *Pool) Put(r io.Reader) (string, error) {
	if seeker, ok := r.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekCurrent); err == nil {
			return p.putSeekable(r, seeker)
		}
	}
	return p.putFused(r)
}

// putSeekable hashes the stream in one pass, then rewrites it into the
// staging area in a second pass only if the object is not already
// present.
func (p *Pool) putSeekable(r io.Reader, seeker io.Seeker) (string, error) {
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return "", hfserr.Wrap(hfserr.IO, "seek to start", err)
	}
	hw := newHashWriter()
	if err := copyChunks(r, hw); err != nil {
		return "", hfserr.Wrap(hfserr.IO, "hash stream", err)
	}
	key := hw.key()

	p.mu.Lock()
	defer p.mu.Unlock()

	path, err := p.locate(key)
	if err != nil {
		return "", hfserr.Wrap(hfserr.IO, "locate object", err)
	}
	if _, err := os.Lstat(path); err == nil {
		return key, nil
	}

	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return "", hfserr.Wrap(hfserr.IO, "rewind stream", err)
	}
	tmp, err := os.CreateTemp(p.stagingDir, "obj-*")
	if err != nil {
		return "", hfserr.Wrap(hfserr.IO, "stage object", err)
	}
	if err := copyChunks(r, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", hfserr.Wrap(hfserr.IO, "write staged object", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", hfserr.Wrap(hfserr.IO, "close staged object", err)
	}
	if err := finalize(tmp.Name(), path); err != nil {
		return "", err
	}
	return key, nil
}

// putFused hashes and writes a non-seekable stream in a single pass,
// fusing the two consumers through copyChunks, then discards the
// staged file if an object with the resulting key already exists.
func (p *Pool) putFused(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(p.stagingDir, "obj-*")
	if err != nil {
		return "", hfserr.Wrap(hfserr.IO, "stage object", err)
	}
	hw := newHashWriter()
	if err := copyChunks(r, tmp, hw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", hfserr.Wrap(hfserr.IO, "write staged object", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", hfserr.Wrap(hfserr.IO, "close staged object", err)
	}
	key := hw.key()

	p.mu.Lock()
	defer p.mu.Unlock()

	path, err := p.locate(key)
	if err != nil {
		os.Remove(tmp.Name())
		return "", hfserr.Wrap(hfserr.IO, "locate object", err)
	}
	if _, err := os.Lstat(path); err == nil {
		os.Remove(tmp.Name())
		return key, nil
	}
	if err := finalize(tmp.Name(), path); err != nil {
		return "", err
	}
	return key, nil
}

// finalize renames a staged file onto its destination, discarding the
// staged copy if the destination appeared concurrently. The rename is
// the module's sole atomicity guarantee: a reader never observes a
// partially written object under a valid key.
func finalize(stagedPath, destPath string) error {
	if err := os.Rename(stagedPath, destPath); err != nil {
		if _, statErr := os.Lstat(destPath); statErr == nil {
			os.Remove(stagedPath)
			return nil
		}
		return hfserr.Wrap(hfserr.IO, "finalize object", err)
	}
	return nil
}

// Get returns a fresh, independently positioned reader over the object
// stored at key.
func (p *Pool) Get(key string) (io.ReadCloser, error) {
	p.mu.Lock()
	if data, ok := p.pack[key]; ok {
		cp := make([]byte, len(data))
		copy(cp, data)
		p.mu.Unlock()
		return io.NopCloser(bytes.NewReader(cp)), nil
	}
	p.mu.Unlock()

	path, err := p.locate(key)
	if err != nil {
		return nil, hfserr.Wrap(hfserr.IO, "locate object", err)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, hfserr.New(hfserr.NotFound, "key "+key)
	}
	if err != nil {
		return nil, hfserr.Wrap(hfserr.IO, "open object", err)
	}
	return f, nil
}

// Size reports the byte length stored at key, or 0 if key is absent.
func (p *Pool) Size(key string) (int64, error) {
	p.mu.Lock()
	if data, ok := p.pack[key]; ok {
		p.mu.Unlock()
		return int64(len(data)), nil
	}
	p.mu.Unlock()

	path, err := p.locate(key)
	if err != nil {
		return 0, hfserr.Wrap(hfserr.IO, "locate object", err)
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, hfserr.Wrap(hfserr.IO, "stat object", err)
	}
	return info.Size(), nil
}

// Flush merges the on-disk pack file into memory (to pick up packed
// entries from concurrent writers) and atomically rewrites it.
func (p *Pool) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.savePack(); err != nil {
		return hfserr.Wrap(hfserr.IO, "flush pack file", err)
	}
	return nil
}
