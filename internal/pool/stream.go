package pool

import (
	"encoding/hex"
	"io"

	"lukechampine.com/blake3"
)

// chunkSize is the fan-out read size recommended for streaming hashing
// and copying: large enough to amortize syscalls, small enough to keep
// memory bounded regardless of object size.
const chunkSize = 256 * 1024

// copyChunks reads src in chunkSize pieces and feeds each piece to every
// writer in dests, in a single pass. It is the multi-consumer fan-out
// the streaming put paths use to hash and persist an object at once.
func copyChunks(src io.Reader, dests ...io.Writer) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			for _, w := range dests {
				if _, werr := w.Write(buf[:n]); werr != nil {
					return werr
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// hashKey returns the hex digest used as a Pool key for data.
func hashKey(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashWriter accumulates a streaming BLAKE3 digest of everything written
// to it, so it can be passed as one of copyChunks' fan-out destinations.
type hashWriter struct {
	h *blake3.Hasher
}

func newHashWriter() *hashWriter {
	return &hashWriter{h: blake3.New(32, nil)}
}

func (hw *hashWriter) Write(p []byte) (int, error) {
	return hw.h.Write(p)
}

func (hw *hashWriter) key() string {
	sum := hw.h.Sum(nil)
	return hex.EncodeToString(sum)
}
