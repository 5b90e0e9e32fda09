package pool

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// packFileName is the name of the pack side-file within a Pool
// directory, per the on-disk layout: "P/_pack".
const packFileName = "_pack"

// packMagic identifies a pack file; packVersion lets the format evolve
// without breaking readers of the previous version.
var packMagic = [4]byte{'H', 'F', 'P', 'K'}

const packVersion = 1

// encodePack writes a self-describing binary encoding of the pack table:
// a magic number and version byte, followed by length-prefixed
// key/value records, the whole stream zstd-compressed. This replaces
// the reference implementation's pickle encoding with a portable
// format while preserving the merge-on-flush semantics.
func encodePack(w io.Writer, table map[string][]byte) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	var hdr [5]byte
	copy(hdr[:4], packMagic[:])
	hdr[4] = packVersion
	if _, err := zw.Write(hdr[:]); err != nil {
		zw.Close()
		return err
	}

	lenBuf := make([]byte, binary.MaxVarintLen64)
	for key, value := range table {
		if err := writeRecord(zw, lenBuf, []byte(key), value); err != nil {
			zw.Close()
			return err
		}
	}

	return zw.Close()
}

func writeRecord(w io.Writer, lenBuf []byte, key, value []byte) error {
	n := binary.PutUvarint(lenBuf, uint64(len(key)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return err
	}
	if _, err := w.Write(key); err != nil {
		return err
	}
	n = binary.PutUvarint(lenBuf, uint64(len(value)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return err
	}
	if _, err := w.Write(value); err != nil {
		return err
	}
	return nil
}

// decodePack parses a pack file previously written by encodePack,
// merging its entries into table. Unknown magic or version is returned
// as a plain error, which Open and Flush report as an IO failure.
func decodePack(r io.Reader, table map[string][]byte) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer zr.Close()

	br := bufio.NewReader(zr)

	var hdr [5]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return err
	}
	if !bytes.Equal(hdr[:4], packMagic[:]) {
		return fmt.Errorf("pack file: bad magic")
	}
	if hdr[4] != packVersion {
		return fmt.Errorf("pack file: unsupported version %d", hdr[4])
	}

	for {
		key, err := readFrame(br)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		value, err := readFrame(br)
		if err != nil {
			return fmt.Errorf("pack file: truncated record: %w", err)
		}
		table[string(key)] = value
	}
}

func readFrame(br *bufio.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// loadPack reads the on-disk pack file, if present, into table.
func loadPack(root string, table map[string][]byte) error {
	f, err := os.Open(filepath.Join(root, packFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return decodePack(f, table)
}

// savePack atomically rewrites the pack file via the pool's staging
// directory, after first merging in whatever is already on disk (to
// pick up packed entries written by other processes since open).
func (p *Pool) savePack() error {
	merged := make(map[string][]byte, len(p.pack))
	if err := loadPack(p.root, merged); err != nil {
		return err
	}
	for k, v := range p.pack {
		merged[k] = v
	}
	p.pack = merged

	tmp, err := os.CreateTemp(p.stagingDir, "pack-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := encodePack(tmp, merged); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, filepath.Join(p.root, packFileName))
}
