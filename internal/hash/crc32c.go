package hash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// TrailerSize is the size of the little-endian checksum trailer.
const TrailerSize = 4

// ErrMismatch is returned by Reader.Verify when the trailer does not match.
var ErrMismatch = errors.New("hash: checksum mismatch")

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Writer checksums everything written through it.
type Writer struct {
	w io.Writer
	h hash.Hash32
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, h: NewCRC32C()}
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.h.Write(p[:n])
	return n, err
}

// Sum32 returns the checksum of the bytes written so far.
func (w *Writer) Sum32() uint32 { return w.h.Sum32() }

// WriteTrailer appends the checksum to the underlying writer. The trailer
// itself is not checksummed.
func (w *Writer) WriteTrailer() error {
	var sum [TrailerSize]byte
	binary.LittleEndian.PutUint32(sum[:], w.h.Sum32())
	if _, err := w.w.Write(sum[:]); err != nil {
		return fmt.Errorf("hash: write trailer: %w", err)
	}
	return nil
}

// Reader checksums everything read through it.
type Reader struct {
	r io.Reader
	h hash.Hash32
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, h: NewCRC32C()}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.h.Write(p[:n])
	return n, err
}

// Sum32 returns the checksum of the bytes read so far.
func (r *Reader) Sum32() uint32 { return r.h.Sum32() }

// Verify reads the trailer from the underlying reader and compares it with
// the checksum of everything read before it.
func (r *Reader) Verify() error {
	var sum [TrailerSize]byte
	if _, err := io.ReadFull(r.r, sum[:]); err != nil {
		return fmt.Errorf("hash: read trailer: %w", err)
	}
	if got, want := binary.LittleEndian.Uint32(sum[:]), r.h.Sum32(); got != want {
		return fmt.Errorf("%w: trailer %08x, computed %08x", ErrMismatch, got, want)
	}
	return nil
}
