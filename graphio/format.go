// Package graphio exports graphs to a compact binary stream and imports them
// back, preserving the order of every adjacency list.
//
// Stream layout (little endian):
//
//	header   magic "PGRF" | version u16 | codec u8 | flags u8 |
//	         vertex data size u32 | edge data size u32 |
//	         vertex count u64 | edge count u64
//	body     codec stream of
//	           vertex table: id u32 | data
//	           edge table:   source id u32 | target id u32 |
//	                         outgoing position u32 | incoming position u32 | data
//	           CRC32C of the vertex and edge tables, u32
//
// Vertex IDs are the graph's external IDs (see package idmap). Edges are
// written grouped by source vertex in outgoing-list order.
package graphio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Version is the stream format version written by Export.
const Version uint16 = 1

const (
	headerSize       = 32
	vertexRecordSize = 4
	edgeRecordSize   = 16

	flagStableIDs = 1 << 0
)

var magic = [4]byte{'P', 'G', 'R', 'F'}

// Codec selects the compression of the stream body.
type Codec uint8

const (
	// CodecNone stores the body uncompressed.
	CodecNone Codec = 0
	// CodecLZ4 compresses with LZ4 frames (fast).
	CodecLZ4 Codec = 1
	// CodecZSTD compresses with Zstandard (better ratio).
	CodecZSTD Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec maps a codec name to its Codec.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "none", "":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

var (
	// ErrBadMagic indicates the stream is not a graph export.
	ErrBadMagic = errors.New("graphio: bad magic")
	// ErrUnsupportedVersion indicates a stream written by a newer format version.
	ErrUnsupportedVersion = errors.New("graphio: unsupported version")
	// ErrUnknownCodec indicates an unknown body codec.
	ErrUnknownCodec = errors.New("graphio: unknown codec")
	// ErrChecksum indicates the body does not match its checksum.
	ErrChecksum = errors.New("graphio: checksum mismatch")
	// ErrLayoutMismatch indicates the target graph's record data sizes differ
	// from the exported ones.
	ErrLayoutMismatch = errors.New("graphio: record layout mismatch")
	// ErrCorrupt indicates a structurally invalid body.
	ErrCorrupt = errors.New("graphio: corrupt stream")
)

// Header describes an export stream.
type Header struct {
	Version        uint16
	Codec          Codec
	StableIDs      bool
	VertexDataSize uint32
	EdgeDataSize   uint32
	VertexCount    uint64
	EdgeCount      uint64
}

func (h *Header) marshal() []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], magic[:])
	binary.LittleEndian.PutUint16(buf[4:], h.Version)
	buf[6] = byte(h.Codec)
	if h.StableIDs {
		buf[7] |= flagStableIDs
	}
	binary.LittleEndian.PutUint32(buf[8:], h.VertexDataSize)
	binary.LittleEndian.PutUint32(buf[12:], h.EdgeDataSize)
	binary.LittleEndian.PutUint64(buf[16:], h.VertexCount)
	binary.LittleEndian.PutUint64(buf[24:], h.EdgeCount)
	return buf
}

// ReadHeader reads and checks the header of an export stream.
func ReadHeader(r io.Reader) (*Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("graphio: read header: %w", err)
	}
	if [4]byte(buf[0:4]) != magic {
		return nil, ErrBadMagic
	}
	h := &Header{
		Version:        binary.LittleEndian.Uint16(buf[4:]),
		Codec:          Codec(buf[6]),
		StableIDs:      buf[7]&flagStableIDs != 0,
		VertexDataSize: binary.LittleEndian.Uint32(buf[8:]),
		EdgeDataSize:   binary.LittleEndian.Uint32(buf[12:]),
		VertexCount:    binary.LittleEndian.Uint64(buf[16:]),
		EdgeCount:      binary.LittleEndian.Uint64(buf[24:]),
	}
	if h.Version == 0 || h.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Codec > CodecZSTD {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, h.Codec)
	}
	return h, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newCodecWriter(w io.Writer, c Codec, level zstd.EncoderLevel) (io.WriteCloser, error) {
	switch c {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	case CodecZSTD:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, c)
	}
}

// newCodecReader returns the body reader and a function releasing decoder state.
func newCodecReader(r io.Reader, c Codec) (io.Reader, func(), error) {
	switch c {
	case CodecNone:
		return r, func() {}, nil
	case CodecLZ4:
		return lz4.NewReader(r), func() {}, nil
	case CodecZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownCodec, c)
	}
}
