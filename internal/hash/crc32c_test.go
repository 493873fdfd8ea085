package hash

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32C_KnownValue(t *testing.T) {
	// RFC 3720: 32 bytes of zeros.
	assert.Equal(t, uint32(0x8a9136aa), CRC32C(make([]byte, 32)))
}

func TestWriterReader(t *testing.T) {
	data := []byte("vertex and edge records")

	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write(data[:6])
	require.NoError(t, err)
	_, err = w.Write(data[6:])
	require.NoError(t, err)
	assert.Equal(t, CRC32C(data), w.Sum32())
	require.NoError(t, w.WriteTrailer())
	assert.Equal(t, len(data)+TrailerSize, buf.Len())

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got := make([]byte, len(data))
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	require.NoError(t, r.Verify())
}

func TestReader_Mismatch(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, _ = w.Write([]byte("abcd"))
	require.NoError(t, w.WriteTrailer())

	corrupt := buf.Bytes()
	corrupt[1] ^= 0xff
	r := NewReader(bytes.NewReader(corrupt))
	_, err := io.ReadFull(r, make([]byte, 4))
	require.NoError(t, err)
	assert.ErrorIs(t, r.Verify(), ErrMismatch)

	r = NewReader(bytes.NewReader(corrupt[:6]))
	_, _ = io.ReadFull(r, make([]byte, 4))
	assert.ErrorIs(t, r.Verify(), io.ErrUnexpectedEOF)
}
