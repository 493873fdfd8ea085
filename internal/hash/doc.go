// Package hash provides CRC32-Castagnoli checksums for graph export streams.
//
// Writer and Reader checksum a byte stream as it passes through and frame it
// with a 4-byte little-endian trailer:
//
//	w := hash.NewWriter(dst)
//	w.Write(records)
//	w.WriteTrailer()
//
//	r := hash.NewReader(src)
//	io.ReadFull(r, records)
//	if err := r.Verify(); err != nil { ... }
package hash
