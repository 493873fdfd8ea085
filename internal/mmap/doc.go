// Package mmap provides anonymous off-heap memory mappings.
//
// Arena chunks backed by an anonymous mapping live outside the Go heap: the garbage
// collector neither scans nor moves them, which keeps pause times flat even when a
// graph holds tens of millions of vertex and edge records.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-filled, read-write
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Other platforms: falls back to a heap-allocated slice
package mmap
