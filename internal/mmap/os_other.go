//go:build !unix

package mmap

func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	// No off-heap mapping available; the GC owns the slice.
	return make([]byte, size), nil, nil
}
