package mempool

import (
	"encoding/binary"
	"math"
)

// Handle is a generation-checked reference to a slot.
//
// Bit Layout:
// [0:32]  Index (32 bits)
// [32:64] Gen   (32 bits)
//
// The zero Handle is never valid because generations start at 1.
type Handle uint64

func makeHandle(idx Index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(uint32(idx)))
}

// Index returns the slot index of the handle.
func (h Handle) Index() Index {
	return Index(uint32(h))
}

// Generation returns the slot generation the handle was taken at.
func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h.Generation() == 0
}

// Access is a rebindable cursor over one slot of a MemPool.
//
// Field accessors take byte offsets into the slot and use little-endian encoding.
// Accessors perform no liveness check; use Valid when a cursor may have outlived
// its slot.
type Access struct {
	pool  *MemPool
	index Index
	gen   uint32
	slot  []byte
}

// Bind points the cursor at slot idx of pool.
func (a *Access) Bind(pool *MemPool, idx Index) {
	a.pool = pool
	a.index = idx
	a.gen = pool.Generation(idx)
	a.slot = pool.Slot(idx)
}

// Unbind detaches the cursor.
func (a *Access) Unbind() {
	*a = Access{}
}

// Bound reports whether the cursor is attached to a slot.
func (a *Access) Bound() bool {
	return a.pool != nil
}

// Pool returns the pool the cursor is bound to, or nil.
func (a *Access) Pool() *MemPool {
	return a.pool
}

// Index returns the bound slot index, or Nil when unbound.
func (a *Access) Index() Index {
	if a.pool == nil {
		return Nil
	}
	return a.index
}

// Generation returns the slot generation observed at Bind time.
func (a *Access) Generation() uint32 {
	return a.gen
}

// Handle returns the generation-checked handle of the bound slot.
func (a *Access) Handle() Handle {
	if a.pool == nil {
		return 0
	}
	return makeHandle(a.index, a.gen)
}

// Valid reports whether the bound slot is live and has not been reused since Bind.
func (a *Access) Valid() bool {
	return a.pool != nil && a.pool.IsLive(a.index) && a.pool.gens[a.index] == a.gen
}

// Bytes returns the raw slot bytes.
func (a *Access) Bytes() []byte {
	return a.slot
}

// Int32 reads an int32 at offset.
func (a *Access) Int32(offset int) int32 {
	return int32(binary.LittleEndian.Uint32(a.slot[offset:]))
}

// PutInt32 writes an int32 at offset.
func (a *Access) PutInt32(offset int, v int32) {
	binary.LittleEndian.PutUint32(a.slot[offset:], uint32(v))
}

// Int64 reads an int64 at offset.
func (a *Access) Int64(offset int) int64 {
	return int64(binary.LittleEndian.Uint64(a.slot[offset:]))
}

// PutInt64 writes an int64 at offset.
func (a *Access) PutInt64(offset int, v int64) {
	binary.LittleEndian.PutUint64(a.slot[offset:], uint64(v))
}

// Float64 reads a float64 at offset.
func (a *Access) Float64(offset int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(a.slot[offset:]))
}

// PutFloat64 writes a float64 at offset.
func (a *Access) PutFloat64(offset int, v float64) {
	binary.LittleEndian.PutUint64(a.slot[offset:], math.Float64bits(v))
}

// Uint8 reads a byte at offset.
func (a *Access) Uint8(offset int) uint8 {
	return a.slot[offset]
}

// PutUint8 writes a byte at offset.
func (a *Access) PutUint8(offset int, v uint8) {
	a.slot[offset] = v
}

// Fields is a window into a slot starting at a fixed base offset. Record types
// use it to expose their caller-defined extension bytes without leaking the
// offsets of their own header fields.
type Fields struct {
	access *Access
	base   int
	size   int
}

// NewFields returns a window of size bytes at base within the slot bound to a.
func NewFields(a *Access, base, size int) Fields {
	return Fields{access: a, base: base, size: size}
}

// Len returns the window size in bytes.
func (f Fields) Len() int {
	return f.size
}

// Bytes returns the window bytes.
func (f Fields) Bytes() []byte {
	return f.access.slot[f.base : f.base+f.size : f.base+f.size]
}

// Int32 reads an int32 at offset within the window.
func (f Fields) Int32(offset int) int32 { return f.access.Int32(f.base + offset) }

// PutInt32 writes an int32 at offset within the window.
func (f Fields) PutInt32(offset int, v int32) { f.access.PutInt32(f.base+offset, v) }

// Int64 reads an int64 at offset within the window.
func (f Fields) Int64(offset int) int64 { return f.access.Int64(f.base + offset) }

// PutInt64 writes an int64 at offset within the window.
func (f Fields) PutInt64(offset int, v int64) { f.access.PutInt64(f.base+offset, v) }

// Float64 reads a float64 at offset within the window.
func (f Fields) Float64(offset int) float64 { return f.access.Float64(f.base + offset) }

// PutFloat64 writes a float64 at offset within the window.
func (f Fields) PutFloat64(offset int, v float64) { f.access.PutFloat64(f.base+offset, v) }

// Uint8 reads a byte at offset within the window.
func (f Fields) Uint8(offset int) uint8 { return f.access.Uint8(f.base + offset) }

// PutUint8 writes a byte at offset within the window.
func (f Fields) PutUint8(offset int, v uint8) { f.access.PutUint8(f.base+offset, v) }

// ReadInt32 reads an int32 field of slot idx without binding a cursor.
func (p *MemPool) ReadInt32(idx Index, offset int) int32 {
	return int32(binary.LittleEndian.Uint32(p.slot(idx)[offset:]))
}

// WriteInt32 writes an int32 field of slot idx without binding a cursor.
func (p *MemPool) WriteInt32(idx Index, offset int, v int32) {
	binary.LittleEndian.PutUint32(p.slot(idx)[offset:], uint32(v))
}

func readLink(slot []byte) Index {
	return Index(binary.LittleEndian.Uint32(slot))
}

func writeLink(slot []byte, next Index) {
	binary.LittleEndian.PutUint32(slot, uint32(next))
}
