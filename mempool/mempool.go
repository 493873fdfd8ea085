// Package mempool provides a slot arena for fixed-size byte records.
//
// A MemPool hands out int32 slot indices, recycles freed slots through an
// intrusive LIFO free-list and exposes Access, a rebindable cursor that reads and
// writes typed fields of one slot at a time.
//
// # Memory Layout
//
// Slots live in chunks of a power-of-two number of records. Chunks are appended
// and never moved, so the byte slice backing a live slot stays valid until the
// pool is closed. With WithOffHeap(true) chunks come from anonymous mappings and
// are invisible to the garbage collector.
//
//	chunk 0                          chunk 1
//	┌────────┬────────┬─────┬────────┐┌────────┬─────
//	│ slot 0 │ slot 1 │ ... │ slot n ││ slot   │ ...
//	└────────┴────────┴─────┴────────┘└────────┴─────
//
// A freed slot stores the index of the next free slot in its first four bytes.
//
// # Generations
//
// Every slot carries a generation counter that is bumped when the slot is freed.
// A Handle packs (generation, index); Resolve rejects handles whose slot has been
// freed or reused since the handle was taken.
//
// # Concurrency Model
//
// MemPool is single-writer. Concurrent Allocate/Free calls corrupt the free-list;
// callers serialize mutation externally.
package mempool

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"math/bits"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/poolgraph/internal/conv"
	"github.com/hupe1980/poolgraph/internal/mmap"
)

// Index identifies a slot. Valid indices are non-negative.
type Index = int32

// Nil is the index that refers to no slot.
const Nil Index = -1

const (
	// DefaultChunkSlots is the default number of slots per chunk.
	DefaultChunkSlots = 4096

	// MaxSlots is the size of the index space.
	MaxSlots = math.MaxInt32
)

var (
	// ErrNotLive is returned when freeing or resolving a slot that is not allocated.
	ErrNotLive = errors.New("mempool: slot is not live")
	// ErrStaleHandle is returned when a handle's slot has been freed or reused.
	ErrStaleHandle = errors.New("mempool: stale handle")
	// ErrClosed is returned by operations on a closed pool.
	ErrClosed = errors.New("mempool: closed")
	// ErrCapacityExceeded is returned when the index space is exhausted.
	ErrCapacityExceeded = errors.New("mempool: index space exhausted")
	// ErrInvalidSlotSize is returned for non-positive slot sizes.
	ErrInvalidSlotSize = errors.New("mempool: invalid slot size")
)

// MemoryAcquirer admits arena growth against a shared memory budget.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

// Stats tracks pool usage.
type Stats struct {
	Live          int    // allocated, not freed
	Free          int    // on the free-list
	Allocated     int    // high-water mark of slots ever handed out
	Capacity      int    // slots backed by chunks
	Chunks        int    // chunk count
	SlotSize      int    // bytes per slot
	BytesReserved int64  // chunk bytes
	TotalAllocs   uint64 // historical
	TotalFrees    uint64 // historical
}

type chunk struct {
	data    []byte
	mapping *mmap.Mapping // nil for heap chunks
}

// MemPool is a slot arena of fixed-size records.
type MemPool struct {
	slotSize   int
	chunkSlots int
	chunkBits  uint
	chunkMask  Index
	offHeap    bool
	acquirer   MemoryAcquirer
	logger     *slog.Logger

	chunks    []chunk
	gens      []uint32
	live      *bitset.BitSet
	freeHead  Index
	freeCount int
	allocated Index
	size      int
	closed    bool

	bytesReserved int64
	totalAllocs   uint64
	totalFrees    uint64
}

// Option configures a MemPool.
type Option func(*MemPool)

// WithChunkSlots sets the number of slots per chunk. Rounded up to a power of two.
func WithChunkSlots(n int) Option {
	return func(p *MemPool) {
		if n > 0 {
			p.chunkSlots = n
		}
	}
}

// WithOffHeap backs chunks with anonymous mappings instead of Go slices.
func WithOffHeap(enabled bool) Option {
	return func(p *MemPool) {
		p.offHeap = enabled
	}
}

// WithMemoryAcquirer sets the memory acquirer consulted before each chunk is added.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(p *MemPool) {
		p.acquirer = acquirer
	}
}

// WithLogger sets the logger used for growth events.
func WithLogger(l *slog.Logger) Option {
	return func(p *MemPool) {
		p.logger = l
	}
}

// New creates a MemPool with the given slot size in bytes.
// The slot size is rounded up to a multiple of 4 so every slot can hold a
// free-list link.
func New(slotSize int, opts ...Option) (*MemPool, error) {
	if slotSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlotSize, slotSize)
	}

	p := &MemPool{
		slotSize:   (slotSize + 3) &^ 3,
		chunkSlots: DefaultChunkSlots,
		freeHead:   Nil,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.chunkBits = uint(bits.Len(uint(p.chunkSlots - 1)))
	p.chunkSlots = 1 << p.chunkBits
	p.chunkMask = Index(p.chunkSlots - 1)
	p.live = bitset.New(uint(p.chunkSlots))

	return p, nil
}

// SlotSize returns the size of a slot in bytes.
func (p *MemPool) SlotSize() int {
	return p.slotSize
}

// Size returns the number of live slots.
func (p *MemPool) Size() int {
	return p.size
}

// Allocated returns the high-water mark: slots [0, Allocated) have been handed
// out at least once.
func (p *MemPool) Allocated() int {
	return int(p.allocated)
}

// Capacity returns the number of slots backed by chunks.
func (p *MemPool) Capacity() int {
	return len(p.chunks) * p.chunkSlots
}

// Allocate returns a zeroed slot, reusing the most recently freed one if any.
func (p *MemPool) Allocate() (Index, error) {
	return p.AllocateContext(context.Background())
}

// AllocateContext is Allocate with a context passed to the memory acquirer.
func (p *MemPool) AllocateContext(ctx context.Context) (Index, error) {
	if p.closed {
		return Nil, ErrClosed
	}

	var idx Index
	if p.freeHead != Nil {
		idx = p.freeHead
		p.freeHead = readLink(p.slot(idx))
		p.freeCount--
	} else {
		if p.allocated == MaxSlots {
			return Nil, ErrCapacityExceeded
		}
		if int(p.allocated) >= p.Capacity() {
			if err := p.grow(ctx); err != nil {
				return Nil, err
			}
		}
		idx = p.allocated
		p.allocated++
		if int(idx) >= len(p.gens) {
			p.gens = append(p.gens, 1)
		}
	}

	clear(p.slot(idx))
	p.live.Set(uint(idx))
	p.size++
	p.totalAllocs++

	return idx, nil
}

// Free returns a live slot to the free-list and invalidates its handles.
func (p *MemPool) Free(idx Index) error {
	if p.closed {
		return ErrClosed
	}
	if !p.IsLive(idx) {
		return fmt.Errorf("%w: %d", ErrNotLive, idx)
	}

	p.live.Clear(uint(idx))
	p.bumpGeneration(idx)

	slot := p.slot(idx)
	clear(slot)
	writeLink(slot, p.freeHead)
	p.freeHead = idx
	p.freeCount++
	p.size--
	p.totalFrees++

	return nil
}

// Closed reports whether Close has been called.
func (p *MemPool) Closed() bool {
	return p.closed
}

// IsLive reports whether idx is currently allocated.
func (p *MemPool) IsLive(idx Index) bool {
	if idx < 0 || idx >= p.allocated {
		return false
	}
	return p.live.Test(uint(idx))
}

// Generation returns the current generation of a slot, or 0 for indices that
// were never handed out.
func (p *MemPool) Generation(idx Index) uint32 {
	if idx < 0 || int(idx) >= len(p.gens) {
		return 0
	}
	return p.gens[idx]
}

// Handle returns the generation-checked handle of a slot.
func (p *MemPool) Handle(idx Index) Handle {
	return makeHandle(idx, p.Generation(idx))
}

// Resolve returns the index of a handle whose slot is still the one it was taken from.
func (p *MemPool) Resolve(h Handle) (Index, error) {
	if h.IsZero() {
		return Nil, ErrStaleHandle
	}
	idx := h.Index()
	if !p.IsLive(idx) || p.gens[idx] != h.Generation() {
		return Nil, fmt.Errorf("%w: index %d gen %d", ErrStaleHandle, idx, h.Generation())
	}
	return idx, nil
}

// Slot returns the bytes of a slot that has been handed out at least once.
// The slice aliases arena memory.
func (p *MemPool) Slot(idx Index) []byte {
	if idx < 0 || idx >= p.allocated {
		panic(fmt.Sprintf("mempool: slot index %d out of range [0,%d)", idx, p.allocated))
	}
	return p.slot(idx)
}

// NextLive returns the first live index >= from, or Nil.
func (p *MemPool) NextLive(from Index) Index {
	if from < 0 {
		from = 0
	}
	if from >= p.allocated {
		return Nil
	}
	next, ok := p.live.NextSet(uint(from))
	if !ok {
		return Nil
	}
	idx, err := conv.UintToInt32(next)
	if err != nil || idx >= p.allocated {
		return Nil
	}
	return idx
}

// Live iterates live indices in arena order.
func (p *MemPool) Live() iter.Seq[Index] {
	return func(yield func(Index) bool) {
		for idx := p.NextLive(0); idx != Nil; idx = p.NextLive(idx + 1) {
			if !yield(idx) {
				return
			}
		}
	}
}

// Clear frees every slot, invalidates all handles and keeps the chunks for reuse.
// Subsequent allocations start again at index 0.
func (p *MemPool) Clear() {
	for idx := range p.Live() {
		p.bumpGeneration(idx)
	}
	p.live.ClearAll()
	p.freeHead = Nil
	p.freeCount = 0
	p.allocated = 0
	p.size = 0
}

// Close releases all chunks. Afterwards no slot is live, Allocate and Free
// return ErrClosed, and slices obtained from the pool must not be used.
func (p *MemPool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.live.ClearAll()
	p.freeHead = Nil
	p.freeCount = 0
	p.allocated = 0
	p.size = 0

	var errs []error
	for i := range p.chunks {
		if p.chunks[i].mapping != nil {
			if err := p.chunks[i].mapping.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		p.chunks[i] = chunk{}
	}
	p.chunks = nil

	if p.acquirer != nil && p.bytesReserved > 0 {
		p.acquirer.ReleaseMemory(p.bytesReserved)
	}
	p.bytesReserved = 0

	return errors.Join(errs...)
}

// Stats returns the current pool statistics.
func (p *MemPool) Stats() Stats {
	return Stats{
		Live:          p.size,
		Free:          p.freeCount,
		Allocated:     int(p.allocated),
		Capacity:      p.Capacity(),
		Chunks:        len(p.chunks),
		SlotSize:      p.slotSize,
		BytesReserved: p.bytesReserved,
		TotalAllocs:   p.totalAllocs,
		TotalFrees:    p.totalFrees,
	}
}

func (p *MemPool) String() string {
	s := p.Stats()
	return fmt.Sprintf(
		"MemPool{slot: %dB, live: %d, free: %d, capacity: %d, chunks: %d, reserved: %.2f MB}",
		s.SlotSize,
		s.Live,
		s.Free,
		s.Capacity,
		s.Chunks,
		float64(s.BytesReserved)/(1024*1024),
	)
}

func (p *MemPool) slot(idx Index) []byte {
	c := p.chunks[idx>>p.chunkBits].data
	off := int(idx&p.chunkMask) * p.slotSize
	return c[off : off+p.slotSize : off+p.slotSize]
}

func (p *MemPool) bumpGeneration(idx Index) {
	p.gens[idx]++
	if p.gens[idx] == 0 {
		// 0 marks the zero Handle
		p.gens[idx] = 1
	}
}

func (p *MemPool) grow(ctx context.Context) error {
	chunkBytes := p.chunkSlots * p.slotSize

	if p.acquirer != nil {
		if err := p.acquirer.AcquireMemory(ctx, int64(chunkBytes)); err != nil {
			return fmt.Errorf("mempool: grow: %w", err)
		}
	}

	var c chunk
	if p.offHeap {
		mapping, err := mmap.MapAnon(chunkBytes)
		if err != nil {
			if p.acquirer != nil {
				p.acquirer.ReleaseMemory(int64(chunkBytes))
			}
			return fmt.Errorf("mempool: grow: map chunk: %w", err)
		}
		c = chunk{data: mapping.Bytes(), mapping: mapping}
	} else {
		c = chunk{data: make([]byte, chunkBytes)}
	}

	p.chunks = append(p.chunks, c)
	p.bytesReserved += int64(chunkBytes)

	if p.logger != nil {
		p.logger.Debug("mempool grown",
			"chunks", len(p.chunks),
			"capacity", p.Capacity(),
			"slot_size", p.slotSize,
			"off_heap", p.offHeap,
		)
	}

	return nil
}
