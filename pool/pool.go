package pool

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/hupe1980/poolgraph/mempool"
)

// DefaultRefCacheSize bounds the number of spare proxies kept by a Pool.
const DefaultRefCacheSize = 64

// Pool stores records of one proxy type in a MemPool.
type Pool[O Proxy] struct {
	mem    *mempool.MemPool
	newRef func() O

	refMu    sync.Mutex
	refs     []O
	refLimit int
}

// New creates a Pool of slotSize-byte records. newRef constructs an unbound proxy.
func New[O Proxy](slotSize int, newRef func() O, opts ...mempool.Option) (*Pool[O], error) {
	mem, err := mempool.New(slotSize, opts...)
	if err != nil {
		return nil, err
	}
	return &Pool[O]{
		mem:      mem,
		newRef:   newRef,
		refLimit: DefaultRefCacheSize,
	}, nil
}

// MemPool returns the underlying arena.
func (p *Pool[O]) MemPool() *mempool.MemPool {
	return p.mem
}

// Size returns the number of live records.
func (p *Pool[O]) Size() int {
	return p.mem.Size()
}

// Create allocates a record, binds ref to it and initializes its sentinel state.
func (p *Pool[O]) Create(ref O) (O, error) {
	return p.CreateContext(context.Background(), ref)
}

// CreateContext is Create with a context passed to arena growth.
func (p *Pool[O]) CreateContext(ctx context.Context, ref O) (O, error) {
	idx, err := p.mem.AllocateContext(ctx)
	if err != nil {
		var zero O
		return zero, err
	}
	ref.PoolAccess().Bind(p.mem, idx)
	ref.SetToUninitializedState()
	return ref, nil
}

// Delete frees the record obj is bound to. obj keeps pointing at the freed slot
// and reports Valid() == false.
func (p *Pool[O]) Delete(obj O) error {
	a := obj.PoolAccess()
	if a.Pool() != p.mem || !a.Valid() {
		return fmt.Errorf("%w: index %d", mempool.ErrStaleHandle, a.Index())
	}
	return p.mem.Free(a.Index())
}

// Object binds ref to the live record at idx.
func (p *Pool[O]) Object(idx mempool.Index, ref O) (O, bool) {
	if !p.mem.IsLive(idx) {
		var zero O
		return zero, false
	}
	ref.PoolAccess().Bind(p.mem, idx)
	return ref, true
}

// Resolve binds ref to the record behind h, failing if the record is gone.
func (p *Pool[O]) Resolve(h mempool.Handle, ref O) (O, error) {
	idx, err := p.mem.Resolve(h)
	if err != nil {
		var zero O
		return zero, err
	}
	ref.PoolAccess().Bind(p.mem, idx)
	return ref, nil
}

// Owns reports whether obj is bound to a live record of this pool.
func (p *Pool[O]) Owns(obj O) bool {
	a := obj.PoolAccess()
	return a.Pool() == p.mem && a.Valid()
}

// CreateRef returns a spare proxy from the cache, or a new unbound one.
// Safe for concurrent use.
func (p *Pool[O]) CreateRef() O {
	p.refMu.Lock()
	if n := len(p.refs); n > 0 {
		ref := p.refs[n-1]
		var zero O
		p.refs[n-1] = zero
		p.refs = p.refs[:n-1]
		p.refMu.Unlock()
		return ref
	}
	p.refMu.Unlock()
	return p.newRef()
}

// ReleaseRef returns a proxy to the cache. The caller must not use it afterwards.
// Safe for concurrent use.
func (p *Pool[O]) ReleaseRef(ref O) {
	p.refMu.Lock()
	defer p.refMu.Unlock()
	if len(p.refs) < p.refLimit {
		p.refs = append(p.refs, ref)
	}
}

// All iterates live records in arena order, rebinding ref for each.
func (p *Pool[O]) All(ref O) iter.Seq[O] {
	return func(yield func(O) bool) {
		for idx := range p.mem.Live() {
			ref.PoolAccess().Bind(p.mem, idx)
			if !yield(ref) {
				return
			}
		}
	}
}

// Iterator returns an explicit iterator over live records that writes into ref.
func (p *Pool[O]) Iterator(ref O) *Iterator[O] {
	it := &Iterator[O]{mem: p.mem, ref: ref}
	it.Reset()
	return it
}

// Clear deletes every record.
func (p *Pool[O]) Clear() {
	p.mem.Clear()
}

// Close releases the arena.
func (p *Pool[O]) Close() error {
	return p.mem.Close()
}

// Iterator walks live records in arena order. The order is stable only while
// no record is created or deleted.
type Iterator[O Proxy] struct {
	mem  *mempool.MemPool
	ref  O
	next mempool.Index
}

// Reset restarts the iteration.
func (it *Iterator[O]) Reset() {
	it.next = it.mem.NextLive(0)
}

// HasNext reports whether Next has another record.
func (it *Iterator[O]) HasNext() bool {
	return it.next != mempool.Nil
}

// Next binds the iterator's ref to the next record and returns it.
func (it *Iterator[O]) Next() O {
	idx := it.next
	it.ref.PoolAccess().Bind(it.mem, idx)
	it.next = it.mem.NextLive(idx + 1)
	return it.ref
}
