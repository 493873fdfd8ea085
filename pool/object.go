// Package pool provides pools of flyweight objects over a mempool arena.
//
// A proxy type embeds Object and implements SetToUninitializedState. The proxy
// holds no record data of its own: it is a cursor that is bound to one arena slot
// at a time, so walking millions of records needs no per-record allocation.
//
//	type Point struct{ pool.Object }
//
//	func (p *Point) SetToUninitializedState() { p.PoolAccess().PutInt32(0, -1) }
//
//	points, _ := pool.New(8, func() *Point { return &Point{} })
//	ref := points.CreateRef()
//	defer points.ReleaseRef(ref)
//	for pt := range points.All(ref) {
//	    ...
//	}
//
// A proxy that is rebound is the same Go value now standing for a different
// record. Copy out the values you need before handing a proxy to code that may
// rebind or release it.
package pool

import (
	"github.com/hupe1980/poolgraph/mempool"
)

// Proxy is the constraint satisfied by flyweight types stored in a Pool.
type Proxy interface {
	// PoolAccess returns the proxy's cursor. Embedding Object provides it.
	PoolAccess() *mempool.Access

	// SetToUninitializedState writes the sentinel values of a fresh record.
	SetToUninitializedState()
}

// Object is the flyweight base type. Embed it in proxy structs.
type Object struct {
	access mempool.Access
}

// PoolAccess returns the cursor of the proxy.
func (o *Object) PoolAccess() *mempool.Access {
	return &o.access
}

// UpdateAccess repoints the proxy at slot idx of mem.
func (o *Object) UpdateAccess(mem *mempool.MemPool, idx mempool.Index) {
	o.access.Bind(mem, idx)
}

// Index returns the slot index the proxy is bound to, or mempool.Nil.
func (o *Object) Index() mempool.Index {
	return o.access.Index()
}

// Handle returns a generation-checked handle to the bound record.
func (o *Object) Handle() mempool.Handle {
	return o.access.Handle()
}

// Valid reports whether the bound record is still the one the proxy was bound to.
func (o *Object) Valid() bool {
	return o.access.Valid()
}

// Equal reports whether o and other address the same slot of the same arena.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.access.Pool() == other.access.Pool() && o.access.Index() == other.access.Index()
}

// Hash returns a hash consistent with Equal.
func (o *Object) Hash() uint64 {
	// Fibonacci hashing spreads dense indices over the key space.
	return uint64(uint32(o.access.Index())) * 0x9E3779B97F4A7C15
}
