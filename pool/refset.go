package pool

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/poolgraph/mempool"
)

// RefSet is a set of records of one Pool, stored as a compressed bitmap of slot
// indices. It does not track generations: deleting a record does not remove it
// from sets that contain it.
type RefSet[O Proxy] struct {
	pool *Pool[O]
	bm   *roaring.Bitmap
}

// NewRefSet creates an empty set over p.
func NewRefSet[O Proxy](p *Pool[O]) *RefSet[O] {
	return &RefSet[O]{pool: p, bm: roaring.New()}
}

// Add inserts obj. It reports whether obj was not yet present.
func (s *RefSet[O]) Add(obj O) bool {
	return s.bm.CheckedAdd(uint32(obj.PoolAccess().Index()))
}

// AddIndex inserts the record at idx.
func (s *RefSet[O]) AddIndex(idx mempool.Index) bool {
	return s.bm.CheckedAdd(uint32(idx))
}

// Remove deletes obj. It reports whether obj was present.
func (s *RefSet[O]) Remove(obj O) bool {
	return s.bm.CheckedRemove(uint32(obj.PoolAccess().Index()))
}

// Contains reports whether obj is in the set.
func (s *RefSet[O]) Contains(obj O) bool {
	return s.bm.Contains(uint32(obj.PoolAccess().Index()))
}

// ContainsIndex reports whether the record at idx is in the set.
func (s *RefSet[O]) ContainsIndex(idx mempool.Index) bool {
	return idx >= 0 && s.bm.Contains(uint32(idx))
}

// Len returns the number of members.
func (s *RefSet[O]) Len() int {
	return int(s.bm.GetCardinality())
}

// Clear removes all members.
func (s *RefSet[O]) Clear() {
	s.bm.Clear()
}

// All iterates members in index order, rebinding ref. Members whose record has
// been deleted are skipped.
func (s *RefSet[O]) All(ref O) iter.Seq[O] {
	return func(yield func(O) bool) {
		it := s.bm.Iterator()
		for it.HasNext() {
			if _, ok := s.pool.Object(mempool.Index(it.Next()), ref); !ok {
				continue
			}
			if !yield(ref) {
				return
			}
		}
	}
}
