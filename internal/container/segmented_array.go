// Package container implements container data structures.
package container

const (
	// segmentBits determines the size of each segment.
	// 16 bits = 65536 items per segment.
	segmentBits = 16
	segmentSize = 1 << segmentBits
	segmentMask = segmentSize - 1
)

// SegmentedArray is a growable array addressed by dense uint32 keys.
// Growth allocates whole segments, so existing segments never move and lookups
// stay O(1) without the rehash pauses of a map. Not safe for concurrent mutation.
type SegmentedArray[T any] struct {
	segments []*[segmentSize]T
	fill     T
	length   uint32 // highest set index + 1
}

// NewSegmentedArray creates a new SegmentedArray whose unset items read as fill.
func NewSegmentedArray[T any](fill T) *SegmentedArray[T] {
	return &SegmentedArray[T]{fill: fill}
}

// Get returns the item at the given index.
// Returns (fill, false) if the index lies beyond any allocated segment.
func (sa *SegmentedArray[T]) Get(index uint32) (T, bool) {
	segIdx := int(index >> segmentBits)
	if segIdx >= len(sa.segments) || sa.segments[segIdx] == nil {
		return sa.fill, false
	}
	return sa.segments[segIdx][index&segmentMask], true
}

// Set sets the item at the given index, growing the array if necessary.
func (sa *SegmentedArray[T]) Set(index uint32, value T) {
	segIdx := int(index >> segmentBits)
	if segIdx >= len(sa.segments) {
		grown := make([]*[segmentSize]T, segIdx+1)
		copy(grown, sa.segments)
		sa.segments = grown
	}

	seg := sa.segments[segIdx]
	if seg == nil {
		seg = new([segmentSize]T)
		for i := range seg {
			seg[i] = sa.fill
		}
		sa.segments[segIdx] = seg
	}

	seg[index&segmentMask] = value
	if index >= sa.length {
		sa.length = index + 1
	}
}

// Len returns the highest index ever set plus one.
func (sa *SegmentedArray[T]) Len() uint32 {
	return sa.length
}

// Reset drops all segments.
func (sa *SegmentedArray[T]) Reset() {
	sa.segments = nil
	sa.length = 0
}
