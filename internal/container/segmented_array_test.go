package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentedArray(t *testing.T) {
	sa := NewSegmentedArray[int32](-1)

	v, ok := sa.Get(0)
	assert.False(t, ok)
	assert.Equal(t, int32(-1), v)

	sa.Set(3, 42)
	v, ok = sa.Get(3)
	assert.True(t, ok)
	assert.Equal(t, int32(42), v)

	// Unset slot in an allocated segment reads as fill.
	v, ok = sa.Get(4)
	assert.True(t, ok)
	assert.Equal(t, int32(-1), v)
	assert.Equal(t, uint32(4), sa.Len())

	// Crossing a segment boundary leaves the gap unallocated.
	far := uint32(3*segmentSize + 7)
	sa.Set(far, 9)
	v, ok = sa.Get(far)
	assert.True(t, ok)
	assert.Equal(t, int32(9), v)

	_, ok = sa.Get(segmentSize + 1)
	assert.False(t, ok)
	assert.Equal(t, far+1, sa.Len())

	sa.Reset()
	_, ok = sa.Get(3)
	assert.False(t, ok)
	assert.Equal(t, uint32(0), sa.Len())
}
