package graph

import (
	"iter"

	"github.com/hupe1980/poolgraph/mempool"
)

type listKind uint8

const (
	incomingList listKind = iota
	outgoingList
	allList
)

// EdgeList is a live view of one adjacency list of a vertex. It follows the
// vertex proxy it belongs to: rebinding the proxy changes the view.
type EdgeList struct {
	vertex *Vertex
	kind   listKind
	it     *EdgeIterator
}

func (l *EdgeList) edges() *EdgePool {
	return l.vertex.vp.edges
}

// first returns the head of the list, or for the all view the first incoming
// edge falling back to the first outgoing one.
func (l *EdgeList) first(v mempool.Index) (mempool.Index, bool) {
	vmem := l.vertex.vp.MemPool()
	switch l.kind {
	case incomingList:
		return vmem.ReadInt32(v, vertexFirstIn), true
	case outgoingList:
		return vmem.ReadInt32(v, vertexFirstOut), false
	default:
		if e := vmem.ReadInt32(v, vertexFirstIn); e != mempool.Nil {
			return e, true
		}
		return vmem.ReadInt32(v, vertexFirstOut), false
	}
}

// walk calls fn for each edge of the view until fn returns false.
func (l *EdgeList) walk(fn func(mempool.Index) bool) {
	if !l.vertex.Valid() {
		return
	}
	v := l.vertex.Index()
	ep := l.edges()
	vmem := l.vertex.vp.MemPool()
	if l.kind != outgoingList {
		for e := vmem.ReadInt32(v, vertexFirstIn); e != mempool.Nil; e = ep.emem.ReadInt32(e, edgeNextTarget) {
			if !fn(e) {
				return
			}
		}
	}
	if l.kind != incomingList {
		for e := vmem.ReadInt32(v, vertexFirstOut); e != mempool.Nil; e = ep.emem.ReadInt32(e, edgeNextSource) {
			if !fn(e) {
				return
			}
		}
	}
}

// Size returns the number of edges in the view. It walks the list.
func (l *EdgeList) Size() int {
	n := 0
	l.walk(func(mempool.Index) bool {
		n++
		return true
	})
	return n
}

// IsEmpty reports whether the view has no edges.
func (l *EdgeList) IsEmpty() bool {
	return l.Index(0) == mempool.Nil
}

// Index returns the slot index of the i-th edge, or mempool.Nil.
func (l *EdgeList) Index(i int) mempool.Index {
	found := mempool.Nil
	if i < 0 {
		return found
	}
	l.walk(func(e mempool.Index) bool {
		if i == 0 {
			found = e
			return false
		}
		i--
		return true
	})
	return found
}

// Get binds ref to the i-th edge of the view.
func (l *EdgeList) Get(i int, ref *Edge) (*Edge, bool) {
	idx := l.Index(i)
	if idx == mempool.Nil {
		return nil, false
	}
	return l.edges().Object(idx, ref)
}

// Iterator resets and returns the view's own iterator. Nested loops over the
// same view need SafeIterator.
func (l *EdgeList) Iterator() *EdgeIterator {
	if l.it == nil {
		l.it = l.newIterator(l.edges().newRef())
	}
	l.it.Reset()
	return l.it
}

// SafeIterator returns a fresh iterator with its own edge proxy.
func (l *EdgeList) SafeIterator() *EdgeIterator {
	it := l.newIterator(l.edges().newRef())
	it.Reset()
	return it
}

// All iterates the view, binding a proxy taken from the edge pool's cache.
// The yielded edge may be deleted by the loop body. Loops that must not
// allocate at all should use Iterator or Get.
func (l *EdgeList) All() iter.Seq[*Edge] {
	return func(yield func(*Edge) bool) {
		ep := l.edges()
		it := EdgeIterator{list: l, ref: ep.CreateRef()}
		it.Reset()
		for it.HasNext() {
			if !yield(it.Next()) {
				break
			}
		}
		ep.ReleaseRef(it.ref)
	}
}

func (l *EdgeList) newIterator(ref *Edge) *EdgeIterator {
	return &EdgeIterator{list: l, ref: ref}
}

// EdgeIterator walks one adjacency view. The successor is read before an edge
// is returned, so deleting the current edge is safe; deleting any other edge
// of the list during iteration is not.
type EdgeIterator struct {
	list     *EdgeList
	ref      *Edge
	vertex   mempool.Index
	next     mempool.Index
	incoming bool

	pendingOut bool // all view: outgoing list still to come
}

// Reset restarts the iterator at the head of the view for the vertex the view's
// proxy is currently bound to.
func (it *EdgeIterator) Reset() {
	it.vertex = it.list.vertex.Index()
	it.pendingOut = false
	if !it.list.vertex.Valid() {
		it.next = mempool.Nil
		return
	}
	it.next, it.incoming = it.list.first(it.vertex)
	it.pendingOut = it.list.kind == allList && it.incoming
}

// HasNext reports whether Next has another edge.
func (it *EdgeIterator) HasNext() bool {
	if it.next == mempool.Nil && it.pendingOut {
		// Switch lists lazily so a self-loop deleted at the end of the
		// incoming list is not picked up as the outgoing head.
		it.pendingOut = false
		it.incoming = false
		it.next = it.list.edges().vmem.ReadInt32(it.vertex, vertexFirstOut)
	}
	return it.next != mempool.Nil
}

// Next binds the iterator's proxy to the next edge and returns it.
func (it *EdgeIterator) Next() *Edge {
	ep := it.list.edges()
	cur := it.next
	it.ref.PoolAccess().Bind(ep.emem, cur)

	if it.incoming {
		it.next = ep.emem.ReadInt32(cur, edgeNextTarget)
	} else {
		it.next = ep.emem.ReadInt32(cur, edgeNextSource)
	}
	return it.ref
}
