package graph

import (
	"fmt"
	"iter"

	"github.com/hupe1980/poolgraph/mempool"
	"github.com/hupe1980/poolgraph/pool"
)

// Edge is a flyweight proxy for a directed edge record.
type Edge struct {
	pool.Object
	ep *EdgePool
}

// SetToUninitializedState detaches the edge from both endpoints.
func (e *Edge) SetToUninitializedState() {
	a := e.PoolAccess()
	a.PutInt32(edgeSource, mempool.Nil)
	a.PutInt32(edgeTarget, mempool.Nil)
	a.PutInt32(edgeNextSource, mempool.Nil)
	a.PutInt32(edgeNextTarget, mempool.Nil)
}

// SourceIndex returns the slot index of the source vertex.
func (e *Edge) SourceIndex() mempool.Index { return e.PoolAccess().Int32(edgeSource) }

// TargetIndex returns the slot index of the target vertex.
func (e *Edge) TargetIndex() mempool.Index { return e.PoolAccess().Int32(edgeTarget) }

// Source binds ref to the source vertex. A nil ref allocates a new proxy.
func (e *Edge) Source(ref *Vertex) *Vertex {
	v, _ := e.ep.vertices.Object(e.SourceIndex(), ref)
	return v
}

// Target binds ref to the target vertex. A nil ref allocates a new proxy.
func (e *Edge) Target(ref *Vertex) *Vertex {
	v, _ := e.ep.vertices.Object(e.TargetIndex(), ref)
	return v
}

// Fields returns the caller-defined extension bytes of the edge.
func (e *Edge) Fields() mempool.Fields {
	return mempool.NewFields(e.PoolAccess(), edgeHeaderSize, e.ep.dataSize)
}

// Feature returns the registered edge feature for spec.
func (e *Edge) Feature(spec FeatureSpec) (Feature, bool) {
	return e.ep.features.Edge(spec)
}

func (e *Edge) String() string {
	if !e.PoolAccess().Bound() {
		return "Edge(unbound)"
	}
	return fmt.Sprintf("Edge(%d: %d -> %d)", e.Index(), e.SourceIndex(), e.TargetIndex())
}

// adjacency selects one of the two intrusive lists: the field of the vertex
// record holding the head and the field of the edge record holding the link.
type adjacency struct {
	head int
	next int
}

var (
	outAdj = adjacency{head: vertexFirstOut, next: edgeNextSource}
	inAdj  = adjacency{head: vertexFirstIn, next: edgeNextTarget}
)

type edgeKey struct {
	src, tgt mempool.Index
}

// EdgePool stores edge records and maintains the adjacency lists threaded
// through vertex and edge records. List surgery works on raw slot indices and
// never rebinds caller proxies.
type EdgePool struct {
	objs     *pool.Pool[*Edge]
	vertices *VertexPool
	features *Features
	vmem     *mempool.MemPool
	emem     *mempool.MemPool

	index    map[edgeKey]mempool.Index // nil unless WithEdgeIndex
	dataSize int
}

func newEdgePool(cfg config, vertices *VertexPool, features *Features) (*EdgePool, error) {
	ep := &EdgePool{
		vertices: vertices,
		features: features,
		vmem:     vertices.MemPool(),
		dataSize: cfg.edgeDataSize,
	}
	if cfg.edgeIndex {
		ep.index = make(map[edgeKey]mempool.Index)
	}

	objs, err := pool.New(edgeHeaderSize+cfg.edgeDataSize, ep.newRef, cfg.memOpts...)
	if err != nil {
		return nil, fmt.Errorf("graph: edge pool: %w", err)
	}
	ep.objs = objs
	ep.emem = objs.MemPool()
	vertices.edges = ep
	return ep, nil
}

func (ep *EdgePool) newRef() *Edge {
	return &Edge{ep: ep}
}

// AddEdge creates the edge src -> tgt and appends it to the tail of src's
// outgoing list and tgt's incoming list. It fails with ErrEdgeExists if the pair
// is already connected; no slot is consumed in that case.
func (ep *EdgePool) AddEdge(src, tgt *Vertex, ref *Edge) (*Edge, error) {
	return ep.InsertEdge(src, -1, tgt, -1, ref)
}

// InsertEdge creates the edge src -> tgt at position outPos of src's outgoing
// list and inPos of tgt's incoming list. Negative positions and positions past
// the end of a list append.
func (ep *EdgePool) InsertEdge(src *Vertex, outPos int, tgt *Vertex, inPos int, ref *Edge) (*Edge, error) {
	if err := ep.vertices.check(src); err != nil {
		return nil, err
	}
	if err := ep.vertices.check(tgt); err != nil {
		return nil, err
	}
	s, t := src.Index(), tgt.Index()
	if ep.find(s, t) != mempool.Nil {
		return nil, fmt.Errorf("%w: %d -> %d", ErrEdgeExists, s, t)
	}

	e, err := ep.objs.Create(ep.orNew(ref))
	if err != nil {
		return nil, err
	}
	idx := e.Index()
	ep.emem.WriteInt32(idx, edgeSource, s)
	ep.emem.WriteInt32(idx, edgeTarget, t)
	ep.splice(s, idx, outAdj, outPos)
	ep.splice(t, idx, inAdj, inPos)

	if ep.index != nil {
		ep.index[edgeKey{s, t}] = idx
	}
	return e, nil
}

// GetEdge binds ref to the edge src -> tgt if it exists.
func (ep *EdgePool) GetEdge(src, tgt *Vertex, ref *Edge) (*Edge, bool) {
	if !ep.vertices.owns(src) || !ep.vertices.owns(tgt) {
		return nil, false
	}
	idx := ep.find(src.Index(), tgt.Index())
	if idx == mempool.Nil {
		return nil, false
	}
	return ep.objs.Object(idx, ep.orNew(ref))
}

// Delete unlinks e from both adjacency lists and frees its slot.
func (ep *EdgePool) Delete(e *Edge) error {
	if ep.emem.Closed() {
		return ErrClosed
	}
	if e == nil || !ep.objs.Owns(e) {
		return ErrStaleRef
	}
	ep.deleteIndex(e.Index())
	return nil
}

// DeleteAllLinkedEdges deletes every edge incident to v.
func (ep *EdgePool) DeleteAllLinkedEdges(v *Vertex) error {
	if err := ep.vertices.check(v); err != nil {
		return err
	}
	ep.removeLinked(v.Index(), nil)
	return nil
}

// removeLinked deletes the incoming, then the outgoing edges of vertex v.
// before, if set, runs for each edge while it is still linked.
func (ep *EdgePool) removeLinked(v mempool.Index, before func(mempool.Index)) int {
	n := 0
	for _, adj := range [2]adjacency{inAdj, outAdj} {
		for {
			e := ep.vmem.ReadInt32(v, adj.head)
			if e == mempool.Nil {
				break
			}
			if before != nil {
				before(e)
			}
			ep.deleteIndex(e)
			n++
		}
	}
	return n
}

func (ep *EdgePool) deleteIndex(idx mempool.Index) {
	s := ep.emem.ReadInt32(idx, edgeSource)
	t := ep.emem.ReadInt32(idx, edgeTarget)
	ep.unlink(s, idx, outAdj)
	ep.unlink(t, idx, inAdj)
	if ep.index != nil {
		delete(ep.index, edgeKey{s, t})
	}
	ep.features.removeEdge(idx)
	// idx was live, so Free cannot fail.
	_ = ep.emem.Free(idx)
}

// find returns the edge s -> t or mempool.Nil.
func (ep *EdgePool) find(s, t mempool.Index) mempool.Index {
	if ep.index != nil {
		if idx, ok := ep.index[edgeKey{s, t}]; ok {
			return idx
		}
		return mempool.Nil
	}
	for e := ep.vmem.ReadInt32(s, vertexFirstOut); e != mempool.Nil; e = ep.emem.ReadInt32(e, edgeNextSource) {
		if ep.emem.ReadInt32(e, edgeTarget) == t {
			return e
		}
	}
	return mempool.Nil
}

// splice links edge e into v's list at pos.
func (ep *EdgePool) splice(v, e mempool.Index, adj adjacency, pos int) {
	head := ep.vmem.ReadInt32(v, adj.head)
	if head == mempool.Nil || pos == 0 {
		ep.emem.WriteInt32(e, adj.next, head)
		ep.vmem.WriteInt32(v, adj.head, e)
		return
	}

	prev := head
	for i := 1; pos < 0 || i < pos; i++ {
		next := ep.emem.ReadInt32(prev, adj.next)
		if next == mempool.Nil {
			break
		}
		prev = next
	}
	ep.emem.WriteInt32(e, adj.next, ep.emem.ReadInt32(prev, adj.next))
	ep.emem.WriteInt32(prev, adj.next, e)
}

// unlink removes edge e from v's list.
func (ep *EdgePool) unlink(v, e mempool.Index, adj adjacency) bool {
	next := ep.emem.ReadInt32(e, adj.next)
	head := ep.vmem.ReadInt32(v, adj.head)
	if head == e {
		ep.vmem.WriteInt32(v, adj.head, next)
		ep.emem.WriteInt32(e, adj.next, mempool.Nil)
		return true
	}
	for prev := head; prev != mempool.Nil; {
		p := ep.emem.ReadInt32(prev, adj.next)
		if p == e {
			ep.emem.WriteInt32(prev, adj.next, next)
			ep.emem.WriteInt32(e, adj.next, mempool.Nil)
			return true
		}
		prev = p
	}
	return false
}

// Object binds ref to the live edge at slot idx.
func (ep *EdgePool) Object(idx mempool.Index, ref *Edge) (*Edge, bool) {
	return ep.objs.Object(idx, ep.orNew(ref))
}

// Resolve binds ref to the edge behind h, failing if it has been deleted.
func (ep *EdgePool) Resolve(h mempool.Handle, ref *Edge) (*Edge, error) {
	return ep.objs.Resolve(h, ep.orNew(ref))
}

// Size returns the number of live edges.
func (ep *EdgePool) Size() int { return ep.objs.Size() }

// CreateRef returns a spare edge proxy.
func (ep *EdgePool) CreateRef() *Edge { return ep.objs.CreateRef() }

// ReleaseRef returns an edge proxy to the cache.
func (ep *EdgePool) ReleaseRef(e *Edge) { ep.objs.ReleaseRef(e) }

// All iterates live edges in arena order, rebinding ref.
func (ep *EdgePool) All(ref *Edge) iter.Seq[*Edge] { return ep.objs.All(ep.orNew(ref)) }

// Iterator returns an explicit iterator over live edges writing into ref.
func (ep *EdgePool) Iterator(ref *Edge) *pool.Iterator[*Edge] {
	return ep.objs.Iterator(ep.orNew(ref))
}

// MemPool returns the edge arena.
func (ep *EdgePool) MemPool() *mempool.MemPool { return ep.emem }

// DataSize returns the number of caller-defined bytes per edge.
func (ep *EdgePool) DataSize() int { return ep.dataSize }

// Indexed reports whether duplicate checks use the hash index.
func (ep *EdgePool) Indexed() bool { return ep.index != nil }

func (ep *EdgePool) orNew(ref *Edge) *Edge {
	if ref == nil {
		return ep.newRef()
	}
	return ref
}

func (ep *EdgePool) clear() {
	ep.objs.Clear()
	if ep.index != nil {
		clear(ep.index)
	}
}
