package graph

import (
	"context"
	"fmt"
	"iter"
	"math"

	"github.com/hupe1980/poolgraph/internal/container"
	"github.com/hupe1980/poolgraph/mempool"
	"github.com/hupe1980/poolgraph/pool"
)

// Vertex is a flyweight proxy for a vertex record.
type Vertex struct {
	pool.Object
	vp *VertexPool

	in, out, all EdgeList
}

// SetToUninitializedState marks both adjacency lists empty.
func (v *Vertex) SetToUninitializedState() {
	a := v.PoolAccess()
	a.PutInt32(vertexFirstIn, mempool.Nil)
	a.PutInt32(vertexFirstOut, mempool.Nil)
}

// IncomingEdges returns the view of edges targeting v.
func (v *Vertex) IncomingEdges() *EdgeList { return &v.in }

// OutgoingEdges returns the view of edges leaving v.
func (v *Vertex) OutgoingEdges() *EdgeList { return &v.out }

// Edges returns the view of incoming followed by outgoing edges.
func (v *Vertex) Edges() *EdgeList { return &v.all }

// ID returns the stable external ID when the pool assigns IDs, else the slot index.
func (v *Vertex) ID() int {
	if v.vp.ids != nil {
		return int(v.PoolAccess().Int32(vertexID))
	}
	return int(v.Index())
}

// Fields returns the caller-defined extension bytes of the vertex.
func (v *Vertex) Fields() mempool.Fields {
	return mempool.NewFields(v.PoolAccess(), v.vp.dataOffset, v.vp.dataSize)
}

// Feature returns the registered vertex feature for spec.
func (v *Vertex) Feature(spec FeatureSpec) (Feature, bool) {
	return v.vp.features.Vertex(spec)
}

func (v *Vertex) String() string {
	if !v.PoolAccess().Bound() {
		return "Vertex(unbound)"
	}
	return fmt.Sprintf("Vertex(%d)", v.ID())
}

// VertexPool stores vertex records. With stable IDs enabled it also assigns
// monotonically increasing external IDs and keeps an id -> slot table.
type VertexPool struct {
	objs     *pool.Pool[*Vertex]
	edges    *EdgePool
	features *Features

	ids    *container.SegmentedArray[mempool.Index] // nil without stable IDs
	nextID int32

	dataOffset int
	dataSize   int
}

func newVertexPool(cfg config, features *Features) (*VertexPool, error) {
	vp := &VertexPool{
		features:   features,
		dataOffset: vertexHeaderSize,
		dataSize:   cfg.vertexDataSize,
	}
	if cfg.vertexIDs {
		vp.ids = container.NewSegmentedArray(mempool.Nil)
		vp.dataOffset = vertexIDHeaderSize
	}

	objs, err := pool.New(vp.dataOffset+vp.dataSize, vp.newRef, cfg.memOpts...)
	if err != nil {
		return nil, fmt.Errorf("graph: vertex pool: %w", err)
	}
	vp.objs = objs
	return vp, nil
}

func (vp *VertexPool) newRef() *Vertex {
	v := &Vertex{vp: vp}
	v.in = EdgeList{vertex: v, kind: incomingList}
	v.out = EdgeList{vertex: v, kind: outgoingList}
	v.all = EdgeList{vertex: v, kind: allList}
	return v
}

// Create allocates a vertex with empty adjacency lists and binds ref to it.
func (vp *VertexPool) Create(ref *Vertex) (*Vertex, error) {
	return vp.CreateContext(context.Background(), ref)
}

// CreateContext is Create with a context passed to arena growth.
func (vp *VertexPool) CreateContext(ctx context.Context, ref *Vertex) (*Vertex, error) {
	if vp.ids != nil && vp.nextID == math.MaxInt32 {
		return nil, fmt.Errorf("%w: vertex ids", ErrCapacityExceeded)
	}
	v, err := vp.objs.CreateContext(ctx, vp.orNew(ref))
	if err != nil {
		return nil, err
	}
	if vp.ids != nil {
		id := vp.nextID
		vp.nextID++
		v.PoolAccess().PutInt32(vertexID, id)
		vp.ids.Set(uint32(id), v.Index())
	}
	return v, nil
}

// Delete releases a vertex slot. The vertex must have no linked edges; use
// EdgePool.DeleteAllLinkedEdges or Graph.RemoveVertex first.
func (vp *VertexPool) Delete(v *Vertex) error {
	if err := vp.check(v); err != nil {
		return err
	}
	idx := v.Index()
	if vp.firstIn(idx) != mempool.Nil || vp.firstOut(idx) != mempool.Nil {
		return fmt.Errorf("%w: vertex %d", ErrVertexHasEdges, idx)
	}

	vp.features.removeVertex(idx)
	if vp.ids != nil {
		vp.ids.Set(uint32(v.PoolAccess().Int32(vertexID)), mempool.Nil)
	}
	return vp.objs.Delete(v)
}

// Object binds ref to the live vertex at slot idx.
func (vp *VertexPool) Object(idx mempool.Index, ref *Vertex) (*Vertex, bool) {
	return vp.objs.Object(idx, vp.orNew(ref))
}

// Resolve binds ref to the vertex behind h, failing if it has been deleted.
func (vp *VertexPool) Resolve(h mempool.Handle, ref *Vertex) (*Vertex, error) {
	return vp.objs.Resolve(h, vp.orNew(ref))
}

// HasIDs reports whether the pool assigns stable external IDs.
func (vp *VertexPool) HasIDs() bool {
	return vp.ids != nil
}

// ObjectByID binds ref to the live vertex with the given stable ID.
// Without stable IDs, id is interpreted as a slot index.
func (vp *VertexPool) ObjectByID(id int, ref *Vertex) (*Vertex, bool) {
	if vp.ids == nil {
		if id < 0 || id > mempool.MaxSlots {
			return nil, false
		}
		return vp.Object(mempool.Index(id), ref)
	}
	if id < 0 || id >= int(vp.nextID) {
		return nil, false
	}
	idx, ok := vp.ids.Get(uint32(id))
	if !ok || idx == mempool.Nil {
		return nil, false
	}
	return vp.Object(idx, ref)
}

// IDOf returns the external ID of the live vertex at idx, or -1.
func (vp *VertexPool) IDOf(idx mempool.Index) int {
	if !vp.objs.MemPool().IsLive(idx) {
		return -1
	}
	if vp.ids == nil {
		return int(idx)
	}
	return int(vp.objs.MemPool().ReadInt32(idx, vertexID))
}

// Size returns the number of live vertices.
func (vp *VertexPool) Size() int { return vp.objs.Size() }

// CreateRef returns a spare vertex proxy.
func (vp *VertexPool) CreateRef() *Vertex { return vp.objs.CreateRef() }

// ReleaseRef returns a vertex proxy to the cache.
func (vp *VertexPool) ReleaseRef(v *Vertex) { vp.objs.ReleaseRef(v) }

// All iterates live vertices in arena order, rebinding ref.
func (vp *VertexPool) All(ref *Vertex) iter.Seq[*Vertex] { return vp.objs.All(vp.orNew(ref)) }

// Iterator returns an explicit iterator over live vertices writing into ref.
func (vp *VertexPool) Iterator(ref *Vertex) *pool.Iterator[*Vertex] {
	return vp.objs.Iterator(vp.orNew(ref))
}

// MemPool returns the vertex arena.
func (vp *VertexPool) MemPool() *mempool.MemPool { return vp.objs.MemPool() }

// DataSize returns the number of caller-defined bytes per vertex.
func (vp *VertexPool) DataSize() int { return vp.dataSize }

func (vp *VertexPool) owns(v *Vertex) bool {
	return v != nil && vp.objs.Owns(v)
}

// check returns ErrClosed after Close and ErrStaleRef for a proxy that is not
// bound to a live vertex of this pool.
func (vp *VertexPool) check(v *Vertex) error {
	if vp.MemPool().Closed() {
		return ErrClosed
	}
	if !vp.owns(v) {
		return ErrStaleRef
	}
	return nil
}

func (vp *VertexPool) orNew(ref *Vertex) *Vertex {
	if ref == nil {
		return vp.newRef()
	}
	return ref
}

func (vp *VertexPool) firstIn(idx mempool.Index) mempool.Index {
	return vp.objs.MemPool().ReadInt32(idx, vertexFirstIn)
}

func (vp *VertexPool) firstOut(idx mempool.Index) mempool.Index {
	return vp.objs.MemPool().ReadInt32(idx, vertexFirstOut)
}

func (vp *VertexPool) clear() {
	vp.objs.Clear()
	if vp.ids != nil {
		vp.ids.Reset()
	}
}
