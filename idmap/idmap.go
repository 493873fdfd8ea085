// Package idmap maps graph records to integer IDs and back.
//
// Slot indices identify records only while they are live; a freed slot is
// reused by the next allocation. Code that hands IDs to the outside world (an
// exporter, a UI, a log line that is read later) goes through an IDBimap so it
// does not need to know which kind of ID it is dealing with.
package idmap

import (
	"math"

	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/mempool"
	"github.com/hupe1980/poolgraph/pool"
)

// IDBimap is a bidirectional mapping between objects and integer IDs.
type IDBimap[O any] interface {
	// GetID returns the ID of o.
	GetID(o O) int
	// GetObject binds ref to the object with the given ID.
	GetObject(id int, ref O) (O, bool)
}

// ObjectSource resolves slot indices to proxies. *pool.Pool, *graph.VertexPool
// and *graph.EdgePool implement it.
type ObjectSource[O pool.Proxy] interface {
	Object(idx mempool.Index, ref O) (O, bool)
}

// PoolObjectIDBimap uses slot indices as IDs.
type PoolObjectIDBimap[O pool.Proxy] struct {
	src ObjectSource[O]
}

// NewPoolObjectIDBimap returns a bimap over src.
func NewPoolObjectIDBimap[O pool.Proxy](src ObjectSource[O]) *PoolObjectIDBimap[O] {
	return &PoolObjectIDBimap[O]{src: src}
}

// GetID returns the slot index of o.
func (b *PoolObjectIDBimap[O]) GetID(o O) int {
	return int(o.PoolAccess().Index())
}

// GetObject binds ref to the live record at slot id.
func (b *PoolObjectIDBimap[O]) GetObject(id int, ref O) (O, bool) {
	if id < 0 || id > math.MaxInt32 {
		var zero O
		return zero, false
	}
	return b.src.Object(mempool.Index(id), ref)
}

// VertexIDBimap uses the stable IDs of a vertex pool created with
// graph.WithVertexIDs.
type VertexIDBimap struct {
	vp *graph.VertexPool
}

// NewVertexIDBimap returns a bimap over the stable IDs of vp.
func NewVertexIDBimap(vp *graph.VertexPool) *VertexIDBimap {
	return &VertexIDBimap{vp: vp}
}

// GetID returns the stable ID of v.
func (b *VertexIDBimap) GetID(v *graph.Vertex) int {
	return v.ID()
}

// GetObject binds ref to the live vertex with stable ID id.
func (b *VertexIDBimap) GetObject(id int, ref *graph.Vertex) (*graph.Vertex, bool) {
	return b.vp.ObjectByID(id, ref)
}

// GraphIDBimap pairs a vertex and an edge bimap.
type GraphIDBimap struct {
	vertices IDBimap[*graph.Vertex]
	edges    IDBimap[*graph.Edge]
}

// New returns a GraphIDBimap from its two halves.
func New(vertices IDBimap[*graph.Vertex], edges IDBimap[*graph.Edge]) *GraphIDBimap {
	return &GraphIDBimap{vertices: vertices, edges: edges}
}

// ForGraph returns the bimap matching g: stable vertex IDs when the vertex
// pool assigns them, slot indices otherwise. Edge IDs are always slot indices.
func ForGraph(g graph.Graph) *GraphIDBimap {
	var vertices IDBimap[*graph.Vertex]
	if vp := g.VertexPool(); vp.HasIDs() {
		vertices = NewVertexIDBimap(vp)
	} else {
		vertices = NewPoolObjectIDBimap[*graph.Vertex](vp)
	}
	return New(vertices, NewPoolObjectIDBimap[*graph.Edge](g.EdgePool()))
}

// VertexID returns the ID of v.
func (b *GraphIDBimap) VertexID(v *graph.Vertex) int { return b.vertices.GetID(v) }

// EdgeID returns the ID of e.
func (b *GraphIDBimap) EdgeID(e *graph.Edge) int { return b.edges.GetID(e) }

// Vertex binds ref to the vertex with the given ID.
func (b *GraphIDBimap) Vertex(id int, ref *graph.Vertex) (*graph.Vertex, bool) {
	return b.vertices.GetObject(id, ref)
}

// Edge binds ref to the edge with the given ID.
func (b *GraphIDBimap) Edge(id int, ref *graph.Edge) (*graph.Edge, bool) {
	return b.edges.GetObject(id, ref)
}

// VertexBimap returns the vertex half.
func (b *GraphIDBimap) VertexBimap() IDBimap[*graph.Vertex] { return b.vertices }

// EdgeBimap returns the edge half.
func (b *GraphIDBimap) EdgeBimap() IDBimap[*graph.Edge] { return b.edges }
