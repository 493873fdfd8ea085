package graph

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/hupe1980/poolgraph/mempool"
)

// Graph is the mutation and query surface shared by PoolGraph and
// ListenableGraph.
type Graph interface {
	AddVertex(ref *Vertex) (*Vertex, error)
	AddEdge(src, tgt *Vertex, ref *Edge) (*Edge, error)
	InsertEdge(src *Vertex, outPos int, tgt *Vertex, inPos int, ref *Edge) (*Edge, error)
	GetEdge(src, tgt *Vertex, ref *Edge) (*Edge, bool)
	RemoveVertex(v *Vertex) error
	RemoveEdge(e *Edge) error
	RemoveAllLinkedEdges(v *Vertex) error
	Clear()

	VertexRef() *Vertex
	EdgeRef() *Edge
	ReleaseVertexRef(v *Vertex)
	ReleaseEdgeRef(e *Edge)

	Vertices(ref *Vertex) iter.Seq[*Vertex]
	Edges(ref *Edge) iter.Seq[*Edge]
	VertexCount() int
	EdgeCount() int

	VertexPool() *VertexPool
	EdgePool() *EdgePool
	Features() *Features

	Validate() error
	Close() error
}

var _ Graph = (*PoolGraph)(nil)

// PoolGraph is a directed graph stored in two arenas. Vertices and edges are
// addressed by slot index and accessed through reusable proxies.
//
// PoolGraph is not safe for concurrent mutation. Concurrent readers are fine as
// long as no goroutine mutates and each reader uses its own proxies.
type PoolGraph struct {
	vertices *VertexPool
	edges    *EdgePool
	features *Features
	logger   *slog.Logger
}

// New creates an empty graph.
func New(opts ...Option) (*PoolGraph, error) {
	cfg := applyOptions(opts)
	features := NewFeatures()

	vp, err := newVertexPool(cfg, features)
	if err != nil {
		return nil, err
	}
	ep, err := newEdgePool(cfg, vp, features)
	if err != nil {
		_ = vp.objs.Close()
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PoolGraph{
		vertices: vp,
		edges:    ep,
		features: features,
		logger:   logger,
	}, nil
}

// AddVertex creates a vertex and binds ref to it. A nil ref allocates a proxy.
func (g *PoolGraph) AddVertex(ref *Vertex) (*Vertex, error) {
	return g.vertices.Create(ref)
}

// AddVertexContext is AddVertex with a context for arena growth admission.
func (g *PoolGraph) AddVertexContext(ctx context.Context, ref *Vertex) (*Vertex, error) {
	return g.vertices.CreateContext(ctx, ref)
}

// AddEdge connects src -> tgt, appending to both adjacency lists.
func (g *PoolGraph) AddEdge(src, tgt *Vertex, ref *Edge) (*Edge, error) {
	return g.edges.AddEdge(src, tgt, ref)
}

// InsertEdge connects src -> tgt at the given list positions.
func (g *PoolGraph) InsertEdge(src *Vertex, outPos int, tgt *Vertex, inPos int, ref *Edge) (*Edge, error) {
	return g.edges.InsertEdge(src, outPos, tgt, inPos, ref)
}

// GetEdge binds ref to the edge src -> tgt if it exists.
func (g *PoolGraph) GetEdge(src, tgt *Vertex, ref *Edge) (*Edge, bool) {
	return g.edges.GetEdge(src, tgt, ref)
}

// RemoveVertex deletes all edges linked to v, then v itself.
func (g *PoolGraph) RemoveVertex(v *Vertex) error {
	return g.removeVertex(v, nil, nil)
}

// removeVertex runs beforeEdge for each linked edge and beforeVertex for v,
// each while the record is still live.
func (g *PoolGraph) removeVertex(v *Vertex, beforeEdge func(mempool.Index), beforeVertex func()) error {
	if err := g.vertices.check(v); err != nil {
		return err
	}
	idx := v.Index()
	n := g.edges.removeLinked(idx, beforeEdge)
	if beforeVertex != nil {
		beforeVertex()
	}
	if err := g.vertices.Delete(v); err != nil {
		return err
	}
	g.logger.Debug("vertex removed", "index", idx, "edges", n)
	return nil
}

// RemoveEdge deletes e.
func (g *PoolGraph) RemoveEdge(e *Edge) error {
	return g.edges.Delete(e)
}

// RemoveAllLinkedEdges deletes every edge incident to v, keeping v.
func (g *PoolGraph) RemoveAllLinkedEdges(v *Vertex) error {
	return g.edges.DeleteAllLinkedEdges(v)
}

// Clear deletes all vertices and edges. Stable IDs keep counting from where
// they were.
func (g *PoolGraph) Clear() {
	g.edges.clear()
	g.vertices.clear()
	g.features.clear()
}

// VertexRef returns a spare vertex proxy from the cache.
func (g *PoolGraph) VertexRef() *Vertex { return g.vertices.CreateRef() }

// EdgeRef returns a spare edge proxy from the cache.
func (g *PoolGraph) EdgeRef() *Edge { return g.edges.CreateRef() }

// ReleaseVertexRef returns v to the cache.
func (g *PoolGraph) ReleaseVertexRef(v *Vertex) { g.vertices.ReleaseRef(v) }

// ReleaseEdgeRef returns e to the cache.
func (g *PoolGraph) ReleaseEdgeRef(e *Edge) { g.edges.ReleaseRef(e) }

// Vertices iterates live vertices in slot order, rebinding ref.
func (g *PoolGraph) Vertices(ref *Vertex) iter.Seq[*Vertex] { return g.vertices.All(ref) }

// Edges iterates live edges in slot order, rebinding ref.
func (g *PoolGraph) Edges(ref *Edge) iter.Seq[*Edge] { return g.edges.All(ref) }

// VertexCount returns the number of live vertices.
func (g *PoolGraph) VertexCount() int { return g.vertices.Size() }

// EdgeCount returns the number of live edges.
func (g *PoolGraph) EdgeCount() int { return g.edges.Size() }

// VertexPool returns the vertex pool.
func (g *PoolGraph) VertexPool() *VertexPool { return g.vertices }

// EdgePool returns the edge pool.
func (g *PoolGraph) EdgePool() *EdgePool { return g.edges }

// Features returns the feature registry.
func (g *PoolGraph) Features() *Features { return g.features }

// Close releases both arenas. Afterwards the graph is empty, mutations return
// ErrClosed and lookups find nothing.
func (g *PoolGraph) Close() error {
	g.Clear()
	return errors.Join(g.edges.objs.Close(), g.vertices.objs.Close())
}
