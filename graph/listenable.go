package graph

import (
	"context"
	"slices"

	"github.com/hupe1980/poolgraph/mempool"
)

// GraphListener receives fine-grained mutation events. Add events fire after
// the entity exists; removal events fire while it is still readable.
type GraphListener interface {
	VertexAdded(v *Vertex)
	VertexRemoved(v *Vertex)
	EdgeAdded(e *Edge)
	EdgeRemoved(e *Edge)
	// GraphRebuilt signals that the graph changed in ways not reported by
	// individual events, e.g. after a clear or while listeners were paused.
	GraphRebuilt()
}

// GraphChangeListener receives a coarse signal once a batch of changes is done.
type GraphChangeListener interface {
	GraphChanged()
}

// ListenableGraph decorates a PoolGraph with listener notification. Listeners
// run synchronously on the mutating goroutine in registration order.
type ListenableGraph struct {
	*PoolGraph

	listeners       []GraphListener
	changeListeners []GraphChangeListener
	paused          bool

	eref *Edge // bound to edges of a removed vertex for EdgeRemoved
}

var _ Graph = (*ListenableGraph)(nil)

// NewListenable wraps g.
func NewListenable(g *PoolGraph) *ListenableGraph {
	return &ListenableGraph{
		PoolGraph: g,
		eref:      g.edges.newRef(),
	}
}

// NewListenableGraph creates an empty listenable graph.
func NewListenableGraph(opts ...Option) (*ListenableGraph, error) {
	g, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return NewListenable(g), nil
}

// AddGraphListener registers l. It reports false if l is already registered.
func (g *ListenableGraph) AddGraphListener(l GraphListener) bool {
	if slices.Contains(g.listeners, l) {
		return false
	}
	g.listeners = append(g.listeners, l)
	return true
}

// RemoveGraphListener unregisters l.
func (g *ListenableGraph) RemoveGraphListener(l GraphListener) bool {
	i := slices.Index(g.listeners, l)
	if i < 0 {
		return false
	}
	g.listeners = slices.Delete(g.listeners, i, i+1)
	return true
}

// AddGraphChangeListener registers l. It reports false if l is already registered.
func (g *ListenableGraph) AddGraphChangeListener(l GraphChangeListener) bool {
	if slices.Contains(g.changeListeners, l) {
		return false
	}
	g.changeListeners = append(g.changeListeners, l)
	return true
}

// RemoveGraphChangeListener unregisters l.
func (g *ListenableGraph) RemoveGraphChangeListener(l GraphChangeListener) bool {
	i := slices.Index(g.changeListeners, l)
	if i < 0 {
		return false
	}
	g.changeListeners = slices.Delete(g.changeListeners, i, i+1)
	return true
}

// PauseListeners suppresses all events until ResumeListeners.
func (g *ListenableGraph) PauseListeners() {
	g.paused = true
}

// ResumeListeners re-enables events and fires GraphRebuilt and GraphChanged.
func (g *ListenableGraph) ResumeListeners() {
	g.paused = false
	for _, l := range g.listeners {
		l.GraphRebuilt()
	}
	g.NotifyGraphChanged()
}

// NotifyGraphChanged fires GraphChanged on all change listeners unless paused.
func (g *ListenableGraph) NotifyGraphChanged() {
	if g.paused {
		return
	}
	for _, l := range g.changeListeners {
		l.GraphChanged()
	}
}

func (g *ListenableGraph) active() bool {
	return !g.paused && len(g.listeners) > 0
}

// AddVertex creates a vertex and fires VertexAdded.
func (g *ListenableGraph) AddVertex(ref *Vertex) (*Vertex, error) {
	return g.AddVertexContext(context.Background(), ref)
}

// AddVertexContext is AddVertex with a context for arena growth admission.
func (g *ListenableGraph) AddVertexContext(ctx context.Context, ref *Vertex) (*Vertex, error) {
	v, err := g.PoolGraph.AddVertexContext(ctx, ref)
	if err != nil {
		return nil, err
	}
	if g.active() {
		for _, l := range g.listeners {
			l.VertexAdded(v)
		}
	}
	return v, nil
}

// AddEdge connects src -> tgt and fires EdgeAdded.
func (g *ListenableGraph) AddEdge(src, tgt *Vertex, ref *Edge) (*Edge, error) {
	return g.InsertEdge(src, -1, tgt, -1, ref)
}

// InsertEdge connects src -> tgt at the given positions and fires EdgeAdded.
func (g *ListenableGraph) InsertEdge(src *Vertex, outPos int, tgt *Vertex, inPos int, ref *Edge) (*Edge, error) {
	e, err := g.PoolGraph.InsertEdge(src, outPos, tgt, inPos, ref)
	if err != nil {
		return nil, err
	}
	if g.active() {
		for _, l := range g.listeners {
			l.EdgeAdded(e)
		}
	}
	return e, nil
}

// RemoveVertex fires EdgeRemoved for each linked edge and VertexRemoved for v,
// each before the record is freed.
func (g *ListenableGraph) RemoveVertex(v *Vertex) error {
	if !g.active() {
		return g.PoolGraph.RemoveVertex(v)
	}
	return g.removeVertex(v, g.fireEdgeRemoved, func() {
		for _, l := range g.listeners {
			l.VertexRemoved(v)
		}
	})
}

// RemoveEdge fires EdgeRemoved, then deletes e.
func (g *ListenableGraph) RemoveEdge(e *Edge) error {
	if g.edges.emem.Closed() {
		return ErrClosed
	}
	if e == nil || !g.edges.objs.Owns(e) {
		return ErrStaleRef
	}
	if g.active() {
		for _, l := range g.listeners {
			l.EdgeRemoved(e)
		}
	}
	return g.PoolGraph.RemoveEdge(e)
}

// RemoveAllLinkedEdges fires EdgeRemoved for each edge of v before deleting it.
func (g *ListenableGraph) RemoveAllLinkedEdges(v *Vertex) error {
	if err := g.vertices.check(v); err != nil {
		return err
	}
	var before func(mempool.Index)
	if g.active() {
		before = g.fireEdgeRemoved
	}
	g.edges.removeLinked(v.Index(), before)
	return nil
}

// Clear deletes everything and fires GraphRebuilt.
func (g *ListenableGraph) Clear() {
	g.PoolGraph.Clear()
	if g.active() {
		for _, l := range g.listeners {
			l.GraphRebuilt()
		}
	}
}

func (g *ListenableGraph) fireEdgeRemoved(idx mempool.Index) {
	e, _ := g.edges.Object(idx, g.eref)
	for _, l := range g.listeners {
		l.EdgeRemoved(e)
	}
}
