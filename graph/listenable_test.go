package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/poolgraph/mempool"
)

type recorder struct {
	name   string
	events *[]string
}

func (r *recorder) add(format string, args ...any) {
	*r.events = append(*r.events, r.name+":"+fmt.Sprintf(format, args...))
}

func (r *recorder) VertexAdded(v *Vertex)   { r.add("v+%d", v.Index()) }
func (r *recorder) VertexRemoved(v *Vertex) { r.add("v-%d live=%t", v.Index(), v.Valid()) }
func (r *recorder) EdgeAdded(e *Edge)       { r.add("e+%d->%d", e.SourceIndex(), e.TargetIndex()) }
func (r *recorder) EdgeRemoved(e *Edge)     { r.add("e-%d->%d", e.SourceIndex(), e.TargetIndex()) }
func (r *recorder) GraphRebuilt()           { r.add("rebuilt") }
func (r *recorder) GraphChanged()           { r.add("changed") }

func newListenable(t *testing.T) *ListenableGraph {
	t.Helper()
	g, err := NewListenableGraph(WithMemPoolOptions(mempool.WithChunkSlots(4)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestListenableGraph_Order(t *testing.T) {
	g := newListenable(t)
	var events []string
	a := &recorder{name: "a", events: &events}
	b := &recorder{name: "b", events: &events}
	require.True(t, g.AddGraphListener(a))
	require.True(t, g.AddGraphListener(b))
	require.False(t, g.AddGraphListener(a))

	vs := addVertices(t, g, 3)
	addEdge(t, g, vs[0], vs[1])
	addEdge(t, g, vs[1], vs[2])
	assert.Equal(t, []string{
		"a:v+0", "b:v+0",
		"a:v+1", "b:v+1",
		"a:v+2", "b:v+2",
		"a:e+0->1", "b:e+0->1",
		"a:e+1->2", "b:e+1->2",
	}, events)

	events = events[:0]
	require.NoError(t, g.RemoveVertex(vs[1]))
	assert.Equal(t, []string{
		"a:e-0->1", "b:e-0->1",
		"a:e-1->2", "b:e-1->2",
		"a:v-1 live=true", "b:v-1 live=true",
	}, events, "edges of a removed vertex are reported first, before anything is freed")
	require.NoError(t, g.Validate())
}

func TestListenableGraph_PauseResume(t *testing.T) {
	g := newListenable(t)
	var events []string
	r := &recorder{name: "r", events: &events}
	g.AddGraphListener(r)
	g.AddGraphChangeListener(r)

	g.PauseListeners()
	vs := addVertices(t, g, 2)
	addEdge(t, g, vs[0], vs[1])
	g.NotifyGraphChanged()
	assert.Empty(t, events)

	g.ResumeListeners()
	assert.Equal(t, []string{"r:rebuilt", "r:changed"}, events)

	events = events[:0]
	g.NotifyGraphChanged()
	assert.Equal(t, []string{"r:changed"}, events)
}

func TestListenableGraph_RemoveEdgeAndListeners(t *testing.T) {
	g := newListenable(t)
	var events []string
	r := &recorder{name: "r", events: &events}
	g.AddGraphListener(r)

	vs := addVertices(t, g, 2)
	e := addEdge(t, g, vs[0], vs[1])
	addEdge(t, g, vs[1], vs[0])

	events = events[:0]
	require.NoError(t, g.RemoveEdge(e))
	assert.Equal(t, []string{"r:e-0->1"}, events)
	assert.ErrorIs(t, g.RemoveEdge(e), ErrStaleRef)

	events = events[:0]
	require.NoError(t, g.RemoveAllLinkedEdges(vs[0]))
	assert.Equal(t, []string{"r:e-1->0"}, events)

	require.True(t, g.RemoveGraphListener(r))
	require.False(t, g.RemoveGraphListener(r))
	events = events[:0]
	addVertices(t, g, 1)
	assert.Empty(t, events)
}

func TestListenableGraph_ClearAndPanics(t *testing.T) {
	g := newListenable(t)
	var events []string
	g.AddGraphListener(&recorder{name: "r", events: &events})
	addVertices(t, g, 2)

	events = events[:0]
	g.Clear()
	assert.Equal(t, []string{"r:rebuilt"}, events)
	assert.Equal(t, 0, g.VertexCount())

	g.AddGraphListener(panicky{})
	assert.Panics(t, func() { _, _ = g.AddVertex(nil) })
}

type panicky struct{}

func (panicky) VertexAdded(*Vertex)   { panic("boom") }
func (panicky) VertexRemoved(*Vertex) {}
func (panicky) EdgeAdded(*Edge)       {}
func (panicky) EdgeRemoved(*Edge)     {}
func (panicky) GraphRebuilt()         {}
