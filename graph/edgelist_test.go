package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/poolgraph/mempool"
)

func TestEdgeList_Views(t *testing.T) {
	g := newTestGraph(t)
	vs := addVertices(t, g, 4)
	hub := vs[0]

	in1 := addEdge(t, g, vs[1], hub)
	out2 := addEdge(t, g, hub, vs[2])
	out3 := addEdge(t, g, hub, vs[3])
	in2 := addEdge(t, g, vs[2], hub)

	assert.Equal(t, 2, hub.IncomingEdges().Size())
	assert.Equal(t, 2, hub.OutgoingEdges().Size())
	assert.Equal(t, 4, hub.Edges().Size())

	var all []mempool.Index
	for e := range hub.Edges().All() {
		all = append(all, e.Index())
	}
	assert.Equal(t, []mempool.Index{in1.Index(), in2.Index(), out2.Index(), out3.Index()}, all,
		"all view yields incoming then outgoing")

	assert.Equal(t, out3.Index(), hub.OutgoingEdges().Index(1))
	assert.Equal(t, out2.Index(), hub.Edges().Index(2))
	assert.Equal(t, mempool.Nil, hub.Edges().Index(4))
	assert.Equal(t, mempool.Nil, hub.Edges().Index(-1))

	e, ok := hub.IncomingEdges().Get(1, nil)
	require.True(t, ok)
	assert.Equal(t, vs[2].Index(), e.SourceIndex())
	_, ok = hub.IncomingEdges().Get(2, nil)
	assert.False(t, ok)
}

func TestEdgeList_IteratorDeterminism(t *testing.T) {
	g := newTestGraph(t)
	vs := addVertices(t, g, 4)
	addEdge(t, g, vs[0], vs[1])
	addEdge(t, g, vs[0], vs[0])
	addEdge(t, g, vs[2], vs[0])
	_, err := g.InsertEdge(vs[0], 0, vs[3], 0, nil)
	require.NoError(t, err)
	_, err = g.InsertEdge(vs[1], 5, vs[0], 1, nil)
	require.NoError(t, err)
	addEdge(t, g, vs[3], vs[0])

	assert.Equal(t, []mempool.Index{3, 1, 0}, outTargets(vs[0]))
	assert.Equal(t, []mempool.Index{0, 1, 2, 3}, inSources(vs[0]))

	ref := g.EdgeRef()
	defer g.ReleaseEdgeRef(ref)

	drain := func(it *EdgeIterator) []mempool.Index {
		var out []mempool.Index
		for it.HasNext() {
			out = append(out, it.Next().Index())
		}
		return out
	}

	views := []struct {
		name string
		list func(*Vertex) *EdgeList
	}{
		{"incoming", (*Vertex).IncomingEdges},
		{"outgoing", (*Vertex).OutgoingEdges},
		{"all", (*Vertex).Edges},
	}
	for _, view := range views {
		for _, v := range vs {
			l := view.list(v)

			var byGet []mempool.Index
			for i := range l.Size() {
				e, ok := l.Get(i, ref)
				require.True(t, ok, "%s of vertex %d: Get(%d)", view.name, v.Index(), i)
				byGet = append(byGet, e.Index())
			}
			_, ok := l.Get(l.Size(), ref)
			assert.False(t, ok)

			var byAll []mempool.Index
			for e := range l.All() {
				byAll = append(byAll, e.Index())
			}

			assert.Equal(t, byGet, drain(l.Iterator()), "%s of vertex %d: Iterator", view.name, v.Index())
			assert.Equal(t, byGet, drain(l.Iterator()), "%s of vertex %d: second Iterator", view.name, v.Index())
			assert.Equal(t, byGet, drain(l.SafeIterator()), "%s of vertex %d: SafeIterator", view.name, v.Index())
			assert.Equal(t, byGet, byAll, "%s of vertex %d: All", view.name, v.Index())
		}
	}

	assert.Equal(t, 7, vs[0].Edges().Size(), "self-loop is listed in both halves of the all view")
	assert.Same(t, vs[0].OutgoingEdges().Iterator(), vs[0].OutgoingEdges().Iterator(),
		"Iterator reuses one instance per view")
}

func TestEdgeList_IteratorAndGetDoNotAllocate(t *testing.T) {
	g := newTestGraph(t)
	vs := addVertices(t, g, 8)
	for _, v := range vs[1:] {
		addEdge(t, g, vs[0], v)
		addEdge(t, g, v, vs[0])
	}

	view := vs[0].Edges()
	ref := g.EdgeRef()
	defer g.ReleaseEdgeRef(ref)
	vref := g.VertexRef()
	defer g.ReleaseVertexRef(vref)

	var sink mempool.Index
	iterator := testing.AllocsPerRun(100, func() {
		it := view.Iterator()
		for it.HasNext() {
			sink += it.Next().TargetIndex()
		}
	})
	get := testing.AllocsPerRun(100, func() {
		for i := range view.Size() {
			if e, ok := view.Get(i, ref); ok {
				sink += e.TargetIndex()
			}
		}
	})
	vertices := testing.AllocsPerRun(100, func() {
		for v := range g.Vertices(vref) {
			sink += v.Index()
		}
	})

	assert.Zero(t, iterator, "Iterator")
	assert.Zero(t, get, "Get")
	assert.Zero(t, vertices, "Vertices")
	assert.NotZero(t, sink)
}

func TestEdgeList_NestedSafeIterator(t *testing.T) {
	g := newTestGraph(t)
	vs := addVertices(t, g, 3)
	addEdge(t, g, vs[0], vs[1])
	addEdge(t, g, vs[0], vs[2])

	out := vs[0].OutgoingEdges()
	var pairs [][2]mempool.Index
	outer := out.SafeIterator()
	for outer.HasNext() {
		a := outer.Next().TargetIndex()
		inner := out.SafeIterator()
		for inner.HasNext() {
			pairs = append(pairs, [2]mempool.Index{a, inner.Next().TargetIndex()})
		}
	}
	assert.Equal(t, [][2]mempool.Index{{1, 1}, {1, 2}, {2, 1}, {2, 2}}, pairs)
}

func TestEdgeList_DeleteWhileIterating(t *testing.T) {
	g := newTestGraph(t)
	vs := addVertices(t, g, 4)
	addEdge(t, g, vs[0], vs[0])
	addEdge(t, g, vs[0], vs[1])
	addEdge(t, g, vs[2], vs[0])
	addEdge(t, g, vs[0], vs[3])

	for e := range vs[0].Edges().All() {
		if e.Valid() {
			require.NoError(t, g.RemoveEdge(e))
		}
	}
	assert.True(t, vs[0].Edges().IsEmpty())
	assert.Equal(t, 0, g.EdgeCount())
	require.NoError(t, g.Validate())
}

func TestEdgeList_FollowsVertexProxy(t *testing.T) {
	g := newTestGraph(t)
	vs := addVertices(t, g, 3)
	addEdge(t, g, vs[0], vs[1])
	addEdge(t, g, vs[0], vs[2])
	addEdge(t, g, vs[1], vs[2])

	ref := g.VertexRef()
	defer g.ReleaseVertexRef(ref)

	var degrees []int
	for v := range g.Vertices(ref) {
		degrees = append(degrees, v.OutgoingEdges().Size())
	}
	assert.Equal(t, []int{2, 1, 0}, degrees)
}

func benchHub(b *testing.B, degree int) *Vertex {
	b.Helper()
	g, err := New()
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = g.Close() })

	hub, err := g.AddVertex(nil)
	if err != nil {
		b.Fatal(err)
	}
	ref := g.VertexRef()
	for range degree {
		v, err := g.AddVertex(ref)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := g.AddEdge(hub, v, nil); err != nil {
			b.Fatal(err)
		}
	}
	return hub
}

func BenchmarkEdgeList_Iterator(b *testing.B) {
	out := benchHub(b, 64).OutgoingEdges()
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		it := out.Iterator()
		for it.HasNext() {
			_ = it.Next().TargetIndex()
		}
	}
}

func BenchmarkEdgeList_Get(b *testing.B) {
	hub := benchHub(b, 64)
	out := hub.OutgoingEdges()
	ref := hub.vp.edges.CreateRef()
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for j := range 64 {
			if e, ok := out.Get(j, ref); ok {
				_ = e.TargetIndex()
			}
		}
	}
}

func BenchmarkEdgeList_All(b *testing.B) {
	out := benchHub(b, 64).OutgoingEdges()
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for e := range out.All() {
			_ = e.TargetIndex()
		}
	}
}
