package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/mempool"
)

// Adjacency maps a vertex slot index to its outgoing targets and incoming
// sources, both in list order.
type Adjacency map[mempool.Index][2][]mempool.Index

// Snapshot records the adjacency lists of every live vertex of g.
func Snapshot(g graph.Graph) Adjacency {
	ref := g.VertexRef()
	defer g.ReleaseVertexRef(ref)

	adj := make(Adjacency, g.VertexCount())
	for v := range g.Vertices(ref) {
		var lists [2][]mempool.Index
		for e := range v.OutgoingEdges().All() {
			lists[0] = append(lists[0], e.TargetIndex())
		}
		for e := range v.IncomingEdges().All() {
			lists[1] = append(lists[1], e.SourceIndex())
		}
		adj[v.Index()] = lists
	}
	return adj
}

// RequireInvariants fails the test if g violates any adjacency invariant:
// Validate must pass, every edge must be reachable from both endpoints, no
// pair may be connected twice, and the list sizes must add up to EdgeCount.
func RequireInvariants(t testing.TB, g graph.Graph) {
	t.Helper()
	require.NoError(t, g.Validate())

	type pair struct{ s, t mempool.Index }
	seen := make(map[pair]struct{})
	outTotal, inTotal := 0, 0
	for v, lists := range Snapshot(g) {
		for _, tgt := range lists[0] {
			p := pair{v, tgt}
			_, dup := seen[p]
			require.False(t, dup, "duplicate edge %d -> %d", v, tgt)
			seen[p] = struct{}{}
		}
		outTotal += len(lists[0])
		inTotal += len(lists[1])
	}
	require.Equal(t, g.EdgeCount(), outTotal, "outgoing list sizes")
	require.Equal(t, g.EdgeCount(), inTotal, "incoming list sizes")

	ref := g.EdgeRef()
	defer g.ReleaseEdgeRef(ref)
	vref := g.VertexRef()
	defer g.ReleaseVertexRef(vref)
	for e := range g.Edges(ref) {
		require.NotNil(t, e.Source(vref), "edge %d has a dead source", e.Index())
		require.NotNil(t, e.Target(vref), "edge %d has a dead target", e.Index())
		_, ok := seen[pair{e.SourceIndex(), e.TargetIndex()}]
		require.True(t, ok, "edge %d missing from its source's outgoing list", e.Index())
	}
}
