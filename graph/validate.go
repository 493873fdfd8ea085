package graph

import (
	"github.com/hashicorp/go-multierror"

	"github.com/hupe1980/poolgraph/mempool"
)

// Validate walks every adjacency list and reports all structural violations:
// edges with dead endpoints, edges listed under the wrong vertex, cycles in a
// list, and live edges that do not appear exactly once in each of their two
// lists. It returns nil for a consistent graph. Cost is O(V + E).
func (g *PoolGraph) Validate() error {
	var result *multierror.Error

	vmem, emem := g.vertices.MemPool(), g.edges.emem
	limit := g.edges.Size()
	outSeen := make(map[mempool.Index]int, limit)
	inSeen := make(map[mempool.Index]int, limit)

	for v := range vmem.Live() {
		for _, adj := range [2]adjacency{outAdj, inAdj} {
			endpoint, seen := edgeSource, outSeen
			if adj == inAdj {
				endpoint, seen = edgeTarget, inSeen
			}

			steps := 0
			for e := vmem.ReadInt32(v, adj.head); e != mempool.Nil; e = emem.ReadInt32(e, adj.next) {
				if steps++; steps > limit {
					result = multierror.Append(result, &InvariantError{Vertex: v, Edge: e, Reason: "adjacency list longer than edge count (cycle)"})
					break
				}
				if !emem.IsLive(e) {
					result = multierror.Append(result, &InvariantError{Vertex: v, Edge: e, Reason: "list references a freed edge"})
					break
				}
				if emem.ReadInt32(e, endpoint) != v {
					result = multierror.Append(result, &InvariantError{Vertex: v, Edge: e, Reason: "edge listed under a vertex that is not its endpoint"})
				}
				seen[e]++
			}
		}
	}

	for e := range emem.Live() {
		s := emem.ReadInt32(e, edgeSource)
		t := emem.ReadInt32(e, edgeTarget)
		if !vmem.IsLive(s) {
			result = multierror.Append(result, &InvariantError{Vertex: s, Edge: e, Reason: "source vertex is not live"})
		}
		if !vmem.IsLive(t) {
			result = multierror.Append(result, &InvariantError{Vertex: t, Edge: e, Reason: "target vertex is not live"})
		}
		if n := outSeen[e]; n != 1 {
			result = multierror.Append(result, &InvariantError{Vertex: s, Edge: e, Reason: occurrence("outgoing", n)})
		}
		if n := inSeen[e]; n != 1 {
			result = multierror.Append(result, &InvariantError{Vertex: t, Edge: e, Reason: occurrence("incoming", n)})
		}
		if g.edges.index != nil && g.edges.index[edgeKey{s, t}] != e {
			result = multierror.Append(result, &InvariantError{Vertex: s, Edge: e, Reason: "edge missing from hash index"})
		}
	}

	if g.edges.index != nil && len(g.edges.index) != g.edges.Size() {
		result = multierror.Append(result, &InvariantError{Vertex: mempool.Nil, Edge: mempool.Nil, Reason: "hash index size differs from edge count"})
	}

	return result.ErrorOrNil()
}

func occurrence(list string, n int) string {
	if n == 0 {
		return "edge missing from " + list + " list"
	}
	return "edge appears more than once in " + list + " list"
}
