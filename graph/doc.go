// Package graph implements a directed graph stored in two slot arenas.
//
// Every vertex record holds the heads of its incoming and outgoing edge lists;
// every edge record holds its source and target and the next-edge links of both
// lists it belongs to. Vertices and edges are therefore addressed by int32 slot
// indices rather than pointers, and the whole graph lives in a handful of large
// byte chunks that the garbage collector never scans.
//
// Records are reached through flyweight proxies (*Vertex, *Edge). A proxy is
// bound to one record at a time and rebound by lookups and iteration:
//
//	g, _ := graph.New()
//	a, _ := g.AddVertex(nil)
//	b, _ := g.AddVertex(nil)
//	_, _ = g.AddEdge(a, b, nil)
//
//	vref := g.VertexRef()
//	defer g.ReleaseVertexRef(vref)
//	for e := range a.OutgoingEdges().All() {
//	    fmt.Println(e.Target(vref).ID())
//	}
//
// EdgeList.Iterator and EdgeList.Get rebind a proxy owned by the view and
// never allocate. All is the convenient form for range loops.
//
// A pair of vertices is connected by at most one edge per direction. Deleting
// a vertex deletes its edges first. Proxies bound to deleted records report
// Valid() == false and are rejected by mutating calls with ErrStaleRef.
//
// ListenableGraph adds synchronous change notification on top of PoolGraph.
package graph
