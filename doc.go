// Package poolgraph provides an embeddable directed graph whose vertices and
// edges live in pooled, index-addressed arenas.
//
// A graph of tens of millions of vertices costs a few large byte chunks
// instead of tens of millions of heap objects. Records are reached through
// reusable proxies; walking adjacency lists with EdgeList.Iterator or
// EdgeList.Get does not allocate.
//
// # Quick Start
//
//	g, _ := poolgraph.New(poolgraph.WithVertexIDs())
//	defer g.Close()
//
//	a, _ := g.AddVertex(nil)
//	b, _ := g.AddVertex(nil)
//	_, _ = g.AddEdge(a, b, nil)
//
//	for e := range a.OutgoingEdges().All() {
//	    fmt.Println(e.SourceIndex(), "->", e.TargetIndex())
//	}
//
// # Proxies
//
// AddVertex, GetEdge, iteration and lookups bind a proxy to a record. Passing
// nil allocates a new proxy; passing one obtained from VertexRef/EdgeRef reuses
// it. A rebound proxy refers to a different record, so copy out what you need
// before rebinding. Proxies bound to deleted records report Valid() == false
// and are rejected with ErrStaleRef.
//
// # Memory
//
// WithMemoryLimit caps the bytes both arenas may reserve; WithOffHeap moves
// chunks out of the Go heap. Freed slots are reused LIFO and chunks are never
// returned before Close.
//
// # Export and Import
//
//	var buf bytes.Buffer
//	_ = g.Export(ctx, &buf, graphio.WithCodec(graphio.CodecZSTD))
//	res, _ := other.Import(ctx, &buf)
//
// Import restores the order of every adjacency list.
//
// # Concurrency
//
// A Graph is single-writer. Readers may run concurrently with each other when
// no goroutine mutates and each reader uses its own proxies.
//
// # Observability
//
// WithLogger sets a structured logger (see NewJSONLogger and NewTextLogger).
// WithMetricsCollector receives every mutation event plus export and import
// timings. Listeners can be attached directly with AddGraphListener.
package poolgraph
