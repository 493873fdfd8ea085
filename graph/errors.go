package graph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/poolgraph/mempool"
)

// Sentinel errors for graph operations.
var (
	// ErrStaleRef indicates a proxy that is unbound, bound to a deleted record, or
	// bound to a record of another graph.
	ErrStaleRef = errors.New("graph: stale or foreign reference")

	// ErrEdgeExists indicates AddEdge/InsertEdge was called for a connected pair.
	ErrEdgeExists = errors.New("graph: edge already exists")

	// ErrVertexHasEdges indicates a vertex slot was released while still linked.
	ErrVertexHasEdges = errors.New("graph: vertex has linked edges")

	// ErrFeatureExists indicates a feature key was registered twice.
	ErrFeatureExists = errors.New("graph: feature already registered")

	// ErrClosed indicates an operation on a closed graph.
	ErrClosed = mempool.ErrClosed

	// ErrCapacityExceeded indicates the stable vertex ID space is exhausted.
	ErrCapacityExceeded = mempool.ErrCapacityExceeded
)

// InvariantError describes one adjacency invariant violation found by Validate.
type InvariantError struct {
	Vertex mempool.Index
	Edge   mempool.Index
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("graph invariant violated (vertex %d, edge %d): %s", e.Vertex, e.Edge, e.Reason)
}
