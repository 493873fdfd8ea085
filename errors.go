package poolgraph

import (
	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/graphio"
	"github.com/hupe1980/poolgraph/internal/resource"
	"github.com/hupe1980/poolgraph/mempool"
)

var (
	// ErrStaleRef is returned when a proxy no longer refers to a live record.
	ErrStaleRef = graph.ErrStaleRef

	// ErrEdgeExists is returned when connecting an already connected pair.
	ErrEdgeExists = graph.ErrEdgeExists

	// ErrVertexHasEdges is returned when a vertex slot is freed while linked.
	ErrVertexHasEdges = graph.ErrVertexHasEdges

	// ErrFeatureExists is returned when a feature key is registered twice.
	ErrFeatureExists = graph.ErrFeatureExists

	// ErrClosed is returned by operations on a closed graph.
	ErrClosed = mempool.ErrClosed

	// ErrCapacityExceeded is returned when an arena runs out of int32 slot indices.
	ErrCapacityExceeded = mempool.ErrCapacityExceeded

	// ErrStaleHandle is returned when resolving a handle whose record is gone.
	ErrStaleHandle = mempool.ErrStaleHandle

	// ErrMemoryLimitExceeded is returned when arena growth would exceed WithMemoryLimit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrChecksum is returned when an imported stream fails its checksum.
	ErrChecksum = graphio.ErrChecksum
)

// InvariantError describes one structural violation found by Validate.
type InvariantError = graph.InvariantError
