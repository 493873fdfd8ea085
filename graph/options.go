package graph

import (
	"log/slog"

	"github.com/hupe1980/poolgraph/mempool"
)

// Record layouts. All header fields are little-endian int32 slot indices.
const (
	vertexFirstIn  = 0
	vertexFirstOut = 4
	vertexID       = 8

	edgeSource     = 0
	edgeTarget     = 4
	edgeNextSource = 8
	edgeNextTarget = 12

	vertexHeaderSize   = 8
	vertexIDHeaderSize = 12
	edgeHeaderSize     = 16
)

type config struct {
	vertexDataSize int
	edgeDataSize   int
	vertexIDs      bool
	edgeIndex      bool
	memOpts        []mempool.Option
	logger         *slog.Logger
}

// Option configures a graph.
type Option func(*config)

// WithVertexDataSize reserves n caller-defined bytes per vertex, reachable
// through Vertex.Fields.
func WithVertexDataSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.vertexDataSize = n
		}
	}
}

// WithEdgeDataSize reserves n caller-defined bytes per edge, reachable through
// Edge.Fields.
func WithEdgeDataSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.edgeDataSize = n
		}
	}
}

// WithVertexIDs gives every vertex a stable, never reused external ID that is
// independent of its slot index.
func WithVertexIDs() Option {
	return func(c *config) {
		c.vertexIDs = true
	}
}

// WithEdgeIndex maintains a hash index of (source, target) pairs so duplicate
// checks and GetEdge are O(1) instead of O(out-degree). Worth it for graphs with
// high-degree vertices; it costs one map entry per edge.
func WithEdgeIndex() Option {
	return func(c *config) {
		c.edgeIndex = true
	}
}

// WithMemPoolOptions passes options to both the vertex and the edge arena.
func WithMemPoolOptions(opts ...mempool.Option) Option {
	return func(c *config) {
		c.memOpts = append(c.memOpts, opts...)
	}
}

// WithLogger sets the structured logger. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func applyOptions(opts []Option) config {
	var c config
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if c.logger != nil {
		c.memOpts = append(c.memOpts, mempool.WithLogger(c.logger))
	}
	return c
}
