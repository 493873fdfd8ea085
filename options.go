package poolgraph

import (
	"log/slog"

	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/mempool"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	memoryLimit      int64
	ioLimit          int64
	chunkSlots       int
	offHeap          bool
	graphOpts        []graph.Option
}

// Option configures New.
type Option func(*options)

// WithLogger sets the structured logger. Nil selects NoopLogger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLogLevel installs a text logger at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector attaches mc to the graph's mutation events and to
// export/import.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithMemoryLimit bounds the bytes reserved by both arenas together. Growth
// past the limit fails with ErrMemoryLimitExceeded. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles Export and Import to bytesPerSec. 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithChunkSlots sets the number of slots per arena chunk (rounded up to a
// power of two).
func WithChunkSlots(n int) Option {
	return func(o *options) {
		o.chunkSlots = n
	}
}

// WithOffHeap backs arena chunks with anonymous memory mappings where the
// platform supports them.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithVertexIDs gives vertices stable external IDs that survive slot reuse.
func WithVertexIDs() Option {
	return func(o *options) {
		o.graphOpts = append(o.graphOpts, graph.WithVertexIDs())
	}
}

// WithEdgeIndex keeps a hash index of connected pairs for O(1) duplicate checks.
func WithEdgeIndex() Option {
	return func(o *options) {
		o.graphOpts = append(o.graphOpts, graph.WithEdgeIndex())
	}
}

// WithVertexDataSize reserves n caller-defined bytes per vertex.
func WithVertexDataSize(n int) Option {
	return func(o *options) {
		o.graphOpts = append(o.graphOpts, graph.WithVertexDataSize(n))
	}
}

// WithEdgeDataSize reserves n caller-defined bytes per edge.
func WithEdgeDataSize(n int) Option {
	return func(o *options) {
		o.graphOpts = append(o.graphOpts, graph.WithEdgeDataSize(n))
	}
}

func (o *options) memPoolOptions(acquirer mempool.MemoryAcquirer) []mempool.Option {
	opts := []mempool.Option{
		mempool.WithMemoryAcquirer(acquirer),
		mempool.WithOffHeap(o.offHeap),
	}
	if o.chunkSlots > 0 {
		opts = append(opts, mempool.WithChunkSlots(o.chunkSlots))
	}
	return opts
}
