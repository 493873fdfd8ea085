package poolgraph

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/poolgraph/graph"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Mutation events are delivered synchronously on the mutating goroutine, so
// implementations should be cheap.
type MetricsCollector interface {
	// RecordVertexAdded is called after a vertex is created.
	RecordVertexAdded()

	// RecordVertexRemoved is called before a vertex is freed.
	RecordVertexRemoved()

	// RecordEdgeAdded is called after an edge is created.
	RecordEdgeAdded()

	// RecordEdgeRemoved is called before an edge is freed.
	RecordEdgeRemoved()

	// RecordRebuild is called when the graph was cleared or changed while
	// listeners were paused.
	RecordRebuild()

	// RecordExport is called after each export. bytes is the stream size.
	RecordExport(bytes int64, duration time.Duration, err error)

	// RecordImport is called after each import.
	RecordImport(vertices, edges int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordVertexAdded()                          {}
func (NoopMetricsCollector) RecordVertexRemoved()                        {}
func (NoopMetricsCollector) RecordEdgeAdded()                            {}
func (NoopMetricsCollector) RecordEdgeRemoved()                          {}
func (NoopMetricsCollector) RecordRebuild()                              {}
func (NoopMetricsCollector) RecordExport(int64, time.Duration, error)    {}
func (NoopMetricsCollector) RecordImport(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	VerticesAdded    atomic.Int64
	VerticesRemoved  atomic.Int64
	EdgesAdded       atomic.Int64
	EdgesRemoved     atomic.Int64
	Rebuilds         atomic.Int64
	ExportCount      atomic.Int64
	ExportErrors     atomic.Int64
	ExportBytes      atomic.Int64
	ExportTotalNanos atomic.Int64
	ImportCount      atomic.Int64
	ImportErrors     atomic.Int64
	ImportTotalNanos atomic.Int64
}

// RecordVertexAdded implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVertexAdded() { b.VerticesAdded.Add(1) }

// RecordVertexRemoved implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVertexRemoved() { b.VerticesRemoved.Add(1) }

// RecordEdgeAdded implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEdgeAdded() { b.EdgesAdded.Add(1) }

// RecordEdgeRemoved implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEdgeRemoved() { b.EdgesRemoved.Add(1) }

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild() { b.Rebuilds.Add(1) }

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(bytes int64, duration time.Duration, err error) {
	b.ExportCount.Add(1)
	b.ExportTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ExportErrors.Add(1)
		return
	}
	b.ExportBytes.Add(bytes)
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(_, _ int, duration time.Duration, err error) {
	b.ImportCount.Add(1)
	b.ImportTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ImportErrors.Add(1)
	}
}

// MetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type MetricsStats struct {
	VerticesAdded   int64
	VerticesRemoved int64
	EdgesAdded      int64
	EdgesRemoved    int64
	Rebuilds        int64
	ExportCount     int64
	ExportErrors    int64
	ExportBytes     int64
	AvgExportNanos  int64
	ImportCount     int64
	ImportErrors    int64
	AvgImportNanos  int64
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() MetricsStats {
	s := MetricsStats{
		VerticesAdded:   b.VerticesAdded.Load(),
		VerticesRemoved: b.VerticesRemoved.Load(),
		EdgesAdded:      b.EdgesAdded.Load(),
		EdgesRemoved:    b.EdgesRemoved.Load(),
		Rebuilds:        b.Rebuilds.Load(),
		ExportCount:     b.ExportCount.Load(),
		ExportErrors:    b.ExportErrors.Load(),
		ExportBytes:     b.ExportBytes.Load(),
		ImportCount:     b.ImportCount.Load(),
		ImportErrors:    b.ImportErrors.Load(),
	}
	if s.ExportCount > 0 {
		s.AvgExportNanos = b.ExportTotalNanos.Load() / s.ExportCount
	}
	if s.ImportCount > 0 {
		s.AvgImportNanos = b.ImportTotalNanos.Load() / s.ImportCount
	}
	return s
}

// metricsListener feeds graph events into a MetricsCollector.
type metricsListener struct {
	mc MetricsCollector
}

var _ graph.GraphListener = metricsListener{}

func (m metricsListener) VertexAdded(*graph.Vertex)   { m.mc.RecordVertexAdded() }
func (m metricsListener) VertexRemoved(*graph.Vertex) { m.mc.RecordVertexRemoved() }
func (m metricsListener) EdgeAdded(*graph.Edge)       { m.mc.RecordEdgeAdded() }
func (m metricsListener) EdgeRemoved(*graph.Edge)     { m.mc.RecordEdgeRemoved() }
func (m metricsListener) GraphRebuilt()               { m.mc.RecordRebuild() }
