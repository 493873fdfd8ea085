package poolgraph

import (
	"context"
	"io"
	"time"

	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/graphio"
	"github.com/hupe1980/poolgraph/idmap"
	"github.com/hupe1980/poolgraph/internal/resource"
	"github.com/hupe1980/poolgraph/mempool"
)

// Graph is a listenable pooled graph with logging, metrics and a shared
// memory budget. All graph.Graph operations are promoted from the embedded
// ListenableGraph.
type Graph struct {
	*graph.ListenableGraph

	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller
}

// New creates an empty graph.
func New(optFns ...Option) (*Graph, error) {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.ioLimit,
	})

	gopts := append([]graph.Option{
		graph.WithMemPoolOptions(o.memPoolOptions(rc)...),
		graph.WithLogger(o.logger.Logger),
	}, o.graphOpts...)

	pg, err := graph.New(gopts...)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		ListenableGraph: graph.NewListenable(pg),
		logger:          o.logger,
		metrics:         o.metricsCollector,
		rc:              rc,
	}
	if _, noop := o.metricsCollector.(NoopMetricsCollector); !noop {
		g.AddGraphListener(metricsListener{mc: o.metricsCollector})
	}
	return g, nil
}

// IDs returns the identity bridge matching the graph's vertex ID mode.
func (g *Graph) IDs() *idmap.GraphIDBimap {
	return idmap.ForGraph(g)
}

// Export writes the graph to w. See package graphio for the format.
func (g *Graph) Export(ctx context.Context, w io.Writer, opts ...graphio.Option) error {
	start := time.Now()
	cw := &countingWriter{w: w}

	opts = append([]graphio.Option{
		graphio.WithController(g.rc),
		graphio.WithLogger(g.logger.Logger),
	}, opts...)
	err := graphio.Export(ctx, cw, g, opts...)

	g.metrics.RecordExport(cw.n, time.Since(start), err)
	g.logger.LogExport(ctx, cw.n, err)
	return err
}

// Import adds the vertices and edges of an exported stream to the graph.
// Listeners see the imported records as individual add events. A stream that
// fails its checksum changes nothing; if applying the records fails, the
// records added so far are removed again and listeners see those removals.
func (g *Graph) Import(ctx context.Context, r io.Reader, opts ...graphio.Option) (*graphio.Result, error) {
	start := time.Now()
	vertices, edges := g.VertexCount(), g.EdgeCount()

	opts = append([]graphio.Option{
		graphio.WithController(g.rc),
		graphio.WithLogger(g.logger.Logger),
	}, opts...)
	res, err := graphio.Import(ctx, r, g, opts...)

	vertices, edges = g.VertexCount()-vertices, g.EdgeCount()-edges
	g.metrics.RecordImport(vertices, edges, time.Since(start), err)
	g.logger.LogImport(ctx, vertices, edges, err)
	if err == nil {
		g.NotifyGraphChanged()
	}
	return res, err
}

// Validate checks the adjacency invariants and logs the outcome.
func (g *Graph) Validate() error {
	err := g.ListenableGraph.Validate()
	g.logger.LogValidate(context.Background(), g.VertexCount(), g.EdgeCount(), err)
	return err
}

// Stats describes the graph's memory use.
type Stats struct {
	Vertices    int
	Edges       int
	VertexArena mempool.Stats
	EdgeArena   mempool.Stats
	MemoryUsage int64 // bytes reserved by both arenas
	MemoryLimit int64 // 0 if unlimited
	StableIDs   bool  // vertices carry stable external IDs
	EdgeIndex   bool  // duplicate checks use the (source, target) index
}

// Stats returns a snapshot of the graph's size and arena usage.
func (g *Graph) Stats() Stats {
	return Stats{
		Vertices:    g.VertexCount(),
		Edges:       g.EdgeCount(),
		VertexArena: g.VertexPool().MemPool().Stats(),
		EdgeArena:   g.EdgePool().MemPool().Stats(),
		MemoryUsage: g.rc.MemoryUsage(),
		MemoryLimit: g.rc.MemoryLimit(),
		StableIDs:   g.VertexPool().HasIDs(),
		EdgeIndex:   g.EdgePool().Indexed(),
	}
}

// Close releases both arenas and their memory budget.
func (g *Graph) Close() error {
	reserved := g.rc.MemoryUsage()
	err := g.ListenableGraph.Close()
	g.logger.LogClose(context.Background(), reserved, err)
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
