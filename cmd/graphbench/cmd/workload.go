package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	gojson "github.com/goccy/go-json"

	poolgraph "github.com/hupe1980/poolgraph"
	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/testutil"
)

// bench bundles a graph with the collector observing it.
type bench struct {
	g       *poolgraph.Graph
	metrics *poolgraph.BasicMetricsCollector
	logger  *poolgraph.Logger
}

func newBench(c *Config) (*bench, error) {
	logger := c.Log.Logger().WithGraph("graphbench")
	mc := &poolgraph.BasicMetricsCollector{}
	g, err := poolgraph.New(c.Options(logger, mc)...)
	if err != nil {
		return nil, err
	}
	return &bench{g: g, metrics: mc, logger: logger}, nil
}

// build generates the random graph and applies the mutation workload.
func (b *bench) build(ctx context.Context, w io.Writer, c *Config, mutations int) error {
	rng := testutil.NewRNG(c.Workload.Seed)

	start := time.Now()
	handles, err := testutil.RandomGraph(b.g, rng, c.Workload.Vertices, c.Workload.Edges, c.Workload.Skew)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	report(w, "build", time.Since(start), b.g)

	if mutations > 0 {
		start = time.Now()
		_, st, err := testutil.Mutate(b.g, rng, handles, mutations)
		if err != nil {
			return fmt.Errorf("mutate: %w", err)
		}
		report(w, "mutate", time.Since(start), b.g)
		fmt.Fprintf(w, "  +v %d  -v %d  +e %d  -e %d  dup %d\n",
			st.VerticesAdded, st.VerticesRemoved, st.EdgesAdded, st.EdgesRemoved, st.Duplicates)
	}

	if c.Workload.Validate {
		return b.validate(ctx, w)
	}
	return nil
}

func (b *bench) validate(_ context.Context, w io.Writer) error {
	start := time.Now()
	if err := b.g.Validate(); err != nil {
		return err
	}
	report(w, "validate", time.Since(start), b.g)
	return nil
}

// reach counts the vertices reachable from the first live vertex.
func (b *bench) reach(w io.Writer) error {
	ref := b.g.VertexRef()
	defer b.g.ReleaseVertexRef(ref)

	var root *graph.Vertex
	for v := range b.g.Vertices(ref) {
		root = v
		break
	}
	if root == nil {
		return nil
	}

	start := time.Now()
	reached, depth := 0, 0
	err := graph.BreadthFirst(b.g, root, func(_ *graph.Vertex, d int) bool {
		reached++
		depth = max(depth, d)
		return true
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%-9s %10s  reached %d vertices from %s, depth %d\n",
		"bfs", time.Since(start).Round(time.Microsecond), reached, root, depth)
	return nil
}

func (b *bench) close(w io.Writer) error {
	st := b.metrics.GetStats()
	fmt.Fprintf(w, "events    vertices +%d/-%d  edges +%d/-%d\n",
		st.VerticesAdded, st.VerticesRemoved, st.EdgesAdded, st.EdgesRemoved)
	return b.g.Close()
}

func report(w io.Writer, phase string, d time.Duration, g *poolgraph.Graph) {
	st := g.Stats()
	fmt.Fprintf(w, "%-9s %10s  vertices %d  edges %d  arena %s\n",
		phase, d.Round(time.Microsecond), st.Vertices, st.Edges, formatBytes(st.MemoryUsage))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Report is the machine-readable summary printed by run --json.
type Report struct {
	Graph  poolgraph.Stats        `json:"graph"`
	Events poolgraph.MetricsStats `json:"events"`
}

func (b *bench) writeReport(w io.Writer) error {
	data, err := gojson.MarshalIndent(Report{
		Graph:  b.g.Stats(),
		Events: b.metrics.GetStats(),
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
