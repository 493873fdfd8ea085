package poolgraph

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/poolgraph/graphio"
	"github.com/hupe1980/poolgraph/testutil"
)

func TestNew_Defaults(t *testing.T) {
	g, err := New()
	require.NoError(t, err)
	defer g.Close()

	a, err := g.AddVertex(nil)
	require.NoError(t, err)
	b, err := g.AddVertex(nil)
	require.NoError(t, err)
	_, err = g.AddEdge(a, b, nil)
	require.NoError(t, err)

	_, err = g.AddEdge(a, b, nil)
	assert.ErrorIs(t, err, ErrEdgeExists)
	assert.ErrorIs(t, g.VertexPool().Delete(a), ErrVertexHasEdges)

	require.NoError(t, g.Validate())
	st := g.Stats()
	assert.Equal(t, 2, st.Vertices)
	assert.Equal(t, 1, st.Edges)
	assert.Equal(t, 2, st.VertexArena.Live)
	assert.Positive(t, st.MemoryUsage)
	assert.Zero(t, st.MemoryLimit)
	assert.False(t, st.StableIDs)
	assert.False(t, st.EdgeIndex)
}

func TestNew_StatsReportLayout(t *testing.T) {
	g, err := New(WithVertexIDs(), WithEdgeIndex())
	require.NoError(t, err)
	defer g.Close()

	st := g.Stats()
	assert.True(t, st.StableIDs)
	assert.True(t, st.EdgeIndex)
}

func TestNew_MemoryLimit(t *testing.T) {
	// Two chunks of four 8-byte vertex slots.
	g, err := New(WithChunkSlots(4), WithMemoryLimit(64))
	require.NoError(t, err)
	defer g.Close()

	for i := 0; i < 8; i++ {
		_, err := g.AddVertex(nil)
		require.NoError(t, err)
	}
	_, err = g.AddVertex(nil)
	require.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, 8, g.VertexCount())
	assert.Equal(t, int64(64), g.Stats().MemoryUsage)

	// Freed slots are reused without growing.
	ref := g.VertexRef()
	defer g.ReleaseVertexRef(ref)
	for v := range g.Vertices(ref) {
		require.NoError(t, g.RemoveVertex(v))
		break
	}
	_, err = g.AddVertex(nil)
	require.NoError(t, err)
}

func TestGraph_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	g, err := New(WithMetricsCollector(mc), WithChunkSlots(16))
	require.NoError(t, err)
	defer g.Close()

	rng := testutil.NewRNG(42)
	_, err = testutil.RandomGraph(g, rng, 20, 60, 1.1)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(20), stats.VerticesAdded)
	assert.Equal(t, int64(g.EdgeCount()), stats.EdgesAdded)

	g.Clear()
	stats = mc.GetStats()
	assert.Equal(t, int64(1), stats.Rebuilds)
	assert.Zero(t, stats.EdgesRemoved, "Clear reports a rebuild, not individual removals")
}

func TestGraph_ExportImport(t *testing.T) {
	ctx := context.Background()
	srcMetrics := &BasicMetricsCollector{}
	src, err := New(WithMetricsCollector(srcMetrics), WithVertexIDs(), WithEdgeIndex(), WithChunkSlots(32))
	require.NoError(t, err)
	defer src.Close()

	rng := testutil.NewRNG(7)
	handles, err := testutil.RandomGraph(src, rng, 100, 400, 1.3)
	require.NoError(t, err)
	_, _, err = testutil.Mutate(src, rng, handles, 300)
	require.NoError(t, err)
	testutil.RequireInvariants(t, src)

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, &buf, graphio.WithCodec(graphio.CodecLZ4)))
	assert.Equal(t, int64(buf.Len()), srcMetrics.GetStats().ExportBytes)

	dstMetrics := &BasicMetricsCollector{}
	dst, err := New(WithMetricsCollector(dstMetrics), WithVertexIDs(), WithChunkSlots(32))
	require.NoError(t, err)
	defer dst.Close()

	res, err := dst.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, src.VertexCount(), res.VertexCount())
	assert.Equal(t, src.VertexCount(), dst.VertexCount())
	assert.Equal(t, src.EdgeCount(), dst.EdgeCount())
	testutil.RequireInvariants(t, dst)

	stats := dstMetrics.GetStats()
	assert.Equal(t, int64(1), stats.ImportCount)
	assert.Equal(t, int64(dst.EdgeCount()), stats.EdgesAdded)

	// Degrees survive, matched by exported ID.
	sref, dref := src.VertexRef(), dst.VertexRef()
	defer src.ReleaseVertexRef(sref)
	defer dst.ReleaseVertexRef(dref)
	srcIDs := src.IDs()
	for v := range src.Vertices(sref) {
		idx, ok := res.Vertex(srcIDs.VertexID(v))
		require.True(t, ok)
		w, ok := dst.VertexPool().Object(idx, dref)
		require.True(t, ok)
		assert.Equal(t, v.OutgoingEdges().Size(), w.OutgoingEdges().Size())
		assert.Equal(t, v.IncomingEdges().Size(), w.IncomingEdges().Size())
	}
}

func TestGraph_ImportCorrupt(t *testing.T) {
	ctx := context.Background()
	mc := &BasicMetricsCollector{}
	g, err := New(WithMetricsCollector(mc))
	require.NoError(t, err)
	defer g.Close()

	_, err = g.Import(ctx, bytes.NewReader([]byte("not a graph stream at all, clearly")))
	require.Error(t, err)
	assert.Equal(t, int64(1), mc.GetStats().ImportErrors)
}

func TestGraph_ImportChecksumLeavesGraphUntouched(t *testing.T) {
	ctx := context.Background()
	src, err := New()
	require.NoError(t, err)
	defer src.Close()
	a, err := src.AddVertex(nil)
	require.NoError(t, err)
	b, err := src.AddVertex(nil)
	require.NoError(t, err)
	_, err = src.AddEdge(a, b, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, &buf, graphio.WithCodec(graphio.CodecNone)))
	stream := buf.Bytes()
	stream[len(stream)-1] ^= 0xFF // trailer

	mc := &BasicMetricsCollector{}
	dst, err := New(WithMetricsCollector(mc))
	require.NoError(t, err)
	defer dst.Close()

	_, err = dst.Import(ctx, bytes.NewReader(stream))
	require.ErrorIs(t, err, ErrChecksum)
	assert.Zero(t, dst.VertexCount())
	assert.Zero(t, dst.EdgeCount())

	stats := mc.GetStats()
	assert.Zero(t, stats.VerticesAdded, "listeners never saw the rejected records")
	assert.Zero(t, stats.EdgesAdded)
	assert.Equal(t, int64(1), stats.ImportErrors)
}
