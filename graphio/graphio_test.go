package graphio

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/internal/resource"
	"github.com/hupe1980/poolgraph/mempool"
)

type lists struct {
	out []mempool.Index
	in  []mempool.Index
}

// snapshot records the adjacency lists of every vertex, keyed by slot index.
func snapshot(g graph.Graph) map[mempool.Index]lists {
	ref := g.VertexRef()
	defer g.ReleaseVertexRef(ref)

	snap := make(map[mempool.Index]lists)
	for v := range g.Vertices(ref) {
		var l lists
		for e := range v.OutgoingEdges().All() {
			l.out = append(l.out, e.TargetIndex())
		}
		for e := range v.IncomingEdges().All() {
			l.in = append(l.in, e.SourceIndex())
		}
		snap[v.Index()] = l
	}
	return snap
}

func newGraph(t *testing.T, opts ...graph.Option) *graph.PoolGraph {
	t.Helper()
	g, err := graph.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

// buildSource creates a graph whose incoming lists are not in insertion order
// and whose slot indices have a hole.
func buildSource(t *testing.T, opts ...graph.Option) *graph.PoolGraph {
	t.Helper()
	g := newGraph(t, opts...)

	vs := make([]*graph.Vertex, 6)
	for i := range vs {
		v, err := g.AddVertex(nil)
		require.NoError(t, err)
		if f := v.Fields(); f.Len() >= 8 {
			f.PutInt64(0, int64(100+i))
		}
		vs[i] = v
	}
	require.NoError(t, g.RemoveVertex(vs[2]))

	edges := [][2]int{{0, 1}, {0, 3}, {1, 3}, {4, 3}, {3, 0}, {5, 5}, {1, 0}}
	for i, p := range edges {
		// Prepend into the target's incoming list to scramble its order.
		e, err := g.InsertEdge(vs[p[0]], -1, vs[p[1]], 0, nil)
		require.NoError(t, err)
		if f := e.Fields(); f.Len() >= 4 {
			f.PutInt32(0, int32(i))
		}
	}
	_, err := g.InsertEdge(vs[4], 0, vs[1], 1, nil)
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	return g
}

func TestRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecZSTD} {
		t.Run(codec.String(), func(t *testing.T) {
			opts := []graph.Option{graph.WithVertexDataSize(8), graph.WithEdgeDataSize(4)}
			src := buildSource(t, opts...)

			var buf bytes.Buffer
			require.NoError(t, Export(context.Background(), &buf, src, WithCodec(codec)))

			dst := newGraph(t, opts...)
			res, err := Import(context.Background(), bytes.NewReader(buf.Bytes()), dst)
			require.NoError(t, err)
			require.NoError(t, dst.Validate())

			assert.Equal(t, codec, res.Header.Codec)
			assert.Equal(t, src.VertexCount(), res.VertexCount())
			assert.Equal(t, src.VertexCount(), dst.VertexCount())
			assert.Equal(t, src.EdgeCount(), dst.EdgeCount())

			// Translate the source snapshot into destination slot indices.
			mapIdx := func(old mempool.Index) mempool.Index {
				idx, ok := res.Vertex(int(old))
				require.True(t, ok, "vertex %d", old)
				return idx
			}
			want := make(map[mempool.Index]lists)
			for old, l := range snapshot(src) {
				var m lists
				for _, x := range l.out {
					m.out = append(m.out, mapIdx(x))
				}
				for _, x := range l.in {
					m.in = append(m.in, mapIdx(x))
				}
				want[mapIdx(old)] = m
			}
			assert.Equal(t, want, snapshot(dst))

			// Extension data travels with the records.
			idx, _ := res.Vertex(4)
			v, ok := dst.VertexPool().Object(idx, nil)
			require.True(t, ok)
			assert.Equal(t, int64(104), v.Fields().Int64(0))

			s, _ := res.Vertex(5)
			sv, _ := dst.VertexPool().Object(s, nil)
			loop, ok := dst.GetEdge(sv, sv, nil)
			require.True(t, ok)
			assert.Equal(t, int32(5), loop.Fields().Int32(0))
		})
	}
}

func TestRoundTrip_StableIDs(t *testing.T) {
	src := buildSource(t, graph.WithVertexIDs())

	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), &buf, src, WithIOLimit(1<<30)))

	dst := newGraph(t, graph.WithVertexIDs())
	res, err := Import(context.Background(), &buf, dst)
	require.NoError(t, err)
	assert.True(t, res.Header.StableIDs)

	_, ok := res.Vertex(2)
	assert.False(t, ok, "deleted vertex is not exported")
	idx, ok := res.Vertex(5)
	require.True(t, ok)
	v, _ := dst.VertexPool().Object(idx, nil)
	assert.Equal(t, 1, v.OutgoingEdges().Size())
}

func TestImport_Errors(t *testing.T) {
	src := buildSource(t, graph.WithVertexDataSize(8))
	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), &buf, src, WithCodec(CodecNone)))
	stream := buf.Bytes()

	t.Run("bad magic", func(t *testing.T) {
		bad := bytes.Clone(stream)
		bad[0] = 'X'
		_, err := Import(context.Background(), bytes.NewReader(bad), newGraph(t, graph.WithVertexDataSize(8)))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("version", func(t *testing.T) {
		bad := bytes.Clone(stream)
		bad[4] = 99
		_, err := Import(context.Background(), bytes.NewReader(bad), newGraph(t, graph.WithVertexDataSize(8)))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("layout", func(t *testing.T) {
		_, err := Import(context.Background(), bytes.NewReader(stream), newGraph(t))
		assert.ErrorIs(t, err, ErrLayoutMismatch)
	})

	t.Run("checksum", func(t *testing.T) {
		bad := bytes.Clone(stream)
		bad[headerSize+vertexRecordSize] ^= 0xFF // first byte of vertex data
		dst := newGraph(t, graph.WithVertexDataSize(8))
		res, err := Import(context.Background(), bytes.NewReader(bad), dst)
		assert.ErrorIs(t, err, ErrChecksum)
		assert.Nil(t, res)
		assert.Zero(t, dst.VertexCount(), "nothing is applied before the checksum is verified")
		assert.Zero(t, dst.EdgeCount())
	})

	t.Run("truncated", func(t *testing.T) {
		dst := newGraph(t, graph.WithVertexDataSize(8))
		_, err := Import(context.Background(), bytes.NewReader(stream[:len(stream)-10]), dst)
		assert.Error(t, err)
		assert.Zero(t, dst.VertexCount())
		assert.Zero(t, dst.EdgeCount())
	})

	t.Run("rollback", func(t *testing.T) {
		// Both arenas use 32 byte chunks: the budget fits the five vertices
		// and one edge chunk, so the third edge fails.
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 128})
		dst := newGraph(t, graph.WithVertexDataSize(8), graph.WithMemPoolOptions(
			mempool.WithChunkSlots(2),
			mempool.WithMemoryAcquirer(rc),
		))

		res, err := Import(context.Background(), bytes.NewReader(stream), dst)
		require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Nil(t, res)
		assert.Zero(t, dst.VertexCount(), "imported vertices are removed again")
		assert.Zero(t, dst.EdgeCount())
		require.NoError(t, dst.Validate())
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Import(ctx, bytes.NewReader(stream), newGraph(t, graph.WithVertexDataSize(8)))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseCodec(t *testing.T) {
	c, err := ParseCodec("lz4")
	require.NoError(t, err)
	assert.Equal(t, CodecLZ4, c)

	_, err = ParseCodec("brotli")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}
