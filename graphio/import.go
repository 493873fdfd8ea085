package graphio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/internal/hash"
	"github.com/hupe1980/poolgraph/internal/resource"
	"github.com/hupe1980/poolgraph/mempool"
)

// Result describes an import.
type Result struct {
	Header *Header

	vertices map[int]mempool.Index
}

// Vertex returns the slot index of the vertex exported under oldID.
func (r *Result) Vertex(oldID int) (mempool.Index, bool) {
	idx, ok := r.vertices[oldID]
	return idx, ok
}

// VertexCount returns the number of imported vertices.
func (r *Result) VertexCount() int {
	return len(r.vertices)
}

// Import reads a stream written by Export and adds its vertices and edges to
// g. Both the outgoing and the incoming order of every adjacency list are
// restored. The data sizes of g must match the exported ones.
//
// The whole stream is read and its checksum verified before g is touched. If
// applying the records fails, the vertices added so far are removed again and
// g is left with its previous contents.
func Import(ctx context.Context, r io.Reader, g graph.Graph, opts ...Option) (*Result, error) {
	o := applyOptions(opts)
	br := bufio.NewReader(resource.NewRateLimitedReader(ctx, r, o.controller))

	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	vp, ep := g.VertexPool(), g.EdgePool()
	if int(h.VertexDataSize) != vp.DataSize() || int(h.EdgeDataSize) != ep.DataSize() {
		return nil, fmt.Errorf("%w: stream has vertex/edge data %d/%d bytes, graph %d/%d",
			ErrLayoutMismatch, h.VertexDataSize, h.EdgeDataSize, vp.DataSize(), ep.DataSize())
	}

	cr, release, err := newCodecReader(br, h.Codec)
	if err != nil {
		return nil, err
	}
	defer release()

	body := hash.NewReader(cr)

	vertices, err := readTable(ctx, body, "vertex", h.VertexCount, vertexRecordSize+int(h.VertexDataSize))
	if err != nil {
		return nil, err
	}
	edges, err := readTable(ctx, body, "edge", h.EdgeCount, edgeRecordSize+int(h.EdgeDataSize))
	if err != nil {
		return nil, err
	}
	if err := body.Verify(); err != nil {
		if errors.Is(err, hash.ErrMismatch) {
			return nil, fmt.Errorf("%w: %w", ErrChecksum, err)
		}
		return nil, fmt.Errorf("graphio: %w", unexpected(err))
	}

	res := &Result{
		Header:   h,
		vertices: make(map[int]mempool.Index, min(h.VertexCount, 1<<20)),
	}
	if err := applyVertices(ctx, g, h, vertices, res); err != nil {
		return nil, rollback(g, res, err)
	}
	if err := applyEdges(ctx, g, h, edges, res); err != nil {
		return nil, rollback(g, res, err)
	}

	o.logger.Debug("graph imported",
		"vertices", h.VertexCount,
		"edges", h.EdgeCount,
		"codec", h.Codec.String(),
	)
	return res, nil
}

// readTable reads count fixed-size records into one buffer. The buffer grows
// with the data actually read, so a header announcing too many records fails
// at the end of the stream instead of allocating up front.
func readTable(ctx context.Context, r io.Reader, what string, count uint64, size int) ([]byte, error) {
	var buf bytes.Buffer
	rec := make([]byte, size)
	for i := uint64(0); i < count; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, err := io.ReadFull(r, rec); err != nil {
			return nil, fmt.Errorf("graphio: read %s %d: %w", what, i, unexpected(err))
		}
		buf.Write(rec)
	}
	return buf.Bytes(), nil
}

func applyVertices(ctx context.Context, g graph.Graph, h *Header, table []byte, res *Result) error {
	ref := g.VertexRef()
	defer g.ReleaseVertexRef(ref)

	size := vertexRecordSize + int(h.VertexDataSize)
	for i := uint64(0); i < h.VertexCount; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec := table[int(i)*size : int(i+1)*size]
		id := int(binary.LittleEndian.Uint32(rec))
		if _, dup := res.vertices[id]; dup {
			return fmt.Errorf("%w: duplicate vertex id %d", ErrCorrupt, id)
		}

		v, err := g.AddVertex(ref)
		if err != nil {
			return err
		}
		copy(v.Fields().Bytes(), rec[vertexRecordSize:])
		res.vertices[id] = v.Index()
	}
	return nil
}

// applyEdges inserts each edge at its rank among the already inserted edges of
// the same list, so the final lists come out in recorded order whatever order
// the records arrive in.
func applyEdges(ctx context.Context, g graph.Graph, h *Header, table []byte, res *Result) error {
	vp := g.VertexPool()
	src, tgt := g.VertexRef(), g.VertexRef()
	defer g.ReleaseVertexRef(src)
	defer g.ReleaseVertexRef(tgt)
	eref := g.EdgeRef()
	defer g.ReleaseEdgeRef(eref)

	outSeen := make(map[mempool.Index][]uint32)
	inSeen := make(map[mempool.Index][]uint32)

	size := edgeRecordSize + int(h.EdgeDataSize)
	for i := uint64(0); i < h.EdgeCount; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec := table[int(i)*size : int(i+1)*size]
		srcID := int(binary.LittleEndian.Uint32(rec[0:]))
		tgtID := int(binary.LittleEndian.Uint32(rec[4:]))
		outPos := binary.LittleEndian.Uint32(rec[8:])
		inPos := binary.LittleEndian.Uint32(rec[12:])

		s, ok := res.vertices[srcID]
		if !ok {
			return fmt.Errorf("%w: edge %d references unknown vertex %d", ErrCorrupt, i, srcID)
		}
		t, ok := res.vertices[tgtID]
		if !ok {
			return fmt.Errorf("%w: edge %d references unknown vertex %d", ErrCorrupt, i, tgtID)
		}
		vp.Object(s, src)
		vp.Object(t, tgt)

		outRank := rank(outSeen, s, outPos)
		inRank := rank(inSeen, t, inPos)
		e, err := g.InsertEdge(src, outRank, tgt, inRank, eref)
		if err != nil {
			return fmt.Errorf("graphio: edge %d -> %d: %w", srcID, tgtID, err)
		}
		copy(e.Fields().Bytes(), rec[edgeRecordSize:])
	}
	return nil
}

// rollback removes every vertex recorded in res together with its edges.
func rollback(g graph.Graph, res *Result, cause error) error {
	ref := g.VertexRef()
	defer g.ReleaseVertexRef(ref)

	var result error = cause
	for _, idx := range res.vertices {
		v, ok := g.VertexPool().Object(idx, ref)
		if !ok {
			continue
		}
		if err := g.RemoveVertex(v); err != nil {
			result = multierror.Append(result, fmt.Errorf("graphio: rollback vertex %d: %w", idx, err))
		}
	}
	clear(res.vertices)
	return result
}

// rank records pos for vertex v and returns how many smaller positions were
// recorded before it.
func rank(seen map[mempool.Index][]uint32, v mempool.Index, pos uint32) int {
	list := seen[v]
	i, _ := slices.BinarySearch(list, pos)
	seen[v] = slices.Insert(list, i, pos)
	return i
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
