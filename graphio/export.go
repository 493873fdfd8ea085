package graphio

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/idmap"
	"github.com/hupe1980/poolgraph/internal/conv"
	"github.com/hupe1980/poolgraph/internal/hash"
	"github.com/hupe1980/poolgraph/internal/resource"
)

// checkEvery is the number of records between context checks.
const checkEvery = 4096

// Export writes g to w. The graph must not be mutated during the export.
func Export(ctx context.Context, w io.Writer, g graph.Graph, opts ...Option) error {
	o := applyOptions(opts)
	vp, ep := g.VertexPool(), g.EdgePool()
	ids := idmap.ForGraph(g)

	h := &Header{
		Version:        Version,
		Codec:          o.codec,
		StableIDs:      vp.HasIDs(),
		VertexDataSize: uint32(vp.DataSize()),
		EdgeDataSize:   uint32(ep.DataSize()),
		VertexCount:    uint64(g.VertexCount()),
		EdgeCount:      uint64(g.EdgeCount()),
	}

	bw := bufio.NewWriter(resource.NewRateLimitedWriter(ctx, w, o.controller))
	if _, err := bw.Write(h.marshal()); err != nil {
		return fmt.Errorf("graphio: write header: %w", err)
	}

	cw, err := newCodecWriter(bw, o.codec, o.zstdLevel)
	if err != nil {
		return err
	}
	body := hash.NewWriter(cw)

	if err := writeVertices(ctx, body, g, ids); err != nil {
		_ = cw.Close()
		return err
	}
	if err := writeEdges(ctx, body, g, ids); err != nil {
		_ = cw.Close()
		return err
	}

	if err := body.WriteTrailer(); err != nil {
		_ = cw.Close()
		return fmt.Errorf("graphio: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("graphio: close %s stream: %w", o.codec, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("graphio: flush: %w", err)
	}

	o.logger.Debug("graph exported",
		"vertices", h.VertexCount,
		"edges", h.EdgeCount,
		"codec", o.codec.String(),
	)
	return nil
}

func writeVertices(ctx context.Context, w io.Writer, g graph.Graph, ids *idmap.GraphIDBimap) error {
	ref := g.VertexRef()
	defer g.ReleaseVertexRef(ref)

	rec := make([]byte, vertexRecordSize)
	n := 0
	for v := range g.Vertices(ref) {
		if n++; n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		id, err := conv.IntToUint32(ids.VertexID(v))
		if err != nil {
			return fmt.Errorf("graphio: vertex id: %w", err)
		}
		binary.LittleEndian.PutUint32(rec, id)
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("graphio: write vertex: %w", err)
		}
		if _, err := w.Write(v.Fields().Bytes()); err != nil {
			return fmt.Errorf("graphio: write vertex data: %w", err)
		}
	}
	return nil
}

// writeEdges emits edges grouped by source in outgoing order. Incoming
// positions are computed up front with one pass over all incoming lists.
func writeEdges(ctx context.Context, w io.Writer, g graph.Graph, ids *idmap.GraphIDBimap) error {
	vref := g.VertexRef()
	defer g.ReleaseVertexRef(vref)
	tref := g.VertexRef()
	defer g.ReleaseVertexRef(tref)

	inPos := make([]uint32, g.EdgePool().MemPool().Allocated())
	for v := range g.Vertices(vref) {
		var pos uint32
		for e := range v.IncomingEdges().All() {
			inPos[e.Index()] = pos
			pos++
		}
	}

	rec := make([]byte, edgeRecordSize)
	n := 0
	for v := range g.Vertices(vref) {
		srcID, err := conv.IntToUint32(ids.VertexID(v))
		if err != nil {
			return fmt.Errorf("graphio: vertex id: %w", err)
		}
		var outPos uint32
		for e := range v.OutgoingEdges().All() {
			if n++; n%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			tgtID, err := conv.IntToUint32(ids.VertexID(e.Target(tref)))
			if err != nil {
				return fmt.Errorf("graphio: vertex id: %w", err)
			}
			binary.LittleEndian.PutUint32(rec[0:], srcID)
			binary.LittleEndian.PutUint32(rec[4:], tgtID)
			binary.LittleEndian.PutUint32(rec[8:], outPos)
			binary.LittleEndian.PutUint32(rec[12:], inPos[e.Index()])
			outPos++

			if _, err := w.Write(rec); err != nil {
				return fmt.Errorf("graphio: write edge: %w", err)
			}
			if _, err := w.Write(e.Fields().Bytes()); err != nil {
				return fmt.Errorf("graphio: write edge data: %w", err)
			}
		}
	}
	return nil
}
