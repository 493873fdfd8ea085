package graph

import (
	"github.com/hupe1980/poolgraph/mempool"
	"github.com/hupe1980/poolgraph/pool"
)

// VisitFunc is called once per reached vertex with its distance in edges from
// the root. Returning false stops the traversal. v is reused between calls.
type VisitFunc func(v *Vertex, depth int) bool

// BreadthFirst visits vertices reachable from root over outgoing edges in
// breadth-first order. Edge order within a vertex is adjacency-list order.
func BreadthFirst(g Graph, root *Vertex, fn VisitFunc) error {
	vp := g.VertexPool()
	if err := vp.check(root); err != nil {
		return err
	}

	visited := pool.NewRefSet(vp.objs)
	ref := vp.CreateRef()
	defer vp.ReleaseRef(ref)

	type item struct {
		idx   mempool.Index
		depth int
	}
	queue := []item{{root.Index(), 0}}
	visited.AddIndex(root.Index())

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		v, _ := vp.Object(cur.idx, ref)
		if !fn(v, cur.depth) {
			return nil
		}
		for e := vp.firstOut(cur.idx); e != mempool.Nil; e = vp.edges.emem.ReadInt32(e, edgeNextSource) {
			t := vp.edges.emem.ReadInt32(e, edgeTarget)
			if visited.AddIndex(t) {
				queue = append(queue, item{t, cur.depth + 1})
			}
		}
	}
	return nil
}

// DepthFirst visits vertices reachable from root over outgoing edges in
// depth-first preorder, following edges in adjacency-list order.
func DepthFirst(g Graph, root *Vertex, fn VisitFunc) error {
	vp := g.VertexPool()
	if err := vp.check(root); err != nil {
		return err
	}

	visited := pool.NewRefSet(vp.objs)
	ref := vp.CreateRef()
	defer vp.ReleaseRef(ref)

	type frame struct {
		idx   mempool.Index
		depth int
	}
	stack := []frame{{root.Index(), 0}}
	var children []mempool.Index

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visited.AddIndex(cur.idx) {
			continue
		}

		v, _ := vp.Object(cur.idx, ref)
		if !fn(v, cur.depth) {
			return nil
		}

		children = children[:0]
		for e := vp.firstOut(cur.idx); e != mempool.Nil; e = vp.edges.emem.ReadInt32(e, edgeNextSource) {
			children = append(children, vp.edges.emem.ReadInt32(e, edgeTarget))
		}
		// Push in reverse so the first outgoing edge is explored first.
		for i := len(children) - 1; i >= 0; i-- {
			if !visited.ContainsIndex(children[i]) {
				stack = append(stack, frame{children[i], cur.depth + 1})
			}
		}
	}
	return nil
}
