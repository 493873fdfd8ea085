package testutil

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/poolgraph/graph"
	"github.com/hupe1980/poolgraph/mempool"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Zipf samples values in [0, n) with P(k) ∝ 1/(k+1)^s. s=0 is uniform, larger
// s concentrates mass on small k. This is how hub-heavy real-world graphs are
// distributed.
type Zipf struct {
	rng *RNG
	cdf []float64
}

// NewZipf precomputes the distribution over n values.
func (r *RNG) NewZipf(n int, s float64) *Zipf {
	cdf := make([]float64, max(n, 1))
	var sum float64
	for k := range cdf {
		sum += 1.0 / math.Pow(float64(k+1), s)
		cdf[k] = sum
	}
	for k := range cdf {
		cdf[k] /= sum
	}
	return &Zipf{rng: r, cdf: cdf}
}

// Next returns the next sample.
func (z *Zipf) Next() int {
	u := z.rng.Float64()
	i := sort.SearchFloat64s(z.cdf, u)
	return min(i, len(z.cdf)-1)
}

// RandomGraph adds n vertices and up to m edges to g. Edge sources follow a
// Zipf distribution with skew s so a few vertices become hubs; targets are
// uniform. Duplicate pairs are skipped, so fewer than m edges may be created
// for dense requests. It returns handles of the created vertices.
func RandomGraph(g graph.Graph, rng *RNG, n, m int, s float64) ([]mempool.Handle, error) {
	ref := g.VertexRef()
	defer g.ReleaseVertexRef(ref)

	handles := make([]mempool.Handle, n)
	for i := range handles {
		v, err := g.AddVertex(ref)
		if err != nil {
			return handles[:i], err
		}
		handles[i] = v.Handle()
	}
	if n == 0 {
		return handles, nil
	}

	src, tgt := g.VertexRef(), g.VertexRef()
	defer g.ReleaseVertexRef(src)
	defer g.ReleaseVertexRef(tgt)
	eref := g.EdgeRef()
	defer g.ReleaseEdgeRef(eref)

	vp := g.VertexPool()
	zipf := rng.NewZipf(n, s)
	for i := 0; i < m; i++ {
		if _, err := vp.Resolve(handles[zipf.Next()], src); err != nil {
			return handles, err
		}
		if _, err := vp.Resolve(handles[rng.Intn(n)], tgt); err != nil {
			return handles, err
		}
		if _, err := g.AddEdge(src, tgt, eref); err != nil && !errors.Is(err, graph.ErrEdgeExists) {
			return handles, err
		}
	}
	return handles, nil
}

// MutationStats counts the operations applied by Mutate.
type MutationStats struct {
	VerticesAdded   int
	VerticesRemoved int
	EdgesAdded      int
	EdgesRemoved    int
	Duplicates      int
}

// Mutate applies ops random operations to g: vertex add/remove and edge
// add/remove in roughly equal shares. handles is the working set of vertex
// handles; it is updated in place and returned.
func Mutate(g graph.Graph, rng *RNG, handles []mempool.Handle, ops int) ([]mempool.Handle, MutationStats, error) {
	var st MutationStats
	vp := g.VertexPool()
	a, b := g.VertexRef(), g.VertexRef()
	defer g.ReleaseVertexRef(a)
	defer g.ReleaseVertexRef(b)
	eref := g.EdgeRef()
	defer g.ReleaseEdgeRef(eref)

	pick := func(ref *graph.Vertex) (int, bool) {
		if len(handles) == 0 {
			return -1, false
		}
		i := rng.Intn(len(handles))
		_, err := vp.Resolve(handles[i], ref)
		return i, err == nil
	}

	for op := 0; op < ops; op++ {
		switch rng.Intn(4) {
		case 0:
			v, err := g.AddVertex(a)
			if err != nil {
				return handles, st, err
			}
			handles = append(handles, v.Handle())
			st.VerticesAdded++
		case 1:
			i, ok := pick(a)
			if !ok || len(handles) < 2 {
				continue
			}
			if err := g.RemoveVertex(a); err != nil {
				return handles, st, err
			}
			handles[i] = handles[len(handles)-1]
			handles = handles[:len(handles)-1]
			st.VerticesRemoved++
		case 2:
			_, ok1 := pick(a)
			_, ok2 := pick(b)
			if !ok1 || !ok2 {
				continue
			}
			_, err := g.AddEdge(a, b, eref)
			switch {
			case errors.Is(err, graph.ErrEdgeExists):
				st.Duplicates++
			case err != nil:
				return handles, st, err
			default:
				st.EdgesAdded++
			}
		case 3:
			_, ok := pick(a)
			if !ok {
				continue
			}
			out := a.OutgoingEdges()
			n := out.Size()
			if n == 0 {
				continue
			}
			e, _ := out.Get(rng.Intn(n), eref)
			if err := g.RemoveEdge(e); err != nil {
				return handles, st, err
			}
			st.EdgesRemoved++
		}
	}
	return handles, st, nil
}
