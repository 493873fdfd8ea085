package graph

import (
	"fmt"

	"github.com/hupe1980/poolgraph/mempool"
	"github.com/hupe1980/poolgraph/pool"
)

// FeatureSpec identifies a feature attached to vertices or edges.
type FeatureSpec struct {
	Key string
}

// Feature is per-entity state kept outside the arena records. Remove is called
// with the slot index of a vertex or edge before that slot is freed.
type Feature interface {
	Remove(idx mempool.Index)
}

// Clearer is implemented by features that can drop all state at once. It is
// called when the graph is cleared.
type Clearer interface {
	Clear()
}

// Features is the registry of vertex and edge features of one graph.
type Features struct {
	vertex map[string]Feature
	edge   map[string]Feature

	// registration order, used for cleanup
	vertexOrder []Feature
	edgeOrder   []Feature
}

// NewFeatures returns an empty registry.
func NewFeatures() *Features {
	return &Features{
		vertex: make(map[string]Feature),
		edge:   make(map[string]Feature),
	}
}

// RegisterVertexFeature attaches f to all vertices under spec.Key.
func (fs *Features) RegisterVertexFeature(spec FeatureSpec, f Feature) error {
	if _, ok := fs.vertex[spec.Key]; ok {
		return fmt.Errorf("%w: vertex feature %q", ErrFeatureExists, spec.Key)
	}
	fs.vertex[spec.Key] = f
	fs.vertexOrder = append(fs.vertexOrder, f)
	return nil
}

// RegisterEdgeFeature attaches f to all edges under spec.Key.
func (fs *Features) RegisterEdgeFeature(spec FeatureSpec, f Feature) error {
	if _, ok := fs.edge[spec.Key]; ok {
		return fmt.Errorf("%w: edge feature %q", ErrFeatureExists, spec.Key)
	}
	fs.edge[spec.Key] = f
	fs.edgeOrder = append(fs.edgeOrder, f)
	return nil
}

// Vertex returns the vertex feature registered under spec.Key.
func (fs *Features) Vertex(spec FeatureSpec) (Feature, bool) {
	f, ok := fs.vertex[spec.Key]
	return f, ok
}

// Edge returns the edge feature registered under spec.Key.
func (fs *Features) Edge(spec FeatureSpec) (Feature, bool) {
	f, ok := fs.edge[spec.Key]
	return f, ok
}

func (fs *Features) removeVertex(idx mempool.Index) {
	for _, f := range fs.vertexOrder {
		f.Remove(idx)
	}
}

func (fs *Features) removeEdge(idx mempool.Index) {
	for _, f := range fs.edgeOrder {
		f.Remove(idx)
	}
}

func (fs *Features) clear() {
	for _, f := range fs.vertexOrder {
		if c, ok := f.(Clearer); ok {
			c.Clear()
		}
	}
	for _, f := range fs.edgeOrder {
		if c, ok := f.(Clearer); ok {
			c.Clear()
		}
	}
}

// PropertyMap maps records to values of type T, keyed by slot index. Register it
// as a feature so entries disappear together with their record.
type PropertyMap[T any] struct {
	values map[mempool.Index]T
}

// NewPropertyMap returns an empty property map.
func NewPropertyMap[T any]() *PropertyMap[T] {
	return &PropertyMap[T]{values: make(map[mempool.Index]T)}
}

// Get returns the value stored for obj.
func (m *PropertyMap[T]) Get(obj pool.Proxy) (T, bool) {
	return m.GetIndex(obj.PoolAccess().Index())
}

// GetIndex returns the value stored for the record at idx.
func (m *PropertyMap[T]) GetIndex(idx mempool.Index) (T, bool) {
	v, ok := m.values[idx]
	return v, ok
}

// Set stores v for obj.
func (m *PropertyMap[T]) Set(obj pool.Proxy, v T) {
	m.values[obj.PoolAccess().Index()] = v
}

// Remove drops the value stored for the record at idx.
func (m *PropertyMap[T]) Remove(idx mempool.Index) {
	delete(m.values, idx)
}

// Len returns the number of stored values.
func (m *PropertyMap[T]) Len() int {
	return len(m.values)
}

// Clear drops all values.
func (m *PropertyMap[T]) Clear() {
	clear(m.values)
}
