// internal/geo/pointindex.go

// Package geo provides a thin nearest-neighbor index over point geometries.
package geo

import (
	"math"

	"github.com/tidwall/rtree"
)

// Point is a coordinate in the index's planar reference system.
type Point struct {
	X float64
	Y float64
}

func (p Point) distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

type pointWithData[T any] struct {
	point Point
	data  T
}

// PointIndex answers proximity queries over (point, value) pairs. Build it
// single-threaded, then query from any number of readers; Put during
// concurrent queries is not safe.
type PointIndex[T any] struct {
	tree rtree.RTreeG[pointWithData[T]]
}

// NewPointIndex creates an empty index.
func NewPointIndex[T any]() *PointIndex[T] {
	return &PointIndex[T]{}
}

// Put inserts a value at a point. Multiple values may share a point.
func (ix *PointIndex[T]) Put(p Point, item T) {
	ix.tree.Insert([2]float64{p.X, p.Y}, [2]float64{p.X, p.Y}, pointWithData[T]{point: p, data: item})
}

// PutAll inserts the same value at every point, like a multi-point geometry.
func (ix *PointIndex[T]) PutAll(points []Point, item T) {
	for _, p := range points {
		ix.Put(p, item)
	}
}

// GetWithin returns every value within threshold distance of p, unordered.
func (ix *PointIndex[T]) GetWithin(p Point, threshold float64) []T {
	var result []T
	ix.search(p, threshold, func(candidate pointWithData[T], distance float64) {
		if distance <= threshold {
			result = append(result, candidate.data)
		}
	})
	return result
}

// GetNearest returns the value closest to p among those within threshold
// distance, and whether one was found.
func (ix *PointIndex[T]) GetNearest(p Point, threshold float64) (T, bool) {
	var nearest T
	found := false
	nearestDistance := math.MaxFloat64
	ix.search(p, threshold, func(candidate pointWithData[T], distance float64) {
		if distance < nearestDistance {
			nearest = candidate.data
			nearestDistance = distance
			found = true
		}
	})
	return nearest, found
}

// Len returns the number of indexed entries.
func (ix *PointIndex[T]) Len() int {
	return ix.tree.Len()
}

// search visits every entry whose bounding envelope intersects the
// threshold box around p. The envelope overshoots at the corners, so
// visitors receive the exact distance to filter on.
func (ix *PointIndex[T]) search(p Point, threshold float64, visit func(pointWithData[T], float64)) {
	min := [2]float64{p.X - threshold, p.Y - threshold}
	max := [2]float64{p.X + threshold, p.Y + threshold}
	ix.tree.Search(min, max, func(_, _ [2]float64, value pointWithData[T]) bool {
		visit(value, p.distance(value.point))
		return true
	})
}
