// internal/geo/pointindex_test.go
package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointIndex_GetWithin(t *testing.T) {
	ix := NewPointIndex[string]()
	ix.Put(Point{X: 0, Y: 0}, "origin")
	ix.Put(Point{X: 1, Y: 0}, "east")
	ix.Put(Point{X: 0, Y: 2}, "north")
	ix.Put(Point{X: 10, Y: 10}, "far")

	got := ix.GetWithin(Point{X: 0, Y: 0}, 1.5)
	assert.ElementsMatch(t, []string{"origin", "east"}, got)
}

func TestPointIndex_GetWithinExcludesEnvelopeCorners(t *testing.T) {
	// Inside the search box but outside the circular threshold.
	ix := NewPointIndex[string]()
	ix.Put(Point{X: 1, Y: 1}, "corner")

	assert.Empty(t, ix.GetWithin(Point{X: 0, Y: 0}, 1.2))
	assert.Equal(t, []string{"corner"}, ix.GetWithin(Point{X: 0, Y: 0}, 1.5))
}

func TestPointIndex_GetNearest(t *testing.T) {
	ix := NewPointIndex[string]()
	ix.Put(Point{X: 3, Y: 0}, "near")
	ix.Put(Point{X: 5, Y: 0}, "farther")

	got, ok := ix.GetNearest(Point{X: 0, Y: 0}, 10)
	assert.True(t, ok)
	assert.Equal(t, "near", got)
}

func TestPointIndex_GetNearestNoneInRange(t *testing.T) {
	ix := NewPointIndex[string]()
	ix.Put(Point{X: 100, Y: 100}, "far")

	_, ok := ix.GetNearest(Point{X: 0, Y: 0}, 5)
	assert.False(t, ok)
}

func TestPointIndex_PutAll(t *testing.T) {
	ix := NewPointIndex[int]()
	ix.PutAll([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, 7)

	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, []int{7}, ix.GetWithin(Point{X: 0, Y: 0}, 1))
	assert.Equal(t, []int{7}, ix.GetWithin(Point{X: 10, Y: 0}, 1))
}

func TestPointIndex_Empty(t *testing.T) {
	ix := NewPointIndex[string]()
	assert.Empty(t, ix.GetWithin(Point{X: 0, Y: 0}, 100))
	_, ok := ix.GetNearest(Point{X: 0, Y: 0}, 100)
	assert.False(t, ok)
}
