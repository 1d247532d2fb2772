// internal/matcher/geometry.go
package matcher

import (
	"github.com/flowmaps/featurematch/internal/expr"
	"github.com/flowmaps/featurematch/internal/feature"
)

/*
 * Geometry-specialized index.
 *
 * One key index per geometry class. Each is compiled from a rule list where
 * geometry-type tests matching that class are folded to constant-true and
 * all other geometry-type tests to constant-false; simplification then
 * prunes rules that can never match the class, shrinking both compile size
 * and per-match cost.
 *
 * Dispatch: points query the point index; line-capable features query the
 * line index, plus the polygon index when the feature is also
 * polygon-capable (closed ways without an explicit area tag) with line
 * matches first; polygon-only features query the polygon index; features
 * with no classification at all fall back to the point index. The
 * line-then-polygon concatenation is the only ordering guarantee across
 * classes.
 */

type geometryIndex[T any] struct {
	point   *keyIndex[T]
	line    *keyIndex[T]
	polygon *keyIndex[T]
}

func newGeometryIndex[T any](rs RuleSet[T]) *geometryIndex[T] {
	return &geometryIndex[T]{
		point:   indexForGeometry(rs, expr.GeometryPoint),
		line:    indexForGeometry(rs, expr.GeometryLine),
		polygon: indexForGeometry(rs, expr.GeometryPolygon),
	}
}

func indexForGeometry[T any](rs RuleSet[T], geometry expr.Geometry) *keyIndex[T] {
	specialized := rs.
		Replace(expr.MatchType{Geometry: geometry}, expr.True).
		ReplaceIf(isMatchType, expr.False)
	return newKeyIndex(specialized)
}

func (ix *geometryIndex[T]) isEmpty() bool { return false }

func (ix *geometryIndex[T]) matchesWithTriggers(f feature.Feature) []Match[T] {
	switch {
	case f.IsPoint():
		return ix.point.matchesWithTriggers(f)
	case f.CanBeLine():
		result := ix.line.matchesWithTriggers(f)
		if f.CanBePolygon() {
			result = append(result, ix.polygon.matchesWithTriggers(f)...)
		}
		return result
	case f.CanBePolygon():
		return ix.polygon.matchesWithTriggers(f)
	default:
		// degenerate or empty geometry
		return ix.point.matchesWithTriggers(f)
	}
}
