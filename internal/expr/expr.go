// internal/expr/expr.go
package expr

import (
	"github.com/flowmaps/featurematch/internal/feature"
)

/*
 * Boolean expression tree over feature tags and geometry classification.
 *
 * The node set is closed: And, Or, Not, MatchField (tag equality), MatchAny
 * (tag membership, optionally matching when the tag is missing), MatchType
 * (geometry class test), plus the True/False constants produced by folding.
 * Every operation on the tree is an exhaustive type switch; adding a node
 * kind means touching Evaluate, Simplify, Replace, Contains, Equal, and the
 * key-extraction walk in internal/matcher.
 *
 * Evaluate reports trigger keys: every tag key whose value contributed to a
 * positive result is appended to the caller-supplied list. Keys under a Not
 * subtree never contribute, and a rule matching because a tag is absent has
 * no key to report.
 *
 * Expressions are immutable after construction. Simplify and Replace return
 * new trees and never mutate their input, which is what makes compiled
 * indexes in internal/matcher safe for concurrent readers.
 */

// Geometry identifies one of the three geometry classes a MatchType node
// can test for.
type Geometry int

const (
	GeometryPoint Geometry = iota
	GeometryLine
	GeometryPolygon
)

// String returns the lowercase class name, matching profile definitions.
func (g Geometry) String() string {
	switch g {
	case GeometryPoint:
		return "point"
	case GeometryLine:
		return "line"
	case GeometryPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Expression is a node in a boolean predicate tree. The implementing types
// form a closed set; external packages cannot add node kinds.
type Expression interface {
	expression()
}

// And matches when every child matches. An empty And is equivalent to True.
type And struct {
	Children []Expression
}

// Or matches when at least one child matches. An empty Or is equivalent to
// False.
type Or struct {
	Children []Expression
}

// Not matches when its child does not. Trigger keys collected under the
// child are discarded.
type Not struct {
	Child Expression
}

// MatchField matches when the tag Field is present with exactly Value.
type MatchField struct {
	Field string
	Value string
}

// MatchAny matches when the tag Field carries one of Values. With
// MatchWhenMissing set it also matches when Field is absent entirely.
type MatchAny struct {
	Field            string
	Values           []string
	MatchWhenMissing bool
}

// MatchType matches when the feature can be interpreted as the given
// geometry class.
type MatchType struct {
	Geometry Geometry
}

type constant bool

// True and False are the constants produced and consumed by Simplify.
// Comparisons against them are by value: any expression that folds to a
// constant is equal to one of these two.
var (
	True  Expression = constant(true)
	False Expression = constant(false)
)

func (And) expression()        {}
func (Or) expression()         {}
func (Not) expression()        {}
func (MatchField) expression() {}
func (MatchAny) expression()   {}
func (MatchType) expression()  {}
func (constant) expression()   {}

// AndOf is a convenience constructor for And.
func AndOf(children ...Expression) Expression {
	return And{Children: children}
}

// OrOf is a convenience constructor for Or.
func OrOf(children ...Expression) Expression {
	return Or{Children: children}
}

// Evaluate tests e against f, appending every tag key that contributed to a
// positive result to matchKeys. matchKeys may be nil when the caller does
// not need triggers.
func Evaluate(e Expression, f feature.Feature, matchKeys *[]string) bool {
	switch node := e.(type) {
	case constant:
		return bool(node)
	case And:
		for _, child := range node.Children {
			if !Evaluate(child, f, matchKeys) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range node.Children {
			if Evaluate(child, f, matchKeys) {
				return true
			}
		}
		return false
	case Not:
		// Keys under a negation narrow the match, they do not trigger it.
		return !Evaluate(node.Child, f, nil)
	case MatchField:
		value, ok := f.GetTag(node.Field)
		if ok && value == node.Value {
			appendKey(matchKeys, node.Field)
			return true
		}
		return false
	case MatchAny:
		value, ok := f.GetTag(node.Field)
		if !ok {
			return node.MatchWhenMissing
		}
		for _, candidate := range node.Values {
			if value == candidate {
				appendKey(matchKeys, node.Field)
				return true
			}
		}
		return false
	case MatchType:
		switch node.Geometry {
		case GeometryPoint:
			return f.IsPoint()
		case GeometryLine:
			return f.CanBeLine()
		case GeometryPolygon:
			return f.CanBePolygon()
		default:
			return false
		}
	default:
		return false
	}
}

func appendKey(matchKeys *[]string, key string) {
	if matchKeys != nil {
		*matchKeys = append(*matchKeys, key)
	}
}
