// internal/matcher/ruleset.go
package matcher

import (
	"github.com/flowmaps/featurematch/internal/expr"
)

/*
 * Rule sets: ordered (payload, expression) lists and their transforms.
 *
 * A RuleSet is the declared-order source of truth a profile registers at
 * startup. All transforms are pure: they return a new rule set and never
 * mutate the receiver or any compiled index built from it. Map simplifies
 * every transformed expression and drops rules that fold to constant-false,
 * which is how geometry specialization eliminates rules that cannot match a
 * given geometry class.
 */

// Entry is a single registered rule: an opaque payload returned on match and
// the expression deciding the match.
type Entry[T any] struct {
	Result     T
	Expression expr.Expression
}

// Rule constructs an Entry.
func Rule[T any](result T, expression expr.Expression) Entry[T] {
	return Entry[T]{Result: result, Expression: expression}
}

// RuleSet is an ordered, immutable list of rules.
type RuleSet[T any] struct {
	entries []Entry[T]
}

// New builds a rule set from entries in declaration order.
func New[T any](entries ...Entry[T]) RuleSet[T] {
	return RuleSet[T]{entries: entries}
}

// Entries returns the rules in declaration order. Callers must not mutate
// the result.
func (rs RuleSet[T]) Entries() []Entry[T] {
	return rs.entries
}

// Len returns the number of rules.
func (rs RuleSet[T]) Len() int {
	return len(rs.entries)
}

// Map applies fn to every rule's expression, simplifies the result, and
// drops rules whose expression folds to constant-false.
func (rs RuleSet[T]) Map(fn func(expr.Expression) expr.Expression) RuleSet[T] {
	entries := make([]Entry[T], 0, len(rs.entries))
	for _, entry := range rs.entries {
		simplified := expr.Simplify(fn(entry.Expression))
		if expr.Equal(simplified, expr.False) {
			continue
		}
		entries = append(entries, Entry[T]{Result: entry.Result, Expression: simplified})
	}
	return RuleSet[T]{entries: entries}
}

// ReplaceIf substitutes every sub-expression matched by test with
// replacement, then simplifies and prunes like Map.
func (rs RuleSet[T]) ReplaceIf(test func(expr.Expression) bool, replacement expr.Expression) RuleSet[T] {
	return rs.Map(func(e expr.Expression) expr.Expression {
		return expr.Replace(e, test, replacement)
	})
}

// Replace substitutes every sub-expression structurally equal to a with b,
// then simplifies and prunes like Map.
func (rs RuleSet[T]) Replace(a, b expr.Expression) RuleSet[T] {
	return rs.ReplaceIf(func(e expr.Expression) bool {
		return expr.Equal(e, a)
	}, b)
}

// Simplify constant-folds every rule's expression without removing rules
// that fold to constant-false.
func (rs RuleSet[T]) Simplify() RuleSet[T] {
	entries := make([]Entry[T], len(rs.entries))
	for i, entry := range rs.entries {
		entries[i] = Entry[T]{Result: entry.Result, Expression: expr.Simplify(entry.Expression)}
	}
	return RuleSet[T]{entries: entries}
}

// FilterResults keeps only the rules whose payload passes accept.
func (rs RuleSet[T]) FilterResults(accept func(T) bool) RuleSet[T] {
	entries := make([]Entry[T], 0, len(rs.entries))
	for _, entry := range rs.entries {
		if accept(entry.Result) {
			entries = append(entries, entry)
		}
	}
	return RuleSet[T]{entries: entries}
}

// MapResults replaces every rule's payload using fn, leaving expressions
// untouched. A package function because the payload type changes.
func MapResults[T, U any](rs RuleSet[T], fn func(T) U) RuleSet[U] {
	entries := make([]Entry[U], len(rs.entries))
	for i, entry := range rs.entries {
		entries[i] = Entry[U]{Result: fn(entry.Result), Expression: entry.Expression}
	}
	return RuleSet[U]{entries: entries}
}
