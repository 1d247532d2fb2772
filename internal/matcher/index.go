// internal/matcher/index.go
package matcher

import (
	"sort"

	"github.com/flowmaps/featurematch/internal/expr"
	"github.com/flowmaps/featurematch/internal/feature"
)

/*
 * Key-based index construction and matching.
 *
 * Compilation assigns each rule a dense id in [1, N] in declaration order,
 * then derives two lookup tables from each expression's structure:
 *
 *   presence: tag key -> rules that could match when the key is present
 *   absence:  tag key -> rules that could match when the key is absent
 *
 * A query walks the absence table for keys the feature lacks, then the
 * presence table for keys it carries, evaluating only the reachable rules.
 * A per-query visited slice indexed by rule id guarantees each rule is
 * evaluated at most once even when reachable through several keys or both
 * tables. Compilation is single-threaded and one-shot; the compiled index
 * is immutable and safe for any number of concurrent readers because every
 * query owns its visited slice and result list.
 *
 * Output order follows traversal order (absence entries first, then
 * presence), not declaration order.
 */

// Match is the payload of a matching rule plus the tag keys that triggered
// the match.
type Match[T any] struct {
	Result T
	Keys   []string
}

// Index answers match queries against a compiled rule set.
type Index[T any] struct {
	impl indexer[T]
}

type indexer[T any] interface {
	matchesWithTriggers(f feature.Feature) []Match[T]
	isEmpty() bool
}

// Index compiles the rule set. An empty set compiles to a constant-empty
// index. When at least one rule contains a geometry-type test the result is
// a triple of geometry-specialized key indexes; otherwise a single flat key
// index.
func (rs RuleSet[T]) Index() Index[T] {
	if len(rs.entries) == 0 {
		return Index[T]{impl: emptyIndex[T]{}}
	}
	for _, entry := range rs.entries {
		if expr.Contains(entry.Expression, isMatchType) {
			return Index[T]{impl: newGeometryIndex(rs)}
		}
	}
	return Index[T]{impl: newKeyIndex(rs)}
}

func isMatchType(e expr.Expression) bool {
	_, ok := e.(expr.MatchType)
	return ok
}

// MatchesWithTriggers returns the payload and trigger keys of every matching
// rule, in traversal order.
func (ix Index[T]) MatchesWithTriggers(f feature.Feature) []Match[T] {
	return ix.impl.matchesWithTriggers(f)
}

// Matches returns just the payloads of every matching rule.
func (ix Index[T]) Matches(f feature.Feature) []T {
	matches := ix.impl.matchesWithTriggers(f)
	results := make([]T, len(matches))
	for i, m := range matches {
		results[i] = m.Result
	}
	return results
}

// GetOrElse returns the payload of the first matching rule, or defaultValue
// when nothing matches.
func (ix Index[T]) GetOrElse(f feature.Feature, defaultValue T) T {
	matches := ix.impl.matchesWithTriggers(f)
	if len(matches) == 0 {
		return defaultValue
	}
	return matches[0].Result
}

// GetOrElseTags is GetOrElse for a bare tag set with no geometry
// classification.
func (ix Index[T]) GetOrElseTags(tags map[string]string, defaultValue T) T {
	return ix.GetOrElse(feature.FromTags(tags), defaultValue)
}

// AnyMatch reports whether at least one rule matches.
func (ix Index[T]) AnyMatch(f feature.Feature) bool {
	return len(ix.impl.matchesWithTriggers(f)) > 0
}

// IsEmpty reports whether the index was compiled from an empty rule set.
// Callers use it to skip per-feature queries entirely when a profile
// defines no rules for some output.
func (ix Index[T]) IsEmpty() bool {
	return ix.impl.isEmpty()
}

type emptyIndex[T any] struct{}

func (emptyIndex[T]) matchesWithTriggers(feature.Feature) []Match[T] { return nil }
func (emptyIndex[T]) isEmpty() bool                                  { return true }

// indexedEntry is a rule annotated with the dense id used for per-query
// visited bookkeeping.
type indexedEntry[T any] struct {
	result     T
	expression expr.Expression
	id         int
}

type keyEntries[T any] struct {
	key     string
	entries []*indexedEntry[T]
}

type keyIndex[T any] struct {
	numRules int
	// presence map for lookup by input key; presenceList for iteration when
	// the input carries most of the indexed vocabulary.
	presence     map[string][]*indexedEntry[T]
	presenceList []keyEntries[T]
	absenceList  []keyEntries[T]
}

func newKeyIndex[T any](rs RuleSet[T]) *keyIndex[T] {
	presence := make(map[string][]*indexedEntry[T])
	absence := make(map[string][]*indexedEntry[T])

	id := 0
	for _, entry := range rs.entries {
		id++
		indexed := &indexedEntry[T]{result: entry.Result, expression: entry.Expression, id: id}
		// relevantKeys dedupes per rule, so each bucket holds a rule at most
		// once and bucket order stays declaration order.
		for _, key := range relevantKeys(entry.Expression) {
			presence[key] = append(presence[key], indexed)
		}
		for _, key := range relevantMissingKeys(entry.Expression) {
			absence[key] = append(absence[key], indexed)
		}
	}

	return &keyIndex[T]{
		numRules:     id,
		presence:     presence,
		presenceList: freezeTable(presence),
		absenceList:  freezeTable(absence),
	}
}

// freezeTable converts a build-time table into a key-sorted iterable form so
// traversal order is reproducible across compiles of the same rule set.
func freezeTable[T any](table map[string][]*indexedEntry[T]) []keyEntries[T] {
	frozen := make([]keyEntries[T], 0, len(table))
	for key, entries := range table {
		frozen = append(frozen, keyEntries[T]{key: key, entries: entries})
	}
	sort.Slice(frozen, func(i, j int) bool { return frozen[i].key < frozen[j].key })
	return frozen
}

func (ix *keyIndex[T]) isEmpty() bool { return false }

func (ix *keyIndex[T]) matchesWithTriggers(f feature.Feature) []Match[T] {
	var result []Match[T]
	// ids are 1-based; index 0 is unused.
	visited := make([]bool, ix.numRules+1)

	for _, bucket := range ix.absenceList {
		if !f.HasTag(bucket.key) {
			result = visitEntries(f, result, visited, bucket.entries)
		}
	}

	tags := f.Tags()
	if len(tags) < len(ix.presence) {
		// Few input tags relative to the indexed vocabulary: look each tag up.
		// Sorted so repeated queries traverse in the same order.
		keys := make([]string, 0, len(tags))
		for key := range tags {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			result = visitEntries(f, result, visited, ix.presence[key])
		}
	} else {
		for _, bucket := range ix.presenceList {
			if _, ok := tags[bucket.key]; ok {
				result = visitEntries(f, result, visited, bucket.entries)
			}
		}
	}
	return result
}

// visitEntries evaluates each not-yet-visited entry against f, appending
// matches to result. Entries are marked visited regardless of outcome so a
// rule reachable through several keys is evaluated at most once per query.
func visitEntries[T any](f feature.Feature, result []Match[T], visited []bool, entries []*indexedEntry[T]) []Match[T] {
	for _, entry := range entries {
		if visited[entry.id] {
			continue
		}
		visited[entry.id] = true
		var matchKeys []string
		if expr.Evaluate(entry.expression, f, &matchKeys) {
			result = append(result, Match[T]{Result: entry.result, Keys: matchKeys})
		}
	}
	return result
}
