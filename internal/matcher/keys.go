// internal/matcher/keys.go
package matcher

import (
	"github.com/flowmaps/featurematch/internal/expr"
)

// relevantKeys returns, deduplicated and in first-appearance order, every
// tag key whose presence could cause e to match. Negation subtrees are
// treated as opaque: they only narrow matches, so their keys never make a
// rule reachable on their own.
func relevantKeys(e expr.Expression) []string {
	var keys []string
	seen := make(map[string]struct{})
	accept := func(key string) {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	collectKeys(e, accept)
	return keys
}

func collectKeys(e expr.Expression, accept func(string)) {
	switch node := e.(type) {
	case expr.And:
		for _, child := range node.Children {
			collectKeys(child, accept)
		}
	case expr.Or:
		for _, child := range node.Children {
			collectKeys(child, accept)
		}
	case expr.Not:
		// purely a filter, contributes no keys
	case expr.MatchField:
		accept(node.Field)
	case expr.MatchAny:
		accept(node.Field)
	}
}

// relevantMissingKeys returns every tag key whose absence could cause e to
// match: the fields of MatchAny leaves configured to match when missing.
func relevantMissingKeys(e expr.Expression) []string {
	var keys []string
	seen := make(map[string]struct{})
	accept := func(key string) {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	collectMissingKeys(e, accept)
	return keys
}

func collectMissingKeys(e expr.Expression, accept func(string)) {
	switch node := e.(type) {
	case expr.And:
		for _, child := range node.Children {
			collectMissingKeys(child, accept)
		}
	case expr.Or:
		for _, child := range node.Children {
			collectMissingKeys(child, accept)
		}
	case expr.Not:
		// purely a filter, contributes no keys
	case expr.MatchAny:
		if node.MatchWhenMissing {
			accept(node.Field)
		}
	}
}
