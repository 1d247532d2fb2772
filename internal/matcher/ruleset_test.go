// internal/matcher/ruleset_test.go
package matcher

import (
	"reflect"
	"strings"
	"testing"

	"github.com/flowmaps/featurematch/internal/expr"
	"github.com/flowmaps/featurematch/internal/feature"
)

func TestRuleSet_MapDropsConstantFalse(t *testing.T) {
	rs := New(
		Rule("polygon", expr.AndOf(
			expr.MatchType{Geometry: expr.GeometryPolygon},
			expr.MatchField{Field: "building", Value: "yes"},
		)),
		Rule("plain", expr.MatchField{Field: "highway", Value: "primary"}),
	)

	// Fold all geometry tests to false: the polygon rule dies, the plain
	// rule survives untouched.
	mapped := rs.ReplaceIf(func(e expr.Expression) bool {
		_, ok := e.(expr.MatchType)
		return ok
	}, expr.False)

	if mapped.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", mapped.Len())
	}
	if mapped.Entries()[0].Result != "plain" {
		t.Errorf("surviving rule = %v, want plain", mapped.Entries()[0].Result)
	}
	// original untouched
	if rs.Len() != 2 {
		t.Errorf("original Len() = %d, want 2", rs.Len())
	}
}

func TestRuleSet_ReplaceValueForm(t *testing.T) {
	rs := New(
		Rule("r", expr.AndOf(
			expr.MatchType{Geometry: expr.GeometryLine},
			expr.MatchField{Field: "highway", Value: "primary"},
		)),
	)

	replaced := rs.Replace(expr.MatchType{Geometry: expr.GeometryLine}, expr.True)

	want := expr.MatchField{Field: "highway", Value: "primary"}
	if got := replaced.Entries()[0].Expression; !expr.Equal(got, want) {
		t.Errorf("Expression = %#v, want %#v", got, want)
	}
}

func TestRuleSet_SimplifyKeepsAllRules(t *testing.T) {
	rs := New(
		Rule("dead", expr.AndOf(expr.MatchField{Field: "a", Value: "1"}, expr.False)),
		Rule("live", expr.OrOf(expr.False, expr.MatchField{Field: "b", Value: "2"})),
	)

	simplified := rs.Simplify()
	if simplified.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (simplify never removes rules)", simplified.Len())
	}
	if !expr.Equal(simplified.Entries()[0].Expression, expr.False) {
		t.Errorf("dead rule = %#v, want False", simplified.Entries()[0].Expression)
	}
	if !expr.Equal(simplified.Entries()[1].Expression, expr.MatchField{Field: "b", Value: "2"}) {
		t.Errorf("live rule = %#v, want MatchField", simplified.Entries()[1].Expression)
	}
}

func TestRuleSet_FilterResults(t *testing.T) {
	rs := New(
		Rule("keep-a", expr.MatchField{Field: "a", Value: "1"}),
		Rule("drop-b", expr.MatchField{Field: "b", Value: "2"}),
		Rule("keep-c", expr.MatchField{Field: "c", Value: "3"}),
	)

	filtered := rs.FilterResults(func(payload string) bool {
		return strings.HasPrefix(payload, "keep")
	})

	var got []string
	for _, entry := range filtered.Entries() {
		got = append(got, entry.Result)
	}
	if !reflect.DeepEqual(got, []string{"keep-a", "keep-c"}) {
		t.Errorf("FilterResults() kept %v, want [keep-a keep-c]", got)
	}
}

func TestMapResults_ChangesPayloadType(t *testing.T) {
	rs := New(
		Rule("primary", expr.MatchField{Field: "highway", Value: "primary"}),
	)

	mapped := MapResults(rs, func(payload string) int {
		return len(payload)
	})

	index := mapped.Index()
	got := index.Matches(feature.FromTags(map[string]string{"highway": "primary"}))
	if !reflect.DeepEqual(got, []int{len("primary")}) {
		t.Errorf("Matches() = %v, want [%d]", got, len("primary"))
	}
	// expressions untouched
	if !expr.Equal(mapped.Entries()[0].Expression, rs.Entries()[0].Expression) {
		t.Errorf("MapResults() modified an expression")
	}
}

func TestRelevantKeys(t *testing.T) {
	tests := []struct {
		name        string
		e           expr.Expression
		want        []string
		wantMissing []string
	}{
		{
			name: "equality leaf",
			e:    expr.MatchField{Field: "highway", Value: "primary"},
			want: []string{"highway"},
		},
		{
			name: "membership leaf",
			e:    expr.MatchAny{Field: "natural", Values: []string{"wood"}},
			want: []string{"natural"},
		},
		{
			name:        "match when missing contributes to both walks",
			e:           expr.MatchAny{Field: "natural", MatchWhenMissing: true},
			want:        []string{"natural"},
			wantMissing: []string{"natural"},
		},
		{
			name: "negation subtree is opaque",
			e: expr.AndOf(
				expr.MatchField{Field: "highway", Value: "primary"},
				expr.Not{Child: expr.MatchField{Field: "access", Value: "private"}},
			),
			want: []string{"highway"},
		},
		{
			name: "negated missing-match is opaque to the missing walk",
			e:    expr.Not{Child: expr.MatchAny{Field: "natural", MatchWhenMissing: true}},
		},
		{
			name: "duplicate key collected once",
			e: expr.OrOf(
				expr.MatchField{Field: "highway", Value: "primary"},
				expr.MatchField{Field: "highway", Value: "secondary"},
			),
			want: []string{"highway"},
		},
		{
			name: "geometry test contributes nothing",
			e:    expr.MatchType{Geometry: expr.GeometryPolygon},
		},
		{
			name: "nested missing-match under disjunction",
			e: expr.OrOf(
				expr.MatchField{Field: "highway", Value: "primary"},
				expr.AndOf(expr.MatchAny{Field: "landuse", MatchWhenMissing: true}),
			),
			want:        []string{"highway", "landuse"},
			wantMissing: []string{"landuse"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := relevantKeys(tt.e)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("relevantKeys() = %v, want %v", got, tt.want)
			}
			gotMissing := relevantMissingKeys(tt.e)
			if !reflect.DeepEqual(gotMissing, tt.wantMissing) {
				t.Errorf("relevantMissingKeys() = %v, want %v", gotMissing, tt.wantMissing)
			}
		})
	}
}
