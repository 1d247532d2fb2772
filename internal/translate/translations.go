// internal/translate/translations.go

// Package translate downloads and caches wikidata name translations for
// elements carrying a wikidata tag, and serves them back to profiles during
// feature processing.
package translate

import (
	"regexp"
	"strconv"
)

var (
	qidPattern = regexp.MustCompile(`^Q([0-9]+)$`)
	iriPattern = regexp.MustCompile(`^http://www\.wikidata\.org/entity/Q([0-9]+)$`)
)

// ParseQID returns the numeric ID from a wikidata tag value like "Q9141",
// or 0 when the value does not parse.
func ParseQID(value string) int64 {
	m := qidPattern.FindStringSubmatch(value)
	if m == nil {
		return 0
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// parseIRIQID returns the numeric ID from a response IRI like
// "http://www.wikidata.org/entity/Q9141", or 0 when it does not parse.
func parseIRIQID(iri string) int64 {
	m := iriPattern.FindStringSubmatch(iri)
	if m == nil {
		return 0
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Translations maps wikidata QIDs to per-language names. Populate during a
// fetch run or Load, then read concurrently; Put during concurrent reads is
// not safe.
type Translations struct {
	data map[int64]map[string]string
}

// NewTranslations returns an empty translation table.
func NewTranslations() *Translations {
	return &Translations{data: make(map[int64]map[string]string)}
}

// Get returns the language-to-name map for qid, or nil when unknown.
func (t *Translations) Get(qid int64) map[string]string {
	return t.data[qid]
}

// Put stores a name for qid in lang.
func (t *Translations) Put(qid int64, lang, name string) {
	names := t.data[qid]
	if names == nil {
		names = make(map[string]string)
		t.data[qid] = names
	}
	names[lang] = name
}

// Len returns the number of QIDs with at least one stored name.
func (t *Translations) Len() int {
	return len(t.data)
}

// All returns the underlying table. Callers must not mutate it.
func (t *Translations) All() map[int64]map[string]string {
	return t.data
}

// NameTranslations returns the translations for the element described by
// tags, keyed off its wikidata tag, or nil when the element has no usable
// wikidata tag or no stored translations.
func (t *Translations) NameTranslations(tags map[string]string) map[string]string {
	qid := ParseQID(tags["wikidata"])
	if qid <= 0 {
		return nil
	}
	return t.Get(qid)
}
