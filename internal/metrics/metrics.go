// internal/metrics/metrics.go

// Package metrics exposes prometheus instrumentation for the translation
// fetch pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ElementsRead counts source elements seen by the filter stage, by type.
	ElementsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featurematch_elements_read_total",
			Help: "Total number of source elements read, by element type",
		},
		[]string{"type"},
	)

	// TranslationsFetched counts QIDs whose translations were downloaded.
	TranslationsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "featurematch_translations_fetched_total",
			Help: "Total number of wikidata QIDs fetched",
		},
	)

	// TranslationsCached counts QIDs skipped because a previous run already
	// stored them.
	TranslationsCached = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "featurematch_translations_cached_total",
			Help: "Total number of wikidata QIDs served from the local store",
		},
	)

	// FetchBatches counts SPARQL batch requests issued.
	FetchBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "featurematch_fetch_batches_total",
			Help: "Total number of SPARQL batch requests",
		},
	)

	// FetchErrors counts failed SPARQL batch requests.
	FetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "featurematch_fetch_errors_total",
			Help: "Total number of failed SPARQL batch requests",
		},
	)

	// FetchDuration tracks SPARQL batch request duration.
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "featurematch_fetch_duration_seconds",
			Help:    "SPARQL batch request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Element type label values.
const (
	ElementNode     = "node"
	ElementWay      = "way"
	ElementRelation = "relation"
)
