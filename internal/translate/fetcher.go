// internal/translate/fetcher.go
package translate

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/flowmaps/featurematch/internal/metrics"
)

/*
 * Wikidata translation fetcher.
 *
 * Pipeline: source -> filter workers -> single fetch sink. The filter stage
 * counts elements by type and forwards the numeric QID of every element
 * carrying a parseable wikidata tag the profile cares about. The sink
 * deduplicates QIDs, batches them, and POSTs a SPARQL query per batch to the
 * configured endpoint, flushing each result batch to the store.
 *
 * Runs are incremental: LoadExisting replays previously stored translations
 * and marks their QIDs visited so only new elements cost a network round
 * trip.
 *
 * The sink is single-threaded on purpose, matching the endpoint's fair-use
 * expectations: one in-flight SPARQL request at a time.
 */

// DefaultEndpoint is the public wikidata SPARQL query service.
const DefaultEndpoint = "https://query.wikidata.org/bigdata/namespace/wdq/sparql"

// DefaultBatchSize is the number of QIDs per SPARQL request.
const DefaultBatchSize = 5000

const (
	readerQueueSize = 50_000
	fetchQueueSize  = 100_000
)

// Element is one input element: a type label (node/way/relation) and its
// tags.
type Element struct {
	Type string            `json:"type"`
	Tags map[string]string `json:"tags"`
}

// Source supplies elements to a fetch run.
type Source interface {
	// ReadElements calls each for every element until the source is
	// exhausted, each returns an error, or ctx is done.
	ReadElements(ctx context.Context, each func(Element) error) error
}

// Doer is the narrow HTTP client contract, so tests can stay offline.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Fetcher. Zero values fall back to defaults; a nil
// Client falls back to http.DefaultClient and a nil CaresAbout accepts every
// element.
type Options struct {
	Endpoint   string
	UserAgent  string
	BatchSize  int
	Client     Doer
	CaresAbout func(Element) bool
	Logger     zerolog.Logger
}

// Fetcher downloads name translations for wikidata QIDs and persists them
// through a Store.
type Fetcher struct {
	endpoint     string
	userAgent    string
	batchSize    int
	client       Doer
	caresAbout   func(Element) bool
	log          zerolog.Logger
	store        Store
	translations *Translations
	visited      map[int64]struct{}
	pending      []int64
	batches      int64
}

// NewFetcher creates a fetcher writing through store.
func NewFetcher(store Store, opts Options) *Fetcher {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Fetcher{
		endpoint:     opts.Endpoint,
		userAgent:    opts.UserAgent,
		batchSize:    opts.BatchSize,
		client:       opts.Client,
		caresAbout:   opts.CaresAbout,
		log:          opts.Logger,
		store:        store,
		translations: NewTranslations(),
		visited:      make(map[int64]struct{}),
		pending:      make([]int64, 0, opts.BatchSize),
	}
}

// Translations returns everything loaded or fetched so far. Read it after
// Run completes.
func (f *Fetcher) Translations() *Translations {
	return f.translations
}

// LoadExisting replays previously stored translations into the store's
// current run and marks their QIDs visited, making reruns incremental.
func (f *Fetcher) LoadExisting(ctx context.Context) error {
	existing, err := f.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load existing translations: %w", err)
	}
	if existing.Len() == 0 {
		return nil
	}
	f.log.Info().Int("mappings", existing.Len()).Msg("skipping mappings we already have")
	if err := f.store.WriteBatch(ctx, existing.All()); err != nil {
		return fmt.Errorf("failed to replay existing translations: %w", err)
	}
	for qid, names := range existing.All() {
		f.visited[qid] = struct{}{}
		for lang, name := range names {
			f.translations.Put(qid, lang, name)
		}
	}
	metrics.TranslationsCached.Add(float64(existing.Len()))
	return nil
}

// Run drains source through filterWorkers filter goroutines into the fetch
// sink, flushing the final partial batch before returning.
func (f *Fetcher) Run(ctx context.Context, source Source, filterWorkers int) error {
	if filterWorkers < 1 {
		filterWorkers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	elements := make(chan Element, readerQueueSize)
	qids := make(chan int64, fetchQueueSize)

	g.Go(func() error {
		defer close(elements)
		return source.ReadElements(ctx, func(e Element) error {
			select {
			case elements <- e:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	var filters sync.WaitGroup
	filters.Add(filterWorkers)
	for i := 0; i < filterWorkers; i++ {
		g.Go(func() error {
			defer filters.Done()
			return f.filter(ctx, elements, qids)
		})
	}
	go func() {
		filters.Wait()
		close(qids)
	}()

	g.Go(func() error {
		for qid := range qids {
			if err := f.fetch(ctx, qid); err != nil {
				return err
			}
		}
		return f.Flush(ctx)
	})

	return g.Wait()
}

// filter forwards the QID of every element the profile cares about.
func (f *Fetcher) filter(ctx context.Context, elements <-chan Element, qids chan<- int64) error {
	for element := range elements {
		switch element.Type {
		case metrics.ElementNode, metrics.ElementWay, metrics.ElementRelation:
			metrics.ElementsRead.WithLabelValues(element.Type).Inc()
		}
		value, ok := element.Tags["wikidata"]
		if !ok {
			continue
		}
		if f.caresAbout != nil && !f.caresAbout(element) {
			continue
		}
		qid := ParseQID(value)
		if qid <= 0 {
			continue
		}
		select {
		case qids <- qid:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// fetch queues a QID, flushing when a full batch has accumulated. Not safe
// for concurrent use; only the sink goroutine calls it.
func (f *Fetcher) fetch(ctx context.Context, qid int64) error {
	if _, ok := f.visited[qid]; ok {
		return nil
	}
	f.visited[qid] = struct{}{}
	f.pending = append(f.pending, qid)
	if len(f.pending) >= f.batchSize {
		return f.Flush(ctx)
	}
	return nil
}

// Flush downloads translations for all pending QIDs and writes them to the
// store.
func (f *Fetcher) Flush(ctx context.Context) error {
	if len(f.pending) == 0 {
		return nil
	}
	start := time.Now()
	results, err := f.queryWikidata(ctx, f.pending)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	metrics.FetchBatches.Inc()
	if err != nil {
		metrics.FetchErrors.Inc()
		return err
	}
	f.batches++
	f.log.Info().
		Int64("batch", f.batches).
		Int("qids", len(f.pending)).
		Dur("took", time.Since(start)).
		Msg("fetched batch")

	if err := f.store.WriteBatch(ctx, results); err != nil {
		return fmt.Errorf("failed to store batch: %w", err)
	}
	for qid, names := range results {
		for lang, name := range names {
			f.translations.Put(qid, lang, name)
		}
	}
	metrics.TranslationsFetched.Add(float64(len(f.pending)))
	f.pending = f.pending[:0]
	return nil
}

type sparqlResponse struct {
	Results struct {
		Bindings []struct {
			ID struct {
				Value string `json:"value"`
			} `json:"id"`
			Label struct {
				Lang  string `json:"xml:lang"`
				Value string `json:"value"`
			} `json:"label"`
		} `json:"bindings"`
	} `json:"results"`
}

// queryWikidata asks the SPARQL endpoint for the labels of a set of QIDs
// and returns a map from QID to language to name.
func (f *Fetcher) queryWikidata(ctx context.Context, qids []int64) (map[int64]map[string]string, error) {
	if len(qids) == 0 {
		return map[int64]map[string]string{}, nil
	}

	var list strings.Builder
	for i, qid := range qids {
		if i > 0 {
			list.WriteByte(' ')
		}
		fmt.Fprintf(&list, "wd:Q%d", qid)
	}
	query := fmt.Sprintf(
		"SELECT ?id ?label where { VALUES ?id { %s } ?id (owl:sameAs* / rdfs:label) ?label }",
		list.String(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("Content-Type", "application/sparql-query")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", f.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			body = []byte(fmt.Sprintf("error reading body: %v", readErr))
		}
		return nil, fmt.Errorf("error reading %d: %s", resp.StatusCode, body)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var parsed sparqlResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse sparql response: %w", err)
	}

	results := make(map[int64]map[string]string)
	for _, binding := range parsed.Results.Bindings {
		qid := parseIRIQID(binding.ID.Value)
		if qid == 0 {
			return nil, fmt.Errorf("unexpected response IRI: %s", binding.ID.Value)
		}
		names := results[qid]
		if names == nil {
			names = make(map[string]string)
			results[qid] = names
		}
		names[binding.Label.Lang] = binding.Label.Value
	}
	return results, nil
}

// decodeBody unwraps a gzip or deflate response body.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip body: %w", err)
		}
		return reader, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
