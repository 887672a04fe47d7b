package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/metrics"
	"github.com/songslide/songslide/internal/ranking"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

const (
	// MaxResults caps the ranked list returned per search.
	MaxResults = 50
	// SuggestionCandidates is how many candidates feed fuzzy suggestions.
	SuggestionCandidates = 250
	// SuggestionLimit caps the suggestions returned per search.
	SuggestionLimit = 8
	// DefaultWeightsTTL is how long loaded weights are reused.
	DefaultWeightsTTL = 60 * time.Second
)

// Result is the output of one search.
type Result struct {
	Query       string               `json:"query"`
	Weights     data.Weights         `json:"weights"`
	Results     []ranking.Result     `json:"results"`
	Suggestions []ranking.Suggestion `json:"suggestions"`
	Candidates  int                  `json:"-"`
	Duration    time.Duration        `json:"-"`
}

// Searcher runs a search end-to-end.
type Searcher interface {
	Search(ctx context.Context, query string, includeSuggestions bool) (*Result, error)
}

// Engine fetches candidates and weights from a DataSource and ranks them.
// It is safe for concurrent use.
type Engine struct {
	ds         data.DataSource
	ranker     *ranking.Ranker
	logger     *slog.Logger
	weightsTTL time.Duration
	now        func() time.Time

	mu       sync.Mutex
	weights  *data.Weights
	loadedAt time.Time
	gen      uint64 // bumped by InvalidateWeights
}

// Option configures an Engine.
type Option func(*Engine)

// WithRanker sets the ranker, e.g. one collating titles for the catalog's language.
func WithRanker(r *ranking.Ranker) Option { return func(e *Engine) { e.ranker = r } }

// WithLogger sets the logger used for degraded-mode warnings.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithWeightsTTL sets how long loaded weights are reused. Zero disables reuse.
func WithWeightsTTL(d time.Duration) Option { return func(e *Engine) { e.weightsTTL = d } }

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New builds an Engine over ds.
func New(ds data.DataSource, opts ...Option) *Engine {
	e := &Engine{
		ds:         ds,
		ranker:     ranking.NewRanker(language.Und),
		logger:     slog.Default(),
		weightsTTL: DefaultWeightsTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CandidateLimit is how many candidates to fetch for query. Short queries
// match broadly, so they pull fewer.
func CandidateLimit(query string) int {
	switch n := utf8.RuneCountInString(strings.TrimSpace(query)); {
	case n <= 1:
		return 300
	case n == 2:
		return 450
	default:
		return 650
	}
}

// ParseIncludeSuggestions reads the includeSuggestions request flag. Absent
// or unrecognized values mean true.
func ParseIncludeSuggestions(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "false", "no", "off":
		return false
	}
	return true
}

// Search ranks candidates for query. Results are capped at MaxResults;
// suggestions come from the first SuggestionCandidates candidates.
func (e *Engine) Search(ctx context.Context, query string, includeSuggestions bool) (*Result, error) {
	start := e.now()
	query = strings.TrimSpace(query)
	if query == "" {
		return &Result{
			Query:       query,
			Weights:     ranking.DefaultWeights,
			Results:     []ranking.Result{},
			Suggestions: []ranking.Suggestion{},
		}, nil
	}

	var (
		candidates []*data.Song
		weights    data.Weights
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = e.ds.SearchCandidates(gctx, query, CandidateLimit(query))
		return err
	})
	g.Go(func() error {
		weights = e.Weights(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.IncSearchErrors()
		return nil, err
	}

	results := e.ranker.Rank(candidates, query, weights)
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	suggestions := []ranking.Suggestion{}
	if includeSuggestions {
		pool := candidates
		if len(pool) > SuggestionCandidates {
			pool = pool[:SuggestionCandidates]
		}
		suggestions = e.ranker.Suggest(pool, query, weights, SuggestionLimit)
	}

	out := &Result{
		Query:       query,
		Weights:     weights,
		Results:     results,
		Suggestions: suggestions,
		Candidates:  len(candidates),
		Duration:    e.now().Sub(start),
	}
	metrics.ObserveSearch(includeSuggestions, out.Duration, out.Candidates, len(out.Results))
	return out, nil
}

// Weights returns the current weights, reloading them from the store once
// the TTL has passed. A failed load falls back to the defaults and is
// retried on the next call.
func (e *Engine) Weights(ctx context.Context) data.Weights {
	e.mu.Lock()
	if e.weights != nil && e.now().Sub(e.loadedAt) < e.weightsTTL {
		w := *e.weights
		e.mu.Unlock()
		return w
	}
	gen := e.gen
	e.mu.Unlock()

	partial, err := e.ds.LatestWeights(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// The search was abandoned; the store did not fail.
			return ranking.DefaultWeights
		}
		metrics.IncWeightLoadFailures()
		e.logger.Warn("loading search weights failed, using defaults", "err", err)
		return ranking.DefaultWeights
	}
	w := ranking.MergeWithDefaults(partial)
	if err := ranking.ValidateWeights(w); err != nil {
		metrics.IncWeightLoadFailures()
		e.logger.Warn("stored search weights are invalid, using defaults", "err", err)
		return ranking.DefaultWeights
	}

	e.mu.Lock()
	if e.gen == gen {
		e.weights = &w
		e.loadedAt = e.now()
	}
	e.mu.Unlock()
	return w
}

// InvalidateWeights drops the cached weights so the next search reloads them.
// A load already in flight is not cached.
func (e *Engine) InvalidateWeights() {
	e.mu.Lock()
	e.weights = nil
	e.gen++
	e.mu.Unlock()
}
