// Package engine orchestrates the intent classifiers and the catalog
// matcher into one ranked result list. Search is pure, synchronous, and
// total: every failure degrades to an empty contribution, so it is safe to
// call on every keystroke.
package engine

import (
	"strings"

	"github.com/runger/beacon/internal/catalog"
	"github.com/runger/beacon/internal/intent"
	"github.com/runger/beacon/internal/match"
	"github.com/runger/beacon/internal/result"
	"github.com/runger/beacon/internal/usage"
)

// DefaultMaxResults caps catalog rows when no explicit limit is configured.
const DefaultMaxResults = 8

// Engine resolves queries against a catalog snapshot and usage counts.
type Engine struct {
	catalog    *catalog.Holder
	usage      usage.Reader
	calc       *intent.Calculator
	web        *intent.WebSearcher
	maxResults int
	noFuzzy    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxResults overrides the catalog row cap. Zero is honored as a
// degenerate "no catalog rows" configuration; negative values fall back to
// the default.
func WithMaxResults(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxResults = n
		}
	}
}

// WithFuzzySearch toggles the subsequence and substring matcher tiers.
func WithFuzzySearch(enabled bool) Option {
	return func(e *Engine) {
		e.noFuzzy = !enabled
	}
}

// WithCalculator overrides the calculator classifier.
func WithCalculator(c *intent.Calculator) Option {
	return func(e *Engine) {
		if c != nil {
			e.calc = c
		}
	}
}

// WithWebSearcher overrides the web-shortcut classifier.
func WithWebSearcher(w *intent.WebSearcher) Option {
	return func(e *Engine) {
		if w != nil {
			e.web = w
		}
	}
}

// New builds an Engine over the given catalog holder and usage reader.
func New(holder *catalog.Holder, reader usage.Reader, opts ...Option) *Engine {
	if holder == nil {
		holder = catalog.NewHolder()
	}
	if reader == nil {
		reader = usage.MemReader{}
	}
	e := &Engine{
		catalog:    holder,
		usage:      reader,
		calc:       intent.NewCalculator(nil),
		web:        intent.NewWebSearcher(),
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's catalog holder, for the discovery writer.
func (e *Engine) Catalog() *catalog.Holder {
	return e.catalog
}

// Search resolves the query into an ordered result list:
//
//  1. A system-action match returns alone, a hard short-circuit.
//  2. A calculator row, if the query is arithmetic.
//  3. A web-search or direct-URL row, if a shortcut applies.
//  4. Catalog rows, capped at the configured maximum.
//
// Calculator and web rows are additive affordances and do not count
// against the catalog cap. Search never returns an error; the worst
// outcome is an empty list.
func (e *Engine) Search(query string) []result.Result {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	if action := intent.ClassifySystemAction(query); action != nil {
		return []result.Result{*action}
	}

	var results []result.Result
	if calc := e.calc.TryCalculate(query); calc != nil {
		results = append(results, *calc)
	}
	if web := e.web.Check(query); web != nil {
		results = append(results, *web)
	}

	var matchOpts []match.Option
	if e.noFuzzy {
		matchOpts = append(matchOpts, match.WithoutFuzzy())
	}
	results = append(results, match.Match(query, e.catalog.Load(), e.usage, e.maxResults, matchOpts...)...)
	return results
}
