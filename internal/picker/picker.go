// Package picker implements the interactive launcher TUI: a query input
// over a ranked result list, re-searched on every debounced keystroke.
package picker

import (
	"context"

	"github.com/runger/beacon/internal/result"
)

// Searcher answers queries with a ranked result list. Implementations
// may query the daemon over IPC or an in-process engine.
type Searcher interface {
	Search(ctx context.Context, query string) ([]result.Result, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string) ([]result.Result, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]result.Result, error) {
	return f(ctx, query)
}
