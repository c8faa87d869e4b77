// Package match scores catalog entries against a query using a fixed tier
// ladder. Prefix-style tiers always outrank fuzzy tiers; usage counts
// personalize ranking within a tier but never across the tier boundary.
package match

import (
	"sort"
	"strings"

	"github.com/runger/beacon/internal/catalog"
	"github.com/runger/beacon/internal/result"
	"github.com/runger/beacon/internal/usage"
)

// Tier base scores. An entry lands in the first tier it satisfies; lower
// tiers are never evaluated for it.
const (
	scoreExactPrefix = 1000
	scoreWordPrefix  = 800
	scoreInitials    = 700
	scoreSubsequence = 300
	scoreSubstring   = 200

	// mruWeight scales the recorded usage count into a score bonus.
	mruWeight = 10

	// namePrefBase rewards shorter names among equal exact-prefix matches.
	namePrefBase = 100

	// initialsMinQuery is the minimum query length before the initials
	// tier is attempted.
	initialsMinQuery = 2
)

// candidate pairs an entry with its tier score for one search call.
type candidate struct {
	entry catalog.Entry
	score int
}

// Option adjusts matching behavior.
type Option func(*options)

type options struct {
	noFuzzy bool
}

// WithoutFuzzy disables the subsequence and substring tiers, leaving
// only prefix-style matching.
func WithoutFuzzy() Option {
	return func(o *options) {
		o.noFuzzy = true
	}
}

// Match evaluates every entry in the snapshot against the normalized query
// and returns at most maxResults rows: all prefix-tier candidates first,
// then fuzzy-tier candidates filling the remaining capacity. Each group is
// sorted by score descending with catalog order breaking ties.
func Match(query string, snap *catalog.Snapshot, reader usage.Reader, maxResults int, opts ...Option) []result.Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if snap == nil || maxResults <= 0 {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil
	}

	var prefixMatches, fuzzyMatches []candidate

	for _, entry := range snap.Entries {
		name := strings.ToLower(entry.Name)
		mruBonus := int(reader.Count(entry.Name)) * mruWeight

		if strings.HasPrefix(name, normalized) {
			prefixMatches = append(prefixMatches, candidate{
				entry: entry,
				score: scoreExactPrefix + mruBonus + (namePrefBase - len(name)),
			})
			continue
		}

		words := strings.Fields(name)
		if wordPrefix(words, normalized) {
			prefixMatches = append(prefixMatches, candidate{
				entry: entry,
				score: scoreWordPrefix + mruBonus,
			})
			continue
		}

		if len(normalized) >= initialsMinQuery && strings.HasPrefix(initials(words), normalized) {
			prefixMatches = append(prefixMatches, candidate{
				entry: entry,
				score: scoreInitials + mruBonus,
			})
			continue
		}

		if o.noFuzzy {
			continue
		}

		if IsSubsequence(normalized, name) {
			fuzzyMatches = append(fuzzyMatches, candidate{
				entry: entry,
				score: scoreSubsequence + mruBonus,
			})
		} else if strings.Contains(name, normalized) {
			// Unreachable in practice: a substring is always a
			// subsequence. Kept for ladder fidelity.
			fuzzyMatches = append(fuzzyMatches, candidate{
				entry: entry,
				score: scoreSubstring + mruBonus,
			})
		}
	}

	sortByScore(prefixMatches)
	sortByScore(fuzzyMatches)

	results := make([]result.Result, 0, maxResults)
	results = appendCapped(results, prefixMatches, maxResults)
	results = appendCapped(results, fuzzyMatches, maxResults)
	return results
}

// wordPrefix reports whether any whitespace-delimited word starts with the
// query.
func wordPrefix(words []string, query string) bool {
	for _, w := range words {
		if strings.HasPrefix(w, query) {
			return true
		}
	}
	return false
}

// initials concatenates the first character of each word, so "visual
// studio code" yields "vsc".
func initials(words []string) string {
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	return b.String()
}

// IsSubsequence reports whether the characters of pattern occur, in order,
// anywhere in text. Single linear pass, no backtracking.
func IsSubsequence(pattern, text string) bool {
	p := []rune(pattern)
	cursor := 0
	for _, ch := range text {
		if cursor == len(p) {
			return true
		}
		if ch == p[cursor] {
			cursor++
		}
	}
	return cursor == len(p)
}

// sortByScore sorts candidates by score descending. The sort is stable so
// equal scores keep their original catalog order.
func sortByScore(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
}

// appendCapped converts candidates into results until the cap is reached.
func appendCapped(results []result.Result, cands []candidate, maxResults int) []result.Result {
	for _, c := range cands {
		if len(results) >= maxResults {
			break
		}
		results = append(results, result.Result{
			Name:        c.entry.Name,
			Description: c.entry.Description,
			Target:      c.entry.Target,
			Kind:        c.entry.Kind,
		})
	}
	return results
}
