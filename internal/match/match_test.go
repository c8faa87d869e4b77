package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/beacon/internal/catalog"
	"github.com/runger/beacon/internal/result"
	"github.com/runger/beacon/internal/usage"
)

func snapshot(names ...string) *catalog.Snapshot {
	entries := make([]catalog.Entry, len(names))
	for i, n := range names {
		entries[i] = catalog.Entry{Name: n, Target: "/apps/" + n, Kind: result.KindApp}
	}
	return catalog.NewSnapshot(entries)
}

func names(results []result.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}

func TestIsSubsequence(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSubsequence("vsc", "visual studio code"))
	assert.False(t, IsSubsequence("xyz", "notepad"))
	assert.True(t, IsSubsequence("", "anything"))
	assert.True(t, IsSubsequence("abc", "abc"))
	assert.False(t, IsSubsequence("abc", "acb"))
	assert.False(t, IsSubsequence("aa", "a"))
}

func TestMatchExactPrefixPrefersShorterNames(t *testing.T) {
	t.Parallel()

	snap := snapshot("Firefox Developer Edition", "Firefox")
	got := Match("fire", snap, usage.MemReader{}, 8)
	require.Equal(t, []string{"Firefox", "Firefox Developer Edition"}, names(got))
}

func TestMatchTierLadder(t *testing.T) {
	t.Parallel()

	snap := snapshot(
		"Visual Studio Code", // initials for "vsc", word prefix for "studio"
		"Terminal",           // exact prefix for "term"
		"GNOME Terminal",     // word prefix for "term"
	)

	got := Match("term", snap, usage.MemReader{}, 8)
	// Exact prefix (1000) outranks word prefix (800).
	require.Equal(t, []string{"Terminal", "GNOME Terminal"}, names(got))

	got = Match("vsc", snap, usage.MemReader{}, 8)
	require.Equal(t, []string{"Visual Studio Code"}, names(got))
}

func TestMatchInitialsRequiresTwoChars(t *testing.T) {
	t.Parallel()

	snap := snapshot("Visual Studio Code")
	// Single-character query skips the initials tier; "v" still word-prefix
	// matches "visual".
	got := Match("v", snap, usage.MemReader{}, 8)
	require.Len(t, got, 1)

	// "vs" has no word prefix but matches initials.
	got = Match("vs", snap, usage.MemReader{}, 8)
	require.Len(t, got, 1)
}

func TestMatchFirstTierWins(t *testing.T) {
	t.Parallel()

	// "code" is both a word prefix and a subsequence of the name; the entry
	// must contribute exactly one row.
	snap := snapshot("Visual Studio Code")
	got := Match("code", snap, usage.MemReader{}, 8)
	require.Len(t, got, 1)
}

func TestMatchSubsequenceFallback(t *testing.T) {
	t.Parallel()

	snap := snapshot("Notepad", "GNOME Calculator")
	got := Match("gct", snap, usage.MemReader{}, 8)
	require.Equal(t, []string{"GNOME Calculator"}, names(got))
}

func TestMatchTierDominanceOverMRU(t *testing.T) {
	t.Parallel()

	// "pad" is a subsequence of "Notepad" (fuzzy tier) and a word prefix in
	// "Launch Pad" (prefix tier). A huge usage count on the fuzzy match
	// must not lift it above the prefix group.
	snap := snapshot("Notepad", "Launch Pad")
	reader := usage.MemReader{"Notepad": 1000}

	got := Match("pad", snap, reader, 8)
	require.Equal(t, []string{"Launch Pad", "Notepad"}, names(got))
}

func TestMatchMRUBreaksTiesWithinTier(t *testing.T) {
	t.Parallel()

	// Equal name length, both exact prefix: the higher usage count wins.
	snap := snapshot("Terminal A", "Terminal B")
	reader := usage.MemReader{"Terminal B": 3}

	got := Match("terminal", snap, reader, 8)
	require.Equal(t, []string{"Terminal B", "Terminal A"}, names(got))
}

func TestMatchStableCatalogOrderOnTies(t *testing.T) {
	t.Parallel()

	snap := snapshot("Editor One", "Editor Two")
	got := Match("editor", snap, usage.MemReader{}, 8)
	require.Equal(t, []string{"Editor One", "Editor Two"}, names(got))
}

func TestMatchCap(t *testing.T) {
	t.Parallel()

	snap := snapshot("App One", "App Two", "App Three", "App Four")
	got := Match("app", snap, usage.MemReader{}, 2)
	require.Len(t, got, 2)
}

func TestMatchFuzzyFillsRemainingCapacity(t *testing.T) {
	t.Parallel()

	snap := snapshot(
		"Padlock", // exact prefix for "pad"
		"Notepad", // subsequence only
		"Keypad",  // word prefix? no space, so subsequence only
	)
	got := Match("pad", snap, usage.MemReader{}, 2)
	require.Equal(t, []string{"Padlock", "Notepad"}, names(got))
}

func TestMatchZeroMaxResults(t *testing.T) {
	t.Parallel()

	snap := snapshot("Firefox")
	require.Nil(t, Match("fire", snap, usage.MemReader{}, 0))
}

func TestMatchEmptyInputs(t *testing.T) {
	t.Parallel()

	require.Nil(t, Match("", snapshot("Firefox"), usage.MemReader{}, 8))
	require.Nil(t, Match("   ", snapshot("Firefox"), usage.MemReader{}, 8))
	require.Nil(t, Match("fire", nil, usage.MemReader{}, 8))
	require.Empty(t, Match("fire", snapshot(), usage.MemReader{}, 8))
}

func TestMatchCaseInsensitive(t *testing.T) {
	t.Parallel()

	snap := snapshot("FireFox")
	got := Match("FIREFOX", snap, usage.MemReader{}, 8)
	require.Len(t, got, 1)
}

func TestMatchIdempotent(t *testing.T) {
	t.Parallel()

	snap := snapshot("Firefox", "Files", "GNOME Terminal", "Visual Studio Code")
	reader := usage.MemReader{"Files": 2}

	first := Match("fi", snap, reader, 8)
	second := Match("fi", snap, reader, 8)
	require.Equal(t, first, second)
}

func TestMatchWithoutFuzzyDropsFuzzyTiers(t *testing.T) {
	t.Parallel()

	snap := snapshot("Terminal", "Text Editor")

	// "tml" only matches Terminal as a subsequence.
	require.NotEmpty(t, Match("tml", snap, usage.MemReader{}, 8))
	require.Empty(t, Match("tml", snap, usage.MemReader{}, 8, WithoutFuzzy()))

	// Prefix tiers are unaffected.
	got := Match("ter", snap, usage.MemReader{}, 8, WithoutFuzzy())
	require.Len(t, got, 1)
	require.Equal(t, "Terminal", got[0].Name)
}
