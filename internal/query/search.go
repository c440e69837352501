package query

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
)

// Entry is one searchable item in the index.
type Entry struct {
	Key  string // Record identity, resolves back to the snapshot
	Text string // Searchable display text
}

// Match is one ranked search result.
type Match struct {
	Entry
	MatchedIndexes []int // Character positions that matched (for highlighting)
	Score          int
}

// Index is a prebuilt search index over display texts. It implements
// fuzzy.Source for zero-allocation matching.
type Index struct {
	entries    []Entry
	lowerTexts []string // Pre-computed lowercase texts
}

// NewIndex builds a search index over the entries.
func NewIndex(entries []Entry) *Index {
	lower := make([]string, len(entries))
	for i, e := range entries {
		lower[i] = strings.ToLower(e.Text)
	}
	return &Index{entries: entries, lowerTexts: lower}
}

// String returns the lowercase text at index i (implements fuzzy.Source)
func (ix *Index) String(i int) string { return ix.lowerTexts[i] }

// Len returns the number of entries (implements fuzzy.Source)
func (ix *Index) Len() int { return len(ix.entries) }

// Find performs subsequence fuzzy matching over the index, best
// matches first.
func (ix *Index) Find(query string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	results := fuzzy.FindFrom(query, ix)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Entry:          ix.entries[r.Index],
			MatchedIndexes: r.MatchedIndexes,
			Score:          r.Score,
		}
	}
	return matches
}

// Rank performs normalized, case-folded ranking by edit distance,
// closest matches first. Useful for typo-tolerant lookups where the
// query approximates a whole title.
func (ix *Index) Rank(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	ranks := lfuzzy.RankFindNormalizedFold(query, ix.lowerTexts)
	sort.Sort(ranks)

	matches := make([]Match, len(ranks))
	for i, r := range ranks {
		matches[i] = Match{
			Entry: ix.entries[r.OriginalIndex],
			Score: r.Distance,
		}
	}
	return matches
}
