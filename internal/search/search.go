package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/spots/internal/model"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Item           model.SavedItem
	MatchedIndexes []int
	Score          int
}

// itemNames implements fuzzy.Source over item display names.
type itemNames []model.SavedItem

func (n itemNames) String(i int) string {
	return n[i].DisplayName()
}

func (n itemNames) Len() int {
	return len(n)
}

// FuzzySearchItems searches items by display name using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearchItems(items []model.SavedItem, query string) []SearchResult {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, itemNames(items))

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Item:           items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
