// Package share renders and reorders shared category lists.
package share

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/remote"
)

// List is a shared category as fetched from the share backend.
type List struct {
	ID       string
	Category string
	Items    []model.SavedItem
	Views    int
}

func fromRemote(s *remote.Share) *List {
	return &List{ID: s.ID, Category: s.Category, Items: s.Items, Views: s.Views}
}

// Split separates items that can be placed on the map from those that
// cannot. Both keep their input order; located[i] is map marker i+1.
func Split(items []model.SavedItem) (located, missing []model.SavedItem) {
	for _, item := range items {
		if item.HasCoordinates() {
			located = append(located, item)
		} else {
			missing = append(missing, item)
		}
	}
	return located, missing
}

// Card is one rendered list entry.
type Card struct {
	Number  int // 0 for items without a location
	Title   string
	Details string
	Date    string
	URL     string
}

func newCard(number int, item model.SavedItem) Card {
	return Card{
		Number:  number,
		Title:   cardTitle(item),
		Details: cardDetails(item),
		Date:    cardDate(item),
		URL:     item.URL,
	}
}

func cardTitle(item model.SavedItem) string {
	for _, s := range []*string{item.VenueName, item.Address, item.EventName} {
		if s != nil && *s != "" {
			return *s
		}
	}
	return "Saved Location"
}

func cardDetails(item model.SavedItem) string {
	var parts []string
	if item.Platform != "" {
		parts = append(parts, string(item.Platform))
	}
	if item.Author != "" {
		parts = append(parts, "@"+strings.TrimPrefix(item.Author, "@"))
	}
	return strings.Join(parts, " • ")
}

func cardDate(item model.SavedItem) string {
	t, ok := item.EventTime()
	if !ok {
		return ""
	}
	return t.Format("January 2, 2006")
}

// Cards numbers the located items from 1 and leaves the rest unnumbered.
func Cards(items []model.SavedItem) (located, missing []Card) {
	l, m := Split(items)
	for i, item := range l {
		located = append(located, newCard(i+1, item))
	}
	for _, item := range m {
		missing = append(missing, newCard(0, item))
	}
	return located, missing
}

// CountText summarizes how many places of the list are on the map.
func CountText(items []model.SavedItem) string {
	located, _ := Split(items)
	total := len(items)
	if len(located) < total {
		return fmt.Sprintf("%d of %d %s on map", len(located), total, plural(total, "place"))
	}
	return fmt.Sprintf("%d %s", total, plural(total, "place"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
