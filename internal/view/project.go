package view

import (
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/nikbrunner/spots/internal/model"
)

// Filter returns the items matching f, in their original order.
func Filter(items []model.SavedItem, f CategoryFilter) []model.SavedItem {
	out := make([]model.SavedItem, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Sort returns a sorted copy of items. Equal keys keep their input order.
func Sort(items []model.SavedItem, o SortOrder) []model.SavedItem {
	out := slices.Clone(items)
	key := func(i model.SavedItem) int64 {
		if o.Field == SortSavedAt {
			return i.SavedAt.UnixNano()
		}
		return i.SortTime().UnixNano()
	}
	sort.SliceStable(out, func(a, b int) bool {
		if o.Ascending {
			return key(out[a]) < key(out[b])
		}
		return key(out[a]) > key(out[b])
	})
	return out
}

// Visible is the list the current state displays.
func Visible(items []model.SavedItem, s State) []model.SavedItem {
	return Sort(Filter(items, s.Filter), s.Sort)
}

// Selected returns the visible item under the cursor.
func Selected(items []model.SavedItem, s State) (model.SavedItem, bool) {
	visible := Visible(items, s)
	if s.Cursor < 0 || s.Cursor >= len(visible) {
		return model.SavedItem{}, false
	}
	return visible[s.Cursor], true
}

// Find returns the item with id.
func Find(items []model.SavedItem, id string) (model.SavedItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return model.SavedItem{}, false
}

// Categories lists the distinct category labels present in items, sorted.
func Categories(items []model.SavedItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if c := item.CategoryName(); c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// UncategorizedCount counts items without a category.
func UncategorizedCount(items []model.SavedItem) int {
	n := 0
	for _, item := range items {
		if item.CategoryName() == "" {
			n++
		}
	}
	return n
}

// SectionTitle is the heading above the list.
func SectionTitle(f CategoryFilter) string {
	switch f.Kind {
	case FilterUncategorized:
		return "No Category"
	case FilterCategory:
		return f.Label
	}
	return "Saved Items"
}

// CanShare reports whether the filter names a single shareable category.
func CanShare(f CategoryFilter) bool {
	return f.Kind == FilterCategory && f.Label != ""
}

// MissingLocation lists the items of a shareable category without coordinates.
// It is empty for any other filter.
func MissingLocation(items []model.SavedItem, f CategoryFilter) []model.SavedItem {
	if !CanShare(f) {
		return nil
	}
	var out []model.SavedItem
	for _, item := range Filter(items, f) {
		if !item.HasCoordinates() {
			out = append(out, item)
		}
	}
	return out
}

// MapPoint is a numbered map marker.
type MapPoint struct {
	Number    int
	Item      model.SavedItem
	Latitude  float64
	Longitude float64
}

// MapPoints numbers the items that have coordinates from 1, in input order.
func MapPoints(items []model.SavedItem) []MapPoint {
	var out []MapPoint
	for _, item := range items {
		if !item.HasCoordinates() {
			continue
		}
		out = append(out, MapPoint{
			Number:    len(out) + 1,
			Item:      item,
			Latitude:  *item.Latitude,
			Longitude: *item.Longitude,
		})
	}
	return out
}

// CalendarDay groups items sharing an event day.
type CalendarDay struct {
	Date  string // YYYY-MM-DD
	Items []model.SavedItem
}

// CalendarDays groups items with a parseable event date by day, earliest
// day first. Items keep their input order within a day.
func CalendarDays(items []model.SavedItem) []CalendarDay {
	index := make(map[string]int)
	var days []CalendarDay
	for _, item := range items {
		t, ok := item.EventTime()
		if !ok {
			continue
		}
		key := t.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, CalendarDay{Date: key})
		}
		days[i].Items = append(days[i].Items, item)
	}
	sort.SliceStable(days, func(a, b int) bool { return days[a].Date < days[b].Date })
	return days
}

const mapsBaseURL = "https://www.google.com/maps"

// DirectionsURL builds a route through the addresses of items in order.
// It returns "" when no item has an address.
func DirectionsURL(items []model.SavedItem) string {
	var stops []string
	for _, item := range items {
		if a := location(item); a != "" {
			stops = append(stops, a)
		}
	}
	if len(stops) == 0 {
		return ""
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("destination", stops[0])
	if len(stops) > 1 {
		q.Set("waypoints", strings.Join(stops[1:], "|"))
	}
	return mapsBaseURL + "/dir/?" + q.Encode()
}

// SearchURL opens a single item in maps, or "" when it has no location.
func SearchURL(item model.SavedItem) string {
	loc := location(item)
	if loc == "" {
		return ""
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", loc)
	return mapsBaseURL + "/search/?" + q.Encode()
}

func location(item model.SavedItem) string {
	if item.Address != nil && strings.TrimSpace(*item.Address) != "" {
		return strings.TrimSpace(*item.Address)
	}
	if item.VenueName != nil {
		return strings.TrimSpace(*item.VenueName)
	}
	return ""
}
