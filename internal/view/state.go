package view

import "github.com/nikbrunner/spots/internal/model"

// Mode is the screen the popup is showing.
type Mode int

const (
	ModeSaves Mode = iota
	ModeMap
	ModeCalendar
	ModePreview
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeSaves:
		return "saves"
	case ModeMap:
		return "map"
	case ModeCalendar:
		return "calendar"
	case ModePreview:
		return "preview"
	case ModeEdit:
		return "edit"
	}
	return "unknown"
}

// FilterKind discriminates CategoryFilter values.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterAll
	FilterUncategorized
	FilterCategory
)

// CategoryFilter selects which items a list shows.
// The zero value is FilterNone, which shows everything.
type CategoryFilter struct {
	Kind  FilterKind
	Label string // set when Kind is FilterCategory
}

// All shows every item.
func All() CategoryFilter { return CategoryFilter{Kind: FilterAll} }

// Uncategorized shows items without a category.
func Uncategorized() CategoryFilter { return CategoryFilter{Kind: FilterUncategorized} }

// Category shows items whose category equals label exactly.
func Category(label string) CategoryFilter {
	return CategoryFilter{Kind: FilterCategory, Label: label}
}

// ParseFilter maps the textual filter values used on the wire and in the CLI.
// "" is none, "all" is all, "uncategorized" and "no-category" select items
// without a category, anything else is a category label.
func ParseFilter(s string) CategoryFilter {
	switch s {
	case "":
		return CategoryFilter{}
	case "all":
		return All()
	case "uncategorized", "no-category":
		return Uncategorized()
	}
	return Category(s)
}

func (f CategoryFilter) String() string {
	switch f.Kind {
	case FilterAll:
		return "all"
	case FilterUncategorized:
		return "uncategorized"
	case FilterCategory:
		return f.Label
	}
	return ""
}

// Match reports whether item passes the filter.
func (f CategoryFilter) Match(item model.SavedItem) bool {
	switch f.Kind {
	case FilterUncategorized:
		return item.CategoryName() == ""
	case FilterCategory:
		return item.Category != nil && *item.Category == f.Label
	}
	return true
}

// SortField picks the timestamp items are ordered by.
type SortField int

const (
	// SortEventDate orders by event date, falling back to the save time.
	SortEventDate SortField = iota
	// SortSavedAt orders by save time only.
	SortSavedAt
)

// SortOrder is a field plus direction. The zero value is event date, newest first.
type SortOrder struct {
	Field     SortField
	Ascending bool
}

// State is the whole popup view state. Values are never mutated in place;
// Reduce returns a new State for every action.
type State struct {
	Mode     Mode
	Previous Mode // mode active before entering edit
	Filter   CategoryFilter
	Sort     SortOrder

	PreviewID string
	EditID    string
	Cursor    int
}

// New returns the state a freshly opened popup starts in.
func New() State {
	return State{Mode: ModeSaves, Previous: ModeSaves, Filter: All()}
}
