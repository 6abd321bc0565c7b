package view

import "github.com/nikbrunner/spots/internal/model"

// Action is an input to Reduce.
type Action interface {
	apply(State) State
}

type (
	// ShowSaves switches to the list. From a preview it acts as "back".
	ShowSaves struct{}
	// ShowMap switches to the map of coordinate items.
	ShowMap struct{}
	// ShowCalendar switches to the calendar grouped by event day.
	ShowCalendar struct{}
	// SetFilter replaces the category filter.
	SetFilter struct{ Filter CategoryFilter }
	// SetSort replaces the sort order.
	SetSort struct{ Sort SortOrder }
	// OpenPreview shows a single item.
	OpenPreview struct{ ID string }
	// OpenEdit opens the edit form, remembering the current mode.
	OpenEdit struct{ ID string }
	// CancelEdit leaves the form without saving.
	CancelEdit struct{}
	// EditSaved leaves the form after a successful save.
	EditSaved struct{}
	// ItemRemoved follows a delete from the edit form.
	ItemRemoved struct{}
	// ViewCategory lists the category of the previewed item.
	ViewCategory struct {
		ID       string
		Category string // "" for uncategorized
	}
	// MoveCursor moves the list cursor by Delta, clamped to [0, Count).
	MoveCursor struct {
		Delta int
		Count int
	}
)

// ViewCategoryOf builds a ViewCategory action for item.
func ViewCategoryOf(item model.SavedItem) ViewCategory {
	return ViewCategory{ID: item.ID, Category: item.CategoryName()}
}

// Reduce returns the state that results from applying a to s.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (ShowSaves) apply(s State) State    { return s.switchTo(ModeSaves) }
func (ShowMap) apply(s State) State      { return s.switchTo(ModeMap) }
func (ShowCalendar) apply(s State) State { return s.switchTo(ModeCalendar) }

func (s State) switchTo(m Mode) State {
	s.Mode = m
	s.PreviewID = ""
	s.EditID = ""
	s.Cursor = 0
	return s
}

func (a SetFilter) apply(s State) State {
	s.Filter = a.Filter
	s.Cursor = 0
	return s
}

func (a SetSort) apply(s State) State {
	s.Sort = a.Sort
	s.Cursor = 0
	return s
}

func (a OpenPreview) apply(s State) State {
	if a.ID == "" {
		return s
	}
	s.Mode = ModePreview
	s.PreviewID = a.ID
	return s
}

func (a OpenEdit) apply(s State) State {
	if a.ID == "" || s.Mode == ModeEdit {
		return s
	}
	s.Previous = s.Mode
	s.Mode = ModeEdit
	s.EditID = a.ID
	return s
}

func (CancelEdit) apply(s State) State {
	if s.Mode != ModeEdit {
		return s
	}
	s.Mode = s.Previous
	s.EditID = ""
	return s
}

// A saved edit lands on the map when the edit began there, otherwise on
// the preview of the edited item.
func (EditSaved) apply(s State) State {
	if s.Mode != ModeEdit {
		return s
	}
	if s.Previous == ModeMap {
		s.Mode = ModeMap
		s.PreviewID = ""
	} else {
		s.Mode = ModePreview
		s.PreviewID = s.EditID
	}
	s.EditID = ""
	return s
}

func (ItemRemoved) apply(s State) State {
	s = s.switchTo(ModeSaves)
	s.Previous = ModeSaves
	return s
}

func (a ViewCategory) apply(s State) State {
	s = s.switchTo(ModeSaves)
	if a.Category == "" {
		s.Filter = Uncategorized()
	} else {
		s.Filter = Category(a.Category)
	}
	return s
}

func (a MoveCursor) apply(s State) State {
	if a.Count <= 0 {
		s.Cursor = 0
		return s
	}
	c := s.Cursor + a.Delta
	if c < 0 {
		c = 0
	}
	if c >= a.Count {
		c = a.Count - 1
	}
	s.Cursor = c
	return s
}
