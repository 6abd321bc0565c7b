package share

import (
	"fmt"
	"slices"

	"github.com/nikbrunner/spots/internal/model"
)

// Editor reorders the located items of a list. Items without coordinates
// are never moved and always follow the located ones.
type Editor struct {
	located []model.SavedItem
	missing []model.SavedItem
}

// NewEditor starts an edit session over items.
func NewEditor(items []model.SavedItem) *Editor {
	located, missing := Split(items)
	return &Editor{located: located, missing: missing}
}

// Len is the number of movable items.
func (e *Editor) Len() int { return len(e.located) }

// Located returns the movable items in their current order.
func (e *Editor) Located() []model.SavedItem { return slices.Clone(e.located) }

// Move takes the located item at from and inserts it at to.
func (e *Editor) Move(from, to int) error {
	n := len(e.located)
	if from < 0 || from >= n || to < 0 || to >= n {
		return &model.ValidationError{
			Field: "position",
			Msg:   fmt.Sprintf("move %d to %d outside 0..%d", from, to, n-1),
		}
	}
	if from == to {
		return nil
	}
	item := e.located[from]
	e.located = slices.Delete(e.located, from, from+1)
	e.located = slices.Insert(e.located, to, item)
	return nil
}

// Order is the full list to submit: located items first, then the rest.
func (e *Editor) Order() []model.SavedItem {
	out := make([]model.SavedItem, 0, len(e.located)+len(e.missing))
	out = append(out, e.located...)
	return append(out, e.missing...)
}
