package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/spots/internal/coordinator"
	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/tui/layout"
)

// Edit form fields, in tab order.
const (
	fieldName = iota
	fieldCategory
	fieldDate
	fieldAddress
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Category", "Date", "Address"}

// EditState holds the edit form for one item.
type EditState struct {
	ItemID string
	Inputs [fieldCount]textinput.Model
	Focus  int
	Err    error // validation or save failure shown under the form
}

// NewEditState builds a form prefilled from item.
func NewEditState(cfg layout.LayoutConfig, item model.SavedItem) EditState {
	newInput := func(placeholder string, limit int) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = limit
		in.Width = cfg.Input.Width
		return in
	}

	e := EditState{ItemID: item.ID}
	e.Inputs[fieldName] = newInput("e.g., Bodega on Central", cfg.Input.NameCharLimit)
	e.Inputs[fieldCategory] = newInput("e.g., Brunch Spots", cfg.Input.CategoryCharLimit)
	e.Inputs[fieldDate] = newInput("YYYY-MM-DD", cfg.Input.DateCharLimit)
	e.Inputs[fieldAddress] = newInput("Street, city", cfg.Input.AddressCharLimit)

	name := ""
	if item.VenueName != nil && *item.VenueName != "" {
		name = *item.VenueName
	} else if item.EventName != nil {
		name = *item.EventName
	}
	e.Inputs[fieldName].SetValue(name)
	e.Inputs[fieldCategory].SetValue(item.CategoryName())
	if item.EventDate != nil {
		e.Inputs[fieldDate].SetValue(*item.EventDate)
	}
	if item.Address != nil {
		e.Inputs[fieldAddress].SetValue(*item.Address)
	}
	return e
}

// FocusField moves the cursor to field i, wrapping around.
func (e *EditState) FocusField(i int) tea.Cmd {
	i = ((i % fieldCount) + fieldCount) % fieldCount
	for n := range e.Inputs {
		e.Inputs[n].Blur()
	}
	e.Focus = i
	return e.Inputs[i].Focus()
}

// Update forwards msg to the focused input.
func (e *EditState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.Inputs[e.Focus], cmd = e.Inputs[e.Focus].Update(msg)
	return cmd
}

// Form returns the submitted values.
func (e EditState) Form() coordinator.EditForm {
	return coordinator.EditForm{
		Name:      strings.TrimSpace(e.Inputs[fieldName].Value()),
		Category:  strings.TrimSpace(e.Inputs[fieldCategory].Value()),
		EventDate: strings.TrimSpace(e.Inputs[fieldDate].Value()),
		Address:   strings.TrimSpace(e.Inputs[fieldAddress].Value()),
	}
}

// LinkState holds the add-from-link prompt.
type LinkState struct {
	Active bool
	Input  textinput.Model
	Err    error
}

// NewLinkState creates a closed prompt.
func NewLinkState(cfg layout.LayoutConfig) LinkState {
	input := textinput.New()
	input.Placeholder = "https://www.instagram.com/p/..."
	input.CharLimit = cfg.Input.LinkCharLimit
	input.Width = cfg.Input.Width
	return LinkState{Input: input}
}

// Open resets and focuses the prompt.
func (l *LinkState) Open() tea.Cmd {
	l.Active = true
	l.Err = nil
	l.Input.Reset()
	return l.Input.Focus()
}

// Close hides the prompt.
func (l *LinkState) Close() {
	l.Active = false
	l.Err = nil
	l.Input.Blur()
	l.Input.Reset()
}
