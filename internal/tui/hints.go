package tui

import (
	"strings"

	"github.com/nikbrunner/spots/internal/view"
)

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "j/k:move enter:preview"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter save  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (j/k, 1/2/3)
	Edit   []Hint // Edit hints (a, e, d)
	Action []Hint // Action hints (Enter, f, s)
	System []Hint // System hints (q, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	if a.link.Active {
		// The prompt renders its own hints.
		return HintSet{}
	}
	switch a.state.Mode {
	case view.ModeSaves:
		return a.getSavesHints()
	case view.ModeMap:
		return a.getMapHints()
	case view.ModeCalendar:
		return a.getCalendarHints()
	case view.ModePreview:
		return a.getPreviewHints()
	default:
		return HintSet{}
	}
}

func browseNav() []Hint {
	return []Hint{
		{Key: "j/k", Desc: "move"},
		{Key: "1/2/3", Desc: "view"},
	}
}

func (a App) getSavesHints() HintSet {
	hints := HintSet{
		Nav: browseNav(),
		Action: []Hint{
			{Key: "Enter", Desc: "preview"},
			{Key: "f", Desc: "category"},
			{Key: "o", Desc: "sort"},
		},
		Edit: []Hint{
			{Key: "a", Desc: "add"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{
			{Key: "q", Desc: "quit"},
		},
	}
	if view.CanShare(a.state.Filter) && a.sharer != nil {
		hints.Action = append(hints.Action, Hint{Key: "s", Desc: "share"})
	}
	return hints
}

func (a App) getMapHints() HintSet {
	return HintSet{
		Nav: browseNav(),
		Action: []Hint{
			{Key: "Enter", Desc: "preview"},
			{Key: "f", Desc: "category"},
			{Key: "y", Desc: "directions"},
		},
		System: []Hint{
			{Key: "q", Desc: "quit"},
		},
	}
}

func (a App) getCalendarHints() HintSet {
	return HintSet{
		Nav: browseNav(),
		Action: []Hint{
			{Key: "Enter", Desc: "preview"},
			{Key: "f", Desc: "category"},
		},
		System: []Hint{
			{Key: "q", Desc: "quit"},
		},
	}
}

func (a App) getPreviewHints() HintSet {
	return HintSet{
		Action: []Hint{
			{Key: "c", Desc: "category"},
			{Key: "y", Desc: "yank URL"},
		},
		Edit: []Hint{
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		},
	}
}

// getEditHints are shown inside the edit modal.
func (a App) getEditHints() []Hint {
	return []Hint{
		{Key: "Tab", Desc: "next"},
		{Key: "Enter", Desc: "save"},
		{Key: "C-d", Desc: "remove"},
		{Key: "Esc", Desc: "cancel"},
	}
}

func (a App) getLinkHints() []Hint {
	return []Hint{
		{Key: "Enter", Desc: "add"},
		{Key: "Esc", Desc: "cancel"},
	}
}
