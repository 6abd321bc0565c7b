// Package picker is a one-shot terminal list for choosing a search result.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/search"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	subtle = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}

	selectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"})

	matchStyle = lipgloss.NewStyle().
			Underline(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(subtle)

	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			MarginBottom(1)
)

// Picker is a simple TUI for selecting from search results.
type Picker struct {
	results   []search.SearchResult
	query     string
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a new Picker with the given search results.
func New(results []search.SearchResult, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			p.cancelled = true
			return p, tea.Quit

		case "enter":
			if len(p.results) == 0 {
				p.cancelled = true
			} else {
				p.selected = true
			}
			return p, tea.Quit

		case "down", "j", "ctrl+n":
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}

		case "up", "k", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Find: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	for i, result := range p.results {
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		b.WriteString(cursor)
		b.WriteString(highlight(result.Item.DisplayName(), result.MatchedIndexes, style))
		b.WriteString("\n")
		b.WriteString("   " + detailStyle.Render(details(result.Item)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(detailStyle.Render("j/k: move  Enter: select  q/Esc: cancel"))

	return b.String()
}

// highlight underlines the matched byte offsets of name.
func highlight(name string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(name)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range name {
		s := string(r)
		if hit[i] {
			b.WriteString(matchStyle.Inherit(base).Render(s))
		} else {
			b.WriteString(base.Render(s))
		}
	}
	return b.String()
}

func details(item model.SavedItem) string {
	parts := []string{string(item.Platform)}
	if c := item.CategoryName(); c != "" {
		parts = append(parts, c)
	}
	parts = append(parts, item.URL)
	return strings.Join(parts, " • ")
}

// SelectedItem returns the chosen item; ok is false when the picker was cancelled.
func (p Picker) SelectedItem() (item model.SavedItem, ok bool) {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return model.SavedItem{}, false
	}
	return p.results[p.cursor].Item, true
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
