package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/tui/layout"
	"github.com/nikbrunner/spots/internal/view"
)

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

// renderView composes header, body and help bar.
func (a App) renderView() string {
	var body string
	switch {
	case a.link.Active:
		body = a.renderLinkPrompt()
	case a.state.Mode == view.ModeEdit:
		body = a.renderEditModal()
	case a.state.Mode == view.ModePreview:
		body = a.renderPreview()
	case a.state.Mode == view.ModeMap:
		body = a.renderMap()
	case a.state.Mode == view.ModeCalendar:
		body = a.renderCalendar()
	default:
		body = a.renderSaves()
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), body, a.renderHelpBar()),
	)
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the mode tabs and the active filter.
func (a App) renderHeader() string {
	tabs := []struct {
		label string
		mode  view.Mode
	}{
		{"1 Saves", view.ModeSaves},
		{"2 Map", view.ModeMap},
		{"3 Calendar", view.ModeCalendar},
	}

	active := a.state.Mode
	if active == view.ModeEdit {
		active = a.state.Previous
	}

	parts := make([]string, 0, len(tabs)+1)
	for _, t := range tabs {
		if t.mode == active {
			parts = append(parts, a.styles.TabActive.Render(t.label))
		} else {
			parts = append(parts, a.styles.Tab.Render(t.label))
		}
	}
	parts = append(parts, a.styles.Category.Render("["+view.SectionTitle(a.state.Filter)+"]"))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n"
}

// renderRows renders a scrolled list of items with the cursor row highlighted.
// prefix supplies the leading column for each row.
func (a App) renderRows(items []model.SavedItem, prefix func(int, model.SavedItem) string) string {
	height := layout.CalculateListHeight(a.height, a.layout.List)
	width := layout.CalculateItemWidth(a.width, a.layout.List)
	offset := layout.CalculateViewportOffset(a.state.Cursor, len(items), height)

	end := offset + height
	if end > len(items) {
		end = len(items)
	}

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		lines = append(lines, a.renderItem(items[i], i == a.state.Cursor, width, prefix(i, items[i])))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderItem(item model.SavedItem, isCursor bool, maxWidth int, prefix string) string {
	title, _ := layout.TruncateText(item.DisplayName(), maxWidth, a.layout.Text)
	line := prefix + title
	if c := item.CategoryName(); c != "" && a.state.Filter.Kind != view.FilterCategory {
		line += "  " + c
	}

	if isCursor {
		return a.styles.ItemSelected.Render(line)
	}
	return a.styles.Item.Render(line)
}

func (a App) renderSaves() string {
	items := a.rows()
	if len(items) == 0 {
		return a.styles.Empty.Render(emptyText(a.state.Filter))
	}

	var b strings.Builder
	b.WriteString(a.renderRows(items, func(_ int, item model.SavedItem) string {
		if item.HasCoordinates() {
			return "● "
		}
		return "○ "
	}))

	if missing := view.MissingLocation(a.items, a.state.Filter); len(missing) > 0 {
		b.WriteString("\n\n")
		b.WriteString(a.styles.Label.Render(fmt.Sprintf("%d without location", len(missing))))
	}
	return b.String()
}

func emptyText(f view.CategoryFilter) string {
	if f.Kind == view.FilterCategory {
		return "No saves in " + f.Label
	}
	return "No saves yet. Press a to add a link."
}

func (a App) renderMap() string {
	points := view.MapPoints(view.Visible(a.items, a.state))
	if len(points) == 0 {
		return a.styles.Empty.Render("No saves with a location")
	}

	items := make([]model.SavedItem, len(points))
	for i, p := range points {
		items[i] = p.Item
	}

	var b strings.Builder
	b.WriteString(a.renderRows(items, func(i int, _ model.SavedItem) string {
		p := points[i]
		return fmt.Sprintf("%s %.4f,%.4f ", a.styles.Marker.Render(fmt.Sprintf("%2d", p.Number)), p.Latitude, p.Longitude)
	}))

	if u := view.DirectionsURL(items); u != "" {
		b.WriteString("\n\n")
		b.WriteString(a.styles.URL.Render(u))
	}
	return b.String()
}

func (a App) renderCalendar() string {
	days := view.CalendarDays(view.Visible(a.items, a.state))
	if len(days) == 0 {
		return a.styles.Empty.Render("No saves with an event date")
	}

	width := layout.CalculateItemWidth(a.width, a.layout.List)
	var lines []string
	row := 0
	for _, day := range days {
		label := day.Date
		if len(day.Items) > 0 {
			if t, ok := day.Items[0].EventTime(); ok {
				label = t.Format("Mon Jan 2, 2006")
			}
		}
		lines = append(lines, a.styles.Date.Render(label))
		for _, item := range day.Items {
			prefix := "  "
			if item.StartTime != nil && *item.StartTime != "" {
				prefix += *item.StartTime + " "
			}
			lines = append(lines, a.renderItem(item, row == a.state.Cursor, width, prefix))
			row++
		}
	}
	return strings.Join(lines, "\n")
}

func (a App) renderPreview() string {
	item, ok := a.previewed()
	if !ok {
		return a.styles.Empty.Render("Item not found")
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render(item.DisplayName()))
	b.WriteString("\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(a.styles.Label.Render(label+": ") + value + "\n")
	}

	category := item.CategoryName()
	if category == "" {
		category = "No Category"
	}
	field("Category", category)
	field("Platform", string(item.Platform))
	if item.Author != "" {
		field("Author", "@"+strings.TrimPrefix(item.Author, "@"))
	}
	if item.EventDate != nil {
		date := *item.EventDate
		if item.StartTime != nil && *item.StartTime != "" {
			date += " " + *item.StartTime
		}
		field("Date", date)
	}
	if item.Address != nil {
		field("Address", *item.Address)
	}
	if item.Description != nil {
		field("About", *item.Description)
	}
	if len(item.Tags) > 0 {
		field("Tags", strings.Join(item.Tags, ", "))
	}
	if item.Content != "" {
		b.WriteString("\n")
		b.WriteString(layout.Excerpt(item.Content, a.layout.List.PreviewContentLimit, a.layout.Text))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.styles.URL.Render(item.URL))
	if u := view.SearchURL(item); u != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.URL.Render(u))
	}
	return b.String()
}

func (a App) renderEditModal() string {
	modalWidth := layout.CalculateModalWidth(a.width, a.layout.Modal)
	style := a.styles.Modal.Width(modalWidth)

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Edit Spot"))
	b.WriteString("\n\n")

	for i := range a.edit.Inputs {
		label := a.styles.Label
		if i == a.edit.Focus {
			label = a.styles.LabelActive
		}
		b.WriteString(label.Render(fieldLabels[i] + ":"))
		b.WriteString("\n")
		b.WriteString(a.edit.Inputs[i].View())
		b.WriteString("\n")
		if i == fieldCategory && a.edit.Focus == fieldCategory {
			if s := a.categorySuggestions(); len(s) > 0 {
				b.WriteString(a.styles.Help.UnsetPaddingTop().Render(strings.Join(s, "  ")))
				b.WriteString("\n")
			}
		}
	}

	if a.edit.Err != nil {
		b.WriteString("\n")
		b.WriteString(a.styles.Error.Render(a.edit.Err.Error()))
		b.WriteString("\n")
	}
	if a.busy {
		b.WriteString("\n")
		b.WriteString(a.styles.Status.Render("Saving..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderHintsInline(a.getEditHints()))
	return style.Render(b.String())
}

// categorySuggestions lists known categories starting with the typed prefix.
func (a App) categorySuggestions() []string {
	prefix := strings.ToLower(strings.TrimSpace(a.edit.Inputs[fieldCategory].Value()))
	var out []string
	for _, c := range view.Categories(a.items) {
		if len(out) == a.layout.Modal.CategorySuggestions {
			break
		}
		if strings.HasPrefix(strings.ToLower(c), prefix) && !strings.EqualFold(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (a App) renderLinkPrompt() string {
	modalWidth := layout.CalculateModalWidth(a.width, a.layout.Modal)
	style := a.styles.Modal.Width(modalWidth)

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Add From Link"))
	b.WriteString("\n\n")
	b.WriteString(a.link.Input.View())
	b.WriteString("\n")
	if a.link.Err != nil {
		b.WriteString("\n")
		b.WriteString(a.styles.Error.Render(a.link.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(a.renderHintsInline(a.getLinkHints()))
	return style.Render(b.String())
}

// renderHelpBar renders the status line above the contextual hints.
func (a App) renderHelpBar() string {
	var status string
	switch {
	case a.err != nil:
		status = a.styles.Error.Render("✗ " + a.err.Error())
	case a.status != "":
		status = a.styles.Status.Render(a.status)
	}

	lines := []string{"", status}
	if hints := a.renderHints(a.getContextualHints()); hints != "" {
		lines = append(lines, hints)
	}
	return strings.Join(lines, "\n")
}
