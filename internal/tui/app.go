package tui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/spots/internal/capture"
	"github.com/nikbrunner/spots/internal/coordinator"
	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/tui/layout"
	"github.com/nikbrunner/spots/internal/view"
)

// Store is the item storage the TUI browses.
type Store interface {
	List() ([]model.SavedItem, error)
	Append(item model.SavedItem) (model.SavedItem, error)
	Remove(id string) error
}

// Editor applies the edit form to a stored item.
type Editor interface {
	Edit(ctx context.Context, id string, form coordinator.EditForm) (model.SavedItem, error)
}

// Remover deletes a stored item, and its backend copy where there is one.
type Remover interface {
	Remove(ctx context.Context, id string) error
}

// storeRemover removes from the local store only.
type storeRemover struct{ store Store }

func (r storeRemover) Remove(_ context.Context, id string) error {
	return r.store.Remove(id)
}

// Sharer publishes a category as a share link.
type Sharer interface {
	Create(ctx context.Context, category string, items []model.SavedItem) (string, error)
}

// editDoneMsg reports the result of an async edit.
type editDoneMsg struct {
	item model.SavedItem
	err  error
}

// removeDoneMsg reports the result of an async removal.
type removeDoneMsg struct {
	item model.SavedItem
	err  error
}

// shareDoneMsg reports the result of an async share.
type shareDoneMsg struct {
	category string
	url      string
	err      error
}

// App is the main bubbletea model for browsing saved spots.
type App struct {
	store     Store
	editor    Editor
	remover   Remover
	sharer    Sharer
	clipboard func(string) error
	now       func() time.Time
	keys      KeyMap
	styles    Styles
	layout    layout.LayoutConfig

	state view.State
	items []model.SavedItem

	edit EditState
	link LinkState

	status string
	err    error
	busy   bool

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Store        Store
	Editor       Editor  // optional; editing is disabled without it
	Remover      Remover // optional; removes from Store when nil
	Sharer       Sharer // optional; sharing is disabled without it
	Clipboard    func(string) error
	Now          func() time.Time
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	cfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		cfg = *params.LayoutConfig
	}

	clip := params.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	remover := params.Remover
	if remover == nil {
		remover = storeRemover{store: params.Store}
	}

	app := App{
		store:     params.Store,
		editor:    params.Editor,
		remover:   remover,
		sharer:    params.Sharer,
		clipboard: clip,
		now:       now,
		keys:      keys,
		styles:    styles,
		layout:    cfg,
		state:     view.New(),
		link:      NewLinkState(cfg),
		width:     80,
		height:    24,
	}

	app.reload()
	return app
}

// WithDimensions returns a copy of the app with the given size.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// State returns the current view state.
func (a App) State() view.State { return a.state }

// Items returns every loaded item.
func (a App) Items() []model.SavedItem { return a.items }

// Status returns the last status line message.
func (a App) Status() string { return a.status }

// Err returns the last error shown to the user.
func (a App) Err() error { return a.err }

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// reload re-reads the store and clamps the cursor.
func (a *App) reload() {
	items, err := a.store.List()
	if err != nil {
		a.err = err
		return
	}
	a.items = items
	a.state = view.Reduce(a.state, view.MoveCursor{Count: len(a.rows())})
}

func (a *App) dispatch(action view.Action) {
	a.state = view.Reduce(a.state, action)
}

// rows returns the selectable items of the current browse mode.
func (a App) rows() []model.SavedItem {
	visible := view.Visible(a.items, a.state)
	switch a.state.Mode {
	case view.ModeMap:
		points := view.MapPoints(visible)
		out := make([]model.SavedItem, len(points))
		for i, p := range points {
			out[i] = p.Item
		}
		return out
	case view.ModeCalendar:
		var out []model.SavedItem
		for _, day := range view.CalendarDays(visible) {
			out = append(out, day.Items...)
		}
		return out
	}
	return visible
}

func (a App) selected() (model.SavedItem, bool) {
	rows := a.rows()
	if a.state.Cursor < 0 || a.state.Cursor >= len(rows) {
		return model.SavedItem{}, false
	}
	return rows[a.state.Cursor], true
}

func (a App) previewed() (model.SavedItem, bool) {
	return view.Find(a.items, a.state.PreviewID)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case editDoneMsg:
		return a.handleEditDone(msg), nil

	case shareDoneMsg:
		return a.handleShareDone(msg), nil

	case removeDoneMsg:
		return a.handleRemoveDone(msg), nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if a.link.Active {
			return a.updateLink(msg)
		}
		switch a.state.Mode {
		case view.ModeEdit:
			return a.updateEdit(msg)
		case view.ModePreview:
			return a.updatePreview(msg)
		default:
			return a.updateBrowse(msg)
		}
	}
	return a, nil
}

func (a App) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.err = nil
	rows := a.rows()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		a.dispatch(view.MoveCursor{Delta: 1, Count: len(rows)})

	case key.Matches(msg, a.keys.Up):
		a.dispatch(view.MoveCursor{Delta: -1, Count: len(rows)})

	case key.Matches(msg, a.keys.Saves):
		a.dispatch(view.ShowSaves{})

	case key.Matches(msg, a.keys.Map):
		a.dispatch(view.ShowMap{})

	case key.Matches(msg, a.keys.Calendar):
		a.dispatch(view.ShowCalendar{})

	case key.Matches(msg, a.keys.Filter):
		a.dispatch(view.SetFilter{Filter: a.nextFilter()})

	case key.Matches(msg, a.keys.Sort):
		order := a.state.Sort
		order.Ascending = !order.Ascending
		a.dispatch(view.SetSort{Sort: order})

	case key.Matches(msg, a.keys.Back):
		if a.state.Filter != view.All() {
			a.dispatch(view.SetFilter{Filter: view.All()})
		}

	case key.Matches(msg, a.keys.Open):
		if item, ok := a.selected(); ok {
			a.dispatch(view.OpenPreview{ID: item.ID})
		}

	case key.Matches(msg, a.keys.Edit):
		if item, ok := a.selected(); ok {
			return a.openEdit(item)
		}

	case key.Matches(msg, a.keys.Delete):
		if item, ok := a.selected(); ok {
			return a, a.remove(item)
		}

	case key.Matches(msg, a.keys.Share):
		return a.share()

	case key.Matches(msg, a.keys.Add):
		return a, a.link.Open()

	case key.Matches(msg, a.keys.YankURL):
		if a.state.Mode == view.ModeMap {
			a.yank(view.DirectionsURL(rows), "Copied directions")
		} else if item, ok := a.selected(); ok {
			a.yank(item.URL, "Copied post URL")
		}
	}
	return a, nil
}

func (a App) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.err = nil
	item, ok := a.previewed()
	if !ok {
		a.dispatch(view.ShowSaves{})
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Saves):
		a.dispatch(view.ShowSaves{})
	case key.Matches(msg, a.keys.Map):
		a.dispatch(view.ShowMap{})
	case key.Matches(msg, a.keys.Calendar):
		a.dispatch(view.ShowCalendar{})
	case key.Matches(msg, a.keys.Edit):
		return a.openEdit(item)
	case key.Matches(msg, a.keys.ViewCategory):
		a.dispatch(view.ViewCategoryOf(item))
	case key.Matches(msg, a.keys.Delete):
		a.dispatch(view.ItemRemoved{})
		return a, a.remove(item)
	case key.Matches(msg, a.keys.YankURL):
		a.yank(item.URL, "Copied post URL")
	}
	return a, nil
}

func (a App) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.dispatch(view.CancelEdit{})
		return a, nil

	case key.Matches(msg, a.keys.NextField):
		return a, a.edit.FocusField(a.edit.Focus + 1)

	case key.Matches(msg, a.keys.PrevField):
		return a, a.edit.FocusField(a.edit.Focus - 1)

	case key.Matches(msg, a.keys.RemoveEdited):
		item, ok := view.Find(a.items, a.state.EditID)
		a.dispatch(view.ItemRemoved{})
		if !ok {
			return a, nil
		}
		return a, a.remove(item)

	case key.Matches(msg, a.keys.Submit):
		return a.submitEdit()
	}

	cmd := a.edit.Update(msg)
	return a, cmd
}

func (a App) updateLink(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.link.Close()
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		post, err := capture.ParsePostURL(a.link.Input.Value())
		if err != nil {
			a.link.Err = err
			return a, nil
		}
		item, err := a.store.Append(model.SavedItem{
			Platform: post.Platform,
			URL:      post.URL,
			Author:   post.Author,
			Content:  post.Content,
			Images:   post.Images,
			SavedAt:  a.now(),
		})
		if err != nil {
			a.link.Err = err
			return a, nil
		}
		a.link.Close()
		a.reload()
		a.status = "Added " + item.DisplayName()
		return a.openEdit(item)
	}

	var cmd tea.Cmd
	a.link.Input, cmd = a.link.Input.Update(msg)
	return a, cmd
}

func (a App) openEdit(item model.SavedItem) (tea.Model, tea.Cmd) {
	if a.editor == nil {
		a.err = errors.New("editing is not available")
		return a, nil
	}
	a.edit = NewEditState(a.layout, item)
	a.dispatch(view.OpenEdit{ID: item.ID})
	return a, a.edit.FocusField(fieldName)
}

// submitEdit validates locally and runs the edit in the background.
func (a App) submitEdit() (tea.Model, tea.Cmd) {
	form := a.edit.Form()
	if form.Category == "" {
		a.edit.Err = &model.ValidationError{Field: "category", Msg: "please enter a category name"}
		return a, a.edit.FocusField(fieldCategory)
	}

	a.busy = true
	a.edit.Err = nil
	editor, id := a.editor, a.edit.ItemID
	return a, func() tea.Msg {
		item, err := editor.Edit(context.Background(), id, form)
		return editDoneMsg{item: item, err: err}
	}
}

func (a App) handleEditDone(msg editDoneMsg) App {
	a.busy = false
	if msg.err != nil {
		a.edit.Err = msg.err
		return a
	}
	a.reload()
	a.dispatch(view.EditSaved{})
	a.status = "Saved " + msg.item.DisplayName()
	return a
}

// remove deletes item in the background. The list reloads when it is done.
func (a App) remove(item model.SavedItem) tea.Cmd {
	remover := a.remover
	return func() tea.Msg {
		err := remover.Remove(context.Background(), item.ID)
		return removeDoneMsg{item: item, err: err}
	}
}

func (a App) handleRemoveDone(msg removeDoneMsg) App {
	if msg.err != nil {
		a.err = msg.err
		return a
	}
	a.reload()
	a.status = "Removed " + msg.item.DisplayName()
	return a
}

func (a App) share() (tea.Model, tea.Cmd) {
	if a.state.Mode != view.ModeSaves || a.sharer == nil {
		return a, nil
	}
	if !view.CanShare(a.state.Filter) {
		a.err = &model.ValidationError{Field: "category", Msg: "pick a category to share"}
		return a, nil
	}

	a.busy = true
	a.status = "Creating share link..."
	sharer, category := a.sharer, a.state.Filter.Label
	items := append([]model.SavedItem(nil), a.items...)
	return a, func() tea.Msg {
		url, err := sharer.Create(context.Background(), category, items)
		return shareDoneMsg{category: category, url: url, err: err}
	}
}

func (a App) handleShareDone(msg shareDoneMsg) App {
	a.busy = false
	if msg.err != nil {
		a.status = ""
		a.err = msg.err
		return a
	}
	if err := a.clipboard(msg.url); err != nil {
		a.status = "Share link: " + msg.url
		return a
	}
	a.status = "Share link copied: " + msg.url
	return a
}

func (a *App) yank(text, status string) {
	if text == "" {
		return
	}
	if err := a.clipboard(text); err != nil {
		a.err = err
		return
	}
	a.status = status
}

// nextFilter cycles All, Uncategorized (when any exist), then each category.
func (a App) nextFilter() view.CategoryFilter {
	options := []view.CategoryFilter{view.All()}
	if view.UncategorizedCount(a.items) > 0 {
		options = append(options, view.Uncategorized())
	}
	for _, c := range view.Categories(a.items) {
		options = append(options, view.Category(c))
	}
	for i, f := range options {
		if f == a.state.Filter {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
