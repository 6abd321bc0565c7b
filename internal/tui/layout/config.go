package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	List  ListConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// ListConfig holds dimensions of the main list area.
type ListConfig struct {
	// HeightReduction is subtracted from terminal height for list rows.
	// Accounts for: app padding (1) + header (2) + status (1) + hint bar (2) = 6
	HeightReduction int

	// MinHeight is the minimum number of list rows.
	MinHeight int

	// ContentPadding is subtracted from terminal width for row text.
	// Accounts for app padding, cursor gutter and the category column.
	ContentPadding int

	// PreviewContentLimit caps the post caption shown in the preview.
	PreviewContentLimit int
}

// ModalConfig holds the edit form and link prompt configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// CategorySuggestions is the max categories listed under the category field.
	CategorySuggestions int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	NameCharLimit     int
	CategoryCharLimit int
	DateCharLimit     int
	AddressCharLimit  int
	LinkCharLimit     int

	// Width is the display width of every form input.
	Width int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		List: ListConfig{
			HeightReduction:     6,
			MinHeight:           3,
			ContentPadding:      24,
			PreviewContentLimit: 200,
		},
		Modal: ModalConfig{
			WidthPercent:        50,
			MinWidth:            40,
			MaxWidth:            72,
			CategorySuggestions: 6,
		},
		Input: InputConfig{
			NameCharLimit:     100,
			CategoryCharLimit: 50,
			DateCharLimit:     10,
			AddressCharLimit:  200,
			LinkCharLimit:     500,
			Width:             40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
