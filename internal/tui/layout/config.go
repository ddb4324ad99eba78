package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	List  ListConfig
	Input InputConfig
	Text  TextConfig
}

// ListConfig holds suggestion list dimensions.
type ListConfig struct {
	// HeightReduction is subtracted from terminal height for list rows.
	// Accounts for: app padding (1) + input line (1) + default row (1) + gap (1) + help bar (2) = 6
	HeightReduction int

	// MinHeight is the minimum number of visible suggestion rows.
	MinHeight int

	// ContentPadding is subtracted from terminal width for row rendering.
	// Accounts for app padding and the cursor gutter.
	ContentPadding int
}

// InputConfig holds omnibox input configuration.
type InputConfig struct {
	CharLimit int
	Width     int
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
			HeightReduction: 6,
			MinHeight:       3,
			ContentPadding:  6,
		},
		Input: InputConfig{
			CharLimit: 500,
			Width:     60,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
