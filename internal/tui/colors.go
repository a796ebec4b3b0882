package tui

// Color constants for the tick TUI theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Titles, values
	ColorSecondaryText = "#B1B8C7" // Labels, start time
	ColorDisabledText  = "#6D7383" // Missing values, skipped steps
	ColorPlaceholder   = "#4B5263" // Input placeholders
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Logo, task ID, borders
	ColorAccentBright = "#A78BFA" // Clock, header

	// State Colors
	ColorSuccess = "#22C55E" // Done tasks, filled steps
	ColorError   = "#EF4444" // Validation errors, "No" in the save prompt

	ColorCardBackground = "#1E2130" // Save prompt
)
