package render

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the styles and status icons the terminal renderer draws with.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Value   lipgloss.Style // numeric cells
	Icons   ThemeIcons
}

// ThemeIcons are the glyphs for row status, metrics and coordinate arrows.
type ThemeIcons struct {
	Pass  string
	Fail  string
	Warn  string
	Info  string
	Arrow string
}

// palette is a theme expressed as ANSI-256 color codes. An empty code
// leaves the style uncolored.
type palette struct {
	primary, success, warning, failure, muted, value string
	icons                                            ThemeIcons
}

var unicodeIcons = ThemeIcons{Pass: "✓", Fail: "✗", Warn: "⚠", Info: "●", Arrow: "→"}

var palettes = map[string]palette{
	"default": {
		primary: "39", success: "34", warning: "214", failure: "196", muted: "242", value: "252",
		icons: unicodeIcons,
	},
	// Low-saturation variant for long sessions on dark terminals.
	"orca": {
		primary: "75", success: "108", warning: "179", failure: "167", muted: "245", value: "250",
		icons: ThemeIcons{Pass: "✓", Fail: "✗", Warn: "!", Info: "·", Arrow: "→"},
	},
	"mono": {
		icons: ThemeIcons{Pass: "+", Fail: "x", Warn: "!", Info: "*", Arrow: "->"},
	},
}

// ThemeNames lists the built-in themes.
var ThemeNames = []string{"default", "orca", "mono"}

// ThemeByName returns the named theme, falling back to default.
func ThemeByName(name string) Theme {
	p, ok := palettes[name]
	if !ok {
		name, p = "default", palettes["default"]
	}
	return Theme{
		Name:    name,
		Primary: colored(p.primary),
		Success: colored(p.success),
		Warning: colored(p.warning),
		Error:   colored(p.failure),
		Muted:   colored(p.muted),
		Bold:    lipgloss.NewStyle().Bold(true),
		Value:   colored(p.value),
		Icons:   p.icons,
	}
}

func colored(code string) lipgloss.Style {
	s := lipgloss.NewStyle()
	if code == "" {
		return s
	}
	return s.Foreground(lipgloss.Color(code))
}

// ValidTheme reports whether name is a built-in theme.
func ValidTheme(name string) bool {
	return slices.Contains(ThemeNames, name)
}
