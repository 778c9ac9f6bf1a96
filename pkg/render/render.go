// Package render provides output renderers for ptrmux report patterns.
package render

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dkoosis/ptrmux/pkg/pattern"
)

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// Output formats accepted by Select.
const (
	FormatAuto     = "auto"
	FormatTerminal = "terminal"
	FormatLLM      = "llm"
	FormatJSON     = "json"
)

// ValidFormat reports whether name is a known output format.
func ValidFormat(name string) bool {
	switch name {
	case FormatAuto, FormatTerminal, FormatLLM, FormatJSON:
		return true
	}
	return false
}

// Select returns the renderer for mode, resolving auto against w.
// NO_COLOR forces the mono theme.
func Select(mode, themeName string, w io.Writer) Renderer {
	switch ResolveFormat(mode, w) {
	case FormatJSON:
		return NewJSON()
	case FormatLLM:
		return NewLLM()
	default:
		theme := ThemeByName(themeName)
		if os.Getenv("NO_COLOR") != "" {
			theme = ThemeByName("mono")
		}
		width, _ := TermSize(w)
		return NewTerminal(theme, width)
	}
}

// ResolveFormat maps auto to terminal on a TTY and llm when piped.
func ResolveFormat(format string, w io.Writer) string {
	if format != FormatAuto && format != "" {
		return format
	}
	if IsTTY(w) {
		return FormatTerminal
	}
	return FormatLLM
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TermSize returns the terminal dimensions for w, defaulting to 80x24.
func TermSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}
