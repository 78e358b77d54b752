// Package styles defines the sodam TUI color themes.
package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// MessageColors defines colors for message rendering.
type MessageColors struct {
	Text    string
	Time    string
	Pending string
	Failed  string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header    string
	Footer    string
	DateRule  string
	Scrollbar string
}

// Theme defines the sodam TUI style tokens.
type Theme struct {
	Name string

	Base    BaseColors
	Message MessageColors
	Chrome  ChromeColors
}

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	ThemeLight: LightTheme,
	ThemeDark:  DarkTheme,
}

// ByName returns the named theme, falling back to light.
func ByName(name string) Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return LightTheme
}

// BaseStyle is the whole-screen foreground/background style.
func (t Theme) BaseStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Foreground)).Background(lipgloss.Color(t.Base.Background))
}

// MutedStyle renders secondary text.
func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Muted))
}

// AccentStyle renders highlighted text.
func (t Theme) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Accent))
}
