package viz

import "github.com/charmbracelet/lipgloss"

// Theme pairs the chrome colors of the app with the palette used for
// the background pixel field.
type Theme struct {
	Name       string
	Pixels     string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
}

var (
	ThemeSlate = Theme{
		Name:       "slate",
		Pixels:     "#f8fafc,#f1f5f9,#cbd5e1",
		Primary:    lipgloss.Color("#e2e8f0"),
		Secondary:  lipgloss.Color("#94a3b8"),
		Accent:     lipgloss.Color("#38bdf8"),
		Background: lipgloss.Color("#0f172a"),
		Muted:      lipgloss.Color("#64748b"),
		Success:    lipgloss.Color("#4ade80"),
		Error:      lipgloss.Color("#f87171"),
	}

	ThemeGold = Theme{
		Name:       "gold",
		Pixels:     "#ffffff,#ffd700,#87ceeb",
		Primary:    lipgloss.Color("#ffd700"),
		Secondary:  lipgloss.Color("#87ceeb"),
		Accent:     lipgloss.Color("#ffffff"),
		Background: lipgloss.Color("#111111"),
		Muted:      lipgloss.Color("#8a7f5a"),
		Success:    lipgloss.Color("#9be39b"),
		Error:      lipgloss.Color("#ff6b6b"),
	}

	ThemeSky = Theme{
		Name:       "sky",
		Pixels:     "#e0f2fe,#bae6fd,#7dd3fc",
		Primary:    lipgloss.Color("#0ea5e9"),
		Secondary:  lipgloss.Color("#7dd3fc"),
		Accent:     lipgloss.Color("#fde68a"),
		Background: lipgloss.Color("#082f49"),
		Muted:      lipgloss.Color("#4a7a96"),
		Success:    lipgloss.Color("#34d399"),
		Error:      lipgloss.Color("#fb7185"),
	}

	ThemeRetro = Theme{
		Name:       "retro",
		Pixels:     "#00ff00,#00cc00,#88ff88",
		Primary:    lipgloss.Color("#00ff00"),
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#88ff88"),
		Background: lipgloss.Color("#001100"),
		Muted:      lipgloss.Color("#005500"),
		Success:    lipgloss.Color("#88ff88"),
		Error:      lipgloss.Color("#ff0000"),
	}

	ThemeSunset = Theme{
		Name:       "sunset",
		Pixels:     "#ff6b6b,#feca57,#ff9ff3",
		Primary:    lipgloss.Color("#ff6b6b"),
		Secondary:  lipgloss.Color("#feca57"),
		Accent:     lipgloss.Color("#ff9ff3"),
		Background: lipgloss.Color("#2d1b2e"),
		Muted:      lipgloss.Color("#8b6b8c"),
		Success:    lipgloss.Color("#5fd068"),
		Error:      lipgloss.Color("#ff4757"),
	}

	CurrentTheme = ThemeSlate

	Themes = []Theme{
		ThemeSlate,
		ThemeGold,
		ThemeSky,
		ThemeRetro,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to slate.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeSlate
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme returns the theme after the current one.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
