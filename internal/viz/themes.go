package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the live view. Sun and Bunny tint the source and receiver
// counts in the stats panel so they read as a legend for the scene.
type Theme struct {
	Name  string
	Scene lipgloss.Color // braille canvas
	Sun   lipgloss.Color
	Bunny lipgloss.Color
	Stick lipgloss.Color // highlighted values
	Title lipgloss.Color
	Dim   lipgloss.Color // status line
}

var (
	ThemeDaylight = Theme{
		Name:  "daylight",
		Scene: lipgloss.Color("#f5f1e6"),
		Sun:   lipgloss.Color("#ffc83d"),
		Bunny: lipgloss.Color("#f4a6c1"),
		Stick: lipgloss.Color("#c08552"),
		Title: lipgloss.Color("#ffc83d"),
		Dim:   lipgloss.Color("#8a8577"),
	}

	ThemeEclipse = Theme{
		Name:  "eclipse",
		Scene: lipgloss.Color("#b8c4ff"),
		Sun:   lipgloss.Color("#ff6b35"),
		Bunny: lipgloss.Color("#7bdff2"),
		Stick: lipgloss.Color("#b2f7ef"),
		Title: lipgloss.Color("#ff6b35"),
		Dim:   lipgloss.Color("#4a5078"),
	}

	ThemeChalk = Theme{
		Name:  "chalk",
		Scene: lipgloss.Color("#e8e8e8"),
		Sun:   lipgloss.Color("#ffffff"),
		Bunny: lipgloss.Color("#bdbdbd"),
		Stick: lipgloss.Color("#9e9e9e"),
		Title: lipgloss.Color("#ffffff"),
		Dim:   lipgloss.Color("#616161"),
	}

	CurrentTheme = ThemeDaylight

	Themes = []Theme{ThemeDaylight, ThemeEclipse, ThemeChalk}
)

// GetTheme returns the named theme, or daylight when there is none.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDaylight
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme cycles to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = ThemeDaylight
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
