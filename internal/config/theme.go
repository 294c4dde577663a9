package config

import catppuccin "github.com/catppuccin/go"

var flavors = map[string]catppuccin.Flavor{
	"mocha":     catppuccin.Mocha,
	"macchiato": catppuccin.Macchiato,
	"frappe":    catppuccin.Frappe,
	"latte":     catppuccin.Latte,
}

// Palette is the set of hex colors the UI and the presenters draw with
type Palette struct {
	Accent  string // prompt user, headings
	Text    string
	Muted   string
	Success string
	Danger  string
	Warning string
	Info    string
	Surface string // bar background, selection
}

// Palette resolves the configured catppuccin flavor, defaulting to mocha
func (c *Config) Palette() Palette {
	flavor, ok := flavors[c.Theme]
	if !ok {
		flavor = catppuccin.Mocha
	}
	return PaletteFor(flavor)
}

// PaletteFor maps a catppuccin flavor onto the UI roles
func PaletteFor(f catppuccin.Flavor) Palette {
	return Palette{
		Accent:  f.Mauve().Hex,
		Text:    f.Text().Hex,
		Muted:   f.Overlay1().Hex,
		Success: f.Green().Hex,
		Danger:  f.Red().Hex,
		Warning: f.Peach().Hex,
		Info:    f.Lavender().Hex,
		Surface: f.Surface0().Hex,
	}
}
