package config

import "strings"

// ThemeName is a normalized theme identifier.
type ThemeName string

const (
	ThemeMaterial    ThemeName = "material"
	ThemeReadTheDocs ThemeName = "readthedocs"
	ThemePlain       ThemeName = "plain"
)

// Theme selects the rendering theme and its color palette.
type Theme struct {
	Name    string  `yaml:"name"`
	Palette Palette `yaml:"palette,omitempty"`
}

// Palette carries the named colors applied to the theme.
type Palette struct {
	Primary string `yaml:"primary,omitempty"`
	Accent  string `yaml:"accent,omitempty"`
}

// Type normalizes the configured theme name; unknown names map to "".
func (t Theme) Type() ThemeName {
	switch strings.ToLower(strings.TrimSpace(t.Name)) {
	case "material":
		return ThemeMaterial
	case "readthedocs", "read-the-docs":
		return ThemeReadTheDocs
	case "plain":
		return ThemePlain
	default:
		return ""
	}
}

// paletteColors is the set of named colors the material-style palette accepts.
var paletteColors = map[string]struct{}{
	"red": {}, "pink": {}, "purple": {}, "deep purple": {}, "indigo": {},
	"blue": {}, "light blue": {}, "cyan": {}, "teal": {}, "green": {},
	"light green": {}, "lime": {}, "yellow": {}, "amber": {}, "orange": {},
	"deep orange": {}, "brown": {}, "grey": {}, "blue grey": {},
	"black": {}, "white": {},
}

// KnownPaletteColor reports whether name is a recognized palette color.
func KnownPaletteColor(name string) bool {
	_, ok := paletteColors[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// paletteHex maps named colors to their rendered hex values.
var paletteHex = map[string]string{
	"red": "#ef5552", "pink": "#e92063", "purple": "#ab47bd", "deep purple": "#7e56c2",
	"indigo": "#4051b5", "blue": "#2094f3", "light blue": "#02a6f2", "cyan": "#00bdd6",
	"teal": "#009485", "green": "#4cae4f", "light green": "#8bc34b", "lime": "#cbdc38",
	"yellow": "#ffec3d", "amber": "#ffc105", "orange": "#ffa724", "deep orange": "#ff6e42",
	"brown": "#795649", "grey": "#757575", "blue grey": "#546d78",
	"black": "#000000", "white": "#ffffff",
}

// Hex resolves a named palette color to its hex value; unknown names fall
// back to the indigo default.
func (p Palette) Hex(name string) string {
	if hex, ok := paletteHex[strings.ToLower(strings.TrimSpace(name))]; ok {
		return hex
	}
	return paletteHex["indigo"]
}

// PrimaryHex returns the hex value of the primary color.
func (p Palette) PrimaryHex() string { return p.Hex(p.Primary) }

// AccentHex returns the hex value of the accent color.
func (p Palette) AccentHex() string { return p.Hex(p.Accent) }
