package config

import "testing"

func TestThemeTypeNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want ThemeName
	}{
		{"material", ThemeMaterial},
		{"Material", ThemeMaterial},
		{"  MATERIAL  ", ThemeMaterial},
		{"readthedocs", ThemeReadTheDocs},
		{"read-the-docs", ThemeReadTheDocs},
		{"plain", ThemePlain},
		{"unknown", ""},
		{"", ""},
	}
	for _, c := range cases {
		th := Theme{Name: c.in}
		if got := th.Type(); got != c.want {
			t.Errorf("Type(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestKnownPaletteColor(t *testing.T) {
	for _, ok := range []string{"blue", "Deep Purple", " teal "} {
		if !KnownPaletteColor(ok) {
			t.Errorf("KnownPaletteColor(%q) = false, want true", ok)
		}
	}
	for _, bad := range []string{"mauve", "ultraviolet", ""} {
		if KnownPaletteColor(bad) {
			t.Errorf("KnownPaletteColor(%q) = true, want false", bad)
		}
	}
}

func TestPaletteHexFallback(t *testing.T) {
	p := Palette{Primary: "blue", Accent: "nonsense"}
	if got := p.PrimaryHex(); got != "#2094f3" {
		t.Errorf("PrimaryHex() = %q", got)
	}
	// Unknown names fall back to the indigo default.
	if got := p.AccentHex(); got != "#4051b5" {
		t.Errorf("AccentHex() = %q", got)
	}
}
