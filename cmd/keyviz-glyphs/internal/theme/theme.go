package theme

import (
	"image/color"

	"gioui.org/unit"
	"gioui.org/widget/material"
)

// GlyphTypeface is the typeface name the icon font is registered under.
const GlyphTypeface = "keyviz-glyphs"

// Palette defines the inspector colors.
type Palette struct {
	Background color.NRGBA
	Surface    color.NRGBA
	Glyph      color.NRGBA
	GlyphBg    color.NRGBA
	Text       color.NRGBA
	TextMuted  color.NRGBA
	Border     color.NRGBA
	Error      color.NRGBA
}

// Config defines the inspector metrics.
type Config struct {
	Spacing     unit.Dp
	Padding     unit.Dp
	RowHeight   unit.Dp
	GlyphSize   unit.Sp
	FontTitle   unit.Sp
	FontBody    unit.Sp
	FontCaption unit.Sp
}

// Theme wraps the material theme with inspector styling.
type Theme struct {
	*material.Theme
	Palette Palette
	Config  Config
}

// NewTheme creates a dark theme whose glyph cells use the overlay's own
// text and background colours so rows look like real popups.
func NewTheme(mtheme *material.Theme, glyph, glyphBg color.NRGBA, glyphSize float32) *Theme {
	t := &Theme{Theme: mtheme}

	t.Palette = Palette{
		Background: color.NRGBA{R: 0x1E, G: 0x1E, B: 0x1E, A: 0xFF},
		Surface:    color.NRGBA{R: 0x2A, G: 0x2A, B: 0x2A, A: 0xFF},
		Glyph:      glyph,
		GlyphBg:    glyphBg,
		Text:       color.NRGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF},
		TextMuted:  color.NRGBA{R: 0x9A, G: 0x9A, B: 0x9A, A: 0xFF},
		Border:     color.NRGBA{R: 0x3C, G: 0x3C, B: 0x3C, A: 0xFF},
		Error:      color.NRGBA{R: 0xE8, G: 0x4A, B: 0x4A, A: 0xFF},
	}

	t.Config = Config{
		Spacing:     unit.Dp(8),
		Padding:     unit.Dp(16),
		RowHeight:   unit.Dp(glyphSize * 1.8),
		GlyphSize:   unit.Sp(glyphSize),
		FontTitle:   unit.Sp(20),
		FontBody:    unit.Sp(14),
		FontCaption: unit.Sp(12),
	}

	t.Theme.Palette.Bg = t.Palette.Background
	t.Theme.Palette.Fg = t.Palette.Text
	return t
}
