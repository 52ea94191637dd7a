package overlay

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
)

// Style is the look and lifetime of every popup.
type Style struct {
	Face       font.Face
	Text       color.RGBA
	Background color.RGBA
	PadX       int
	PadY       int
	Duration   time.Duration
}

// ParseColor accepts an SVG colour name, #RGB or #RRGGBB.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("malformed colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("malformed colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// MustColor is ParseColor for values known to be valid.
func MustColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
