// Package overlay turns display strings into short-lived popup windows.
//
// A popup is rasterized off-screen first; its size decides where the
// anchor puts it. The windowing system is behind Toolkit so placement and
// lifetime can be tested without a display.
package overlay

import (
	"image"
	"strings"
)

// Anchor is a named reference point on the screen.
type Anchor int

const (
	BottomCenter Anchor = iota
	TopLeft
	TopCenter
	TopRight
	CenterLeft
	Center
	CenterRight
	BottomLeft
	BottomRight
)

var anchorNames = map[Anchor]string{
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	CenterLeft:   "center-left",
	Center:       "center",
	CenterRight:  "center-right",
	BottomLeft:   "bottom-left",
	BottomCenter: "bottom-center",
	BottomRight:  "bottom-right",
}

var anchorAliases = map[string]Anchor{
	"middle":        Center,
	"center-center": Center,
	"left":          CenterLeft,
	"right":         CenterRight,
	"top":           TopCenter,
	"bottom":        BottomCenter,
}

func (a Anchor) String() string {
	if s, ok := anchorNames[a]; ok {
		return s
	}
	return "bottom-center"
}

// ParseAnchor resolves an anchor name. Matching ignores case and treats
// '_' and ' ' as '-'. Unknown names yield BottomCenter and false.
func ParseAnchor(name string) (Anchor, bool) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)

	for a, s := range anchorNames {
		if s == norm {
			return a, true
		}
	}
	if a, ok := anchorAliases[norm]; ok {
		return a, true
	}
	return BottomCenter, false
}

// Anchors lists every anchor in reading order.
func Anchors() []Anchor {
	return []Anchor{
		TopLeft, TopCenter, TopRight,
		CenterLeft, Center, CenterRight,
		BottomLeft, BottomCenter, BottomRight,
	}
}

// base is the anchor's top-left window position before offsets.
func (a Anchor) base(screen, window image.Point) image.Point {
	sw, sh := screen.X, screen.Y
	ww, wh := window.X, window.Y

	midX := sw/2 - ww/2
	midY := sh/2 - wh/2
	right := sw - ww
	bottom := sh - wh

	switch a {
	case TopLeft:
		return image.Pt(0, 0)
	case TopCenter:
		return image.Pt(midX, 0)
	case TopRight:
		return image.Pt(right, 0)
	case CenterLeft:
		return image.Pt(0, midY)
	case Center:
		return image.Pt(midX, midY)
	case CenterRight:
		return image.Pt(right, midY)
	case BottomLeft:
		return image.Pt(0, bottom)
	case BottomRight:
		return image.Pt(right, bottom)
	default:
		return image.Pt(midX, bottom)
	}
}

// Placer computes popup positions. Results are not clamped to the screen.
type Placer struct {
	Anchor Anchor
	Offset image.Point
}

// NewPlacer builds a placer from a configured anchor name and offsets.
func NewPlacer(position string, xOffset, yOffset int) Placer {
	a, _ := ParseAnchor(position)
	return Placer{Anchor: a, Offset: image.Pt(xOffset, yOffset)}
}

// Place returns the top-left corner of a window of the given size.
func (p Placer) Place(screen, window image.Point) image.Point {
	return p.Anchor.base(screen, window).Add(p.Offset)
}
