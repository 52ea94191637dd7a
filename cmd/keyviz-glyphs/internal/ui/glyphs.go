package ui

import (
	"fmt"
	"image"
	"strings"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"golang.org/x/image/font/sfnt"

	"keyviz/cmd/keyviz-glyphs/internal/theme"
	"keyviz/internal/glyph"
)

// Entry is one row of the table.
type Entry struct {
	ID    string
	Glyph string
	Codes string
	// Missing lists code points the loaded font has no glyph for.
	Missing []rune
}

// Entries lists table in key order. When fontData is non-nil each code
// point is checked against it.
func Entries(table *glyph.Table, fontData []byte) ([]Entry, error) {
	var f *sfnt.Font
	if fontData != nil {
		var err error
		if f, err = sfnt.Parse(fontData); err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
	}

	var buf sfnt.Buffer
	entries := make([]Entry, 0, table.Len())
	for _, id := range table.Keys() {
		g, _ := table.Lookup(id)
		e := Entry{ID: id, Glyph: g, Codes: glyph.FormatGlyph(g)}
		if f != nil {
			for _, r := range g {
				if idx, err := f.GlyphIndex(&buf, r); err != nil || idx == 0 {
					e.Missing = append(e.Missing, r)
				}
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GlyphList shows every table entry next to its rendering.
type GlyphList struct {
	theme   *theme.Theme
	title   string
	entries []Entry

	filter widget.Editor
	list   widget.List
}

// NewGlyphList creates the view. title is shown above the list.
func NewGlyphList(t *theme.Theme, title string, entries []Entry) *GlyphList {
	g := &GlyphList{
		theme:   t,
		title:   title,
		entries: entries,
		list: widget.List{
			List: layout.List{Axis: layout.Vertical},
		},
	}
	g.filter.SingleLine = true
	return g
}

func (g *GlyphList) visible() []Entry {
	q := strings.ToUpper(strings.TrimSpace(g.filter.Text()))
	if q == "" {
		return g.entries
	}
	var out []Entry
	for _, e := range g.entries {
		if strings.Contains(e.ID, q) {
			out = append(out, e)
		}
	}
	return out
}

func (g *GlyphList) missing() int {
	n := 0
	for _, e := range g.entries {
		if len(e.Missing) > 0 {
			n++
		}
	}
	return n
}

// Layout renders the view.
func (g *GlyphList) Layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, g.theme.Palette.Background)
	rows := g.visible()

	return layout.UniformInset(g.theme.Config.Padding).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				h := material.H6(g.theme.Theme, g.title)
				h.TextSize = g.theme.Config.FontTitle
				return h.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				summary := fmt.Sprintf("%d entries, %d shown", len(g.entries), len(rows))
				l := material.Caption(g.theme.Theme, summary)
				l.Color = g.theme.Palette.TextMuted
				if n := g.missing(); n > 0 {
					l.Text += fmt.Sprintf(", %d missing from font", n)
					l.Color = g.theme.Palette.Error
				}
				return l.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: g.theme.Config.Spacing}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				ed := material.Editor(g.theme.Theme, &g.filter, "Filter by key identifier")
				ed.TextSize = g.theme.Config.FontBody
				return ed.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: g.theme.Config.Spacing}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return material.List(g.theme.Theme, &g.list).Layout(gtx, len(rows), func(gtx layout.Context, i int) layout.Dimensions {
					return g.layoutRow(gtx, rows[i])
				})
			}),
		)
	})
}

func (g *GlyphList) layoutRow(gtx layout.Context, e Entry) layout.Dimensions {
	height := gtx.Dp(g.theme.Config.RowHeight)

	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			size := image.Pt(height*2, height)
			paint.FillShape(gtx.Ops, g.theme.Palette.GlyphBg, clip.Rect{Max: size}.Op())

			gtx.Constraints = layout.Exact(size)
			return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				l := material.Label(g.theme.Theme, g.theme.Config.GlyphSize, e.Glyph)
				l.Font = font.Font{Typeface: theme.GlyphTypeface}
				l.Color = g.theme.Palette.Glyph
				return l.Layout(gtx)
			})
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(16)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return material.Body1(g.theme.Theme, e.ID).Layout(gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					l := material.Caption(g.theme.Theme, e.Codes)
					l.Color = g.theme.Palette.TextMuted
					if len(e.Missing) > 0 {
						l.Text += "  (not in font)"
						l.Color = g.theme.Palette.Error
					}
					return l.Layout(gtx)
				}),
			)
		}),
	)
}
