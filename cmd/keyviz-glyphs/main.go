// keyviz-glyphs opens a window listing every glyph table entry rendered in
// the configured icon font, flagging entries whose code points the font
// does not contain.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"gioui.org/app"
	giofont "gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/font/opentype"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"keyviz/cmd/keyviz-glyphs/internal/theme"
	"keyviz/cmd/keyviz-glyphs/internal/ui"
	"keyviz/internal/config"
	"keyviz/internal/fonts"
	"keyviz/internal/glyph"
	"keyviz/internal/overlay"
)

func main() {
	configPath := flag.String("config", "", "config file (.ini, .toml or .yaml)")
	fontFile := flag.String("font", "", "font file, overrides appearance.font_family")
	flag.Parse()

	cfg, diags := config.Load(config.Locate(*configPath))
	for _, d := range diags {
		log.Printf("config: %s", d)
	}
	if *fontFile != "" {
		cfg.Appearance.FontFile = *fontFile
	}

	data, source, err := readFont(cfg.Appearance)
	if err != nil {
		log.Printf("icon font unavailable, glyphs will render as boxes: %v", err)
	}

	table := glyph.Build(glyph.Generated(), glyph.Manual(), cfg.Glyphs)
	entries, err := ui.Entries(table, data)
	if err != nil {
		log.Fatal(err)
	}

	collection := gofont.Collection()
	if data != nil {
		face, err := opentype.Parse(data)
		if err != nil {
			log.Fatalf("parse %s: %v", source, err)
		}
		collection = append(collection, giofont.FontFace{
			Font: giofont.Font{Typeface: theme.GlyphTypeface},
			Face: face,
		})
	}

	mtheme := material.NewTheme()
	mtheme.Shaper = text.NewShaper(text.NoSystemFonts(), text.WithCollection(collection))
	t := theme.NewTheme(mtheme,
		nrgba(cfg.Appearance.TextColor, "white"),
		nrgba(cfg.Appearance.BgColor, "#2E2E2E"),
		float32(cfg.Appearance.FontSize),
	)

	title := fmt.Sprintf("Glyph table: %s", cfg.Appearance.FontFamily)
	if source != "" {
		title = fmt.Sprintf("Glyph table: %s", source)
	}
	view := ui.NewGlyphList(t, title, entries)

	go func() {
		w := new(app.Window)
		w.Option(app.Title("keyviz glyphs"))
		w.Option(app.Size(unit.Dp(480), unit.Dp(800)))

		if err := loop(w, view); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func loop(w *app.Window, view *ui.GlyphList) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			view.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func readFont(ac config.AppearanceConfig) ([]byte, string, error) {
	path := ac.FontFile
	if path == "" {
		catalog, err := fonts.Scan(fonts.DefaultDirs()...)
		if err != nil {
			return nil, "", err
		}
		paths := catalog.Paths(ac.FontFamily)
		if len(paths) == 0 {
			return nil, "", fmt.Errorf("%q: %w", ac.FontFamily, fonts.ErrNotFound)
		}
		path = paths[0]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, path, nil
}

func nrgba(s, fallback string) color.NRGBA {
	c, err := overlay.ParseColor(s)
	if err != nil {
		c = overlay.MustColor(fallback)
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
