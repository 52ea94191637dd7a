// keyviz-glyphgen regenerates internal/glyph/table_gen.go from the glyph
// listing shipped with the Kenney Input font.
//
//	keyviz-glyphgen -map font/kenney_input_keyboard_&_mouse_map.txt -o internal/glyph/table_gen.go
//	keyviz-glyphgen -map ... -check
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"keyviz/internal/glyph"
)

func main() {
	mapPath := flag.String("map", "font/kenney_input_keyboard_&_mouse_map.txt", "font glyph listing")
	out := flag.String("o", "internal/glyph/table_gen.go", "output file, - for stdout")
	check := flag.Bool("check", false, "report differences from the compiled-in table instead of writing")
	flag.Parse()

	if err := run(*mapPath, *out, *check); err != nil {
		fmt.Fprintf(os.Stderr, "keyviz-glyphgen: %v\n", err)
		os.Exit(1)
	}
}

func run(mapPath, out string, check bool) error {
	f, err := os.Open(mapPath)
	if err != nil {
		return err
	}
	defer f.Close()

	fm, err := glyph.ParseFontMap(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", mapPath, err)
	}
	table := glyph.Derive(fm)

	if check {
		return compare(glyph.Generated(), table)
	}

	var buf bytes.Buffer
	if err := glyph.WriteSource(&buf, filepath.Base(mapPath), table); err != nil {
		return err
	}
	if out == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d entries to %s\n", len(table), out)
	return nil
}

func compare(have, want map[string]string) error {
	diffs := 0
	for id, g := range want {
		switch cur, ok := have[id]; {
		case !ok:
			fmt.Printf("+ %-16s %s\n", id, glyph.FormatGlyph(g))
			diffs++
		case cur != g:
			fmt.Printf("~ %-16s %s -> %s\n", id, glyph.FormatGlyph(cur), glyph.FormatGlyph(g))
			diffs++
		}
	}
	for id, g := range have {
		if _, ok := want[id]; !ok {
			fmt.Printf("- %-16s %s\n", id, glyph.FormatGlyph(g))
			diffs++
		}
	}
	if diffs > 0 {
		return fmt.Errorf("%d entries differ", diffs)
	}
	fmt.Println("table is up to date")
	return nil
}
