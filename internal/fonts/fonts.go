// Package fonts finds installed font families and loads faces.
package fonts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"keyviz/internal/logging"
)

// ErrNotFound is returned when a family is not installed.
var ErrNotFound = errors.New("font family not found")

var extensions = []string{".ttf", ".otf", ".ttc"}

// Catalog maps family names to the files that provide them.
type Catalog struct {
	paths map[string][]string
	names map[string]string
}

// DefaultDirs returns the usual font directories, most specific first.
func DefaultDirs() []string {
	var dirs []string
	dirs = append(dirs, "font", "fonts")

	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		dirs = append(dirs, filepath.Join(data, "fonts"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".local", "share", "fonts"),
			filepath.Join(home, ".fonts"),
		)
	}
	return append(dirs, "/usr/local/share/fonts", "/usr/share/fonts")
}

// Scan indexes every font file under dirs. Missing directories and
// unparsable files are skipped.
func Scan(dirs ...string) (*Catalog, error) {
	c := &Catalog{
		paths: make(map[string][]string),
		names: make(map[string]string),
	}

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !slices.Contains(extensions, strings.ToLower(filepath.Ext(path))) {
				return nil
			}
			families, err := familiesOf(path)
			if err != nil {
				return nil
			}
			for _, fam := range families {
				c.add(fam, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
	}
	return c, nil
}

func (c *Catalog) add(family, path string) {
	key := strings.ToLower(family)
	if _, ok := c.names[key]; !ok {
		c.names[key] = family
	}
	if !slices.Contains(c.paths[key], path) {
		c.paths[key] = append(c.paths[key], path)
	}
}

func familiesOf(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fonts []*sfnt.Font
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		for i := 0; i < coll.NumFonts(); i++ {
			f, err := coll.Font(i)
			if err != nil {
				return nil, err
			}
			fonts = append(fonts, f)
		}
	} else {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, err
		}
		fonts = append(fonts, f)
	}

	var buf sfnt.Buffer
	var out []string
	for _, f := range fonts {
		name, err := f.Name(&buf, sfnt.NameIDFamily)
		if err != nil || name == "" {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

// Has reports whether family is installed. Matching ignores case.
func (c *Catalog) Has(family string) bool {
	_, ok := c.paths[strings.ToLower(family)]
	return ok
}

// Paths returns the files providing family.
func (c *Catalog) Paths(family string) []string {
	return slices.Clone(c.paths[strings.ToLower(family)])
}

// Families returns every installed family name, sorted.
func (c *Catalog) Families() []string {
	out := make([]string, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Suggest returns installed families sharing family's first word.
func (c *Catalog) Suggest(family string) []string {
	words := strings.Fields(strings.ToLower(family))
	if len(words) == 0 {
		return nil
	}

	var out []string
	for _, name := range c.Families() {
		if strings.Contains(strings.ToLower(name), words[0]) {
			out = append(out, name)
		}
	}
	return out
}

// Check logs whether family is installed and, if not, what is close.
func Check(c *Catalog, family string, rec logging.Recorder) bool {
	ctx := context.Background()
	if c.Has(family) {
		rec.Log(ctx, logging.LevelInfo, "font available", "family", family, "files", c.Paths(family))
		return true
	}
	rec.Log(ctx, logging.LevelWarn, "font not found", "family", family)
	if alt := c.Suggest(family); len(alt) > 0 {
		rec.Log(ctx, logging.LevelWarn, "possible alternatives", "families", alt)
	}
	return false
}

// Load parses a font file, taking the first face of a collection.
func Load(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return coll.Font(0)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Face opens file when set, otherwise the first file providing family.
func Face(c *Catalog, family, file string, size float64) (font.Face, error) {
	if file == "" {
		paths := c.Paths(family)
		if len(paths) == 0 {
			return nil, fmt.Errorf("%q: %w", family, ErrNotFound)
		}
		file = paths[0]
	}

	f, err := Load(file)
	if err != nil {
		return nil, err
	}
	return newFace(f, size)
}

// Fallback returns Go Regular at size. Private-use glyphs render as
// missing-glyph boxes in it.
func Fallback(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse fallback font: %w", err)
	}
	return newFace(f, size)
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}
