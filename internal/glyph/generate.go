package glyph

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"io"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"unicode/utf8"
)

// FontMap maps font glyph names (keyboard_a, keyboard_shift, ...) to the
// code point the font assigns them.
type FontMap map[string]rune

var fontMapLine = regexp.MustCompile(`^(.+): U\+([0-9A-Fa-f]+)\s*$`)

// ParseFontMap reads the "<glyph name>: U+<hex>" listing shipped next to
// the font. Lines that do not match are ignored.
func ParseFontMap(r io.Reader) (FontMap, error) {
	fm := make(FontMap)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		m := fontMapLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		cp, err := strconv.ParseUint(m[2], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("code point for %q: %w", m[1], err)
		}
		fm[strings.TrimSpace(m[1])] = rune(cp)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read font map: %w", err)
	}
	return fm, nil
}

// namedRules pairs evdev identifiers with font glyph names for everything
// that is not a letter, digit or function key.
var namedRules = [][2]string{
	{"KEY_SPACE", "keyboard_space"},
	{"KEY_ENTER", "keyboard_enter"},
	{"KEY_BACKSPACE", "keyboard_backspace"},
	{"KEY_LEFTSHIFT", "keyboard_shift"},
	{"KEY_RIGHTSHIFT", "keyboard_shift"},
	{"KEY_LEFTCTRL", "keyboard_ctrl"},
	{"KEY_RIGHTCTRL", "keyboard_ctrl"},
	{"KEY_LEFTALT", "keyboard_alt"},
	{"KEY_RIGHTALT", "keyboard_alt"},
	{"KEY_TAB", "keyboard_tab"},
	{"KEY_LEFTMETA", "keyboard_win"},
	{"KEY_RIGHTMETA", "keyboard_win"},
	{"KEY_ESC", "keyboard_escape"},
	{"KEY_CAPSLOCK", "keyboard_capslock"},
	{"KEY_UP", "keyboard_arrow_up"},
	{"KEY_DOWN", "keyboard_arrow_down"},
	{"KEY_LEFT", "keyboard_arrow_left"},
	{"KEY_RIGHT", "keyboard_arrow_right"},
	{"KEY_APOSTROPHE", "keyboard_apostrophe"},
	{"KEY_COMMA", "keyboard_comma"},
	{"KEY_DOT", "keyboard_period"},
	{"KEY_SLASH", "keyboard_slash_forward"},
	{"KEY_BACKSLASH", "keyboard_slash_back"},
	{"KEY_SEMICOLON", "keyboard_semicolon"},
	{"KEY_EQUAL", "keyboard_equals"},
	{"KEY_MINUS", "keyboard_minus"},
	{"KEY_LEFTBRACE", "keyboard_bracket_open"},
	{"KEY_RIGHTBRACE", "keyboard_bracket_close"},
	{"KEY_GRAVE", "keyboard_tilde"},
	{"KEY_PRINT", "keyboard_printscreen"},
	{"KEY_DELETE", "keyboard_delete"},
	{"KEY_PAGEUP", "keyboard_page_up"},
	{"KEY_PAGEDOWN", "keyboard_page_down"},
	{"KEY_HOME", "keyboard_home"},
	{"KEY_END", "keyboard_end"},
	{"KEY_INSERT", "keyboard_insert"},
	{"KEY_NUMLOCK", "keyboard_numlock"},
	{"KEY_KPSLASH", "keyboard_slash_forward"},
	{"KEY_KPASTERISK", "keyboard_asterisk"},
	{"KEY_KPMINUS", "keyboard_minus"},
	{"KEY_KPPLUS", "keyboard_plus"},
	{"KEY_KPENTER", "keyboard_numpad_enter"},
}

// Derive applies the fixed naming rules to a font map. Keys whose glyph
// the font lacks are left out.
func Derive(fm FontMap) map[string]string {
	out := make(map[string]string)
	add := func(id, name string) {
		if cp, ok := fm[name]; ok {
			out[id] = string(cp)
		}
	}

	for c := 'a'; c <= 'z'; c++ {
		add(KeyPrefix+strings.ToUpper(string(c)), "keyboard_"+string(c))
	}
	for d := 0; d <= 9; d++ {
		add(KeyPrefix+strconv.Itoa(d), "keyboard_"+strconv.Itoa(d))
	}
	for _, rule := range namedRules {
		add(rule[0], rule[1])
	}
	for f := 1; f <= 12; f++ {
		add(fmt.Sprintf("%sF%d", KeyPrefix, f), fmt.Sprintf("keyboard_f%d", f))
	}
	return out
}

var errEmptyGlyph = errors.New("empty glyph")

// ParseGlyph decodes an override value. "U+E0A9" and "U+E0A9 U+E0AA" are
// code point notation; anything else is taken literally.
func ParseGlyph(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errEmptyGlyph
	}
	if !strings.HasPrefix(strings.ToUpper(s), "U+") {
		return s, nil
	}

	var b strings.Builder
	for _, field := range strings.Fields(s) {
		if len(field) < 3 || !strings.EqualFold(field[:2], "U+") {
			return "", fmt.Errorf("malformed code point %q", field)
		}
		cp, err := strconv.ParseUint(field[2:], 16, 32)
		if err != nil || !utf8.ValidRune(rune(cp)) {
			return "", fmt.Errorf("malformed code point %q", field)
		}
		b.WriteRune(rune(cp))
	}
	return b.String(), nil
}

// FormatGlyph renders g in U+XXXX notation.
func FormatGlyph(g string) string {
	parts := make([]string, 0, len(g))
	for _, r := range g {
		parts = append(parts, fmt.Sprintf("U+%04X", r))
	}
	return strings.Join(parts, " ")
}

var sourceTemplate = template.Must(template.New("table").Parse(`// Code generated by keyviz-glyphgen from {{.Source}}; DO NOT EDIT.

package glyph

// generated maps evdev key identifiers to Kenney Input glyphs.
var generated = map[string]string{
{{- range .Entries}}
	{{printf "%q" .ID}}: "{{.Escaped}}",
{{- end}}
}
`))

// WriteSource renders table as gofmt'd Go source for table_gen.go.
func WriteSource(w io.Writer, source string, table map[string]string) error {
	type entry struct{ ID, Escaped string }
	data := struct {
		Source  string
		Entries []entry
	}{Source: source}
	for _, id := range sortedKeys(table) {
		data.Entries = append(data.Entries, entry{ID: id, Escaped: escape(table[id])})
	}

	var buf bytes.Buffer
	if err := sourceTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("gofmt table: %w", err)
	}
	_, err = w.Write(src)
	return err
}

func escape(g string) string {
	var b strings.Builder
	for _, r := range g {
		if r > 0xFFFF {
			fmt.Fprintf(&b, `\U%08x`, r)
		} else {
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.String()
}
