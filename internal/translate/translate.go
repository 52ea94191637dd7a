// Package translate turns a captured key identifier into the text an
// overlay shows for it.
package translate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"keyviz/internal/glyph"
)

// Kind tags a Result.
type Kind int

const (
	// Suppressed means nothing should be displayed.
	Suppressed Kind = iota
	// Found means the key has a glyph in the table.
	Found
	// Fallback means the text was derived from the key name.
	Fallback
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case Fallback:
		return "fallback"
	default:
		return "suppressed"
	}
}

// Result is the outcome of translating one key.
type Result struct {
	Kind Kind
	Text string
}

// Display returns the text to show and whether anything should be shown.
func (r Result) Display() (string, bool) {
	return r.Text, r.Kind != Suppressed && r.Text != ""
}

// Lookup is the read side of a glyph table.
type Lookup interface {
	Lookup(id string) (string, bool)
}

// Translator maps key identifiers through a glyph table, falling back to
// a label derived from the key name.
type Translator struct {
	table Lookup
}

// New returns a Translator backed by table.
func New(table Lookup) *Translator {
	return &Translator{table: table}
}

// NewDefault returns a Translator over glyph.Default().
func NewDefault() *Translator {
	return New(glyph.Default())
}

// Translate never panics; a failing lookup yields Suppressed.
func (t *Translator) Translate(id string) (res Result) {
	defer func() {
		if recover() != nil {
			res = Result{Kind: Suppressed}
		}
	}()

	if t != nil && t.table != nil {
		if g, ok := t.table.Lookup(id); ok && g != "" {
			return Result{Kind: Found, Text: g}
		}
	}

	val, ok := strings.CutPrefix(id, glyph.KeyPrefix)
	if !ok || val == "" {
		return Result{Kind: Suppressed}
	}
	if utf8.RuneCountInString(val) == 1 {
		return Result{Kind: Fallback, Text: val}
	}
	return Result{Kind: Fallback, Text: capitalize(val)}
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
