// Package glyph holds the immutable mapping from evdev key identifiers to
// the display glyphs of the Kenney Input icon font.
//
// The table is built once at startup by merging the generated base table,
// the manual overrides and any user overrides from the config file. Keys
// whose left and right (or main and keypad) variants are drawn with the
// same icon are collapsed into alias groups so both always resolve to one
// glyph.
package glyph

//go:generate go run ../../cmd/keyviz-glyphgen -map ../../font/kenney_input_keyboard_&_mouse_map.txt -o table_gen.go

import (
	"sort"
)

// KeyPrefix is the prefix every evdev key identifier carries.
const KeyPrefix = "KEY_"

// aliasGroups lists keys that must share a glyph. The first member of each
// group is canonical.
var aliasGroups = [][]string{
	{"KEY_LEFTSHIFT", "KEY_RIGHTSHIFT"},
	{"KEY_LEFTCTRL", "KEY_RIGHTCTRL"},
	{"KEY_LEFTALT", "KEY_RIGHTALT"},
	{"KEY_LEFTMETA", "KEY_RIGHTMETA"},
	{"KEY_SLASH", "KEY_KPSLASH"},
	{"KEY_MINUS", "KEY_KPMINUS"},
}

// manual holds entries the generator cannot derive from the font map.
// Empty today; the generated table covers every glyph the font ships.
var manual = map[string]string{}

// Table is an immutable key identifier to glyph mapping.
type Table struct {
	glyphs map[string]string
}

// Generated returns a copy of the generated base table.
func Generated() map[string]string {
	return clone(generated)
}

// Manual returns a copy of the built-in override list.
func Manual() map[string]string {
	return clone(manual)
}

// Default builds the table shipped with keyviz: generated entries plus the
// manual overrides.
func Default() *Table {
	return Build(generated, manual)
}

// Build merges base with each override map in order. Empty glyphs are
// dropped. An override that names any member of an alias group applies to
// the whole group.
func Build(base map[string]string, overrides ...map[string]string) *Table {
	t := &Table{glyphs: make(map[string]string, len(base))}
	for id, g := range base {
		if g != "" {
			t.glyphs[id] = g
		}
	}
	t.collapse()

	for _, o := range overrides {
		for _, id := range sortedKeys(o) {
			if g := o[id]; g != "" {
				t.set(id, g)
			}
		}
	}
	return t
}

// collapse makes every alias group resolve to the glyph of its first
// present member.
func (t *Table) collapse() {
	for _, group := range aliasGroups {
		var g string
		for _, id := range group {
			if v, ok := t.glyphs[id]; ok {
				g = v
				break
			}
		}
		if g == "" {
			continue
		}
		for _, id := range group {
			t.glyphs[id] = g
		}
	}
}

func (t *Table) set(id, g string) {
	for _, group := range aliasGroups {
		for _, member := range group {
			if member != id {
				continue
			}
			for _, m := range group {
				t.glyphs[m] = g
			}
			return
		}
	}
	t.glyphs[id] = g
}

// Lookup returns the glyph for id. A miss means "use the fallback label".
func (t *Table) Lookup(id string) (string, bool) {
	if t == nil {
		return "", false
	}
	g, ok := t.glyphs[id]
	return g, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.glyphs)
}

// Keys returns every key identifier in sorted order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	return sortedKeys(t.glyphs)
}

// AliasGroup returns the group id belongs to, or nil.
func AliasGroup(id string) []string {
	for _, group := range aliasGroups {
		for _, member := range group {
			if member == id {
				return append([]string(nil), group...)
			}
		}
	}
	return nil
}

func clone(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
