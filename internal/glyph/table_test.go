package glyph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableEntriesNonEmpty(t *testing.T) {
	table := Default()
	require.Greater(t, table.Len(), 80)

	for _, id := range table.Keys() {
		g, ok := table.Lookup(id)
		assert.True(t, ok, id)
		assert.NotEmpty(t, g, id)
		assert.True(t, strings.HasPrefix(id, KeyPrefix), id)
	}
}

func TestDefaultTableCollapsesAliases(t *testing.T) {
	table := Default()

	pairs := [][2]string{
		{"KEY_LEFTSHIFT", "KEY_RIGHTSHIFT"},
		{"KEY_LEFTCTRL", "KEY_RIGHTCTRL"},
		{"KEY_LEFTALT", "KEY_RIGHTALT"},
		{"KEY_LEFTMETA", "KEY_RIGHTMETA"},
		{"KEY_SLASH", "KEY_KPSLASH"},
		{"KEY_MINUS", "KEY_KPMINUS"},
	}
	for _, p := range pairs {
		a, okA := table.Lookup(p[0])
		b, okB := table.Lookup(p[1])
		require.True(t, okA && okB, "%s/%s missing", p[0], p[1])
		assert.Equal(t, a, b, "%s and %s differ", p[0], p[1])
	}
}

func TestDefaultTableKnownGlyphs(t *testing.T) {
	table := Default()

	g, ok := table.Lookup("KEY_A")
	require.True(t, ok)
	assert.Equal(t, "\ue015", g)

	g, ok = table.Lookup("KEY_SLASH")
	require.True(t, ok)
	assert.Equal(t, "\ue0c3", g)

	_, ok = table.Lookup("KEY_SCROLLLOCK")
	assert.False(t, ok)
}

func TestBuildCollapsesToFirstPresentMember(t *testing.T) {
	table := Build(map[string]string{"KEY_RIGHTSHIFT": "R"})

	left, ok := table.Lookup("KEY_LEFTSHIFT")
	require.True(t, ok)
	assert.Equal(t, "R", left)

	table = Build(map[string]string{"KEY_LEFTSHIFT": "L", "KEY_RIGHTSHIFT": "R"})
	right, _ := table.Lookup("KEY_RIGHTSHIFT")
	assert.Equal(t, "L", right)
}

func TestBuildDropsEmptyEntries(t *testing.T) {
	table := Build(map[string]string{"KEY_A": "", "KEY_B": "b"}, map[string]string{"KEY_B": ""})

	_, ok := table.Lookup("KEY_A")
	assert.False(t, ok)
	g, _ := table.Lookup("KEY_B")
	assert.Equal(t, "b", g)
}

func TestBuildOverridesApplyInOrder(t *testing.T) {
	table := Build(
		map[string]string{"KEY_A": "a", "KEY_DOT": "."},
		map[string]string{"KEY_A": "first", "KEY_Q": "q"},
		map[string]string{"KEY_A": "second"},
	)

	g, _ := table.Lookup("KEY_A")
	assert.Equal(t, "second", g)
	g, _ = table.Lookup("KEY_Q")
	assert.Equal(t, "q", g)
	g, _ = table.Lookup("KEY_DOT")
	assert.Equal(t, ".", g)
}

func TestBuildOverrideAppliesToWholeGroup(t *testing.T) {
	table := Build(Generated(), map[string]string{"KEY_KPMINUS": "\ue0ff"})

	main, _ := table.Lookup("KEY_MINUS")
	pad, _ := table.Lookup("KEY_KPMINUS")
	assert.Equal(t, "\ue0ff", main)
	assert.Equal(t, main, pad)
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	base := map[string]string{"KEY_RIGHTCTRL": "c"}
	Build(base, map[string]string{"KEY_LEFTCTRL": "x"})
	assert.Equal(t, map[string]string{"KEY_RIGHTCTRL": "c"}, base)
}

func TestGeneratedReturnsCopy(t *testing.T) {
	g := Generated()
	g["KEY_A"] = "mutated"

	v, _ := Default().Lookup("KEY_A")
	assert.Equal(t, "\ue015", v)
}

func TestNilTable(t *testing.T) {
	var table *Table
	_, ok := table.Lookup("KEY_A")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
	assert.Nil(t, table.Keys())
}

func TestAliasGroup(t *testing.T) {
	assert.Equal(t, []string{"KEY_SLASH", "KEY_KPSLASH"}, AliasGroup("KEY_KPSLASH"))
	assert.Nil(t, AliasGroup("KEY_A"))
}

const sampleFontMap = `Kenney Input Keyboard & Mouse
keyboard_a: U+E015
keyboard_1: U+E003
keyboard_shift: U+E0BD
keyboard_slash_forward: U+E0C3
keyboard_minus: U+E094
keyboard_f1: U+E067
keyboard_f12: U+E06C
mouse_left: U+E100
`

func TestParseFontMap(t *testing.T) {
	fm, err := ParseFontMap(strings.NewReader(sampleFontMap))
	require.NoError(t, err)

	assert.Len(t, fm, 8)
	assert.Equal(t, rune(0xE015), fm["keyboard_a"])
	assert.Equal(t, rune(0xE100), fm["mouse_left"])
}

func TestDerive(t *testing.T) {
	fm, err := ParseFontMap(strings.NewReader(sampleFontMap))
	require.NoError(t, err)

	table := Derive(fm)
	assert.Equal(t, map[string]string{
		"KEY_A":          "\ue015",
		"KEY_1":          "\ue003",
		"KEY_LEFTSHIFT":  "\ue0bd",
		"KEY_RIGHTSHIFT": "\ue0bd",
		"KEY_SLASH":      "\ue0c3",
		"KEY_KPSLASH":    "\ue0c3",
		"KEY_MINUS":      "\ue094",
		"KEY_KPMINUS":    "\ue094",
		"KEY_F1":         "\ue067",
		"KEY_F12":        "\ue06c",
	}, table)
}

func TestParseGlyph(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"U+E0A9", "\ue0a9", false},
		{"u+e0a9", "\ue0a9", false},
		{"U+E015 U+E0BD", "\ue015\ue0bd", false},
		{"  ⇧ ", "⇧", false},
		{"Shift", "Shift", false},
		{"U+ZZZZ", "", true},
		{"U+110000", "", true},
		{"U+D800", "", true},
		{"U+DFFF", "", true},
		{"U+E015 U+DC00", "", true},
		{"U+E015 x", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGlyph(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatGlyph(t *testing.T) {
	assert.Equal(t, "U+E015", FormatGlyph("\ue015"))
	assert.Equal(t, "U+0041 U+1F600", FormatGlyph("A\U0001F600"))
}

func TestWriteSourceMatchesCheckedInTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSource(&buf, "kenney_input_keyboard_&_mouse_map.txt", Generated()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "// Code generated by keyviz-glyphgen"))
	assert.Contains(t, out, `"KEY_A":          "\ue015",`)
	assert.Contains(t, out, `"KEY_RIGHTSHIFT": "\ue0bd",`)
}
