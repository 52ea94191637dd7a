package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"keyviz/internal/logging"
)

func fontDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	sub := filepath.Join(dir, "go")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "Go-Regular.ttf"), goregular.TTF, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Go-Bold.TTF"), gobold.TTF, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.otf"), []byte("not a font"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hello"), 0o644))
	return dir
}

func TestScan(t *testing.T) {
	dir := fontDir(t)

	c, err := Scan(dir, filepath.Join(dir, "missing"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Go"}, c.Families())
	assert.True(t, c.Has("Go"))
	assert.True(t, c.Has("go"))
	assert.False(t, c.Has("Kenney Input Keyboard & Mouse"))
	assert.Len(t, c.Paths("GO"), 2)
}

func TestScanEmpty(t *testing.T) {
	c, err := Scan()
	require.NoError(t, err)
	assert.Empty(t, c.Families())
	assert.Nil(t, c.Suggest(""))
}

func TestSuggest(t *testing.T) {
	c, err := Scan(fontDir(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Go"}, c.Suggest("Go Mono"))
	assert.Empty(t, c.Suggest("Kenney Input"))
}

func TestCheck(t *testing.T) {
	c, err := Scan(fontDir(t))
	require.NoError(t, err)

	assert.True(t, Check(c, "Go", logging.Discard()))
	assert.False(t, Check(c, "Kenney Input Keyboard & Mouse", logging.Discard()))
}

func TestFace(t *testing.T) {
	dir := fontDir(t)
	c, err := Scan(dir)
	require.NoError(t, err)

	face, err := Face(c, "go", "", 24)
	require.NoError(t, err)
	defer face.Close()
	assert.Greater(t, face.Metrics().Height.Ceil(), 0)

	face, err = Face(c, "anything", filepath.Join(dir, "Go-Bold.TTF"), 12)
	require.NoError(t, err)
	face.Close()

	_, err = Face(c, "Kenney Input Keyboard & Mouse", "", 24)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Face(c, "", filepath.Join(dir, "broken.otf"), 24)
	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	face, err := Fallback(24)
	require.NoError(t, err)
	defer face.Close()

	adv, ok := face.GlyphAdvance('A')
	assert.True(t, ok)
	assert.Greater(t, adv.Ceil(), 0)
}

func TestDefaultDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	dirs := DefaultDirs()
	assert.Contains(t, dirs, "/tmp/xdg-data/fonts")
	assert.Contains(t, dirs, "/usr/share/fonts")
}
