package overlay

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Measure returns the popup size for text: the advance width and line
// height of the face plus padding on each side.
func Measure(text string, st Style) image.Point {
	m := st.Face.Metrics()
	w := font.MeasureString(st.Face, text).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	return image.Pt(w+2*st.PadX, h+2*st.PadY)
}

// Rasterize draws text centred on a padded background.
func Rasterize(text string, st Style) *image.RGBA {
	size := Measure(text, st)
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.NewUniform(st.Background), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(st.Text),
		Face: st.Face,
		Dot:  fixed.P(st.PadX, st.PadY+st.Face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return img
}
