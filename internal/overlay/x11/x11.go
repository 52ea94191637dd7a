// Package x11 implements overlay.Toolkit on a raw X11 connection.
//
// Popups are override-redirect windows: the window manager neither
// decorates nor focuses them. Each window keeps its image so Expose
// events can repaint it.
package x11

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"keyviz/internal/logging"
	"keyviz/internal/overlay"
)

// maxChunk bounds the pixel payload of one PutImage request.
const maxChunk = 64 * 1024

// Toolkit owns the X connection and its event loop.
type Toolkit struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	rec    logging.Recorder

	mu      sync.Mutex
	windows map[xproto.Window]*window

	done chan struct{}
}

var _ overlay.Toolkit = (*Toolkit)(nil)

// Open connects to display, or $DISPLAY when display is empty.
func Open(display string, rec logging.Recorder) (*Toolkit, error) {
	if rec == nil {
		rec = logging.Discard()
	}

	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	if setup == nil || len(setup.Roots) == 0 {
		conn.Close()
		return nil, fmt.Errorf("X server reported no screens")
	}

	tk := &Toolkit{
		conn:    conn,
		screen:  setup.DefaultScreen(conn),
		rec:     rec,
		windows: make(map[xproto.Window]*window),
		done:    make(chan struct{}),
	}
	go tk.events()
	return tk, nil
}

// clampCoord fits v into the protocol's signed 16-bit window position.
func clampCoord(v int) int16 {
	return int16(max(math.MinInt16, min(v, math.MaxInt16)))
}

// ScreenSize returns the default screen's size in pixels.
func (tk *Toolkit) ScreenSize() (image.Point, error) {
	return image.Pt(int(tk.screen.WidthInPixels), int(tk.screen.HeightInPixels)), nil
}

// Show creates, maps and raises a popup.
func (tk *Toolkit) Show(img *image.RGBA, at image.Point) (overlay.Popup, error) {
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("empty popup image")
	}

	wid, err := xproto.NewWindowId(tk.conn)
	if err != nil {
		return nil, fmt.Errorf("allocate window id: %w", err)
	}

	// Value list order follows the mask bit order.
	mask := uint32(xproto.CwBackPixel | xproto.CwOverrideRedirect | xproto.CwEventMask)
	values := []uint32{
		tk.screen.BlackPixel,
		1,
		xproto.EventMaskExposure,
	}
	err = xproto.CreateWindowChecked(tk.conn, tk.screen.RootDepth, wid, tk.screen.Root,
		clampCoord(at.X), clampCoord(at.Y), uint16(min(size.X, math.MaxUint16)), uint16(min(size.Y, math.MaxUint16)), 0,
		xproto.WindowClassInputOutput, tk.screen.RootVisual, mask, values).Check()
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	gc, err := xproto.NewGcontextId(tk.conn)
	if err != nil {
		xproto.DestroyWindow(tk.conn, wid)
		return nil, fmt.Errorf("allocate graphics context: %w", err)
	}
	if err := xproto.CreateGCChecked(tk.conn, gc, xproto.Drawable(wid), 0, nil).Check(); err != nil {
		xproto.DestroyWindow(tk.conn, wid)
		return nil, fmt.Errorf("create graphics context: %w", err)
	}

	w := &window{
		tk:   tk,
		id:   wid,
		gc:   gc,
		size: size,
		data: toBGRX(img),
	}

	tk.mu.Lock()
	tk.windows[wid] = w
	tk.mu.Unlock()

	xproto.MapWindow(tk.conn, wid)
	xproto.ConfigureWindow(tk.conn, wid, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	w.paint()
	return w, nil
}

// Close destroys any remaining windows and disconnects.
func (tk *Toolkit) Close() error {
	tk.mu.Lock()
	windows := tk.windows
	tk.windows = make(map[xproto.Window]*window)
	tk.mu.Unlock()

	for _, w := range windows {
		w.destroy()
	}
	tk.conn.Close()
	<-tk.done
	return nil
}

func (tk *Toolkit) events() {
	defer close(tk.done)
	for {
		ev, xerr := tk.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}
		if xerr != nil {
			tk.rec.Log(context.Background(), logging.LevelWarn, "x11 error", "error", xerr)
			continue
		}

		expose, ok := ev.(xproto.ExposeEvent)
		if !ok || expose.Count != 0 {
			continue
		}
		tk.mu.Lock()
		w := tk.windows[expose.Window]
		tk.mu.Unlock()
		if w != nil {
			w.paint()
		}
	}
}

type window struct {
	tk   *Toolkit
	id   xproto.Window
	gc   xproto.Gcontext
	size image.Point
	data []byte

	once sync.Once
}

// paint uploads the image in row bands that fit maxChunk.
func (w *window) paint() {
	stride := w.size.X * 4
	rows := max(1, maxChunk/stride)

	for y := 0; y < w.size.Y; y += rows {
		n := min(rows, w.size.Y-y)
		xproto.PutImage(w.tk.conn, xproto.ImageFormatZPixmap, xproto.Drawable(w.id), w.gc,
			uint16(w.size.X), uint16(n), 0, int16(y), 0, w.tk.screen.RootDepth,
			w.data[y*stride:(y+n)*stride])
	}
}

func (w *window) destroy() {
	w.once.Do(func() {
		xproto.FreeGC(w.tk.conn, w.gc)
		xproto.DestroyWindow(w.tk.conn, w.id)
	})
}

func (w *window) Close() error {
	w.tk.mu.Lock()
	delete(w.tk.windows, w.id)
	w.tk.mu.Unlock()

	w.destroy()
	return nil
}

// toBGRX converts to the 32-bit little-endian ZPixmap layout used by
// depth 24 TrueColor visuals.
func toBGRX(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			out = append(out, row[i+2], row[i+1], row[i], 0)
		}
	}
	return out
}
