package overlay

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"keyviz/internal/logging"
)

// Toolkit is the windowing system.
type Toolkit interface {
	// ScreenSize returns the primary screen size in pixels.
	ScreenSize() (image.Point, error)
	// Show maps a borderless, topmost, unfocusable window showing img
	// with its top-left corner at at.
	Show(img *image.RGBA, at image.Point) (Popup, error)
}

// Popup is one visible window.
type Popup interface {
	Close() error
}

// Timer schedules a callback on the UI goroutine. display.Loop
// implements it.
type Timer interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Presenter renders each item as an independent popup that removes
// itself after the style's duration. Render must be called from the UI
// goroutine.
type Presenter struct {
	tk     Toolkit
	timer  Timer
	placer Placer
	style  Style
	rec    logging.Recorder

	// OnError, if set, is called after a failed render is logged.
	OnError func(text string, err error)

	mu   sync.Mutex
	live map[Popup]func() bool
}

// NewPresenter creates a presenter.
func NewPresenter(tk Toolkit, timer Timer, placer Placer, style Style, rec logging.Recorder) *Presenter {
	if rec == nil {
		rec = logging.Discard()
	}
	return &Presenter{
		tk:     tk,
		timer:  timer,
		placer: placer,
		style:  style,
		rec:    rec,
		live:   make(map[Popup]func() bool),
	}
}

// Render shows text. Toolkit failures are logged and the item dropped.
func (p *Presenter) Render(text string) {
	if err := p.render(text); err != nil {
		p.rec.Log(context.Background(), logging.LevelError, "render failed", "item", text, "error", err)
		if p.OnError != nil {
			p.OnError(text, err)
		}
	}
}

func (p *Presenter) render(text string) error {
	img := Rasterize(text, p.style)

	screen, err := p.tk.ScreenSize()
	if err != nil {
		return fmt.Errorf("screen size: %w", err)
	}
	at := p.placer.Place(screen, img.Bounds().Size())

	popup, err := p.tk.Show(img, at)
	if err != nil {
		return fmt.Errorf("show popup: %w", err)
	}

	p.rec.Log(context.Background(), logging.LevelDebug, "popup shown",
		"item", text,
		"x", at.X,
		"y", at.Y,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
	)

	p.mu.Lock()
	p.live[popup] = p.timer.AfterFunc(p.style.Duration, func() { p.expire(popup) })
	p.mu.Unlock()
	return nil
}

func (p *Presenter) expire(popup Popup) {
	p.mu.Lock()
	_, ok := p.live[popup]
	delete(p.live, popup)
	p.mu.Unlock()

	if !ok {
		return
	}
	if err := popup.Close(); err != nil {
		p.rec.Log(context.Background(), logging.LevelWarn, "close popup", "error", err)
	}
}

// Visible returns the number of popups still on screen.
func (p *Presenter) Visible() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Close removes every visible popup and cancels their timers.
func (p *Presenter) Close() error {
	p.mu.Lock()
	live := p.live
	p.live = make(map[Popup]func() bool)
	p.mu.Unlock()

	var firstErr error
	for popup, stop := range live {
		stop()
		if err := popup.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
