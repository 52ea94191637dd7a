package capture

import (
	"context"
	"fmt"
	"sync"

	"keyviz/internal/logging"
)

// Listener owns the read loop of one device.
type Listener struct {
	dev  Device
	tr   Translator
	sink Sink
	rec  logging.Recorder
}

// NewListener wires a device to a translator and sink.
func NewListener(dev Device, tr Translator, sink Sink, rec logging.Recorder) *Listener {
	if rec == nil {
		rec = logging.Discard()
	}
	return &Listener{dev: dev, tr: tr, sink: sink, rec: rec}
}

// Run reads until the device fails or ctx is cancelled. Cancellation
// closes the device, which unblocks the pending read. The device is
// always closed when Run returns. A nil error means ctx ended.
func (l *Listener) Run(ctx context.Context) error {
	var once sync.Once
	closeDev := func() { once.Do(func() { l.dev.Close() }) }

	// Once.Do waits for a Close already running on the AfterFunc goroutine.
	stop := context.AfterFunc(ctx, closeDev)
	defer closeDev()
	defer stop()

	l.rec.Log(ctx, logging.LevelInfo, "listening",
		"device", l.dev.Name(),
		"path", l.dev.Path(),
	)

	for ctx.Err() == nil {
		ev, err := l.dev.ReadEvent()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			l.rec.Log(ctx, logging.LevelWarn, "device error",
				"device", l.dev.Name(),
				"path", l.dev.Path(),
				"error", err,
			)
			return fmt.Errorf("read %s: %w", l.dev.Path(), err)
		}
		l.handle(ctx, ev)
	}
	return nil
}

func (l *Listener) handle(ctx context.Context, ev RawEvent) {
	if ev.Category != CategoryKey || ev.State != KeyDown {
		return
	}
	id := ev.Code()
	if id == "" {
		return
	}

	l.rec.Log(ctx, logging.LevelInfo, "raw key", "path", l.dev.Path(), "key", id)

	if text, ok := l.tr.Translate(id).Display(); ok {
		l.sink.Push(text)
	}
}
