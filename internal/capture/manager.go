package capture

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"keyviz/internal/logging"
)

// Manager discovers keyboards and runs one Listener per device.
type Manager struct {
	src  Source
	tr   Translator
	sink Sink
	rec  logging.Recorder

	wg     sync.WaitGroup
	mu     sync.Mutex
	active map[string]struct{}

	// settle bounds how long a hot-plugged node may stay unreadable while
	// udev fixes its permissions.
	settle time.Duration
}

// NewManager creates a manager. Nothing is opened until Start.
func NewManager(src Source, tr Translator, sink Sink, rec logging.Recorder) *Manager {
	if rec == nil {
		rec = logging.Discard()
	}
	return &Manager{
		src:    src,
		tr:     tr,
		sink:   sink,
		rec:    rec,
		active: make(map[string]struct{}),
		settle: time.Second,
	}
}

// Start enumerates devices once and spawns a listener for every keyboard.
// Devices that fail to open are skipped. Finding no keyboard is logged as
// a warning and is not an error.
func (m *Manager) Start(ctx context.Context) (int, error) {
	paths, err := m.src.List()
	if err != nil {
		return 0, fmt.Errorf("list input devices: %w", err)
	}

	started := 0
	for _, path := range paths {
		ok, err := m.probe(ctx, path)
		if err != nil {
			m.rec.Log(ctx, logging.LevelWarn, "error checking device", "path", path, "error", err)
			continue
		}
		if ok {
			started++
		}
	}

	if started == 0 {
		m.rec.Log(ctx, logging.LevelWarn, "no keyboard devices found", "candidates", len(paths))
	}
	return started, nil
}

// probe opens path and starts a listener if it is a keyboard that is not
// already being listened to.
func (m *Manager) probe(ctx context.Context, path string) (bool, error) {
	m.mu.Lock()
	_, busy := m.active[path]
	m.mu.Unlock()
	if busy {
		return false, nil
	}

	dev, err := m.src.Open(path)
	if err != nil {
		return false, err
	}
	if !IsKeyboard(dev.Capabilities()) {
		dev.Close()
		return false, nil
	}

	m.mu.Lock()
	if _, busy := m.active[path]; busy {
		m.mu.Unlock()
		dev.Close()
		return false, nil
	}
	m.active[path] = struct{}{}
	m.mu.Unlock()

	m.rec.Log(ctx, logging.LevelInfo, "found keyboard", "device", dev.Name(), "path", path)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.release(path)
		defer logging.RecoverGoroutine(m.rec, "listener "+path)

		NewListener(dev, m.tr, m.sink, m.rec).Run(ctx)
	}()
	return true, nil
}

func (m *Manager) release(path string) {
	m.mu.Lock()
	delete(m.active, path)
	m.mu.Unlock()
}

// Active returns the paths currently being listened to.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.active))
	for p := range m.active {
		out = append(out, p)
	}
	return out
}

// Watch starts listeners for keyboards whose device nodes appear in dir
// after Start. It returns once the watch is established; the watch ends
// with ctx.
func (m *Manager) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer watcher.Close()
		m.watchLoop(ctx, watcher)
	}()
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) || !strings.HasPrefix(filepath.Base(event.Name), "event") {
				continue
			}
			m.rec.Log(ctx, logging.LevelInfo, "device appeared", "path", event.Name)
			m.wg.Add(1)
			go func(path string) {
				defer m.wg.Done()
				m.probeSettled(ctx, path)
			}(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.rec.Log(ctx, logging.LevelWarn, "device watch error", "error", err)
		}
	}
}

// probeSettled retries opening a fresh device node until it becomes
// readable or the settle window passes.
func (m *Manager) probeSettled(ctx context.Context, path string) {
	deadline := time.Now().Add(m.settle)
	delay := 50 * time.Millisecond

	for {
		_, err := m.probe(ctx, path)
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			m.rec.Log(ctx, logging.LevelWarn, "error checking device", "path", path, "error", err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// Wait blocks until every listener and watcher has exited.
func (m *Manager) Wait() {
	m.wg.Wait()
}
