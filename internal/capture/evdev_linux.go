//go:build linux

package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// DefaultDeviceDir is where the kernel exposes evdev nodes.
const DefaultDeviceDir = "/dev/input"

var categories = map[evdev.EvType]Category{
	evdev.EV_SYN: CategorySync,
	evdev.EV_KEY: CategoryKey,
	evdev.EV_REL: CategoryRelative,
	evdev.EV_ABS: CategoryAbsolute,
	evdev.EV_MSC: CategoryMisc,
}

var codeNames = map[evdev.EvType]map[evdev.EvCode]string{
	evdev.EV_SYN: evdev.SYNToString,
	evdev.EV_KEY: evdev.KEYToString,
	evdev.EV_REL: evdev.RELToString,
	evdev.EV_ABS: evdev.ABSToString,
	evdev.EV_MSC: evdev.MSCToString,
}

type evdevSource struct {
	dir string
}

// NewEvdevSource returns a Source over the event nodes in dir.
func NewEvdevSource(dir string) (Source, error) {
	if dir == "" {
		dir = DefaultDeviceDir
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("device dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("device dir %s is not a directory", dir)
	}
	return &evdevSource{dir: dir}, nil
}

func (s *evdevSource) List() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "event*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *evdevSource) Open(path string) (Device, error) {
	if err := unix.Access(path, unix.R_OK); err != nil {
		if errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) {
			return nil, fmt.Errorf("%s: %w", path, ErrPermissionDenied)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	name, err := dev.Name()
	if err != nil {
		name = filepath.Base(path)
	}
	return &evdevDevice{dev: dev, path: path, name: name}, nil
}

type evdevDevice struct {
	dev  *evdev.InputDevice
	path string
	name string
}

func (d *evdevDevice) Name() string { return d.name }
func (d *evdevDevice) Path() string { return d.path }
func (d *evdevDevice) Close() error { return d.dev.Close() }

func (d *evdevDevice) Capabilities() map[Category][]string {
	caps := make(map[Category][]string)
	for _, t := range d.dev.CapableTypes() {
		cat, ok := categories[t]
		if !ok {
			continue
		}
		names := codeNames[t]
		for _, code := range d.dev.CapableEvents(t) {
			if name, ok := names[code]; ok {
				caps[cat] = append(caps[cat], name)
			}
		}
	}
	return caps
}

func (d *evdevDevice) ReadEvent() (RawEvent, error) {
	ev, err := d.dev.ReadOne()
	if err != nil {
		return RawEvent{}, err
	}

	out := RawEvent{
		Category:  CategoryOther,
		State:     KeyState(ev.Value),
		Timestamp: time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond)),
	}
	if cat, ok := categories[ev.Type]; ok {
		out.Category = cat
	}
	if name, ok := codeNames[ev.Type][ev.Code]; ok {
		out.Codes = []string{name}
	}
	return out, nil
}
