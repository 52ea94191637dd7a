// Package capture reads key events from physical keyboards.
//
// Discovery enumerates input devices once, keeps those that look like
// keyboards and starts one listener goroutine per device. Each listener
// blocks in its device read, filters to key-down events, translates the key
// and pushes the result to a shared sink. A failing device only ends its
// own listener.
//
// Platform support:
//   - Linux: evdev (/dev/input/event*, requires the input group or root)
//   - elsewhere: no backend; NewEvdevSource returns ErrUnsupported
package capture

import (
	"errors"
	"slices"
	"time"

	"keyviz/internal/translate"
)

// Category is the kind of an input event.
type Category int

const (
	CategoryOther Category = iota
	CategorySync
	CategoryKey
	CategoryRelative
	CategoryAbsolute
	CategoryMisc
)

func (c Category) String() string {
	switch c {
	case CategorySync:
		return "sync"
	case CategoryKey:
		return "key"
	case CategoryRelative:
		return "relative"
	case CategoryAbsolute:
		return "absolute"
	case CategoryMisc:
		return "misc"
	default:
		return "other"
	}
}

// KeyState is the transition a key event reports.
type KeyState int32

const (
	KeyUp     KeyState = 0
	KeyDown   KeyState = 1
	KeyRepeat KeyState = 2
)

// KeyboardProbe is the capability a device must report to count as a
// keyboard.
const KeyboardProbe = "KEY_A"

// RawEvent is one record read from a device.
type RawEvent struct {
	Category Category
	// Codes holds every name the device layer knows for the code. Key
	// events are identified by the first one.
	Codes     []string
	State     KeyState
	Timestamp time.Time
}

// Code returns the first alias, or "" if there is none.
func (e RawEvent) Code() string {
	if len(e.Codes) == 0 {
		return ""
	}
	return e.Codes[0]
}

// Device is an opened input device.
type Device interface {
	Name() string
	Path() string
	// Capabilities maps each supported category to its supported codes.
	Capabilities() map[Category][]string
	// ReadEvent blocks until the next event. After an error the device
	// is unusable.
	ReadEvent() (RawEvent, error)
	Close() error
}

// Source enumerates and opens devices.
type Source interface {
	List() ([]string, error)
	Open(path string) (Device, error)
}

// Translator converts key identifiers into display results.
type Translator interface {
	Translate(id string) translate.Result
}

// Sink receives display strings. dispatch.Queue implements it.
type Sink interface {
	Push(item string)
}

var (
	// ErrUnsupported is returned where no capture backend exists.
	ErrUnsupported = errors.New("keyboard capture not available on this platform")

	// ErrPermissionDenied is returned when a device node cannot be read.
	ErrPermissionDenied = errors.New("insufficient permissions to read input device (join the 'input' group or run as root)")
)

// IsKeyboard reports whether caps include key events and the A key.
func IsKeyboard(caps map[Category][]string) bool {
	keys, ok := caps[CategoryKey]
	if !ok {
		return false
	}
	return slices.Contains(keys, KeyboardProbe)
}
