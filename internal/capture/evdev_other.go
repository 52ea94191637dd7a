//go:build !linux

package capture

// DefaultDeviceDir is empty where evdev is unavailable.
const DefaultDeviceDir = ""

// NewEvdevSource reports ErrUnsupported outside Linux.
func NewEvdevSource(dir string) (Source, error) {
	return nil, ErrUnsupported
}
