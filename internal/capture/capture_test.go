package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyviz/internal/dispatch"
	"keyviz/internal/display"
	"keyviz/internal/translate"
)

type fakeDevice struct {
	name   string
	path   string
	caps   map[Category][]string
	events chan RawEvent
	fail   error

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeDevice(path string, caps map[Category][]string) *fakeDevice {
	return &fakeDevice{
		name:   "fake " + path,
		path:   path,
		caps:   caps,
		events: make(chan RawEvent, 16),
		closed: make(chan struct{}),
	}
}

func (d *fakeDevice) Name() string                        { return d.name }
func (d *fakeDevice) Path() string                        { return d.path }
func (d *fakeDevice) Capabilities() map[Category][]string { return d.caps }

func (d *fakeDevice) ReadEvent() (RawEvent, error) {
	select {
	case ev, ok := <-d.events:
		if !ok {
			if d.fail != nil {
				return RawEvent{}, d.fail
			}
			return RawEvent{}, io.EOF
		}
		return ev, nil
	case <-d.closed:
		return RawEvent{}, errors.New("device closed")
	}
}

func (d *fakeDevice) Close() error {
	d.closeOnce.Do(func() { close(d.closed) })
	return nil
}

func (d *fakeDevice) isClosed() bool {
	select {
	case <-d.closed:
		return true
	default:
		return false
	}
}

type fakeSource struct {
	paths   []string
	devices map[string]*fakeDevice
	openErr map[string]error
}

func (s *fakeSource) List() ([]string, error) { return s.paths, nil }

func (s *fakeSource) Open(path string) (Device, error) {
	if err := s.openErr[path]; err != nil {
		return nil, err
	}
	dev, ok := s.devices[path]
	if !ok {
		return nil, fmt.Errorf("no such device %s", path)
	}
	return dev, nil
}

type syncSink struct {
	mu    sync.Mutex
	items []string
}

func (s *syncSink) Push(item string) {
	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
}

func (s *syncSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.items...)
}

var keyboardCaps = map[Category][]string{
	CategoryKey: {"KEY_ESC", "KEY_A", "KEY_B"},
}

func keyDown(codes ...string) RawEvent {
	return RawEvent{Category: CategoryKey, Codes: codes, State: KeyDown}
}

func TestIsKeyboard(t *testing.T) {
	assert.True(t, IsKeyboard(keyboardCaps))
	assert.False(t, IsKeyboard(nil))
	assert.False(t, IsKeyboard(map[Category][]string{CategoryRelative: {"REL_X"}}))
	assert.False(t, IsKeyboard(map[Category][]string{CategoryKey: {"BTN_LEFT", "BTN_RIGHT"}}))
}

func TestRawEventCode(t *testing.T) {
	assert.Equal(t, "", RawEvent{}.Code())
	assert.Equal(t, "KEY_MUTE", keyDown("KEY_MUTE", "KEY_MIN_INTERESTING").Code())
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "key", CategoryKey.String())
	assert.Equal(t, "sync", CategorySync.String())
	assert.Equal(t, "other", Category(99).String())
}

func TestListenerFiltersToKeyDown(t *testing.T) {
	dev := newFakeDevice("/dev/input/event0", keyboardCaps)
	sink := &syncSink{}

	dev.events <- RawEvent{Category: CategorySync, Codes: []string{"SYN_REPORT"}}
	dev.events <- RawEvent{Category: CategoryMisc, Codes: []string{"MSC_SCAN"}, State: 4}
	dev.events <- RawEvent{Category: CategoryKey, Codes: []string{"KEY_B"}, State: KeyUp}
	dev.events <- RawEvent{Category: CategoryKey, Codes: []string{"KEY_B"}, State: KeyRepeat}
	dev.events <- RawEvent{Category: CategoryKey, State: KeyDown}
	dev.events <- keyDown("KEY_A")
	dev.events <- keyDown("KEY_F13")
	close(dev.events)

	err := NewListener(dev, translate.NewDefault(), sink, nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)

	items := sink.snapshot()
	require.Len(t, items, 2)
	res := translate.NewDefault().Translate("KEY_A")
	assert.Equal(t, res.Text, items[0])
	assert.Equal(t, "F13", items[1])
	assert.True(t, dev.isClosed())
}

func TestListenerUsesFirstAlias(t *testing.T) {
	dev := newFakeDevice("/dev/input/event0", keyboardCaps)
	sink := &syncSink{}

	dev.events <- keyDown("KEY_VOLUMEUP_X", "KEY_A")
	close(dev.events)

	NewListener(dev, translate.NewDefault(), sink, nil).Run(context.Background())
	assert.Equal(t, []string{"VOLUMEUP_X"}, sink.snapshot())
}

func TestListenerSuppressedKeysPushNothing(t *testing.T) {
	dev := newFakeDevice("/dev/input/event0", keyboardCaps)
	sink := &syncSink{}

	dev.events <- keyDown("BTN_LEFT")
	dev.events <- keyDown("KEY_")
	close(dev.events)

	NewListener(dev, translate.NewDefault(), sink, nil).Run(context.Background())
	assert.Empty(t, sink.snapshot())
}

func TestListenerStopsOnCancel(t *testing.T) {
	dev := newFakeDevice("/dev/input/event0", keyboardCaps)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- NewListener(dev, translate.NewDefault(), &syncSink{}, nil).Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after cancel")
	}
	assert.True(t, dev.isClosed())
}

// slowCloseDevice takes a while to release the node.
type slowCloseDevice struct {
	*fakeDevice
}

func (d slowCloseDevice) Close() error {
	time.Sleep(50 * time.Millisecond)
	return d.fakeDevice.Close()
}

func TestListenerClosesDeviceBeforeReturning(t *testing.T) {
	for i := 0; i < 20; i++ {
		dev := newFakeDevice("/dev/input/event0", keyboardCaps)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewListener(slowCloseDevice{dev}, translate.NewDefault(), &syncSink{}, nil).Run(ctx)
		require.NoError(t, err)
		require.True(t, dev.isClosed(), "iteration %d", i)
	}
}

func TestListenerClosesDeviceOnReadError(t *testing.T) {
	dev := newFakeDevice("/dev/input/event0", keyboardCaps)
	close(dev.events)

	err := NewListener(dev, translate.NewDefault(), &syncSink{}, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, dev.isClosed())
}

func TestManagerStartsOnlyKeyboards(t *testing.T) {
	kbd := newFakeDevice("/dev/input/event0", keyboardCaps)
	mouse := newFakeDevice("/dev/input/event1", map[Category][]string{
		CategoryKey:      {"BTN_LEFT"},
		CategoryRelative: {"REL_X", "REL_Y"},
	})
	src := &fakeSource{
		paths: []string{kbd.path, mouse.path, "/dev/input/event2", "/dev/input/event3"},
		devices: map[string]*fakeDevice{
			kbd.path:   kbd,
			mouse.path: mouse,
		},
		openErr: map[string]error{
			"/dev/input/event3": ErrPermissionDenied,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(src, translate.NewDefault(), &syncSink{}, nil)

	n, err := m.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, mouse.isClosed())
	assert.Equal(t, []string{kbd.path}, m.Active())

	cancel()
	m.Wait()
	assert.True(t, kbd.isClosed())
	assert.Empty(t, m.Active())
}

func TestManagerNoKeyboards(t *testing.T) {
	src := &fakeSource{devices: map[string]*fakeDevice{}}
	m := NewManager(src, translate.NewDefault(), &syncSink{}, nil)

	n, err := m.Start(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	m.Wait()
}

func TestManagerIsolatesDeviceFailure(t *testing.T) {
	bad := newFakeDevice("/dev/input/event0", keyboardCaps)
	good := newFakeDevice("/dev/input/event1", keyboardCaps)
	bad.fail = errors.New("no such device")

	sink := &syncSink{}
	src := &fakeSource{
		paths:   []string{bad.path, good.path},
		devices: map[string]*fakeDevice{bad.path: bad, good.path: good},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(src, translate.NewDefault(), sink, nil)
	n, err := m.Start(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	close(bad.events)
	assert.Eventually(t, func() bool {
		return len(m.Active()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	good.events <- keyDown("KEY_F13")
	assert.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"F13"}, sink.snapshot())

	cancel()
	m.Wait()
}

func TestManagerFeedsSharedQueue(t *testing.T) {
	devs := []*fakeDevice{
		newFakeDevice("/dev/input/event0", keyboardCaps),
		newFakeDevice("/dev/input/event1", keyboardCaps),
	}
	src := &fakeSource{
		paths:   []string{devs[0].path, devs[1].path},
		devices: map[string]*fakeDevice{devs[0].path: devs[0], devs[1].path: devs[1]},
	}
	q := dispatch.New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(src, translate.NewDefault(), q, nil)
	_, err := m.Start(ctx)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		devs[0].events <- keyDown("KEY_F13")
		devs[1].events <- keyDown("KEY_F14")
	}
	assert.Eventually(t, func() bool { return q.Len() == 10 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	m.Wait()
}

func TestKeyDownReachesRendererWithinOneTick(t *testing.T) {
	dev := newFakeDevice("/dev/input/event0", keyboardCaps)
	src := &fakeSource{
		paths:   []string{dev.path},
		devices: map[string]*fakeDevice{dev.path: dev},
	}
	q := dispatch.New(nil)

	var rendered []string
	sched := display.NewScheduler(q, display.RenderFunc(func(s string) {
		rendered = append(rendered, s)
	}), 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(src, translate.NewDefault(), q, nil)
	_, err := m.Start(ctx)
	require.NoError(t, err)

	dev.events <- RawEvent{Category: CategoryKey, Codes: []string{"KEY_A"}, State: KeyUp}
	dev.events <- keyDown("KEY_A")
	assert.Eventually(t, func() bool { return q.Len() == 1 }, 2*time.Second, 5*time.Millisecond)

	assert.True(t, sched.Tick())
	assert.False(t, sched.Tick())

	want, _ := translate.NewDefault().Translate("KEY_A").Display()
	assert.Equal(t, []string{want}, rendered)

	cancel()
	m.Wait()
}
