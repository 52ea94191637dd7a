// Package control exposes the display queue on the D-Bus session bus so
// scripts can show arbitrary labels:
//
//	busctl --user call io.keyviz.Visualizer /io/keyviz/Visualizer \
//	    io.keyviz.Visualizer Show s 'Hello'
package control

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"keyviz/internal/logging"
	"keyviz/internal/metrics"
)

const (
	BusName   = "io.keyviz.Visualizer"
	Interface = "io.keyviz.Visualizer"
	Path      = dbus.ObjectPath("/io/keyviz/Visualizer")

	errInvalidArgs  = "org.freedesktop.DBus.Error.InvalidArgs"
	errNotSupported = "org.freedesktop.DBus.Error.NotSupported"
)

// ErrNameTaken is returned when another process owns BusName.
var ErrNameTaken = errors.New("bus name already taken")

// Queue is the producer side of the display queue.
type Queue interface {
	Push(item string)
	Len() int
}

// Service implements the exported methods.
type Service struct {
	queue Queue
	rec   logging.Recorder

	// Metrics backs Stats. Nil disables it.
	Metrics *metrics.Registry
}

// NewService creates a service feeding q.
func NewService(q Queue, rec logging.Recorder) *Service {
	if rec == nil {
		rec = logging.Discard()
	}
	return &Service{queue: q, rec: rec}
}

// Show queues text for display. Blank text is rejected.
func (s *Service) Show(text string) *dbus.Error {
	if strings.TrimSpace(text) == "" {
		return dbus.NewError(errInvalidArgs, []any{"text must not be empty"})
	}
	s.rec.Log(context.Background(), logging.LevelInfo, "control show", "text", text)
	s.queue.Push(text)
	return nil
}

// Pending returns the number of items waiting to be shown.
func (s *Service) Pending() (uint32, *dbus.Error) {
	return uint32(s.queue.Len()), nil
}

// Stats returns the pipeline metrics in the Prometheus text format.
func (s *Service) Stats() (string, *dbus.Error) {
	if s.Metrics == nil {
		return "", dbus.NewError(errNotSupported, []any{"metrics are disabled"})
	}
	var b strings.Builder
	if err := s.Metrics.WritePrometheus(&b); err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return b.String(), nil
}

var introspection = introspect.Node{
	Name: string(Path),
	Interfaces: []introspect.Interface{
		introspect.IntrospectData,
		{
			Name: Interface,
			Methods: []introspect.Method{
				{
					Name: "Show",
					Args: []introspect.Arg{{Name: "text", Type: "s", Direction: "in"}},
				},
				{
					Name: "Pending",
					Args: []introspect.Arg{{Name: "count", Type: "u", Direction: "out"}},
				},
				{
					Name: "Stats",
					Args: []introspect.Arg{{Name: "metrics", Type: "s", Direction: "out"}},
				},
			},
		},
	},
}

// Export publishes svc on conn and claims BusName.
func Export(conn *dbus.Conn, svc *Service) error {
	if err := conn.Export(svc, Path, Interface); err != nil {
		return fmt.Errorf("export service: %w", err)
	}
	if err := conn.Export(introspect.NewIntrospectable(&introspection), Path, introspect.IntrospectData.Name); err != nil {
		return fmt.Errorf("export introspection: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return ErrNameTaken
	}
	return nil
}

// Serve connects to the session bus and exports svc until ctx is done.
func Serve(ctx context.Context, svc *Service) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect to session bus: %w", err)
	}
	if err := Export(conn, svc); err != nil {
		conn.Close()
		return err
	}

	svc.rec.Log(ctx, logging.LevelInfo, "control service ready", "bus_name", BusName, "path", string(Path))
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	return nil
}
