// keyviz shows every key pressed on any attached keyboard as a short-lived
// on-screen label.
//
//	keyviz                       run with the located config
//	keyviz -config path.toml     run with an explicit config
//	keyviz -list-devices         print input devices and exit
//
// Reading /dev/input requires membership of the input group or root.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"keyviz/internal/capture"
	"keyviz/internal/config"
	"keyviz/internal/control"
	"keyviz/internal/dispatch"
	"keyviz/internal/display"
	"keyviz/internal/fonts"
	"keyviz/internal/glyph"
	"keyviz/internal/logging"
	"keyviz/internal/metrics"
	"keyviz/internal/overlay"
	"keyviz/internal/overlay/x11"
	"keyviz/internal/translate"
)

const (
	// readyDelay is how long after startup the ready message is queued.
	readyDelay = 2 * time.Second

	sampleInterval = time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file (.ini, .toml or .yaml)")
	logLevel := flag.String("log-level", "", "override logging.level")
	listDevices := flag.Bool("list-devices", false, "list input devices and exit")
	displayName := flag.String("display", "", "X display (default $DISPLAY)")
	flag.Parse()

	path := config.Locate(*configPath)
	cfg, diags := config.Load(path)
	if *logLevel != "" {
		diags = append(diags, cfg.SetLogLevel(*logLevel)...)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log(ctx, logging.LevelInfo, "keyviz starting", "config", path, "pid", os.Getpid())
	for _, d := range diags {
		logger.Log(ctx, logging.LevelWarn, "config setting ignored", "detail", d.String())
	}

	src, err := capture.NewEvdevSource(cfg.Capture.DeviceDir)
	if err != nil {
		logger.Log(ctx, logging.LevelError, "input devices unavailable", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *listDevices {
		return printDevices(src)
	}

	style, err := buildStyle(cfg.Appearance, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	queue := dispatch.New(logger.WithComponent("dispatch"))
	pipe := metrics.NewPipeline(metrics.NewRegistry("keyviz"))
	tr := translate.New(glyph.Build(glyph.Generated(), glyph.Manual(), cfg.Glyphs))

	tk, err := x11.Open(*displayName, logger.WithComponent("x11"))
	if err != nil {
		logger.Log(ctx, logging.LevelError, "cannot open display", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer tk.Close()

	mgr := capture.NewManager(src, tr, pipe.CountPushes(queue), logger.WithComponent("capture"))
	n, err := mgr.Start(ctx)
	if err != nil {
		logger.Log(ctx, logging.LevelError, "device discovery failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if n == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no readable keyboards found (are you in the input group?)")
	}
	if cfg.Capture.Hotplug {
		if err := mgr.Watch(ctx, cfg.Capture.DeviceDir); err != nil {
			logger.Log(ctx, logging.LevelWarn, "hot-plug watch unavailable", "error", err)
		}
	}

	if cfg.Control.DBus {
		svc := control.NewService(queue, logger.WithComponent("control"))
		svc.Metrics = pipe.Registry
		if err := control.Serve(ctx, svc); err != nil {
			logger.Log(ctx, logging.LevelWarn, "control service unavailable", "error", err)
		}
	}

	loop := display.NewLoop()
	placer := overlay.NewPlacer(cfg.Position.Position, cfg.Position.XOffset, cfg.Position.YOffset)
	if _, ok := overlay.ParseAnchor(cfg.Position.Position); !ok {
		logger.Log(ctx, logging.LevelWarn, "unknown position, using bottom-center", "position", cfg.Position.Position)
	}
	presenter := overlay.NewPresenter(tk, loop, placer, style, logger.WithComponent("overlay"))
	presenter.OnError = func(string, error) { pipe.RenderFailures.Inc() }
	defer presenter.Close()

	sampleEvery(loop, sampleInterval, func() {
		pipe.Listeners.Set(int64(len(mgr.Active())))
		pipe.QueueDepth.Set(int64(queue.Len()))
	})

	if msg := cfg.Capture.ReadyMessage; msg != "" {
		cancelReady := loop.AfterFunc(readyDelay, func() { queue.Push(msg) })
		defer cancelReady()
	}

	sched := display.NewScheduler(queue, pipe.TimeRenders(presenter), cfg.Capture.PollInterval(), logger.WithComponent("display"))
	if err := sched.Run(ctx, loop); err != nil {
		logger.Log(ctx, logging.LevelError, "display loop failed", "error", err)
		return 1
	}

	logger.Log(context.Background(), logging.LevelInfo, "shutting down",
		"pending", queue.Len(),
		"queued", pipe.Queued.Value(),
		"rendered", pipe.Rendered.Value(),
		"render_failures", pipe.RenderFailures.Value(),
		"mean_render_ms", pipe.RenderSeconds.Mean()*1000,
	)
	mgr.Wait()
	return 0
}

// sampleEvery runs fn on the UI loop every d until the loop stops.
func sampleEvery(loop *display.Loop, d time.Duration, fn func()) {
	var tick func()
	tick = func() {
		fn()
		loop.AfterFunc(d, tick)
	}
	loop.Post(tick)
}

// newLogger builds the process logger. A file-only log is mirrored to
// stderr when stderr is a terminal.
func newLogger(lc config.LoggingConfig) (*logging.Logger, error) {
	cfg := logging.DefaultConfig()

	// Load has already checked both against the schema.
	if level, err := logging.ParseLevel(lc.Level); err == nil {
		cfg.Level = level
	}
	if format, err := logging.ParseFormat(lc.Format); err == nil {
		cfg.Format = format
	}

	cfg.Output = lc.Output
	if lc.File != "" {
		cfg.FilePath = lc.File
	}
	if cfg.Output == "file" && term.IsTerminal(int(os.Stderr.Fd())) {
		cfg.Output = "both"
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return logger, nil
}

func buildStyle(ac config.AppearanceConfig, rec logging.Recorder) (overlay.Style, error) {
	ctx := context.Background()
	def := config.DefaultConfig().Appearance

	catalog, err := fonts.Scan(fonts.DefaultDirs()...)
	if err != nil {
		rec.Log(ctx, logging.LevelWarn, "font scan failed", "error", err)
		catalog, _ = fonts.Scan()
	}
	if ac.FontFile == "" {
		fonts.Check(catalog, ac.FontFamily, rec)
	}

	size := float64(ac.FontSize)
	face, err := fonts.Face(catalog, ac.FontFamily, ac.FontFile, size)
	if err != nil {
		rec.Log(ctx, logging.LevelWarn, "using fallback font, key glyphs will not render", "error", err)
		face, err = fonts.Fallback(size)
		if err != nil {
			return overlay.Style{}, err
		}
	}

	text, err := overlay.ParseColor(ac.TextColor)
	if err != nil {
		rec.Log(ctx, logging.LevelWarn, "bad text_color, using default", "error", err)
		text = overlay.MustColor(def.TextColor)
	}
	bg, err := overlay.ParseColor(ac.BgColor)
	if err != nil {
		rec.Log(ctx, logging.LevelWarn, "bad bg_color, using default", "error", err)
		bg = overlay.MustColor(def.BgColor)
	}

	return overlay.Style{
		Face:       face,
		Text:       text,
		Background: bg,
		PadX:       ac.PaddingX,
		PadY:       ac.PaddingY,
		Duration:   ac.Duration(),
	}, nil
}

func printDevices(src capture.Source) int {
	paths, err := src.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tKEYBOARD")
	for _, path := range paths {
		dev, err := src.Open(path)
		if err != nil {
			status := "error"
			if errors.Is(err, capture.ErrPermissionDenied) {
				status = "permission denied"
			}
			fmt.Fprintf(w, "%s\t-\t%s\n", path, status)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%v\n", path, dev.Name(), capture.IsKeyboard(dev.Capabilities()))
		dev.Close()
	}
	w.Flush()
	return 0
}
