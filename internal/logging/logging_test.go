package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError && err == nil {
				t.Error("expected error, got nil")
			}
			if !test.hasError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if level != test.expected {
				t.Errorf("expected %v, got %v", test.expected, level)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestLevelString(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		parsed, err := ParseLevel(LevelString(level))
		if err != nil || parsed != level {
			t.Errorf("round trip of %v gave %v, %v", level, parsed, err)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level Info, got %v", cfg.Level)
	}
	if cfg.Output != "file" {
		t.Errorf("expected default output file, got %s", cfg.Output)
	}
	if !strings.HasSuffix(cfg.FilePath, filepath.Join("keyviz", "keyviz.log")) {
		t.Errorf("unexpected default log path %s", cfg.FilePath)
	}
}

func TestRecorderTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: LevelDebug, Component: "test"}, &buf)

	var rec Recorder = logger
	rec.Log(context.Background(), LevelInfo, "raw key", "device", "/dev/input/event3", "key", "KEY_A")

	out := buf.String()
	for _, want := range []string{"msg=\"raw key\"", "component=test", "key=KEY_A", "device=/dev/input/event3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestRecorderJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: LevelInfo, Format: FormatJSON}, &buf)

	logger.WithComponent("queue").Info("enqueue", "item", "A")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["component"] != "queue" || entry["item"] != "A" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: LevelWarn}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn line missing")
	}
}

func TestDiscard(t *testing.T) {
	Discard().Log(context.Background(), LevelError, "dropped")
}

func TestNewFileOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "logs", "keyviz.log")
	cfg.Compress = false

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.Info("keyviz starting")
	if err := logger.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "keyviz starting") {
		t.Errorf("log file missing line: %q", data)
	}
}

func TestFileRotatorAppends(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	if err := os.WriteFile(logPath, []byte("earlier\n"), 0640); err != nil {
		t.Fatal(err)
	}

	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 1})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}
	if _, err := rotator.Write([]byte("later\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	rotator.Close()

	data, _ := os.ReadFile(logPath)
	if string(data) != "earlier\nlater\n" {
		t.Errorf("expected append, got %q", data)
	}
}

func TestFileRotatorRollsOverBySize(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 1, MaxBackups: 5})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}
	defer rotator.Close()

	line := bytes.Repeat([]byte("x"), 600*1024)
	for i := 0; i < 2; i++ {
		if _, err := rotator.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	rolled, err := rotator.Rolled()
	if err != nil {
		t.Fatalf("rolled: %v", err)
	}
	if len(rolled) != 1 {
		t.Fatalf("expected 1 rolled file, got %v", rolled)
	}
	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len(line)) {
		t.Errorf("current log size = %d, want %d", info.Size(), len(line))
	}
}

func TestFileRotatorRollsOverByDay(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 10})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}
	defer rotator.Close()

	day := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	rotator.now = func() time.Time { return day }
	rotator.opened = day
	rotator.Write([]byte("before midnight\n"))

	day = day.Add(2 * time.Minute)
	rotator.Write([]byte("after midnight\n"))

	rolled, _ := rotator.Rolled()
	if len(rolled) != 1 {
		t.Fatalf("expected 1 rolled file, got %v", rolled)
	}
}

func TestRecoverGoroutine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: LevelDebug}, &buf)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer RecoverGoroutine(logger, "listener")
		panic(errors.New("boom"))
	}()
	<-done

	if !strings.Contains(buf.String(), "recovered panic") || !strings.Contains(buf.String(), "where=listener") {
		t.Errorf("panic not logged: %q", buf.String())
	}
}
