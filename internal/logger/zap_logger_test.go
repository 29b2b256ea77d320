package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leandrodaf/midibridge/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T) (*ZapLogger, *observer.ObservedLogs, *int) {
	t.Helper()
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core, logs := observer.New(level)
	exitCode := -1
	return newWithCore(core, level, func(code int) { exitCode = code }), logs, &exitCode
}

func TestZapLoggerWritesStructuredFields(t *testing.T) {
	l, logs, _ := newObserved(t)

	l.Info("snapshot served",
		l.Field().String("request_id", "abc"),
		l.Field().Int("bytes", 51),
		l.Field().Error("error", errors.New("boom")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "abc" {
		t.Fatalf("request_id = %v", fields["request_id"])
	}
	if fields["bytes"] != int64(51) {
		t.Fatalf("bytes = %v (%T)", fields["bytes"], fields["bytes"])
	}
	if fields["error"] != "boom" {
		t.Fatalf("error = %v", fields["error"])
	}
}

func TestZapLoggerSetLevel(t *testing.T) {
	l, logs, _ := newObserved(t)

	l.Debug("hidden")
	l.SetLevel(contracts.DebugLevel)
	l.Debug("visible")
	l.SetLevel(contracts.ErrorLevel)
	l.Warn("hidden too")

	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "visible" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestZapLoggerFatalUsesExitHook(t *testing.T) {
	l, logs, code := newObserved(t)

	l.Fatal("device gone")

	if *code != 1 {
		t.Fatalf("exit code = %d, want 1", *code)
	}
	if logs.FilterMessage("device gone").Len() != 1 {
		t.Fatal("fatal message not logged")
	}
}

func TestZapLoggerFileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.log")
	l := NewZapLogger()

	l.SetDestination(contracts.FileLog, path)
	l.Info("written to file", l.Field().Uint8("control", 0x29))
	l.(*ZapLogger).sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("log file missing message: %q", data)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name string
		want contracts.LogLevel
		ok   bool
	}{
		{"debug", contracts.DebugLevel, true},
		{"", contracts.InfoLevel, true},
		{"warning", contracts.WarnLevel, true},
		{"verbose", 0, false},
	}
	for _, tt := range tests {
		got, ok := contracts.ParseLogLevel(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
