package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leandrodaf/midibridge/internal/logger"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/leandrodaf/midibridge/sdk/surface"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommandWith(&commandContext{logger: logger.NewNopLogger()})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderState(t *testing.T) {
	var s surface.State
	s.ApplyButton(0x29, true)
	s.ApplyButton(0x32, true)
	s.ApplyAnalog(0x00, 200)
	s.ApplyAnalog(0x17, 7)

	out := renderState(s, false)

	// go-pretty upper-cases header cells, so headers are matched case-insensitively.
	lower := strings.ToLower(out)
	for _, want := range []string{"play", "record", "trackleft", "channel", "fader", "knob", "200"} {
		if !strings.Contains(lower, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	var playLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Play") {
			playLine = line
		}
	}
	if !strings.Contains(playLine, "on") {
		t.Fatalf("Play row not on: %q", playLine)
	}
}

func TestRenderDevices(t *testing.T) {
	out := renderDevices([]contracts.DeviceInfo{{ID: 0, Name: "nanoKONTROL2", Manufacturer: "KORG INC."}})
	if !strings.Contains(out, "nanoKONTROL2") || !strings.Contains(out, "KORG INC.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := runCLI(t, "--log-level", "loud", "client")
	if err == nil || !strings.Contains(err.Error(), "invalid --log-level") {
		t.Fatalf("expected log level error, got %v", err)
	}
}

func TestClientRejectsJSONAndRaw(t *testing.T) {
	_, err := runCLI(t, "client", "--json", "--raw")
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected flag conflict error, got %v", err)
	}
}

func TestRootShowsHelp(t *testing.T) {
	out, err := runCLI(t)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, sub := range []string{"server", "client", "devices"} {
		if !strings.Contains(out, sub) {
			t.Fatalf("help missing %q:\n%s", sub, out)
		}
	}
}
