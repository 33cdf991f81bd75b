package display

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/luxbus/dalimon/internal/protocol"
)

func noColor() Options {
	off := false
	return Options{Color: &off}
}

func TestRendererCommand(t *testing.T) {
	r := NewRenderer(noColor())
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	frame := protocol.RawFrame{
		Kind:      protocol.FrameCommand,
		Timestamp: base,
		Width:     16,
		Payload:   0xFF90,
	}
	cmd := protocol.DecodedCommand{Label: "BC        QUERY STATUS"}

	got := r.Command(frame, cmd)
	want := fmt.Sprintf("0.000 | %8.3f | %8s | BC        QUERY STATUS", 0.0, "FF90")
	if got != want {
		t.Errorf("Command() = %q, want %q", got, want)
	}
}

func TestRendererTiming(t *testing.T) {
	r := NewRenderer(noColor())
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	frame := protocol.RawFrame{Kind: protocol.FrameCommand, Width: 8, Payload: 0x42}
	cmd := protocol.DecodedCommand{Label: "REPLY"}

	frame.Timestamp = base
	first := r.Command(frame, cmd)
	if !strings.HasPrefix(first, "0.000 |    0.000 | ") {
		t.Errorf("first line = %q, want zero timestamp and delta", first)
	}

	frame.Timestamp = base.Add(250 * time.Millisecond)
	second := r.Command(frame, cmd)
	if !strings.HasPrefix(second, "0.250 |    0.250 | ") {
		t.Errorf("second line = %q, want 0.250 timestamp and delta", second)
	}

	frame.Timestamp = base.Add(1300 * time.Millisecond)
	third := r.Command(frame, cmd)
	if !strings.HasPrefix(third, "1.300 |    1.050 | ") {
		t.Errorf("third line = %q, want 1.300 timestamp, 1.050 delta", third)
	}
}

func TestRendererAbsoluteTime(t *testing.T) {
	off := false
	r := NewRenderer(Options{Color: &off, AbsoluteTime: true})
	at := time.Date(2026, 8, 30, 14, 30, 45, 0, time.Local)

	frame := protocol.RawFrame{Kind: protocol.FrameCommand, Timestamp: at, Width: 8, Payload: 0x00}
	got := r.Command(frame, protocol.DecodedCommand{Label: "REPLY"})
	if !strings.HasPrefix(got, "14:30:45 | ") {
		t.Errorf("line = %q, want leading wall-clock column", got)
	}
}

func TestRendererBusError(t *testing.T) {
	tests := []struct {
		name string
		err  protocol.ErrorKind
		want string
	}{
		{"recoverable", protocol.ErrorRecoverable, "RECOVERABLE ERROR"},
		{"frame", protocol.ErrorFrame, "FRAME ERROR"},
		{"general", protocol.ErrorGeneral, "GENERAL ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(noColor())
			frame := protocol.RawFrame{
				Kind:      protocol.FrameError,
				Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
				Err:       tt.err,
			}
			got := r.BusError(frame)
			if !strings.HasSuffix(got, tt.want) {
				t.Errorf("BusError() = %q, want suffix %q", got, tt.want)
			}
		})
	}
}
