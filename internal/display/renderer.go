package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/luxbus/dalimon/internal/protocol"
)

// Options controls trace rendering.
type Options struct {
	// Color forces colored output on or off. Nil auto-detects from
	// stdout.
	Color *bool
	// AbsoluteTime adds a leading wall-clock column.
	AbsoluteTime bool
}

// Renderer formats captured frames as trace lines. It tracks the
// previous frame's timestamp to compute deltas, so one Renderer
// serves one capture stream.
type Renderer struct {
	color    bool
	absolute bool
	start    time.Time
	last     time.Time
}

// NewRenderer returns a Renderer for one capture stream.
func NewRenderer(opts Options) *Renderer {
	color := stdoutIsTerminal()
	if opts.Color != nil {
		color = *opts.Color
	}
	return &Renderer{
		color:    color,
		absolute: opts.AbsoluteTime,
	}
}

// Command renders a decoded command frame as one trace line.
func (r *Renderer) Command(frame protocol.RawFrame, cmd protocol.DecodedCommand) string {
	timestamp, delta := r.advance(frame.Timestamp)

	var b strings.Builder
	r.writeClock(&b, frame.Timestamp)
	r.writeTiming(&b, timestamp, delta)
	meta := fmt.Sprintf("%8s | ", frame.Hex())
	if r.color {
		meta = timingStyle.Render(meta)
	}
	b.WriteString(meta)

	label := cmd.Label
	if r.color {
		label = commandStyle.Render(label)
	}
	b.WriteString(label)
	return b.String()
}

// BusError renders a bus fault frame as one trace line.
func (r *Renderer) BusError(frame protocol.RawFrame) string {
	timestamp, delta := r.advance(frame.Timestamp)

	var b strings.Builder
	r.writeClock(&b, frame.Timestamp)
	r.writeTiming(&b, timestamp, delta)

	text := frame.Err.String()
	if r.color {
		text = errorStyle.Render(text)
	}
	b.WriteString(text)
	return b.String()
}

// advance returns the relative timestamp and delta for a frame and
// records it as the previous one.
func (r *Renderer) advance(at time.Time) (timestamp, delta float64) {
	if r.start.IsZero() {
		r.start = at
	} else {
		delta = at.Sub(r.last).Seconds()
	}
	r.last = at
	return at.Sub(r.start).Seconds(), delta
}

func (r *Renderer) writeClock(b *strings.Builder, at time.Time) {
	if !r.absolute {
		return
	}
	clock := at.Format("15:04:05") + " | "
	if r.color {
		clock = timeStyle.Render(clock)
	}
	b.WriteString(clock)
}

func (r *Renderer) writeTiming(b *strings.Builder, timestamp, delta float64) {
	timing := fmt.Sprintf("%.3f | %8.3f | ", timestamp, delta)
	if r.color {
		timing = timingStyle.Render(timing)
	}
	b.WriteString(timing)
}
