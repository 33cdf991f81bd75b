package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luxbus/dalimon/internal/logging"
	"github.com/luxbus/dalimon/internal/protocol"
	"github.com/luxbus/dalimon/internal/transport"
)

const (
	// QueueDepth is the capacity of the frame hand-off queue.
	QueueDepth = 40

	// DefaultReadTimeout bounds each poll of the driver: small enough
	// that a stop request is seen promptly, large enough to avoid
	// busy-spinning.
	DefaultReadTimeout = 200 * time.Millisecond

	// flushTimeout is the short read used to drain packets the bridge
	// buffered before the session opened.
	flushTimeout = 10 * time.Millisecond
)

// ErrSessionClosed is returned by NextFrame after Close once all
// queued frames have been consumed.
var ErrSessionClosed = errors.New("capture session closed")

// Session captures bus frames from a bridge driver. Create one with
// NewSession, call Start, then consume frames with NextFrame from a
// single goroutine.
type Session struct {
	drv         transport.Driver
	enc         *protocol.Encoder
	readTimeout time.Duration

	frames chan protocol.RawFrame
	quit   chan struct{}
	done   chan struct{}

	// fatal is set by the worker before it closes the frames channel,
	// so consumers observe it after the queue drains.
	fatal error

	started   bool
	startOnce sync.Once
	closeOnce sync.Once
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithReadTimeout overrides the polling read timeout.
func WithReadTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.readTimeout = d }
}

// NewSession wraps a bridge driver in a capture session. The session
// takes ownership of the driver and closes it with Close.
func NewSession(drv transport.Driver, opts ...SessionOption) *Session {
	s := &Session{
		drv:         drv,
		enc:         protocol.NewEncoder(),
		readTimeout: DefaultReadTimeout,
		frames:      make(chan protocol.RawFrame, QueueDepth),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start flushes stale bridge buffers and launches the polling worker.
// It may be called once.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		s.started = true
		s.flush()
		go s.worker()
	})
}

// flush drains packets buffered inside the bridge from prior activity,
// so the stream starts at the present.
func (s *Session) flush() {
	for {
		data, err := s.drv.Read(flushTimeout)
		if err != nil || len(data) == 0 {
			return
		}
		logging.Debug("discarding stale bridge packet", zap.Int("length", len(data)))
	}
}

func (s *Session) worker() {
	defer close(s.done)
	defer close(s.frames)
	logging.Debug("capture worker started")

	for {
		select {
		case <-s.quit:
			logging.Debug("capture worker stopping")
			return
		default:
		}

		data, err := s.drv.Read(s.readTimeout)
		if err != nil {
			if errors.Is(err, transport.ErrReadTimeout) {
				continue
			}
			select {
			case <-s.quit:
				// Close tore down the driver under our read.
				return
			default:
			}
			s.fatal = fmt.Errorf("capture aborted: %w", err)
			logging.Error("capture worker failed", zap.Error(err))
			return
		}
		if len(data) == 0 {
			continue
		}

		pkt, err := protocol.ParsePacket(data)
		if err != nil {
			logging.Warn("dropping malformed bridge packet",
				zap.Int("length", len(data)),
				zap.Error(err),
			)
			continue
		}
		if pkt.IsEcho() {
			logging.Debug("bridge echoed transmit", zap.String("packet", pkt.String()))
			continue
		}

		frame := pkt.Frame(time.Now())
		if frame.Kind == protocol.FrameInvalid {
			logging.Warn("dropping unrecognized bridge packet", zap.String("packet", pkt.String()))
			continue
		}
		logging.Debug("captured frame", zap.String("frame", frame.String()))

		// Blocking insert: when the consumer falls behind we wait for
		// room instead of dropping the frame.
		select {
		case s.frames <- frame:
		case <-s.quit:
			return
		}
	}
}

// NextFrame blocks until the next captured frame is available. After
// Close it keeps returning queued frames until the queue is empty,
// then ErrSessionClosed, or the worker's fatal error if the session
// died on its own.
func (s *Session) NextFrame() (protocol.RawFrame, error) {
	frame, ok := <-s.frames
	if !ok {
		if s.fatal != nil {
			return protocol.RawFrame{}, s.fatal
		}
		return protocol.RawFrame{}, ErrSessionClosed
	}
	return frame, nil
}

// DrainPending discards all frames currently queued without decoding
// them. It never blocks.
func (s *Session) DrainPending() {
	for {
		select {
		case _, ok := <-s.frames:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// Send transmits a 1-3 byte command onto the bus. Transmission is
// best effort: the bridge echoes the packet back but no bus-level
// acknowledgment exists.
func (s *Session) Send(cmd []byte) error {
	pkt, err := s.enc.Encode(cmd)
	if err != nil {
		return err
	}
	n, err := s.drv.Write(pkt)
	if err != nil {
		return fmt.Errorf("transmit failed: %w", err)
	}
	logging.Debug("transmitted command",
		zap.Int("command_bytes", len(cmd)),
		zap.Int("written", n),
	)
	return nil
}

// Close stops the worker and releases the driver. The worker notices
// within one polling interval; frames already queued stay consumable
// through NextFrame.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.quit)
		// Closing the driver unblocks the worker's outstanding read.
		err = s.drv.Close()
		if s.started {
			<-s.done
		}
	})
	return err
}
