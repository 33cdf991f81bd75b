package transport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/luxbus/dalimon/internal/logging"
	"github.com/luxbus/dalimon/internal/protocol"
)

// DefaultBaudRate is the line speed serial bridges run at.
const DefaultBaudRate = 115200

// Serial drives a bridge attached through a serial port. The bridge
// speaks the same fixed 64-byte packet contract as the USB variant;
// the driver reassembles packets the port delivers in fragments.
type Serial struct {
	port serial.Port
	name string
}

// OpenSerial opens the bridge on the named port. A zero baud rate
// selects DefaultBaudRate.
func OpenSerial(portName string, baudRate int) (*Serial, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) && portErr.Code() == serial.PortNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNoDevice, portName)
		}
		return nil, fmt.Errorf("opening serial port %s: %w", portName, err)
	}
	logging.Debug("serial bridge opened",
		zap.String("port", portName),
		zap.Int("baud", baudRate),
	)
	return &Serial{port: port, name: portName}, nil
}

// Read waits up to timeout for the start of a packet, then reads until
// the packet is complete or the line goes idle.
func (s *Serial) Read(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, protocol.PacketSize)

	n, err := s.readChunk(buf, timeout)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrReadTimeout
	}

	// Keep collecting until the packet is full; a serial port may
	// hand the 64 bytes over in several reads.
	total := n
	for total < len(buf) {
		n, err = s.readChunk(buf[total:], timeout)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break // line went idle mid-packet, surface what we have
		}
		total += n
	}
	return buf[:total], nil
}

func (s *Serial) readChunk(buf []byte, timeout time.Duration) (int, error) {
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("setting read timeout: %w", err)
	}
	n, err := s.port.Read(buf)
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) || errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: %v", ErrDeviceGone, err)
		}
		return 0, fmt.Errorf("serial read: %w", err)
	}
	return n, nil
}

// Write sends one packet to the bridge.
func (s *Serial) Write(data []byte) (int, error) {
	n, err := s.port.Write(data)
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) {
			return n, fmt.Errorf("%w: %v", ErrDeviceGone, err)
		}
		return n, fmt.Errorf("serial write: %w", err)
	}
	return n, nil
}

// Close closes the port. An outstanding Read unblocks with an error.
func (s *Serial) Close() error {
	return s.port.Close()
}
