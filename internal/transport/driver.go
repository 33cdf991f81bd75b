package transport

import (
	"errors"
	"time"
)

// Sentinel errors drivers translate device-specific failures into.
var (
	// ErrReadTimeout reports that a timed read expired with no data.
	// It is part of normal operation, not a failure.
	ErrReadTimeout = errors.New("read timed out")

	// ErrDeviceGone reports that the bridge device is no longer
	// reachable. It is fatal and not retryable.
	ErrDeviceGone = errors.New("bridge device gone")

	// ErrNoDevice reports that no bridge device was found at open
	// time.
	ErrNoDevice = errors.New("no bridge device found")
)

// Driver is the minimal transport contract the capture layer needs
// from a bridge device.
type Driver interface {
	// Read returns the next packet from the bridge, waiting at most
	// timeout. It returns ErrReadTimeout when no packet arrived and
	// ErrDeviceGone when the device vanished. Read must unblock and
	// fail when Close is called concurrently.
	Read(timeout time.Duration) ([]byte, error)

	// Write sends a packet to the bridge and returns the number of
	// bytes written.
	Write(data []byte) (int, error)

	// Close releases the device. Safe to call while a Read is
	// outstanding.
	Close() error
}
