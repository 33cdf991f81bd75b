package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"github.com/luxbus/dalimon/internal/logging"
)

// Lunatone DALI USB bridge identifiers.
const (
	DefaultVendorID  = 0x17B5
	DefaultProductID = 0x0020
)

// USB drives a DALI USB bridge through its interrupt endpoints.
type USB struct {
	ctx         *gousb.Context
	dev         *gousb.Device
	intf        *gousb.Interface
	releaseIntf func()
	in          *gousb.InEndpoint
	out         *gousb.OutEndpoint
	packetSize  int
}

// OpenUSB claims the first bridge matching the given vendor/product
// pair. Zero values select the Lunatone defaults.
func OpenUSB(vendorID, productID uint16) (*USB, error) {
	if vendorID == 0 {
		vendorID = DefaultVendorID
	}
	if productID == 0 {
		productID = DefaultProductID
	}

	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vendorID), gousb.ID(productID))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("opening bridge %04x:%04x: %w", vendorID, productID, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("%w (looked for %04x:%04x)", ErrNoDevice, vendorID, productID)
	}

	// The cdc-acm driver tends to grab the bridge on Linux.
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("detaching kernel driver: %w", err)
	}

	intf, release, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("claiming bridge interface: %w", err)
	}

	u := &USB{
		ctx:         ctx,
		dev:         dev,
		intf:        intf,
		releaseIntf: release,
		packetSize:  64,
	}

	for _, ep := range intf.Setting.Endpoints {
		switch ep.Direction {
		case gousb.EndpointDirectionIn:
			if u.in == nil {
				u.in, err = intf.InEndpoint(ep.Number)
				if ep.MaxPacketSize > 0 {
					u.packetSize = ep.MaxPacketSize
				}
			}
		case gousb.EndpointDirectionOut:
			if u.out == nil {
				u.out, err = intf.OutEndpoint(ep.Number)
			}
		}
		if err != nil {
			u.Close()
			return nil, fmt.Errorf("opening bridge endpoint %d: %w", ep.Number, err)
		}
	}
	if u.in == nil || u.out == nil {
		u.Close()
		return nil, fmt.Errorf("%w: bridge interface is missing an in or out endpoint", ErrNoDevice)
	}

	logging.Debug("bridge claimed",
		zap.String("device", dev.String()),
		zap.Int("packet_size", u.packetSize),
	)
	return u, nil
}

// Read waits up to timeout for the next packet from the bridge.
func (u *USB) Read(timeout time.Duration) ([]byte, error) {
	rctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	buf := make([]byte, u.packetSize)
	n, err := u.in.ReadContext(rctx, buf)
	if err != nil {
		if rctx.Err() != nil {
			return nil, ErrReadTimeout
		}
		if errors.Is(err, gousb.ErrorNoDevice) || errors.Is(err, gousb.ErrorIO) {
			return nil, fmt.Errorf("%w: %v", ErrDeviceGone, err)
		}
		return nil, fmt.Errorf("bridge read: %w", err)
	}
	return buf[:n], nil
}

// Write sends one packet to the bridge.
func (u *USB) Write(data []byte) (int, error) {
	n, err := u.out.Write(data)
	if err != nil {
		if errors.Is(err, gousb.ErrorNoDevice) {
			return n, fmt.Errorf("%w: %v", ErrDeviceGone, err)
		}
		return n, fmt.Errorf("bridge write: %w", err)
	}
	return n, nil
}

// Close releases the interface and the device. An outstanding Read
// unblocks with an error once the device handle goes away.
func (u *USB) Close() error {
	if u.releaseIntf != nil {
		u.releaseIntf()
		u.releaseIntf = nil
	}
	var err error
	if u.dev != nil {
		err = u.dev.Close()
		u.dev = nil
	}
	if u.ctx != nil {
		if cerr := u.ctx.Close(); err == nil {
			err = cerr
		}
		u.ctx = nil
	}
	return err
}

// DeviceInfo describes a bridge candidate found on the USB bus.
type DeviceInfo struct {
	Bus     int
	Address int
	Vendor  uint16
	Product uint16
	Speed   string
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("bus %03d device %03d: %04x:%04x (%s)", d.Bus, d.Address, d.Vendor, d.Product, d.Speed)
}

// ListUSB enumerates bridge devices matching the vendor/product pair
// without claiming them. Zero values select the Lunatone defaults.
func ListUSB(vendorID, productID uint16) ([]DeviceInfo, error) {
	if vendorID == 0 {
		vendorID = DefaultVendorID
	}
	if productID == 0 {
		productID = DefaultProductID
	}

	ctx := gousb.NewContext()
	defer ctx.Close()

	var found []DeviceInfo
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor == gousb.ID(vendorID) && desc.Product == gousb.ID(productID) {
			found = append(found, DeviceInfo{
				Bus:     desc.Bus,
				Address: desc.Address,
				Vendor:  uint16(desc.Vendor),
				Product: uint16(desc.Product),
				Speed:   desc.Speed.String(),
			})
		}
		return false // enumerate only, claim nothing
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating usb devices: %w", err)
	}
	return found, nil
}
