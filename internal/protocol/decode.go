package protocol

import (
	"fmt"
)

// AddressMode is the addressing scheme a command targets, derived from
// the top bits of the frame's address byte.
type AddressMode int

const (
	// AddressNone marks frames without an address byte (8-bit
	// backward frames).
	AddressNone AddressMode = iota
	AddressShort
	AddressGroup
	AddressBroadcast
	AddressBroadcastUnaddressed
	AddressSpecial
)

func (m AddressMode) String() string {
	switch m {
	case AddressShort:
		return "short address"
	case AddressGroup:
		return "group address"
	case AddressBroadcast:
		return "broadcast"
	case AddressBroadcastUnaddressed:
		return "broadcast unaddressed"
	case AddressSpecial:
		return "special command"
	case AddressNone:
		return "none"
	default:
		return fmt.Sprintf("AddressMode(%d)", int(m))
	}
}

// DeviceType identifies a control gear class whose extended command
// table re-interprets the application opcode space. DeviceNone means
// no extended table is active.
type DeviceType int

const (
	DeviceNone         DeviceType = -1
	DeviceFluorescent  DeviceType = 0
	DeviceEmergency    DeviceType = 1
	DeviceHID          DeviceType = 2
	DeviceHalogen      DeviceType = 3
	DeviceIncandescent DeviceType = 4
	DeviceConverter    DeviceType = 5
	DeviceLED          DeviceType = 6
	DeviceRelay        DeviceType = 7
	DeviceColour       DeviceType = 8
)

func (t DeviceType) String() string {
	switch t {
	case DeviceNone:
		return "NONE"
	case DeviceFluorescent:
		return "FLUORESCENT"
	case DeviceEmergency:
		return "EMERGENCY"
	case DeviceHID:
		return "HID"
	case DeviceHalogen:
		return "HALOGEN"
	case DeviceIncandescent:
		return "INCANDESCENT"
	case DeviceConverter:
		return "CONVERTER"
	case DeviceLED:
		return "LED"
	case DeviceRelay:
		return "RELAY"
	case DeviceColour:
		return "COLOUR"
	default:
		return fmt.Sprintf("DT%d", int(t))
	}
}

// DeviceContext carries the device type that applies to the next
// decoded command. The decode caller owns exactly one context per
// stream and feeds each result's Next back into the following Decode
// call; it is never shared state.
type DeviceContext struct {
	Type DeviceType
}

// NewDeviceContext returns the context a fresh decode stream starts
// with: no device type enabled.
func NewDeviceContext() DeviceContext {
	return DeviceContext{Type: DeviceNone}
}

// DecodedCommand is the immutable result of decoding one command
// frame.
type DecodedCommand struct {
	Mode    AddressMode
	Address int // short or group index when Mode is short/group
	Opcode  byte
	Label   string
	// Next is the context the immediately following Decode call must
	// use.
	Next DeviceContext
}

func (c DecodedCommand) String() string {
	return c.Label
}

// labelTagWidth is the column width of the address tag that prefixes
// every label.
const labelTagWidth = 10

// Decoder resolves command frames against the opcode tables. The zero
// value decodes with the default carryover behavior.
type Decoder struct {
	strict bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithStrictCarryover preserves an enabled device type across 8-bit
// backward frames so that only the next forward frame consumes it. The
// default behavior hands the context to whatever frame comes next,
// matching what the bus actually shows: an intervening reply clears
// the enabled type.
func WithStrictCarryover() Option {
	return func(d *Decoder) { d.strict = true }
}

// NewDecoder returns a Decoder with the given options applied.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode resolves a command frame plus the current device context into
// a DecodedCommand. It never fails: unknown opcodes resolve to a
// placeholder label. The result's Next field is the context for the
// next Decode call.
func (d *Decoder) Decode(f RawFrame, ctx DeviceContext) DecodedCommand {
	switch f.Width {
	case 8:
		return d.decodeBackward(f, ctx)
	case 16:
		return d.decodeForward16(f, ctx)
	case 24:
		return d.decodeForward24(f, ctx)
	default:
		return DecodedCommand{
			Mode:  AddressNone,
			Label: formatLabel("", fmt.Sprintf("--- %d bit frame 0x%X", f.Width, f.Payload)),
			Next:  NewDeviceContext(),
		}
	}
}

// decodeBackward handles 8-bit backward frames: the single byte is a
// reply value, not an addressed command.
func (d *Decoder) decodeBackward(f RawFrame, ctx DeviceContext) DecodedCommand {
	value := byte(f.Payload)
	next := NewDeviceContext()
	if d.strict {
		// A reply belongs to the preceding query; it does not consume
		// an enabled device type.
		next = ctx
	}
	return DecodedCommand{
		Mode:   AddressNone,
		Opcode: value,
		Label:  formatLabel("", fmt.Sprintf("REPLY 0x%02X (%d)", value, value)),
		Next:   next,
	}
}

func (d *Decoder) decodeForward16(f RawFrame, ctx DeviceContext) DecodedCommand {
	address := byte(f.Payload >> 8)
	opcode := byte(f.Payload)
	mode, index := classifyAddress(address)
	tag := addressTag(mode, index)

	cmd := DecodedCommand{
		Mode:    mode,
		Address: index,
		Opcode:  opcode,
		Next:    NewDeviceContext(),
	}

	if mode == AddressSpecial {
		name, next := resolveSpecial(address, opcode)
		cmd.Label = formatLabel(tag, name)
		cmd.Next = next
		return cmd
	}

	// The low bit of the address byte selects the command family:
	// set means the opcode byte resolves through a table, clear means
	// a direct arc power level.
	if address&0x01 == 0 {
		cmd.Label = formatLabel(tag, fmt.Sprintf("DAPC %d", opcode))
		return cmd
	}

	name, ok := lookupOpcode16(ctx.Type, opcode)
	if !ok {
		name = placeholder(opcode)
	}
	cmd.Label = formatLabel(tag, name)
	return cmd
}

func (d *Decoder) decodeForward24(f RawFrame, ctx DeviceContext) DecodedCommand {
	address := byte(f.Payload >> 16)
	instance := byte(f.Payload >> 8)
	opcode := byte(f.Payload)
	mode, index := classifyAddress(address)

	name, ok := lookupOpcode24(ctx.Type, instance, opcode)
	if !ok {
		name = placeholder(opcode)
	}
	return DecodedCommand{
		Mode:    mode,
		Address: index,
		Opcode:  opcode,
		Label:   formatLabel(addressTag(mode, index), name),
		Next:    NewDeviceContext(),
	}
}

// classifyAddress derives the address mode and index from an address
// byte. The broadcast family sits at the top of the range, with the
// second-lowest bit separating addressed from unaddressed broadcast;
// a clear top bit is a short address, the 100xxxxx block is a group
// address, and the remainder is the special command range.
func classifyAddress(address byte) (AddressMode, int) {
	switch {
	case address >= 0xFE:
		return AddressBroadcast, 0
	case address >= 0xFC:
		return AddressBroadcastUnaddressed, 0
	case address&0x80 == 0:
		return AddressShort, int(address>>1) & 0x3F
	case address&0xE0 == 0x80:
		return AddressGroup, int(address>>1) & 0x0F
	default:
		return AddressSpecial, 0
	}
}

// resolveSpecial names a special command. The address byte itself
// selects the command; the opcode byte is its parameter. The "ENABLE
// DEVICE TYPE" command is where device type context enters the stream.
func resolveSpecial(address, opcode byte) (string, DeviceContext) {
	next := NewDeviceContext()

	if address == specialEnableDeviceType {
		enabled := DeviceType(opcode)
		next.Type = enabled
		return fmt.Sprintf("ENABLE DEVICE TYPE %d (%s)", opcode, enabled), next
	}

	name, ok := specialCommands[address]
	if !ok {
		return placeholder(address), next
	}
	return fmt.Sprintf("%s (0x%02X)", name, opcode), next
}

func addressTag(mode AddressMode, index int) string {
	switch mode {
	case AddressBroadcast:
		return "BC"
	case AddressBroadcastUnaddressed:
		return "BC unadr."
	case AddressShort:
		return fmt.Sprintf("A%02d", index)
	case AddressGroup:
		return fmt.Sprintf("G%02d", index)
	case AddressSpecial:
		return "SC"
	default:
		return ""
	}
}

func formatLabel(tag, name string) string {
	return fmt.Sprintf("%-*s%s", labelTagWidth, tag, name)
}

func placeholder(opcode byte) string {
	return fmt.Sprintf("--- (0x%02X)", opcode)
}
