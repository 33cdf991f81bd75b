package protocol

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCommandLength is returned when a transmit request is not
// 1 to 3 payload bytes.
var ErrInvalidCommandLength = errors.New("bus commands must be 1 to 3 bytes")

// minPacketLen is how much of a received packet the codec inspects.
// The bridge always sends PacketSize bytes but only the first nine
// carry information.
const minPacketLen = 9

// Packet is a received bridge packet split into its fields.
type Packet struct {
	Direction byte
	Type      byte
	Extended  byte
	Address   byte
	Opcode    byte // sub-status code when Type is a status report
	Status    [2]byte
	Sequence  byte
	Raw       []byte
}

// ParsePacket splits a received bridge packet into its fields. It
// fails only on truncated input; unknown direction or frame type bytes
// are left for Frame to classify.
func ParsePacket(data []byte) (*Packet, error) {
	if len(data) < minPacketLen {
		return nil, fmt.Errorf("bridge packet too short: %d bytes (minimum %d)", len(data), minPacketLen)
	}
	return &Packet{
		Direction: data[0],
		Type:      data[1],
		Extended:  data[3],
		Address:   data[4],
		Opcode:    data[5],
		Status:    [2]byte{data[6], data[7]},
		Sequence:  data[8],
		Raw:       data,
	}, nil
}

// IsEcho reports whether the packet is the bridge's echo of a
// host-originated transmit. Echoes are logged by the capture layer but
// never become frames.
func (p *Packet) IsEcho() bool {
	return p.Direction == DirectionToBus
}

// Frame converts a bus-originated packet into a RawFrame stamped with
// the given capture time. Packets that are not bus-originated, or that
// carry an unknown frame type, yield a FrameInvalid frame.
func (p *Packet) Frame(now time.Time) RawFrame {
	if p.Direction != DirectionFromBus {
		return RawFrame{Kind: FrameInvalid, Timestamp: now}
	}

	switch p.Type {
	case ReceiveMask | Type8Bit:
		return RawFrame{
			Kind:      FrameCommand,
			Timestamp: now,
			Width:     8,
			Payload:   uint32(p.Opcode),
			Sequence:  p.Sequence,
		}
	case ReceiveMask | Type16Bit:
		return RawFrame{
			Kind:      FrameCommand,
			Timestamp: now,
			Width:     16,
			Payload:   uint32(p.Opcode) | uint32(p.Address)<<8,
			Sequence:  p.Sequence,
		}
	case ReceiveMask | Type24Bit:
		return RawFrame{
			Kind:      FrameCommand,
			Timestamp: now,
			Width:     24,
			Payload:   uint32(p.Opcode) | uint32(p.Address)<<8 | uint32(p.Extended)<<16,
			Sequence:  p.Sequence,
		}
	case ReceiveMask | TypeStatus:
		return RawFrame{
			Kind:      FrameError,
			Timestamp: now,
			Err:       ClassifyStatus(p.Opcode),
			Sequence:  p.Sequence,
		}
	default:
		return RawFrame{Kind: FrameInvalid, Timestamp: now, Sequence: p.Sequence}
	}
}

func (p *Packet) String() string {
	return fmt.Sprintf("Packet{dir=0x%02x, type=0x%02x, ec=0x%02x, ad=0x%02x, oc=0x%02x, sn=0x%02x}",
		p.Direction, p.Type, p.Extended, p.Address, p.Opcode, p.Sequence)
}

// Encoder builds outgoing bridge packets and assigns their sequence
// numbers. One Encoder exists per open session; it is not safe for
// concurrent use.
type Encoder struct {
	seq byte
}

// NewEncoder returns an Encoder whose first packet gets sequence
// number 1.
func NewEncoder() *Encoder {
	return &Encoder{seq: 1}
}

// Encode builds the outgoing 64-byte packet for a 1, 2 or 3 byte bus
// command. Three bytes map to a 24-bit frame (extended command,
// address, opcode), two to a 16-bit frame and one to an 8-bit frame.
func (e *Encoder) Encode(cmd []byte) ([]byte, error) {
	var frameType, extended, address, opcode byte

	switch len(cmd) {
	case 3:
		frameType = Type24Bit
		extended, address, opcode = cmd[0], cmd[1], cmd[2]
	case 2:
		frameType = Type16Bit
		address, opcode = cmd[0], cmd[1]
	case 1:
		frameType = Type8Bit
		opcode = cmd[0]
	default:
		return nil, fmt.Errorf("%w, got %d", ErrInvalidCommandLength, len(cmd))
	}

	pkt := make([]byte, PacketSize)
	pkt[0] = DirectionToBus
	pkt[1] = e.nextSequence()
	pkt[3] = frameType
	pkt[5] = extended
	pkt[6] = address
	pkt[7] = opcode
	return pkt, nil
}

func (e *Encoder) nextSequence() byte {
	s := e.seq
	e.seq++ // wraps mod 256
	return s
}
