package protocol

import (
	"fmt"
	"time"
)

// Bridge packet direction markers.
const (
	DirectionFromBus = 0x11 // packet carries captured bus traffic
	DirectionToBus   = 0x12 // packet originated on the host side
)

// Frame type codes. Received packets carry the type with ReceiveMask
// or'ed in.
const (
	Type8Bit    = 0x02
	Type16Bit   = 0x03
	Type24Bit   = 0x06
	TypeStatus  = 0x07
	ReceiveMask = 0x70
)

// PacketSize is the fixed size of every bridge packet in both
// directions.
const PacketSize = 64

// FrameKind distinguishes what a captured frame carries.
type FrameKind int

const (
	// FrameInvalid marks a packet the bridge sent with an unknown
	// frame type. Invalid frames never leave the capture layer.
	FrameInvalid FrameKind = iota
	// FrameCommand is a bus command of 8, 16 or 24 bits.
	FrameCommand
	// FrameError is a bus fault the bridge reported via a status
	// packet.
	FrameError
)

func (k FrameKind) String() string {
	switch k {
	case FrameCommand:
		return "command"
	case FrameError:
		return "error"
	case FrameInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("FrameKind(%d)", int(k))
	}
}

// ErrorKind classifies a bus fault reported by the bridge.
type ErrorKind int

const (
	// ErrorGeneral is any fault the bridge does not further qualify.
	ErrorGeneral ErrorKind = iota
	// ErrorRecoverable is a transient bus condition; traffic continues.
	ErrorRecoverable
	// ErrorFrame is a framing violation on the bus wire.
	ErrorFrame
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorRecoverable:
		return "RECOVERABLE ERROR"
	case ErrorFrame:
		return "FRAME ERROR"
	case ErrorGeneral:
		return "GENERAL ERROR"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ClassifyStatus maps a bridge status sub-code to an ErrorKind. Every
// byte value maps to a defined kind.
func ClassifyStatus(subcode byte) ErrorKind {
	switch subcode {
	case 0x04:
		return ErrorRecoverable
	case 0x03:
		return ErrorFrame
	default:
		return ErrorGeneral
	}
}

// RawFrame is one captured unit of bus traffic as delivered by the
// capture layer. Width and Payload are meaningful for FrameCommand,
// Err for FrameError. A RawFrame is never mutated after construction.
type RawFrame struct {
	Kind      FrameKind
	Timestamp time.Time
	Width     int    // 8, 16 or 24
	Payload   uint32 // frame bits, low-aligned
	Err       ErrorKind
	Sequence  byte // sequence echo from the bridge
}

// Hex renders the frame payload at its natural width.
func (f RawFrame) Hex() string {
	switch f.Width {
	case 8:
		return fmt.Sprintf("%02X", f.Payload)
	case 16:
		return fmt.Sprintf("%04X", f.Payload)
	case 24:
		return fmt.Sprintf("%06X", f.Payload)
	default:
		return fmt.Sprintf("%X", f.Payload)
	}
}

func (f RawFrame) String() string {
	switch f.Kind {
	case FrameCommand:
		return fmt.Sprintf("Frame{%d bit, %s}", f.Width, f.Hex())
	case FrameError:
		return fmt.Sprintf("Frame{%s}", f.Err)
	default:
		return "Frame{invalid}"
	}
}
