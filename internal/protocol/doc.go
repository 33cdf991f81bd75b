// Package protocol implements the DALI bus protocol: the packet codec
// for the USB bridge and the command decoder.
//
// # Bridge Packets
//
// The bridge exchanges fixed 64-byte packets with the host. The two
// directions use different byte layouts:
//
// Host to bridge (transmit):
//
//	[0]  direction (0x12)
//	[1]  sequence number (starts at 1, wraps mod 256)
//	[3]  frame type (0x02/0x03/0x06 for 8/16/24-bit)
//	[5]  extended command byte
//	[6]  address byte
//	[7]  opcode byte
//
// Bridge to host (receive):
//
//	[0]  direction (0x11 bus traffic, 0x12 echo of a host transmit)
//	[1]  frame type (0x70 | type, or 0x77 for a status report)
//	[3]  extended command byte
//	[4]  address byte
//	[5]  opcode byte (sub-status code for status packets)
//	[6]  device status bits (opaque)
//	[8]  sequence echo
//
// Echoed host transmits are recognized so the capture layer can log and
// discard them; only bus-originated packets become frames.
//
// # Command Decoding
//
// Decode resolves a captured bus frame into an addressed, named command.
// Address classification covers short addresses (0-63), group addresses
// (0-15), broadcast, unaddressed broadcast and the special command
// range. Opcode names come from data tables selected by frame width and
// the active device type; the "ENABLE DEVICE TYPE" special command
// switches the table used for the immediately following frame. The
// caller owns that context and threads it through successive Decode
// calls via DeviceContext.
//
// All decode paths are total: an opcode without a table entry yields a
// placeholder label instead of an error.
//
// # Thread Safety
//
// Decoding and packet parsing are stateless and safe for concurrent
// use. Encoder carries the transmit sequence counter and belongs to a
// single session.
package protocol
