package protocol

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestEncoderEncode(t *testing.T) {
	tests := []struct {
		name    string
		cmd     []byte
		wantErr bool
		verify  func(t *testing.T, pkt []byte)
	}{
		{
			name: "24-bit command",
			cmd:  []byte{0x01, 0xFF, 0x93},
			verify: func(t *testing.T, pkt []byte) {
				if pkt[3] != Type24Bit {
					t.Errorf("frame type = 0x%02x, want 0x%02x", pkt[3], Type24Bit)
				}
				if pkt[5] != 0x01 || pkt[6] != 0xFF || pkt[7] != 0x93 {
					t.Errorf("payload bytes = %02x %02x %02x, want 01 ff 93", pkt[5], pkt[6], pkt[7])
				}
			},
		},
		{
			name: "16-bit command",
			cmd:  []byte{0xFF, 0x08},
			verify: func(t *testing.T, pkt []byte) {
				if pkt[3] != Type16Bit {
					t.Errorf("frame type = 0x%02x, want 0x%02x", pkt[3], Type16Bit)
				}
				if pkt[5] != 0x00 || pkt[6] != 0xFF || pkt[7] != 0x08 {
					t.Errorf("payload bytes = %02x %02x %02x, want 00 ff 08", pkt[5], pkt[6], pkt[7])
				}
			},
		},
		{
			name: "8-bit command",
			cmd:  []byte{0x42},
			verify: func(t *testing.T, pkt []byte) {
				if pkt[3] != Type8Bit {
					t.Errorf("frame type = 0x%02x, want 0x%02x", pkt[3], Type8Bit)
				}
				if pkt[5] != 0x00 || pkt[6] != 0x00 || pkt[7] != 0x42 {
					t.Errorf("payload bytes = %02x %02x %02x, want 00 00 42", pkt[5], pkt[6], pkt[7])
				}
			},
		},
		{
			name:    "empty command",
			cmd:     nil,
			wantErr: true,
		},
		{
			name:    "four bytes",
			cmd:     []byte{1, 2, 3, 4},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncoder()
			pkt, err := enc.Encode(tt.cmd)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Encode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCommandLength) {
					t.Errorf("error = %v, want ErrInvalidCommandLength", err)
				}
				return
			}

			if len(pkt) != PacketSize {
				t.Fatalf("packet length = %d, want %d", len(pkt), PacketSize)
			}
			if pkt[0] != DirectionToBus {
				t.Errorf("direction = 0x%02x, want 0x%02x", pkt[0], DirectionToBus)
			}
			if pkt[1] != 1 {
				t.Errorf("first sequence number = %d, want 1", pkt[1])
			}
			if !bytes.Equal(pkt[8:], make([]byte, PacketSize-8)) {
				t.Error("trailing packet bytes are not zero")
			}
			if tt.verify != nil {
				tt.verify(t, pkt)
			}
		})
	}
}

func TestEncoderSequenceNumbers(t *testing.T) {
	enc := NewEncoder()

	// The first packet gets 1, then the counter wraps modulo 256.
	// Within one wrap cycle no two packets share a number.
	seen := make(map[byte]bool)
	for i := 0; i < 256; i++ {
		pkt, err := enc.Encode([]byte{0xFF, 0x00})
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		sn := pkt[1]
		if i == 0 && sn != 1 {
			t.Fatalf("first sequence number = %d, want 1", sn)
		}
		if seen[sn] {
			t.Fatalf("sequence number %d repeated within one wrap cycle", sn)
		}
		seen[sn] = true
	}

	// After a full cycle the sequence repeats from the start.
	pkt, err := enc.Encode([]byte{0xFF, 0x00})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if pkt[1] != 1 {
		t.Errorf("sequence number after wrap = %d, want 1", pkt[1])
	}
}

// receivePacket builds an inbound bridge packet for tests.
func receivePacket(direction, frameType, ec, ad, oc, sn byte) []byte {
	pkt := make([]byte, PacketSize)
	pkt[0] = direction
	pkt[1] = frameType
	pkt[3] = ec
	pkt[4] = ad
	pkt[5] = oc
	pkt[8] = sn
	return pkt
}

func TestParsePacket(t *testing.T) {
	t.Run("truncated packet", func(t *testing.T) {
		if _, err := ParsePacket(make([]byte, 5)); err == nil {
			t.Error("ParsePacket() accepted a truncated packet")
		}
	})

	t.Run("field extraction", func(t *testing.T) {
		pkt, err := ParsePacket(receivePacket(DirectionFromBus, ReceiveMask|Type16Bit, 0x00, 0xFF, 0x93, 0x07))
		if err != nil {
			t.Fatalf("ParsePacket() error = %v", err)
		}
		if pkt.Direction != DirectionFromBus {
			t.Errorf("direction = 0x%02x, want 0x%02x", pkt.Direction, DirectionFromBus)
		}
		if pkt.Address != 0xFF || pkt.Opcode != 0x93 {
			t.Errorf("address/opcode = 0x%02x/0x%02x, want 0xff/0x93", pkt.Address, pkt.Opcode)
		}
		if pkt.Sequence != 0x07 {
			t.Errorf("sequence = 0x%02x, want 0x07", pkt.Sequence)
		}
	})
}

func TestPacketFrame(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		data        []byte
		wantKind    FrameKind
		wantWidth   int
		wantPayload uint32
		wantErrKind ErrorKind
	}{
		{
			name:        "8-bit backward frame",
			data:        receivePacket(DirectionFromBus, ReceiveMask|Type8Bit, 0x00, 0x00, 0x8A, 0),
			wantKind:    FrameCommand,
			wantWidth:   8,
			wantPayload: 0x8A,
		},
		{
			name:        "16-bit forward frame",
			data:        receivePacket(DirectionFromBus, ReceiveMask|Type16Bit, 0x00, 0xFF, 0x93, 0),
			wantKind:    FrameCommand,
			wantWidth:   16,
			wantPayload: 0xFF93,
		},
		{
			name:        "24-bit forward frame",
			data:        receivePacket(DirectionFromBus, ReceiveMask|Type24Bit, 0x01, 0xFE, 0x30, 0),
			wantKind:    FrameCommand,
			wantWidth:   24,
			wantPayload: 0x01FE30,
		},
		{
			name:        "status packet, framing fault",
			data:        receivePacket(DirectionFromBus, ReceiveMask|TypeStatus, 0x00, 0x00, 0x03, 0),
			wantKind:    FrameError,
			wantErrKind: ErrorFrame,
		},
		{
			name:        "status packet, recoverable fault",
			data:        receivePacket(DirectionFromBus, ReceiveMask|TypeStatus, 0x00, 0x00, 0x04, 0),
			wantKind:    FrameError,
			wantErrKind: ErrorRecoverable,
		},
		{
			name:     "unknown frame type",
			data:     receivePacket(DirectionFromBus, 0x5A, 0x00, 0x00, 0x00, 0),
			wantKind: FrameInvalid,
		},
		{
			name:     "echo of host transmit",
			data:     receivePacket(DirectionToBus, Type16Bit, 0x00, 0xFF, 0x08, 0),
			wantKind: FrameInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt, err := ParsePacket(tt.data)
			if err != nil {
				t.Fatalf("ParsePacket() error = %v", err)
			}
			frame := pkt.Frame(now)

			if frame.Kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", frame.Kind, tt.wantKind)
			}
			switch tt.wantKind {
			case FrameCommand:
				if frame.Width != tt.wantWidth {
					t.Errorf("width = %d, want %d", frame.Width, tt.wantWidth)
				}
				if frame.Payload != tt.wantPayload {
					t.Errorf("payload = 0x%X, want 0x%X", frame.Payload, tt.wantPayload)
				}
				if !frame.Timestamp.Equal(now) {
					t.Error("timestamp not stamped with capture time")
				}
			case FrameError:
				if frame.Err != tt.wantErrKind {
					t.Errorf("error kind = %v, want %v", frame.Err, tt.wantErrKind)
				}
				if frame.Payload != 0 {
					t.Errorf("payload = %d, want 0 for error frames", frame.Payload)
				}
			}
		})
	}
}

func TestPacketIsEcho(t *testing.T) {
	echo, err := ParsePacket(receivePacket(DirectionToBus, Type16Bit, 0, 0xFF, 0x08, 1))
	if err != nil {
		t.Fatalf("ParsePacket() error = %v", err)
	}
	if !echo.IsEcho() {
		t.Error("host-originated packet not recognized as echo")
	}

	captured, err := ParsePacket(receivePacket(DirectionFromBus, ReceiveMask|Type16Bit, 0, 0xFF, 0x08, 1))
	if err != nil {
		t.Fatalf("ParsePacket() error = %v", err)
	}
	if captured.IsEcho() {
		t.Error("bus-originated packet misclassified as echo")
	}
}

func TestClassifyStatus(t *testing.T) {
	for code := 0; code < 256; code++ {
		got := ClassifyStatus(byte(code))
		var want ErrorKind
		switch code {
		case 0x04:
			want = ErrorRecoverable
		case 0x03:
			want = ErrorFrame
		default:
			want = ErrorGeneral
		}
		if got != want {
			t.Errorf("ClassifyStatus(0x%02x) = %v, want %v", code, got, want)
		}
	}
}

func BenchmarkPacketFrame(b *testing.B) {
	data := receivePacket(DirectionFromBus, ReceiveMask|Type16Bit, 0x00, 0xFF, 0x93, 0)
	now := time.Now()
	pkt, err := ParsePacket(data)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pkt.Frame(now)
	}
}
