package iso7816

import (
	"bytes"
	"fmt"
)

// APDU (Application Protocol Data Unit) structures and encodings according to ISO/IEC 7816-3 and 7816-4.
//
// COMMAND APDU (C-APDU):
//   - Header (4 bytes): CLA, INS, P1, P2.
//   - Body (optional): Lc + Data, then Le.
//
// ENCODING CASES (ISO 7816-3):
//   - Case 1: Header only.
//   - Case 2: Header + Le (e.g. READ BINARY).
//   - Case 3: Header + Lc + Data (e.g. SELECT without response data).
//   - Case 4: Header + Lc + Data + Le.
//
// Lc/Le are encoded on 1 byte (short) unless Nc > 255 or Ne > 256, in which case the
// extended form is used for both.
//
// RESPONSE APDU (R-APDU):
//   - Body (optional): response data.
//   - Trailer (mandatory): SW1 SW2.

// APDU Limits according to ISO 7816-3.
const (
	// MaxShortLc is the maximum data length (Nc) encodable on 1 byte.
	MaxShortLc = 255

	// MaxShortLe is the maximum Ne encodable on 1 byte (0x00 encodes 256).
	MaxShortLe = 256

	// MaxExtendedLc is the limit for Lc in extended mode.
	MaxExtendedLc = 65535

	// MaxExtendedLe is the maximum Ne in extended mode (0x0000 encodes 65536).
	MaxExtendedLe = 65536
)

// CommandAPDU represents a command sent to the card.
type CommandAPDU struct {
	Class       Class
	Instruction Instruction
	P1, P2      byte
	Data        []byte
	Ne          int // Expected response length (0 means none)
}

// NewCommandAPDU creates a basic command.
func NewCommandAPDU(cla Class, ins Instruction, p1, p2 byte, data []byte, ne int) *CommandAPDU {
	return &CommandAPDU{
		Class:       cla,
		Instruction: ins,
		P1:          p1,
		P2:          p2,
		Data:        data,
		Ne:          ne,
	}
}

// Bytes encodes the CommandAPDU into its byte representation (C-APDU).
func (c *CommandAPDU) Bytes() ([]byte, error) {
	nc := len(c.Data)
	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("data field too long: %d bytes (max %d)", nc, MaxExtendedLc)
	}
	if c.Ne < 0 || c.Ne > MaxExtendedLe {
		return nil, fmt.Errorf("expected length %d out of range [0, %d]", c.Ne, MaxExtendedLe)
	}

	class, err := c.Class.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode Class: %w", err)
	}

	buf := bytes.NewBuffer(make([]byte, 0, 4+3+nc+3))
	buf.Write([]byte{class, byte(c.Instruction.Raw), c.P1, c.P2})

	extended := nc > MaxShortLc || c.Ne > MaxShortLe

	if nc > 0 {
		writeLc(buf, nc, extended)
		buf.Write(c.Data)
	}
	if c.Ne > 0 {
		writeLe(buf, c.Ne, extended, nc == 0)
	}

	return buf.Bytes(), nil
}

func writeLc(buf *bytes.Buffer, nc int, extended bool) {
	if !extended {
		buf.WriteByte(byte(nc))
		return
	}
	buf.Write([]byte{0x00, byte(nc >> 8), byte(nc)})
}

func writeLe(buf *bytes.Buffer, ne int, extended, noLc bool) {
	if !extended {
		// 0x00 stands for 256
		buf.WriteByte(byte(ne))
		return
	}
	// Without Lc a leading 00 marks the extended form.
	if noLc {
		buf.WriteByte(0x00)
	}
	// 0x0000 stands for 65536
	buf.Write([]byte{byte(ne >> 8), byte(ne)})
}

// String returns a readable representation of the command meta-data.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("%s | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Instruction.Verbose(), c.P1, c.P2, len(c.Data), c.Ne)
}

// ResponseAPDU represents the reply from the card (R-APDU).
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU parses raw bytes received from the card into a ResponseAPDU.
// The input must contain at least 2 bytes (SW1, SW2).
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("response too short: length %d", len(raw))
	}

	n := len(raw) - 2
	return &ResponseAPDU{
		Data:   raw[:n:n],
		Status: NewStatusWord(raw[n], raw[n+1]),
	}, nil
}

// String returns a readable representation of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}
