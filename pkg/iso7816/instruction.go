package iso7816

import (
	"fmt"

	"github.com/gregLibert/egk-reader/pkg/bits"
)

// Instruction Byte (INS) Logic according to ISO/IEC 7816-4.
//
// Bit 1 of an interindustry INS tells whether the data field is BER-TLV encoded
// (e.g. READ BINARY 0xB0 vs READ BINARY BER-TLV 0xB1).
//
// INS values with an upper nibble of '6' or '9' are invalid: they collide with SW1
// procedure bytes of the T=0 transport (ISO/IEC 7816-3).

// InsCode is a typed representation of the instruction byte.
type InsCode byte

// Instruction codes used by read-only card sessions, plus the write counterparts that
// show up when tracing other software against the same card.
const (
	INS_VERIFY            InsCode = 0x20
	INS_GET_CHALLENGE     InsCode = 0x84
	INS_SELECT            InsCode = 0xA4
	INS_READ_BINARY       InsCode = 0xB0
	INS_READ_BINARY_BER   InsCode = 0xB1
	INS_READ_RECORD       InsCode = 0xB2
	INS_READ_RECORD_BER   InsCode = 0xB3
	INS_GET_RESPONSE      InsCode = 0xC0
	INS_GET_DATA          InsCode = 0xCA
	INS_UPDATE_BINARY     InsCode = 0xD6
	INS_UPDATE_RECORD     InsCode = 0xDC
	INS_APPEND_RECORD     InsCode = 0xE2
	INS_MANAGE_CHANNEL    InsCode = 0x70
	INS_EXTERNAL_AUTH     InsCode = 0x82
	INS_INTERNAL_AUTH     InsCode = 0x88
	INS_MANAGE_SECURITY   InsCode = 0x22
	INS_PERFORM_SECURITY  InsCode = 0x2A
	INS_CHANGE_REFERENCE  InsCode = 0x24
	INS_RESET_RETRY_COUNT InsCode = 0x2C
)

var insNames = map[InsCode]string{
	INS_VERIFY:            "INS_VERIFY",
	INS_GET_CHALLENGE:     "INS_GET_CHALLENGE",
	INS_SELECT:            "INS_SELECT",
	INS_READ_BINARY:       "INS_READ_BINARY",
	INS_READ_BINARY_BER:   "INS_READ_BINARY_BER",
	INS_READ_RECORD:       "INS_READ_RECORD",
	INS_READ_RECORD_BER:   "INS_READ_RECORD_BER",
	INS_GET_RESPONSE:      "INS_GET_RESPONSE",
	INS_GET_DATA:          "INS_GET_DATA",
	INS_UPDATE_BINARY:     "INS_UPDATE_BINARY",
	INS_UPDATE_RECORD:     "INS_UPDATE_RECORD",
	INS_APPEND_RECORD:     "INS_APPEND_RECORD",
	INS_MANAGE_CHANNEL:    "INS_MANAGE_CHANNEL",
	INS_EXTERNAL_AUTH:     "INS_EXTERNAL_AUTH",
	INS_INTERNAL_AUTH:     "INS_INTERNAL_AUTH",
	INS_MANAGE_SECURITY:   "INS_MANAGE_SECURITY",
	INS_PERFORM_SECURITY:  "INS_PERFORM_SECURITY",
	INS_CHANGE_REFERENCE:  "INS_CHANGE_REFERENCE",
	INS_RESET_RETRY_COUNT: "INS_RESET_RETRY_COUNT",
}

func (i InsCode) String() string {
	if name, ok := insNames[i]; ok {
		return name
	}
	return fmt.Sprintf("InsCode(0x%02X)", byte(i))
}

// Instruction represents the parsed ISO 7816-4 Instruction byte (INS).
type Instruction struct {
	Raw      InsCode
	IsBERTLV bool
}

// NewInstruction creates an Instruction object with validation.
// It rejects '6X' and '9X' values as they are invalid according to ISO 7816-3.
func NewInstruction(ins InsCode) (Instruction, error) {
	switch bits.High(byte(ins)) {
	case 0x6, 0x9:
		return Instruction{}, fmt.Errorf("invalid INS 0x%02X: 6X and 9X are reserved", byte(ins))
	}

	return Instruction{
		Raw:      ins,
		IsBERTLV: bits.IsSet(byte(ins), 1),
	}, nil
}

// mustInstruction is used by the command builders, whose INS codes are constants.
func mustInstruction(ins InsCode) Instruction {
	i, err := NewInstruction(ins)
	if err != nil {
		panic(err)
	}
	return i
}

// Verbose returns a human-readable description of the instruction.
func (i Instruction) Verbose() string {
	format := "Standard"
	if i.IsBERTLV {
		format = "BER-TLV"
	}
	return fmt.Sprintf("INS: 0x%02X | Command: %s | Format: %s", byte(i.Raw), i.Raw.String(), format)
}
