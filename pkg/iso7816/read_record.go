package iso7816

import "fmt"

// READ RECORD (INS 'B2') reads records of a record-oriented EF, either the current EF
// or the one named by a short file identifier.
//
// P1 is the record number. P2 carries the SFI in bits 8-4 (0 = current EF) and the
// read mode in bits 3-1. Health cards keep their version fields in a linear EF under
// the MF with SFI '10', so record n is read with P2 = '84'.

// ReadRecordMode is the low three bits of P2 when P1 is a record number.
type ReadRecordMode byte

const (
	ReadRecordP1      ReadRecordMode = 0b100
	ReadRecordsFromP1 ReadRecordMode = 0b101
	ReadRecordsUpToP1 ReadRecordMode = 0b110
)

func (m ReadRecordMode) String() string {
	switch m {
	case ReadRecordP1:
		return "record P1"
	case ReadRecordsFromP1:
		return "records from P1"
	case ReadRecordsUpToP1:
		return "records up to P1"
	}
	return fmt.Sprintf("mode %03b", byte(m))
}

// NewReadRecordCommand builds READ RECORD asking for up to 256 bytes.
func NewReadRecordCommand(cla Class, sfi byte, record byte, mode ReadRecordMode) *CommandAPDU {
	p2 := (sfi&0x1F)<<3 | byte(mode)&0x07
	return NewCommandAPDU(cla, mustInstruction(INS_READ_RECORD), record, p2, nil, MaxShortLe)
}

// ReadRecord reads one record by number.
func ReadRecord(cla Class, sfi byte, record byte) *CommandAPDU {
	return NewReadRecordCommand(cla, sfi, record, ReadRecordP1)
}
