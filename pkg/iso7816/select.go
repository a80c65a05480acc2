package iso7816

import "fmt"

// SELECT (INS 'A4') makes a DF, an EF or an application the current one. Every later
// READ BINARY or READ RECORD without an explicit SFI targets that file, so a session is
// a chain of selects and reads whose meaning depends on order.
//
// P1 chooses how the target is named, P2 bits 4-3 what the card answers with.
// Occurrence bits (P2 bits 2-1) are always "first or only".

// SelectionMethod is P1 of SELECT.
type SelectionMethod byte

const (
	SelectByFileID         SelectionMethod = 0x00
	SelectEFUnderCurrentDF SelectionMethod = 0x02
	SelectByDFName         SelectionMethod = 0x04
)

func (s SelectionMethod) String() string {
	switch s {
	case SelectByFileID:
		return "by file ID"
	case SelectEFUnderCurrentDF:
		return "EF under current DF"
	case SelectByDFName:
		return "by DF name"
	}
	return fmt.Sprintf("method %02X", byte(s))
}

// SelectionControl is P2 of SELECT.
type SelectionControl byte

const (
	ReturnFCI    SelectionControl = 0b0000_00_00
	ReturnFCP    SelectionControl = 0b0000_01_00
	ReturnNoData SelectionControl = 0b0000_11_00
)

func (s SelectionControl) String() string {
	switch s {
	case ReturnFCI:
		return "FCI"
	case ReturnFCP:
		return "FCP"
	case ReturnNoData:
		return "no data"
	}
	return fmt.Sprintf("control %02X", byte(s))
}

// NewSelectCommand builds a SELECT. A command carrying data never carries Le as well:
// over T=0 the card answers '61 XX' and the Client fetches the rest.
func NewSelectCommand(cla Class, method SelectionMethod, ctrl SelectionControl, data []byte) *CommandAPDU {
	ne := 0
	if len(data) == 0 && ctrl != ReturnNoData {
		ne = MaxShortLe
	}
	return NewCommandAPDU(cla, mustInstruction(INS_SELECT), byte(method), byte(ctrl), data, ne)
}

// SelectByAID selects an application by its DF name.
func SelectByAID(cla Class, aid []byte, ctrl SelectionControl) *CommandAPDU {
	return NewSelectCommand(cla, SelectByDFName, ctrl, aid)
}

// SelectEF selects an elementary file of the current DF by its 2-byte identifier.
func SelectEF(cla Class, fid uint16, ctrl SelectionControl) *CommandAPDU {
	return NewSelectCommand(cla, SelectEFUnderCurrentDF, ctrl, []byte{byte(fid >> 8), byte(fid)})
}
