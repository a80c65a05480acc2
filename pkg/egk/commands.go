package egk

import (
	"fmt"

	"github.com/gregLibert/egk-reader/pkg/iso7816"
)

// Application identifiers and file identifiers of the eGK layout.
var (
	AIDRoot = []byte{0xD2, 0x76, 0x00, 0x01, 0x44, 0x80, 0x00}
	AIDHCA  = []byte{0xD2, 0x76, 0x00, 0x00, 0x01, 0x02}
)

const (
	FIDPersonalData  uint16 = 0xD001 // EF.PD
	FIDInsuranceData uint16 = 0xD002 // EF.VD

	sfiGDO     byte = 0x02 // EF.GDO under the root application
	sfiStatus  byte = 0x0C // EF.StatusVD under the HCA
	sfiVersion byte = 0x10 // EF.Version under the root application

	statusLength = 0x19

	// VersionSlots is the number of records in EF.Version.
	VersionSlots = 3

	maxOffset       = 0xFFFF
	maxDirectOffset = 0x7FFF // P1 bit 8 clear
	maxLength       = 0xFF
)

// All commands run on the basic logical channel without secure messaging (CLA 00).
var basic iso7816.Class

// SelectRoot selects the root application.
func SelectRoot() *iso7816.CommandAPDU {
	return iso7816.SelectByAID(basic, AIDRoot, iso7816.ReturnNoData)
}

// SelectHCA selects the health care application.
func SelectHCA() *iso7816.CommandAPDU {
	return iso7816.SelectByAID(basic, AIDHCA, iso7816.ReturnNoData)
}

// SelectPersonalData selects EF.PD in the HCA.
func SelectPersonalData() *iso7816.CommandAPDU {
	return iso7816.SelectEF(basic, FIDPersonalData, iso7816.ReturnNoData)
}

// SelectInsuranceData selects EF.VD in the HCA.
func SelectInsuranceData() *iso7816.CommandAPDU {
	return iso7816.SelectEF(basic, FIDInsuranceData, iso7816.ReturnNoData)
}

// ReadStatus reads the 25 bytes of EF.StatusVD.
func ReadStatus() *iso7816.CommandAPDU {
	return iso7816.ReadBinarySFI(basic, sfiStatus, 0, statusLength)
}

// ReadGDO reads EF.GDO completely (Le=00).
func ReadGDO() *iso7816.CommandAPDU {
	return iso7816.ReadBinarySFI(basic, sfiGDO, 0, 0)
}

// ReadVersion reads record slot (1..3) of EF.Version.
func ReadVersion(slot int) (*iso7816.CommandAPDU, error) {
	if slot < 1 || slot > VersionSlots {
		return nil, fmt.Errorf("version slot %d out of range [1, %d]", slot, VersionSlots)
	}
	return iso7816.ReadRecord(basic, sfiVersion, byte(slot)), nil
}

// ReadAt reads length bytes at offset of the currently selected EF.
// A length of 0 requests up to 256 bytes. Offsets above 0x7FFF are encoded as given,
// but set P1 bit 8, which ISO 7816-4 cards read as short-file-identifier addressing.
func ReadAt(offset, length int) (*iso7816.CommandAPDU, error) {
	if offset < 0 || offset > maxOffset {
		return nil, &RangeError{Field: "offset", Value: offset, Max: maxOffset}
	}
	if length < 0 || length > maxLength {
		return nil, &RangeError{Field: "length", Value: length, Max: maxLength}
	}
	return iso7816.ReadBinary(basic, uint16(offset), byte(length)), nil
}
