package iso7816

// READ BINARY COMMAND LOGIC (ISO 7816-4):
// The READ BINARY command (INS 'B0') reads a byte range of a transparent EF.
//
// Two addressing forms exist for P1-P2:
//   - Bit 8 of P1 = 0: P1-P2 is the offset in the current EF (15 bits in practice).
//   - Bit 8 of P1 = 1: bits 5-1 of P1 are an SFI that is selected implicitly, P2 is an
//     8-bit offset in that file.
//
// Le is the number of bytes requested; '00' asks for up to 256 bytes.

// ReadBinary reads length bytes at offset of the current EF.
// A length of 0 is encoded as Le='00'.
func ReadBinary(cla Class, offset uint16, length byte) *CommandAPDU {
	return NewCommandAPDU(cla, mustInstruction(INS_READ_BINARY),
		byte(offset>>8), byte(offset), nil, leFor(length))
}

// ReadBinarySFI reads length bytes at offset of the EF designated by sfi.
// Only the low 5 bits of sfi are used.
func ReadBinarySFI(cla Class, sfi byte, offset byte, length byte) *CommandAPDU {
	return NewCommandAPDU(cla, mustInstruction(INS_READ_BINARY),
		0x80|sfi&0x1F, offset, nil, leFor(length))
}

func leFor(length byte) int {
	if length == 0 {
		return MaxShortLe
	}
	return int(length)
}
