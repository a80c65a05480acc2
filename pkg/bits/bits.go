// Package bits reads and sets bits of single bytes using the numbering of the ISO 7816
// tables: bit 1 is the least significant, bit 8 the most significant.
package bits

// Bit returns a byte with only bit n set; n outside 1..8 gives 0.
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet reports whether bit n of b is set.
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// Set returns b with bit n set.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// GetRange returns bits high..low of b shifted down, e.g. GetRange(0b0000_1100, 4, 3) == 3.
// An invalid range gives 0.
func GetRange(b byte, high, low uint) byte {
	if high < low || high > 8 || low < 1 {
		return 0
	}
	mask := byte(1<<(high-low+1) - 1)
	return b >> (low - 1) & mask
}

// High returns bits 8-5.
func High(b byte) byte { return b >> 4 }

// Low returns bits 4-1.
func Low(b byte) byte { return b & 0x0F }

// Nibbles returns both halves of b, high first.
func Nibbles(b byte) (byte, byte) { return High(b), Low(b) }
