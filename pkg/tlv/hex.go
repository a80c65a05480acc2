package tlv

import (
	"encoding/hex"
	"strings"
)

var hexSeparators = strings.NewReplacer(" ", "", ":", "", "\t", "", "\n", "")

// ParseHex decodes the concatenation of parts. Spaces, tabs, newlines and colons are
// ignored so dumps like "3B:DD:97" or "00 A4 04 0C" can be pasted as they are.
func ParseHex(parts ...string) ([]byte, error) {
	return hex.DecodeString(hexSeparators.Replace(strings.Join(parts, "")))
}

// Hex is ParseHex for fixtures; it panics on invalid input.
func Hex(parts ...string) []byte {
	data, err := ParseHex(parts...)
	if err != nil {
		panic("tlv.Hex: " + err.Error())
	}
	return data
}
