// Package bcd decodes packed Binary-Coded Decimal (BCD) values.
//
// In packed BCD every byte carries two decimal digits, one per nibble, the high
// nibble first:
//
//	0x03 0x00 0x01 -> digits 0 3 0 0 0 1
//
// Version fields on German health cards are stored this way and split by digit
// count rather than by byte (for example 3/3/4 digits for major/minor/patch), which
// is why unpacking and decoding are separate steps.
package bcd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gregLibert/egk-reader/pkg/bits"
)

// ErrInvalidDigit is returned when a nibble is outside the decimal range 0-9.
var ErrInvalidDigit = errors.New("bcd: invalid digit")

// Unpack splits every byte of data into its two nibbles, high nibble first.
func Unpack(data []byte) []byte {
	digits := make([]byte, 0, len(data)*2)
	for _, b := range data {
		hi, lo := bits.Nibbles(b)
		digits = append(digits, hi, lo)
	}
	return digits
}

// Decode concatenates the digits in order and parses them as a base-10 integer.
// An empty sequence decodes to 0.
func Decode(digits []byte) (int, error) {
	if len(digits) == 0 {
		return 0, nil
	}

	s, err := String(digits)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bcd: %w", err)
	}
	return int(n), nil
}

// DecodeBytes unpacks data and decodes all of its digits as one integer.
func DecodeBytes(data []byte) (int, error) {
	return Decode(Unpack(data))
}

// String renders the digits as a decimal string, e.g. "030003".
func String(digits []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(digits))

	for i, d := range digits {
		if d > 9 {
			return "", fmt.Errorf("%w: nibble 0x%X at position %d", ErrInvalidDigit, d, i)
		}
		sb.WriteByte('0' + d)
	}
	return sb.String(), nil
}
