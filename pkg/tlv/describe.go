package tlv

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/egk-reader/pkg/bcd"
)

// Describe lists the populated byte fields of a tagged struct, one line per field:
//
//	- GDO.ICCSN (5A): 80276883110000017222 (BCD)
//
// The `fmt` struct tag selects the rendering: "ascii", "int", "bcd" or hex (default).
// Unmapped tags collected in an Unknown field are listed last. A nil pointer yields nil.
func Describe(prefix string, s any) []string {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	var lines []string

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		sf := typ.Field(i)

		switch {
		case isByteSlice(field):
			if field.Len() == 0 {
				continue
			}
			name := sf.Name
			if tag := sf.Tag.Get("tlv"); tag != "" {
				name = fmt.Sprintf("%s (%s)", name, tag)
			}
			lines = append(lines, fmt.Sprintf("- %s.%s: %s", prefix, name, formatValue(field.Bytes(), sf.Tag.Get("fmt"))))
		case field.Type() == reflect.TypeOf([]bertlv.TLV{}):
			for _, t := range field.Interface().([]bertlv.TLV) {
				lines = append(lines, fmt.Sprintf("- %s.Unknown Tag %s: %X", prefix, t.Tag, t.Value))
			}
		}
	}
	return lines
}

func formatValue(data []byte, format string) string {
	switch format {
	case "ascii":
		return fmt.Sprintf("%X (%q)", data, SafeASCII(data))
	case "int":
		var n uint64
		for _, b := range data {
			n = n<<8 | uint64(b)
		}
		return fmt.Sprintf("%X (Dec: %d)", data, n)
	case "bcd":
		if digits, err := bcd.String(bcd.Unpack(data)); err == nil {
			return digits + " (BCD)"
		}
	}
	return strings.ToUpper(hex.EncodeToString(data))
}

// SafeASCII replaces every non-printable byte with '.'.
func SafeASCII(data []byte) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 && r <= 126 {
			return r
		}
		return '.'
	}, string(data))
}
