// Package tlv maps BER-TLV (Basic Encoding Rules - Tag-Length-Value) data onto Go
// structures using `tlv:"<tag>"` struct tags.
//
// Supported field kinds:
//   - []byte: raw value (re-encoded children for constructed tags).
//   - string: hex rendering of the value.
//   - struct or *struct: nested template, decoded recursively.
//   - slice of any of the above: one element per occurrence of the tag.
//   - []bertlv.TLV named Unknown (or tagged `tlv:",unknown"`): every tag not mapped.
//   - types implementing Unmarshaler.
package tlv

import (
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// ErrTagNotFound is returned by Find when the tag does not occur in the data.
var ErrTagNotFound = errors.New("tag not found")

// Unmarshaler allows custom types to implement their own TLV parsing logic.
type Unmarshaler interface {
	UnmarshalTLV(data []byte) error
}

// Unmarshal parses raw BER-TLV data and maps it into a target Go struct.
func Unmarshal(data []byte, target any) error {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Errorf("bertlv decode failed: %w", err)
	}
	return UnmarshalFromPackets(packets, target)
}

// UnmarshalFromPackets maps pre-decoded packets to a target struct.
func UnmarshalFromPackets(packets []bertlv.TLV, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target)
	}
	v = v.Elem()
	t := v.Type()

	consumed := make([]bool, len(packets))
	var unknown reflect.Value

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		tag, isUnknown := fieldTag(t.Field(i))
		if isUnknown {
			unknown = field
			continue
		}
		if tag == "" {
			continue
		}

		for idx, packet := range packets {
			if !strings.EqualFold(packet.Tag, tag) {
				continue
			}
			if err := assign(packet, field); err != nil {
				return fmt.Errorf("tag %s (%s): %w", tag, t.Field(i).Name, err)
			}
			consumed[idx] = true
		}
	}

	if unknown.IsValid() && unknown.CanSet() {
		var leftovers []bertlv.TLV
		for idx, packet := range packets {
			if !consumed[idx] {
				leftovers = append(leftovers, packet)
			}
		}
		if len(leftovers) > 0 {
			unknown.Set(reflect.ValueOf(leftovers))
		}
	}
	return nil
}

// fieldTag returns the TLV tag of a struct field, or reports that the field collects
// unmapped tags.
func fieldTag(f reflect.StructField) (tag string, unknown bool) {
	cfg := f.Tag.Get("tlv")
	if cfg == ",unknown" || (f.Name == "Unknown" && f.Type == reflect.TypeOf([]bertlv.TLV{})) {
		return "", true
	}
	tag, _, _ = strings.Cut(cfg, ",")
	return strings.ToUpper(tag), false
}

// assign stores one packet in field, appending when field is a repeatable slice.
func assign(packet bertlv.TLV, field reflect.Value) error {
	if field.Kind() == reflect.Slice && !isByteSlice(field) {
		elem := reflect.New(field.Type().Elem()).Elem()
		if err := decodeInto(packet, elem); err != nil {
			return err
		}
		field.Set(reflect.Append(field, elem))
		return nil
	}
	return decodeInto(packet, field)
}

func decodeInto(packet bertlv.TLV, field reflect.Value) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalTLV(rawValue(packet))
		}
	}

	switch {
	case isByteSlice(field):
		field.SetBytes(rawValue(packet))
	case field.Kind() == reflect.String:
		field.SetString(strings.ToUpper(hex.EncodeToString(packet.Value)))
	case field.Kind() == reflect.Struct:
		return decodeNested(packet, field.Addr().Interface())
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return decodeNested(packet, field.Interface())
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}

func decodeNested(packet bertlv.TLV, target any) error {
	if len(packet.TLVs) > 0 {
		return UnmarshalFromPackets(packet.TLVs, target)
	}
	return Unmarshal(packet.Value, target)
}

// rawValue returns the value bytes of a packet; constructed packets are re-encoded.
func rawValue(p bertlv.TLV) []byte {
	if len(p.TLVs) > 0 {
		if enc, err := bertlv.Encode(p.TLVs); err == nil {
			return enc
		}
	}
	return p.Value
}

// Find returns the value of the first occurrence of tag (hex, e.g. "5A"), searching
// constructed templates depth-first.
func Find(data []byte, tag string) ([]byte, error) {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("bertlv decode failed: %w", err)
	}
	if v, ok := find(packets, strings.ToUpper(tag)); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTagNotFound, strings.ToUpper(tag))
}

func find(packets []bertlv.TLV, tag string) ([]byte, bool) {
	for _, p := range packets {
		if strings.EqualFold(p.Tag, tag) {
			return rawValue(p), true
		}
		if v, ok := find(p.TLVs, tag); ok {
			return v, true
		}
	}
	return nil, false
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}
