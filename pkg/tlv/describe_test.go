package tlv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/moov-io/bertlv"
)

type describedTemplate struct {
	Serial     []byte `tlv:"5A" fmt:"bcd"`
	Label      []byte `tlv:"50" fmt:"ascii"`
	Priority   []byte `tlv:"87" fmt:"int"`
	RawData    []byte
	EmptyField []byte `tlv:"99"`
	Unknown    []bertlv.TLV
}

func TestDescribe(t *testing.T) {
	tmpl := describedTemplate{
		Serial:   Hex("80276883"),
		Label:    []byte{'E', 'G', 'K', 0x00},
		Priority: Hex("0102"),
		RawData:  Hex("CAFE"),
		Unknown:  []bertlv.TLV{{Tag: "9F01", Value: Hex("1234")}},
	}

	want := []string{
		"- GDO.Serial (5A): 80276883 (BCD)",
		`- GDO.Label (50): 45474B00 ("EGK.")`,
		"- GDO.Priority (87): 0102 (Dec: 258)",
		"- GDO.RawData: CAFE",
		"- GDO.Unknown Tag 9F01: 1234",
	}

	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{"Struct Pointer", &tmpl, want},
		{"Struct Value", tmpl, want},
		{"Nil Pointer", (*describedTemplate)(nil), nil},
		{"Not A Struct", 42, nil},
		{"Invalid BCD Falls Back To Hex", describedTemplate{Serial: Hex("8A")}, []string{"- GDO.Serial (5A): 8A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Describe("GDO", tt.input)); diff != "" {
				t.Errorf("Describe mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSafeASCII(t *testing.T) {
	input := []byte{0x41, 0x42, 0x00, 0x1F, 0x7F, 0x43}
	want := "AB...C"

	if got := SafeASCII(input); got != want {
		t.Errorf("SafeASCII() = %q, want %q", got, want)
	}
}
