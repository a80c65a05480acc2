package tlv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		parts   []string
		want    []byte
		wantErr bool
	}{
		{"APDU header", []string{"00 A4", " 04 0C "}, []byte{0x00, 0xA4, 0x04, 0x0C}, false},
		{"colon separated ATR", []string{"3B:DD:97"}, []byte{0x3B, 0xDD, 0x97}, false},
		{"multi-line dump", []string{"90\n00\t"}, []byte{0x90, 0x00}, false},
		{"lower case", []string{"d2760001"}, []byte{0xD2, 0x76, 0x00, 0x01}, false},
		{"not hex", []string{"5G"}, nil, true},
		{"odd length", []string{"D2 7"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.parts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseHex() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHex_PanicsOnInvalidInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Hex(\"ZZ\") did not panic")
		}
	}()
	Hex("ZZ")
}
