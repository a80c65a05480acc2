package iso7816

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/egk-reader/pkg/tlv"
)

func TestSelectCommands(t *testing.T) {
	cls, _ := NewClass(0x00)

	tests := []struct {
		name string
		cmd  *CommandAPDU
		want []byte
	}{
		{
			name: "root application, no data",
			cmd:  SelectByAID(cls, tlv.Hex("D2 76 00 01 44 80 00"), ReturnNoData),
			want: tlv.Hex("00 A4 04 0C", "07", "D2 76 00 01 44 80 00"),
		},
		{
			name: "health care application, no data",
			cmd:  SelectByAID(cls, tlv.Hex("D2 76 00 00 01 02"), ReturnNoData),
			want: tlv.Hex("00 A4 04 0C", "06", "D2 76 00 00 01 02"),
		},
		{
			name: "application with FCI has no Le",
			cmd:  SelectByAID(cls, tlv.Hex("D2 76 00 00 01 02"), ReturnFCI),
			want: tlv.Hex("00 A4 04 00", "06", "D2 76 00 00 01 02"),
		},
		{
			name: "EF.VD",
			cmd:  SelectEF(cls, 0xD002, ReturnNoData),
			want: tlv.Hex("00 A4 02 0C", "02", "D0 02"),
		},
		{
			name: "current DF with FCP asks for 256 bytes",
			cmd:  NewSelectCommand(cls, SelectByFileID, ReturnFCP, nil),
			want: tlv.Hex("00 A4 00 04", "00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("APDU mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectStrings(t *testing.T) {
	if got := SelectByDFName.String(); got != "by DF name" {
		t.Errorf("SelectByDFName = %q", got)
	}
	if got := SelectionMethod(0x08).String(); got != "method 08" {
		t.Errorf("unknown method = %q", got)
	}
	if got := ReturnNoData.String(); got != "no data" {
		t.Errorf("ReturnNoData = %q", got)
	}
}
