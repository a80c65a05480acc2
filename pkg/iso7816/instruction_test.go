package iso7816

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewInstruction(t *testing.T) {
	tests := []struct {
		ins     InsCode
		want    Instruction
		wantErr bool
	}{
		{ins: INS_SELECT, want: Instruction{Raw: INS_SELECT}},
		{ins: INS_READ_BINARY, want: Instruction{Raw: INS_READ_BINARY}},
		{ins: INS_READ_RECORD_BER, want: Instruction{Raw: INS_READ_RECORD_BER, IsBERTLV: true}},
		{ins: INS_GET_RESPONSE, want: Instruction{Raw: INS_GET_RESPONSE}},
		{ins: 0x61, wantErr: true},
		{ins: 0x9F, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ins.String(), func(t *testing.T) {
			got, err := NewInstruction(tt.ins)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewInstruction(%02X) error = %v, wantErr %v", byte(tt.ins), err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NewInstruction(%02X) mismatch (-want +got):\n%s", byte(tt.ins), diff)
			}
		})
	}
}

func TestInsCode_String(t *testing.T) {
	if got := INS_READ_BINARY.String(); got != "INS_READ_BINARY" {
		t.Errorf("String() = %q", got)
	}
	if got := InsCode(0xE0).String(); got != "InsCode(0xE0)" {
		t.Errorf("String() = %q", got)
	}
}

func TestInstruction_Verbose(t *testing.T) {
	tests := map[InsCode]string{
		INS_SELECT:          "INS: 0xA4 | Command: INS_SELECT | Format: Standard",
		INS_READ_BINARY_BER: "INS: 0xB1 | Command: INS_READ_BINARY_BER | Format: BER-TLV",
	}
	for ins, want := range tests {
		if got := mustInstruction(ins).Verbose(); got != want {
			t.Errorf("Verbose() = %q, want %q", got, want)
		}
	}
}

func TestMustInstruction_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mustInstruction(0x6C) did not panic")
		}
	}()
	mustInstruction(0x6C)
}
