package iso7816

import (
	"testing"
)

func TestNewClass(t *testing.T) {
	tests := []struct {
		name    string
		cla     byte
		wantErr bool
		check   func(Class) bool
	}{
		{
			name:    "Reserved FF",
			cla:     0xFF,
			wantErr: true,
		},
		{
			name: "Basic Channel (00)",
			cla:  0x00,
			check: func(c Class) bool {
				return !c.IsProprietary && !c.IsChained && c.Channel == 0 && c.SecureMessaging == SMNone
			},
		},
		{
			name: "First Interindustry - Ch 3, Chaining, SM Auth",
			// 0b0(Prop)_0(First)_11(SMAuth)_1(Chain)_11(Ch3)
			cla: 0b0_0_11_1_11,
			check: func(c Class) bool {
				return c.IsChained && c.Channel == 3 && c.SecureMessaging == SMHeaderAuth
			},
		},
		{
			name: "Further Interindustry - Ch 19, SM, Chaining",
			// 0b0(Prop)_1(Further)_1(SM)_1(Chain)_1111(Offset 15 -> Ch 19)
			cla: 0b0_1_1_1_1111,
			check: func(c Class) bool {
				return c.IsChained && c.Channel == 19 && c.SecureMessaging == SMHeaderNoProc
			},
		},
		{
			name: "Proprietary Class",
			cla:  0x80,
			check: func(c Class) bool {
				return c.IsProprietary
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClass(tt.cla)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClass() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !tt.check(c) {
				t.Errorf("NewClass(%08b) failed validation: %+v", tt.cla, c)
			}
		})
	}
}

func TestClass_Encode_RoundTrip(t *testing.T) {
	testCases := []byte{
		0x00,
		0b0_0_11_1_11,
		0b0_1_0_0_0000,
		0b0_1_1_1_1111,
		0x80,
	}

	for _, originalCla := range testCases {
		c, err := NewClass(originalCla)
		if err != nil {
			t.Fatalf("Failed to create class from %08b: %v", originalCla, err)
		}

		encoded, err := c.Encode()
		if err != nil {
			t.Fatalf("Failed to encode class %v: %v", c, err)
		}

		if encoded != originalCla {
			t.Errorf("Round-trip mismatch: got %08b, want %08b", encoded, originalCla)
		}
	}
}

func TestClass_Encode_Invalid(t *testing.T) {
	t.Run("Channel Out of Range", func(t *testing.T) {
		c := Class{Channel: 20}
		if _, err := c.Encode(); err == nil {
			t.Error("Should have failed: channel 20 is out of range")
		}
	})

	t.Run("SM Auth on Further Interindustry", func(t *testing.T) {
		c := Class{Channel: 5, SecureMessaging: SMHeaderAuth}
		if _, err := c.Encode(); err == nil {
			t.Error("Should have failed: SMHeaderAuth is not supported for channels 4-19")
		}
	})
}
