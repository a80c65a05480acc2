package egk

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"strings"
	"testing"
)

func zlibbed(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write([]byte(s))
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

func deflated(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	fw, _ := flate.NewWriter(&buf, flate.BestCompression)
	fw.Write([]byte(s))
	if err := fw.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}
	return buf.Bytes()
}

func TestInflate(t *testing.T) {
	plain := strings.Repeat(insuranceXML, 3)

	full := gzipped(t, plain, true)
	corruptCRC := append([]byte(nil), full...)
	corruptCRC[len(corruptCRC)-8] ^= 0xFF

	zfull := zlibbed(t, plain)

	tests := []struct {
		name    string
		data    []byte
		padding int
		wantErr bool
	}{
		{"gzip complete", full, DefaultPadding, false},
		{"gzip complete, no padding", full, 0, false},
		{"gzip without trailer, padded", full[:len(full)-8], DefaultPadding, false},
		{"gzip without trailer, unpadded", full[:len(full)-8], 0, true},
		{"gzip with half a trailer, padded", full[:len(full)-4], DefaultPadding, false},
		{"gzip with wrong CRC", corruptCRC, DefaultPadding, true},
		{"zlib complete", zfull, DefaultPadding, false},
		{"zlib without Adler-32, padded", zfull[:len(zfull)-4], DefaultPadding, false},
		{"zlib without Adler-32, unpadded", zfull[:len(zfull)-4], 0, true},
		{"raw deflate", deflated(t, plain), DefaultPadding, false},
		{"deflate stream cut mid-block", full[:len(full)/2], DefaultPadding, true},
		{"reserved block type", []byte{0xFF, 0xFF, 0x00}, DefaultPadding, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Inflate(tt.data, tt.padding)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Inflate succeeded with %d bytes, want error", len(got))
				}
				return
			}
			if err != nil {
				t.Fatalf("Inflate failed: %v", err)
			}
			if string(got) != plain {
				t.Errorf("Inflate returned %d bytes, want the %d byte original", len(got), len(plain))
			}
		})
	}
}

func TestInflate_DoesNotModifyInput(t *testing.T) {
	data := gzipped(t, personalXML, false)
	before := append([]byte(nil), data...)

	if _, err := Inflate(data, DefaultPadding); err != nil {
		t.Fatalf("Inflate failed: %v", err)
	}
	if !bytes.Equal(before, data) {
		t.Error("Inflate modified its input")
	}
}

func TestInflate_NegativePadding(t *testing.T) {
	if _, err := Inflate(gzipped(t, "x", true), -1); err == nil {
		t.Error("Inflate accepted negative padding")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		data []byte
		want Format
	}{
		{[]byte{0x1F, 0x8B, 0x08, 0x00}, FormatGzip},
		{[]byte{0x78, 0x9C}, FormatZlib},
		{[]byte{0x78, 0xDA}, FormatZlib},
		{[]byte{0x78, 0x9D}, FormatRaw},
		{[]byte{0xED, 0xBD}, FormatRaw},
		{nil, FormatRaw},
	}

	for _, tt := range tests {
		if got := DetectFormat(tt.data); got != tt.want {
			t.Errorf("DetectFormat(% X) = %s, want %s", tt.data, got, tt.want)
		}
	}
}
