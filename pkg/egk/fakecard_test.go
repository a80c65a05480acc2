package egk

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"testing"
)

// fakeCard emulates the eGK file system well enough for a session: application
// SELECT, EF SELECT, READ RECORD on EF.Version and READ BINARY by offset or SFI.
type fakeCard struct {
	atr      []byte
	versions [VersionSlots][]byte
	gdo      []byte // nil: EF.GDO not found
	status   []byte
	files    map[uint16][]byte

	// override answers specific commands (hex, upper case) with a raw R-APDU.
	override map[string][]byte
	// failAt makes the n-th Transmit (1-based) return failErr.
	failAt  int
	failErr error

	selected    uint16
	sent        [][]byte
	disconnects int
}

var (
	swOK           = []byte{0x90, 0x00}
	swFileNotFound = []byte{0x6A, 0x82}
	swNoEF         = []byte{0x69, 0x86}
)

func (c *fakeCard) ATR() ([]byte, error) { return c.atr, nil }

func (c *fakeCard) Disconnect() error {
	c.disconnects++
	return nil
}

func (c *fakeCard) Transmit(cmd []byte) ([]byte, error) {
	c.sent = append(c.sent, append([]byte(nil), cmd...))
	if c.failAt == len(c.sent) {
		return nil, c.failErr
	}
	if resp, ok := c.override[hexString(cmd)]; ok {
		return resp, nil
	}

	ins, p1, p2 := cmd[1], cmd[2], cmd[3]
	switch {
	case ins == 0xA4 && p1 == 0x04:
		c.selected = 0
		return swOK, nil

	case ins == 0xA4 && p1 == 0x02:
		fid := binary.BigEndian.Uint16(cmd[5:7])
		if _, ok := c.files[fid]; !ok {
			return swFileNotFound, nil
		}
		c.selected = fid
		return swOK, nil

	case ins == 0xB2 && p2 == 0x84:
		if p1 < 1 || int(p1) > VersionSlots {
			return []byte{0x6A, 0x83}, nil
		}
		return withSW(c.versions[p1-1]), nil

	case ins == 0xB0 && p1&0x80 != 0:
		switch p1 & 0x1F {
		case sfiStatus:
			return withSW(c.status), nil
		case sfiGDO:
			if c.gdo == nil {
				return swFileNotFound, nil
			}
			return withSW(c.gdo), nil
		}
		return swFileNotFound, nil

	case ins == 0xB0:
		data, ok := c.files[c.selected]
		if !ok {
			return swNoEF, nil
		}
		offset := int(binary.BigEndian.Uint16(cmd[2:4]))
		le := int(cmd[4])
		if le == 0 {
			le = 256
		}
		if offset > len(data) {
			return []byte{0x6B, 0x00}, nil
		}
		return withSW(data[offset:min(offset+le, len(data))]), nil
	}
	return []byte{0x6D, 0x00}, nil
}

func (c *fakeCard) opener() Opener {
	return OpenerFunc(func(context.Context) (Connection, error) { return c, nil })
}

func withSW(body []byte) []byte {
	return append(append([]byte(nil), body...), swOK...)
}

func hexString(b []byte) string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 0, len(b)*2)
	for _, v := range b {
		out = append(out, digits[v>>4], digits[v&0x0F])
	}
	return string(out)
}

const (
	personalXML = `<?xml version="1.0" encoding="ISO-8859-15" standalone="yes"?>` +
		`<vsdp:UC_PersoenlicheVersichertendatenXML xmlns:vsdp="http://ws.gematik.de/fa/vsds/UC_PersoenlicheVersichertendatenXML/v5.2">` +
		`<vsdp:Versicherter><vsdp:Versicherten_ID>X110452175</vsdp:Versicherten_ID>` +
		`<vsdp:Person><vsdp:Geburtsdatum>19700101</vsdp:Geburtsdatum><vsdp:Vorname>Erika</vsdp:Vorname>` +
		`<vsdp:Nachname>Mustermann</vsdp:Nachname><vsdp:Geschlecht>W</vsdp:Geschlecht>` +
		`<vsdp:StrassenAdresse><vsdp:Postleitzahl>10117</vsdp:Postleitzahl><vsdp:Ort>Berlin</vsdp:Ort>` +
		`<vsdp:Land><vsdp:Wohnsitzlaendercode>D</vsdp:Wohnsitzlaendercode></vsdp:Land>` +
		`<vsdp:Strasse>Heidestrasse</vsdp:Strasse><vsdp:Hausnummer>17</vsdp:Hausnummer></vsdp:StrassenAdresse>` +
		`</vsdp:Person></vsdp:Versicherter></vsdp:UC_PersoenlicheVersichertendatenXML>`

	insuranceXML = `<?xml version="1.0" encoding="ISO-8859-15" standalone="yes"?>` +
		`<vsda:UC_AllgemeineVersicherungsdatenXML xmlns:vsda="http://ws.gematik.de/fa/vsds/UC_AllgemeineVersicherungsdatenXML/v5.2">` +
		`<vsda:Versicherter><vsda:Versicherungsschutz><vsda:Beginn>20200101</vsda:Beginn>` +
		`<vsda:Kostentraeger><vsda:Kostentraegerkennung>109500969</vsda:Kostentraegerkennung>` +
		`<vsda:Kostentraegerlaendercode>D</vsda:Kostentraegerlaendercode><vsda:Name>Test GKV</vsda:Name>` +
		`</vsda:Kostentraeger></vsda:Versicherungsschutz></vsda:Versicherter></vsda:UC_AllgemeineVersicherungsdatenXML>`
)

// gzipped compresses s and drops the 8-byte trailer, the way cards store documents.
func gzipped(t *testing.T, s string, keepTrailer bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	out := buf.Bytes()
	if !keepTrailer {
		out = out[:len(out)-8]
	}
	return out
}

// personalFile lays out EF.PD: 2-byte length counting itself, then the payload.
func personalFile(payload []byte) []byte {
	f := binary.BigEndian.AppendUint16(nil, uint16(len(payload)+2))
	return append(f, payload...)
}

// insuranceFile lays out EF.VD: start and end offsets (inclusive), padding to 8 bytes,
// then the payload.
func insuranceFile(payload []byte) []byte {
	const start = 8
	f := binary.BigEndian.AppendUint16(nil, start)
	f = binary.BigEndian.AppendUint16(f, uint16(start+len(payload)-1))
	f = append(f, 0, 0, 0, 0)
	return append(f, payload...)
}

// newFakeCard returns a G1plus card holding personalXML and insuranceXML.
func newFakeCard(t *testing.T) *fakeCard {
	t.Helper()
	return &fakeCard{
		atr: DefaultATR,
		versions: [VersionSlots][]byte{
			{0x00, 0x40, 0x00, 0x00, 0x00}, // 4.0.0
			{0x00, 0x30, 0x00, 0x00, 0x01}, // 3.0.1
			{0x00, 0x30, 0x00, 0x00, 0x03}, // 3.0.3
		},
		gdo:    []byte{0x5A, 0x0A, 0x80, 0x27, 0x68, 0x83, 0x11, 0x00, 0x00, 0x01, 0x72, 0x22},
		status: append([]byte("020240115123045"), 0x00, 0x50, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00),
		files: map[uint16][]byte{
			FIDPersonalData:  personalFile(gzipped(t, personalXML, false)),
			FIDInsuranceData: insuranceFile(gzipped(t, insuranceXML, false)),
		},
	}
}
