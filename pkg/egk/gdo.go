package egk

import (
	"github.com/moov-io/bertlv"

	"github.com/gregLibert/egk-reader/pkg/bcd"
	"github.com/gregLibert/egk-reader/pkg/tlv"
)

// GDO is EF.GDO, the global data object of the card.
type GDO struct {
	ICCSN   []byte `tlv:"5A" fmt:"bcd"` // card serial number, 20 BCD digits
	Unknown []bertlv.TLV
}

// ParseGDO maps the BER-TLV content of EF.GDO.
func ParseGDO(data []byte) (*GDO, error) {
	var gdo GDO
	if err := tlv.Unmarshal(data, &gdo); err != nil {
		return nil, &MalformedDataError{Field: "EF.GDO", Reason: err.Error()}
	}
	return &gdo, nil
}

// SerialNumber returns the ICCSN as a digit string, or "" if absent or not BCD.
func (g *GDO) SerialNumber() string {
	if g == nil || len(g.ICCSN) == 0 {
		return ""
	}
	s, err := bcd.String(bcd.Unpack(g.ICCSN))
	if err != nil {
		return ""
	}
	return s
}

// Describe lists the GDO fields, one per line.
func (g *GDO) Describe() []string {
	return tlv.Describe("GDO", g)
}
