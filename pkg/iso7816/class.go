package iso7816

import (
	"fmt"

	"github.com/gregLibert/egk-reader/pkg/bits"
)

// Class Byte (CLA) Structure according to ISO/IEC 7816-4.
//
// Bit 8: Proprietary (1) or Interindustry (0).
// Bit 7: Type of Interindustry (0=First, 1=Further).
// Bit 5: Command Chaining (0=Last/Only, 1=More follow).
//
// First Interindustry (00xx xxxx): bits 4-3 Secure Messaging, bits 2-1 channel 0-3.
// Further Interindustry (01xx xxxx): bit 6 Secure Messaging, bits 4-1 channel minus 4.
//
// Health card sessions run on the basic channel without secure messaging (CLA 00), but
// the full decoding is kept so traces of other cards remain readable.

// SecureMessaging defines the security level applied to the APDU.
type SecureMessaging int

const (
	SMNone         SecureMessaging = 0
	SMProprietary  SecureMessaging = 1
	SMHeaderNoProc SecureMessaging = 2
	SMHeaderAuth   SecureMessaging = 3
)

// Class represents the parsed ISO 7816-4 Class byte (CLA).
type Class struct {
	Raw             byte
	IsProprietary   bool
	IsChained       bool
	SecureMessaging SecureMessaging
	Channel         uint8 // Logical channel number (0-19)
}

// NewClass creates a Class object by decoding a raw CLA byte.
func NewClass(cla byte) (Class, error) {
	if cla == 0xFF {
		return Class{}, fmt.Errorf("invalid CLA value: 0xFF is reserved")
	}

	c := Class{Raw: cla}

	if bits.IsSet(cla, 8) {
		c.IsProprietary = true
		return c, nil
	}

	c.IsChained = bits.IsSet(cla, 5)

	if !bits.IsSet(cla, 7) {
		c.SecureMessaging = SecureMessaging(bits.GetRange(cla, 4, 3))
		c.Channel = bits.GetRange(cla, 2, 1)
		return c, nil
	}

	if bits.IsSet(cla, 6) {
		c.SecureMessaging = SMHeaderNoProc
	}
	c.Channel = bits.GetRange(cla, 4, 1) + 4

	return c, nil
}

// Encode converts the Class object back to its byte representation.
func (c *Class) Encode() (byte, error) {
	if c.IsProprietary {
		return c.Raw, nil
	}
	if c.Channel > 19 {
		return 0, fmt.Errorf("channel %d out of range (max 19)", c.Channel)
	}

	var res byte
	if c.IsChained {
		res = bits.Set(res, 5)
	}

	if c.Channel <= 3 {
		res |= byte(c.SecureMessaging) << 2
		res |= c.Channel
		return res, nil
	}

	if c.SecureMessaging == SMProprietary || c.SecureMessaging == SMHeaderAuth {
		return 0, fmt.Errorf("SM indicator %d not supported for further interindustry range (ch 4-19)", c.SecureMessaging)
	}

	res = bits.Set(res, 7)
	if c.SecureMessaging != SMNone {
		res = bits.Set(res, 6)
	}
	res |= c.Channel - 4

	return res, nil
}
