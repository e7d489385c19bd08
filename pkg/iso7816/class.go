package iso7816

import (
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/bits"
)

// CLA byte (ISO/IEC 7816-4 §5.4.1):
//
//	b8 = 1           proprietary class, the remaining bits are opaque.
//	000x xxxx        first interindustry: b5 chaining, b4-b3 SM, b2-b1 channel 0-3.
//	01xx xxxx        further interindustry: b6 SM, b5 chaining, b4-b1 channel-4.
//
// Calypso cards use the ISO class for revision 3 and proprietary classes for
// legacy revisions; SAMs always use a proprietary class.

// Class bytes used by Calypso products.
const (
	ClassISO               byte = 0x00
	ClassSAM               byte = 0x80
	ClassLegacy            byte = 0x94
	ClassLegacyStoredValue byte = 0xFA
)

// SecureMessaging is the SM indication carried by an interindustry class.
type SecureMessaging int

const (
	SMNone         SecureMessaging = 0
	SMProprietary  SecureMessaging = 1 // first interindustry only
	SMHeaderNoProc SecureMessaging = 2
	SMHeaderAuth   SecureMessaging = 3 // first interindustry only
)

// Class is a decoded CLA byte.
type Class struct {
	Raw             byte
	IsProprietary   bool
	IsChained       bool
	SecureMessaging SecureMessaging
	Channel         uint8 // 0-19
}

// NewClass decodes a CLA byte. 0xFF is reserved by ISO 7816-3 for PPS.
func NewClass(cla byte) (Class, error) {
	if cla == 0xFF {
		return Class{}, fmt.Errorf("invalid CLA 0xFF: reserved")
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
	} else {
		if bits.IsSet(cla, 6) {
			c.SecureMessaging = SMHeaderNoProc
		}
		c.Channel = bits.GetRange(cla, 4, 1) + 4
	}
	return c, nil
}

// MustClass is NewClass for constants; it panics on 0xFF.
func MustClass(cla byte) Class {
	c, err := NewClass(cla)
	if err != nil {
		panic(err)
	}
	return c
}

// NewInterindustryClass builds an interindustry class, picking the first or
// further encoding from the channel number.
func NewInterindustryClass(isChained bool, sm SecureMessaging, channel uint8) (Class, error) {
	if channel > 19 {
		return Class{}, fmt.Errorf("channel %d out of range (max 19)", channel)
	}
	if channel >= 4 && (sm == SMProprietary || sm == SMHeaderAuth) {
		return Class{}, fmt.Errorf("SM indicator %d not supported on channel %d", sm, channel)
	}

	c := Class{IsChained: isChained, SecureMessaging: sm, Channel: channel}
	raw, err := c.Encode()
	if err != nil {
		return Class{}, err
	}
	c.Raw = raw
	return c, nil
}

// Encode returns the CLA byte. Proprietary classes are returned verbatim.
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
		res = bits.SetRange(res, 4, 3, byte(c.SecureMessaging))
		res = bits.SetRange(res, 2, 1, c.Channel)
		return res, nil
	}

	res = bits.Set(res, 7)
	if c.SecureMessaging != SMNone {
		res = bits.Set(res, 6)
	}
	res = bits.SetRange(res, 4, 1, c.Channel-4)
	return res, nil
}

// Verbose describes the class configuration.
func (c Class) Verbose() string {
	if c.IsProprietary {
		return fmt.Sprintf("Class: Proprietary (0x%02X)", c.Raw)
	}

	rangeName := "First Interindustry (Ch 0-3)"
	if c.Channel >= 4 {
		rangeName = "Further Interindustry (Ch 4-19)"
	}

	var sm string
	switch c.SecureMessaging {
	case SMNone:
		sm = "None"
	case SMProprietary:
		sm = "Proprietary"
	case SMHeaderNoProc:
		sm = "ISO (Header not processed)"
	case SMHeaderAuth:
		sm = "ISO (Header authenticated)"
	default:
		sm = "Unknown"
	}

	chaining := "Last or only command"
	if c.IsChained {
		chaining = "More commands follow (Chaining)"
	}

	return fmt.Sprintf("Range: %s\nChaining: %s\nSecure Messaging: %s\nLogical Channel: %d",
		rangeName, chaining, sm, c.Channel)
}
