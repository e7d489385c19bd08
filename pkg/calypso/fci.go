package calypso

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/calypso-sv/pkg/tlv"
)

// appTypeExtendedMode flags a revision 3.2 application in the startup info.
const appTypeExtendedMode = 0x08

// appTypeMaxRevision2 is the last application type of a revision 2.4 card.
const appTypeMaxRevision2 = 0x1F

const startupInfoMinSize = 7

type fciDiscretionary struct {
	SerialNumber []byte       `tlv:"C7"`
	StartupInfo  []byte       `tlv:"53"`
	Other        []bertlv.TLV `tlv:",unknown"`
}

type fciProprietary struct {
	Discretionary *fciDiscretionary `tlv:"BF0C"`
	Other         []bertlv.TLV      `tlv:",unknown"`
}

type fciTemplate struct {
	DFName      []byte          `tlv:"84" fmt:"ascii"`
	Proprietary *fciProprietary `tlv:"A5"`
	Other       []bertlv.TLV    `tlv:",unknown"`
}

type fciEnvelope struct {
	FCI *fciTemplate `tlv:"6F"`
}

// CardFCI is the Calypso application FCI returned by Select Application.
type CardFCI struct {
	Card

	DFName       []byte
	SerialNumber []byte
	StartupInfo  []byte

	BufferSizeIndicator byte
	Platform            byte
	ApplicationType     byte
	ApplicationSubtype  byte
	SoftwareIssuer      byte
	SoftwareVersion     byte
	SoftwareRevision    byte

	fci *fciTemplate
}

// ParseCardFCI decodes
//
//	6F { 84 DFName, A5 { BF0C { C7 serial, 53 startup info } } }
//
// and derives the card product type from the application type: 01h-1Fh
// revision 2.4, 90h-97h Light, 98h-9Fh Basic, any other revision 3.
// Revision 1 cards have no such FCI and are never reported here.
func ParseCardFCI(data []byte) (*CardFCI, error) {
	var env fciEnvelope
	if err := tlv.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFCI, err)
	}
	if env.FCI == nil || len(env.FCI.DFName) == 0 {
		return nil, fmt.Errorf("%w: missing DF name", ErrInvalidFCI)
	}
	if env.FCI.Proprietary == nil || env.FCI.Proprietary.Discretionary == nil {
		return nil, fmt.Errorf("%w: missing discretionary data", ErrInvalidFCI)
	}

	disc := env.FCI.Proprietary.Discretionary
	if len(disc.SerialNumber) == 0 {
		return nil, fmt.Errorf("%w: missing serial number", ErrInvalidFCI)
	}
	si := disc.StartupInfo
	if len(si) < startupInfoMinSize {
		return nil, fmt.Errorf("%w: startup info of %d bytes", ErrInvalidFCI, len(si))
	}

	f := &CardFCI{
		DFName:              env.FCI.DFName,
		SerialNumber:        disc.SerialNumber,
		StartupInfo:         si,
		BufferSizeIndicator: si[0],
		Platform:            si[1],
		ApplicationType:     si[2],
		ApplicationSubtype:  si[3],
		SoftwareIssuer:      si[4],
		SoftwareVersion:     si[5],
		SoftwareRevision:    si[6],
		fci:                 env.FCI,
	}

	switch at := f.ApplicationType; {
	case at == 0x00 || at == 0xFF:
		return nil, fmt.Errorf("%w: reserved application type %02X", ErrInvalidFCI, at)
	case at <= appTypeMaxRevision2:
		f.ProductType = PrimeRevision2
	case at >= 0x90 && at <= 0x97:
		f.ProductType = Light
	case at >= 0x98 && at <= 0x9F:
		f.ProductType = Basic
	default:
		f.ProductType = PrimeRevision3
		f.ExtendedMode = at&appTypeExtendedMode != 0
	}
	return f, nil
}

// Describe lists the FCI content, one field per line.
func (f *CardFCI) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== CALYPSO APPLICATION ===\n")
	fmt.Fprintf(&sb, "    - Product: %s (extended mode: %t)\n", f.ProductType, f.ExtendedMode)
	fmt.Fprintf(&sb, "    - Application type: %02X, subtype: %02X\n", f.ApplicationType, f.ApplicationSubtype)
	fmt.Fprintf(&sb, "    - Software: issuer %02X, version %02X, revision %02X\n", f.SoftwareIssuer, f.SoftwareVersion, f.SoftwareRevision)

	var fields strings.Builder
	if f.fci != nil {
		tlv.WriteStructFields(&fields, "FCI", f.fci)
		if f.fci.Proprietary != nil {
			tlv.WriteStructFields(&fields, "FCI.A5", f.fci.Proprietary)
			tlv.WriteStructFields(&fields, "FCI.A5.BF0C", f.fci.Proprietary.Discretionary)
		}
	}
	sb.WriteString(fields.String())
	return sb.String()
}
