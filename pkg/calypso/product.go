package calypso

import (
	"bytes"
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

// SamProductType identifies a Calypso SAM family.
type SamProductType int

const (
	SamUnknown SamProductType = iota
	SamC1
	HsmC1
	SamS1DX
	SamS1E1
)

var samProductNames = map[SamProductType]string{
	SamUnknown: "UNKNOWN",
	SamC1:      "SAM_C1",
	HsmC1:      "HSM_C1",
	SamS1DX:    "SAM_S1DX",
	SamS1E1:    "SAM_S1E1",
}

func (p SamProductType) String() string {
	if name, ok := samProductNames[p]; ok {
		return name
	}
	return fmt.Sprintf("SamProductType(%d)", int(p))
}

// SamClass returns the class byte of commands sent to a SAM of type p.
func SamClass(p SamProductType) byte {
	if p == SamS1DX {
		return iso7816.ClassLegacy
	}
	return iso7816.ClassSAM
}

// samClass is SamClass as a decoded iso7816.Class.
func samClass(p SamProductType) iso7816.Class {
	return iso7816.MustClass(SamClass(p))
}

// SamInfo is the identification carried by the historical bytes of a SAM ATR.
type SamInfo struct {
	ProductType        SamProductType
	Platform           byte
	ApplicationType    byte
	ApplicationSubtype byte
	SoftwareIssuer     byte
	SoftwareVersion    byte
	SoftwareRevision   byte
	SerialNumber       []byte
}

var (
	samATRMarker  = []byte{0x80, 0x5A}
	samATRTrailer = []byte{0x82, 0x90, 0x00}
)

const samATRInfoSize = 10

// ParseSamATR extracts the SAM identification from its ATR:
//
//	3B xx xx xx [xx xx] 80 5A <10 bytes> 82 90 00
func ParseSamATR(atr []byte) (SamInfo, error) {
	if len(atr) == 0 || atr[0] != 0x3B {
		return SamInfo{}, fmt.Errorf("%w: % X", ErrInvalidATR, atr)
	}

	start := -1
	for _, off := range []int{4, 6} {
		end := off + len(samATRMarker) + samATRInfoSize + len(samATRTrailer)
		if len(atr) == end && bytes.Equal(atr[off:off+2], samATRMarker) &&
			bytes.Equal(atr[end-len(samATRTrailer):], samATRTrailer) {
			start = off + len(samATRMarker)
			break
		}
	}
	if start < 0 {
		return SamInfo{}, fmt.Errorf("%w: unrecognized layout % X", ErrInvalidATR, atr)
	}

	info := atr[start : start+samATRInfoSize]
	s := SamInfo{
		Platform:           info[0],
		ApplicationType:    info[1],
		ApplicationSubtype: info[2],
		SoftwareIssuer:     info[3],
		SoftwareVersion:    info[4],
		SoftwareRevision:   info[5],
		SerialNumber:       bytes.Clone(info[6:10]),
	}

	switch s.ApplicationSubtype {
	case 0xC1:
		s.ProductType = SamC1
		if s.SoftwareIssuer == 0x08 {
			s.ProductType = HsmC1
		}
	case 0xD0, 0xD1, 0xD2:
		s.ProductType = SamS1DX
	case 0xE1:
		s.ProductType = SamS1E1
	default:
		s.ProductType = SamUnknown
	}
	return s, nil
}

// CardProductType identifies a Calypso card generation.
type CardProductType int

const (
	CardUnknown CardProductType = iota
	PrimeRevision1
	PrimeRevision2
	PrimeRevision3
	Light
	Basic
)

var cardProductNames = map[CardProductType]string{
	CardUnknown:    "UNKNOWN",
	PrimeRevision1: "PRIME_REVISION_1",
	PrimeRevision2: "PRIME_REVISION_2",
	PrimeRevision3: "PRIME_REVISION_3",
	Light:          "LIGHT",
	Basic:          "BASIC",
}

func (p CardProductType) String() string {
	if name, ok := cardProductNames[p]; ok {
		return name
	}
	return fmt.Sprintf("CardProductType(%d)", int(p))
}

// IsLegacy reports whether the card uses the proprietary 0x94 class.
func (p CardProductType) IsLegacy() bool {
	return p == PrimeRevision1 || p == PrimeRevision2
}

// Card describes the card a command is built for.
type Card struct {
	ProductType CardProductType
	// ExtendedMode is the Calypso revision 3.2 mode (longer challenges,
	// 6-byte signatures).
	ExtendedMode bool
}

// Class is the class byte of ordinary card commands.
func (c Card) Class() byte {
	if c.ProductType.IsLegacy() {
		return iso7816.ClassLegacy
	}
	return iso7816.ClassISO
}

// SvClass is the class byte of stored value card commands.
func (c Card) SvClass() byte {
	if c.ProductType.IsLegacy() {
		return iso7816.ClassLegacyStoredValue
	}
	return iso7816.ClassISO
}
