package calypso

import (
	"bytes"
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

// SvOperation selects the SV log returned by SV Get.
type SvOperation int

const (
	SvReload SvOperation = iota
	SvDebit
)

func (o SvOperation) String() string {
	if o == SvReload {
		return "RELOAD"
	}
	return "DEBIT"
}

var svGetStatus = NewStatusTable(map[iso7816.StatusWord]StatusProperties{
	0x6982: {"Security conditions not fulfilled.", SecurityContextError},
	0x6985: {"Preconditions not satisfied (a store value operation was already done in the current session).", AccessForbidden},
	0x6A81: {"Incorrect P1 or P2.", IllegalParameter},
	0x6A86: {"Le inconsistent with P2.", IllegalParameter},
	0x6D00: {"SV function not present.", IllegalParameter},
})

// SvGet reads the stored value state of the card. Its header and response
// are the first two fragments of the SAM SV Prepare commands.
type SvGet struct {
	command
	card     Card
	header   []byte
	response []byte

	// Decoded by ParseResponse.
	KVC               byte
	TransactionNumber int
	PreviousSignature []byte
	Challenge         []byte
	Balance           int
}

// NewSvGet builds the command for card and operation.
func NewSvGet(card Card, op SvOperation) *SvGet {
	var p1 byte
	if card.ExtendedMode {
		p1 = 0x01
	}
	p2 := byte(0x09)
	if op == SvReload {
		p2 = 0x07
	}

	ins := iso7816.INS_CARD_SV_GET
	return &SvGet{
		command: command{
			name: "Card SV Get",
			apdu: iso7816.NewCommandAPDU(
				iso7816.MustClass(card.SvClass()),
				iso7816.MustInstruction(ins),
				p1, p2, nil, iso7816.MaxShortLe),
			status: svGetStatus,
		},
		card:   card,
		header: []byte{byte(ins), p1, p2, 0x00},
	}
}

// Header returns the 4-byte SV Get header expected by SV Prepare.
func (c *SvGet) Header() []byte {
	return bytes.Clone(c.header)
}

// Response returns the raw SV Get response data.
func (c *SvGet) Response() []byte {
	return c.response
}

// ParseResponse decodes the SV state:
//
//	standard  KVC(1) TNum(2) SigLo(3) Challenge(2) Balance(3) log...
//	extended  Challenge(8) KVC(1) TNum(2) SigLo(6) Balance(3) log...
func (c *SvGet) ParseResponse(data []byte) error {
	var kvc, tnum, sig, sigLen, chal, chalLen, bal int
	if c.card.ExtendedMode {
		chal, chalLen, kvc, tnum, sig, sigLen, bal = 0, 8, 8, 9, 11, 6, 17
	} else {
		kvc, tnum, sig, sigLen, chal, chalLen, bal = 0, 1, 3, 3, 6, 2, 8
	}
	if len(data) < bal+3 {
		return fmt.Errorf("%w: SV Get response of %d bytes", ErrInvalidResponse, len(data))
	}

	c.response = bytes.Clone(data)
	c.KVC = data[kvc]
	c.TransactionNumber = int(data[tnum])<<8 | int(data[tnum+1])
	c.PreviousSignature = bytes.Clone(data[sig : sig+sigLen])
	c.Challenge = bytes.Clone(data[chal : chal+chalLen])
	c.Balance = signed24(data[bal : bal+3])
	return nil
}

// signed24 decodes a big-endian two's complement 3-byte integer.
func signed24(b []byte) int {
	v := int(b[0])<<16 | int(b[1])<<8 | int(b[2])
	if v&0x800000 != 0 {
		v -= 1 << 24
	}
	return v
}
