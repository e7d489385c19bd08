package calypso

import (
	"bytes"
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

// SvGetHeaderSize is the size of the SV Get command header echoed to the SAM.
const SvGetHeaderSize = 4

const (
	svPrepareP1 = 0x01
	svPrepareP2 = 0xFF
)

var svPrepareDebitStatus = NewStatusTable(map[iso7816.StatusWord]StatusProperties{
	0x6700: {"Lc value not supported.", IllegalParameter},
	0x6985: {"Preconditions not satisfied.", AccessForbidden},
	0x6A00: {"Incorrect P1 or P2", IllegalParameter},
	0x6A80: {"Incorrect incoming data.", IncorrectInputData},
	0x6A83: {"Record not found: ciphering key not found", DataAccessError},
})

// SvPrepareDebit is the SAM command computing the security data of a card
// SV Debit. Its data field is the SV Get header, the SV Get response and the
// SV Debit build data, in that order:
//
//	CLA 54 01 FF Lc | header(4) | svGetData(N) | svDebitData(M)
type SvPrepareDebit struct {
	command
	complementary []byte
}

// NewSvPrepareDebit builds the command for a SAM of type product. The inputs
// are copied.
func NewSvPrepareDebit(product SamProductType, svGetHeader, svGetData, svDebitData []byte) (*SvPrepareDebit, error) {
	if len(svGetHeader) != SvGetHeaderSize {
		return nil, fmt.Errorf("%w: SV Get header is %d bytes, want %d",
			ErrInvalidFragmentSize, len(svGetHeader), SvGetHeaderSize)
	}

	payload, err := concatFragments(iso7816.MaxShortLc, svGetHeader, svGetData, svDebitData)
	if err != nil {
		return nil, err
	}

	return &SvPrepareDebit{
		command: command{
			name: "SAM SV Prepare Debit",
			apdu: iso7816.NewCommandAPDU(
				samClass(product),
				iso7816.MustInstruction(iso7816.INS_SAM_SV_PREPARE_DEBIT),
				svPrepareP1, svPrepareP2, payload, 0),
			status: svPrepareDebitStatus,
		},
	}, nil
}

// ParseResponse keeps the complementary data the card SV Debit is finalized
// with.
func (c *SvPrepareDebit) ParseResponse(data []byte) error {
	c.complementary = bytes.Clone(data)
	return nil
}

// ComplementaryData returns the SAM response, nil before a successful
// exchange.
func (c *SvPrepareDebit) ComplementaryData() []byte {
	return c.complementary
}

// concatFragments copies fragments into one buffer of their exact total size,
// refusing totals above limit.
func concatFragments(limit int, fragments ...[]byte) ([]byte, error) {
	size := 0
	for _, f := range fragments {
		size += len(f)
	}
	if size > limit {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds %d",
			ErrInvalidFragmentSize, size, limit)
	}

	buf := make([]byte, size)
	off := 0
	for _, f := range fragments {
		if n := copy(buf[off:], f); n != len(f) {
			return nil, fmt.Errorf("%w: fragment truncated at offset %d", ErrInvalidFragmentSize, off)
		}
		off += len(f)
	}
	return buf, nil
}
