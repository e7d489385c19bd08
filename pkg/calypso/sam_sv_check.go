package calypso

import (
	"bytes"
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

var svCheckStatus = NewStatusTable(map[iso7816.StatusWord]StatusProperties{
	0x6700: {"Incorrect Lc.", IllegalParameter},
	0x6985: {"No active SV transaction.", AccessForbidden},
	0x6988: {"Incorrect SV signature.", SecurityDataError},
})

// SvCheck submits the card SV signature to the SAM. An empty signature
// aborts the pending SV transaction.
type SvCheck struct {
	command
}

// NewSvCheck builds the command. signature is 3 bytes, 6 in extended mode,
// or empty.
func NewSvCheck(product SamProductType, signature []byte) (*SvCheck, error) {
	switch len(signature) {
	case 0, 3, 6:
	default:
		return nil, fmt.Errorf("%w: SV signature of %d bytes", ErrInvalidArgument, len(signature))
	}

	var apdu *iso7816.CommandAPDU
	ins := iso7816.MustInstruction(iso7816.INS_SAM_SV_CHECK)
	if len(signature) == 0 {
		apdu = iso7816.NewCommandAPDU(samClass(product), ins, 0x00, 0x00, nil, iso7816.MaxShortLe)
	} else {
		apdu = iso7816.NewCommandAPDU(samClass(product), ins, 0x00, 0x00, bytes.Clone(signature), 0)
	}

	return &SvCheck{command{name: "SAM SV Check", apdu: apdu, status: svCheckStatus}}, nil
}
