package calypso

import (
	"bytes"
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

var selectDiversifierStatus = NewStatusTable(map[iso7816.StatusWord]StatusProperties{
	0x6700: {"Incorrect Lc.", IllegalParameter},
	0x6985: {"Preconditions not satisfied: the SAM is locked.", AccessForbidden},
})

// SelectDiversifier loads the card serial number the SAM diversifies its
// keys with.
type SelectDiversifier struct {
	command
}

// NewSelectDiversifier builds the command; diversifier is 4 or 8 bytes.
func NewSelectDiversifier(product SamProductType, diversifier []byte) (*SelectDiversifier, error) {
	if len(diversifier) != 4 && len(diversifier) != 8 {
		return nil, fmt.Errorf("%w: diversifier of %d bytes", ErrInvalidArgument, len(diversifier))
	}
	return &SelectDiversifier{command{
		name: "SAM Select Diversifier",
		apdu: iso7816.NewCommandAPDU(
			samClass(product),
			iso7816.MustInstruction(iso7816.INS_SAM_SELECT_DIVERSIFIER),
			0x00, 0x00, bytes.Clone(diversifier), 0),
		status: selectDiversifierStatus,
	}}, nil
}
