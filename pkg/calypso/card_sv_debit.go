package calypso

import (
	"bytes"
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

// MaxSvAmount is the largest amount an SV Debit or Undebit accepts.
const MaxSvAmount = 32767

var svDebitStatus = NewStatusTable(map[iso7816.StatusWord]StatusProperties{
	0x6400: {"Too many modifications in session.", SessionBufferOverflow},
	0x6700: {"Lc value not supported.", IllegalParameter},
	0x6900: {"Transaction counter is 0 or SV TNum is FFFEh or FFFFh.", CounterOverflow},
	0x6985: {"Preconditions not satisfied.", AccessForbidden},
	0x6988: {"Incorrect signatureHi.", SecurityDataError},
	0x6200: {"Successful execution, response data postponed until session closing.", Success},
})

// SvDebitCommand is a card SV Debit or SV Undebit. It is built in two
// steps: the constructor prepares the data the SAM signs (SvData), then
// Finalize completes it with the SAM SV Prepare response.
type SvDebitCommand struct {
	command
	ins       iso7816.InsCode
	card      Card
	dataIn    []byte
	signature []byte
}

// NewSvDebit builds an SV Debit of amount units.
func NewSvDebit(card Card, amount int, kvc byte, date, time []byte) (*SvDebitCommand, error) {
	return newSvDebitCommand("Card SV Debit", iso7816.INS_CARD_SV_DEBIT, card, amount, kvc, date, time)
}

// NewSvUndebit builds an SV Undebit cancelling a debit of amount units.
func NewSvUndebit(card Card, amount int, kvc byte, date, time []byte) (*SvDebitCommand, error) {
	return newSvDebitCommand("Card SV Undebit", iso7816.INS_CARD_SV_UNDEBIT, card, amount, kvc, date, time)
}

func newSvDebitCommand(name string, ins iso7816.InsCode, card Card, amount int, kvc byte, date, time []byte) (*SvDebitCommand, error) {
	if amount < 0 || amount > MaxSvAmount {
		return nil, fmt.Errorf("%w: amount %d outside [0, %d]", ErrInvalidArgument, amount, MaxSvAmount)
	}
	if len(date) != 2 || len(time) != 2 {
		return nil, fmt.Errorf("%w: date and time must be 2 bytes", ErrInvalidArgument)
	}

	// 3.2 cards carry a 10-byte signatureHi instead of 5.
	sigHi := 5
	if card.ExtendedMode {
		sigHi = 10
	}
	dataIn := make([]byte, 15+sigHi)

	v := int16(amount)
	if ins == iso7816.INS_CARD_SV_DEBIT {
		v = -v
	}
	// dataIn[0] and dataIn[8:] are set by Finalize.
	dataIn[1] = byte(uint16(v) >> 8)
	dataIn[2] = byte(v)
	copy(dataIn[3:5], date)
	copy(dataIn[5:7], time)
	dataIn[7] = kvc

	return &SvDebitCommand{
		command: command{name: name, status: svDebitStatus},
		ins:     ins,
		card:    card,
		dataIn:  dataIn,
	}, nil
}

// SvData returns the 12 bytes given to SAM SV Prepare: INS, two ignored
// parameter bytes, Lc and the first 8 bytes of the data field.
func (c *SvDebitCommand) SvData() []byte {
	d := make([]byte, 12)
	d[0] = byte(c.ins)
	d[3] = 0x14
	if c.card.ExtendedMode {
		d[3] = 0x19
	}
	copy(d[4:], c.dataIn[:8])
	return d
}

// Finalize completes the command with the SAM SV Prepare response: 15
// bytes, or 20 in extended mode.
func (c *SvDebitCommand) Finalize(complementary []byte) error {
	want := 15
	if c.card.ExtendedMode {
		want = 20
	}
	if len(complementary) != want {
		return fmt.Errorf("%w: SV Prepare data of %d bytes, want %d", ErrInvalidArgument, len(complementary), want)
	}

	data := bytes.Clone(c.dataIn)
	data[0] = complementary[6]
	copy(data[8:12], complementary[0:4])
	copy(data[12:15], complementary[7:10])
	copy(data[15:], complementary[10:])

	c.dataIn = data
	c.apdu = iso7816.NewCommandAPDU(
		iso7816.MustClass(c.card.SvClass()),
		iso7816.MustInstruction(c.ins),
		complementary[4], complementary[5], data, 0)
	return nil
}

// ParseResponse keeps the card signatureLo; it is empty inside a session.
func (c *SvDebitCommand) ParseResponse(data []byte) error {
	switch len(data) {
	case 0, 3, 6:
	default:
		return fmt.Errorf("%w: SV signature of %d bytes", ErrInvalidResponse, len(data))
	}
	c.signature = bytes.Clone(data)
	return nil
}

// Signature returns the card signatureLo checked by SAM SV Check.
func (c *SvDebitCommand) Signature() []byte {
	return c.signature
}
