package calypso

import (
	"bytes"
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

var openSessionStatus = NewStatusTable(map[iso7816.StatusWord]StatusProperties{
	0x6700: {"Lc value not supported.", IllegalParameter},
	0x6900: {"Transaction Counter is 0", Terminated},
	0x6981: {"Command forbidden (read requested and current EF is a Binary file).", DataAccessError},
	0x6982: {"Security conditions not fulfilled (PIN code not presented, AES key forbidding the compatibility mode, encryption required).", SecurityContextError},
	0x6985: {"Access forbidden (Never access mode, Session already opened).", AccessForbidden},
	0x6986: {"Command not allowed (read requested and no current EF).", DataAccessError},
	0x6A81: {"Wrong key index.", IllegalParameter},
	0x6A82: {"File not found.", DataAccessError},
	0x6A83: {"Record not found (record index is above NumRec).", DataAccessError},
	0x6B00: {"P1 or P2 value not supported (key index incorrect, wrong P2).", IllegalParameter},
	0x61FF: {"Correct execution (ISO7816 T=0).", Success},
})

// SecureSession is the card answer to Open Secure Session.
type SecureSession struct {
	TransactionCounter []byte // 3 bytes
	Challenge          []byte // card random number
	Ratified           bool   // previous session was ratified
	ManageAuthorized   bool   // manage secure session authorized, 3.2 only
	KIF                byte
	HasKIF             bool
	KVC                byte
	HasKVC             bool
	RecordData         []byte // record read while opening, may be empty
	Raw                []byte
}

// TransactionCounterValue returns the 3-byte counter as an int.
func (s *SecureSession) TransactionCounterValue() int {
	if len(s.TransactionCounter) != 3 {
		return 0
	}
	c := s.TransactionCounter
	return int(c[0])<<16 | int(c[1])<<8 | int(c[2])
}

// OpenSession opens a secure session, optionally reading one record.
type OpenSession struct {
	command
	card         Card
	sfi          int
	recordNumber int
	session      *SecureSession
}

// NewOpenSession builds the command for card. keyIndex selects the session
// key (1 to 3), samChallenge is the SAM Get Challenge answer, and sfi /
// recordNumber name the record to read (0 for none).
func NewOpenSession(card Card, keyIndex byte, samChallenge []byte, sfi, recordNumber int) (*OpenSession, error) {
	if sfi < 0 || sfi > maxSFI {
		return nil, fmt.Errorf("%w: SFI %02Xh", ErrInvalidArgument, sfi)
	}
	if keyIndex > 7 {
		return nil, fmt.Errorf("%w: key index %d", ErrInvalidArgument, keyIndex)
	}

	var (
		cla    byte
		p1, p2 int
		data   []byte
	)
	switch card.ProductType {
	case PrimeRevision1, PrimeRevision2:
		if keyIndex == 0 {
			return nil, fmt.Errorf("%w: key index can't be zero for %s", ErrInvalidArgument, card.ProductType)
		}
		cla = iso7816.ClassLegacy
		p1 = recordNumber*8 + int(keyIndex)
		if card.ProductType == PrimeRevision2 {
			p1 += 0x80
		}
		p2 = sfi * 8
		data = bytes.Clone(samChallenge)
	case PrimeRevision3, Light, Basic:
		cla = iso7816.ClassISO
		p1 = recordNumber*8 + int(keyIndex)
		if card.ExtendedMode {
			p2 = sfi*8 + 2
			data = append([]byte{0x00}, samChallenge...)
		} else {
			p2 = sfi*8 + 1
			data = bytes.Clone(samChallenge)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProduct, card.ProductType)
	}
	if recordNumber < 0 || p1 > 0xFF {
		return nil, fmt.Errorf("%w: record number %d", ErrInvalidArgument, recordNumber)
	}

	return &OpenSession{
		command: command{
			name: fmt.Sprintf("Card Open Secure Session (KEYINDEX:%d, SFI:%02Xh, REC:%d)", keyIndex, sfi, recordNumber),
			apdu: iso7816.NewCommandAPDU(
				iso7816.MustClass(cla),
				iso7816.MustInstruction(iso7816.INS_CARD_OPEN_SESSION),
				byte(p1), byte(p2), data, iso7816.MaxShortLe),
			status: openSessionStatus,
		},
		card:         card,
		sfi:          sfi,
		recordNumber: recordNumber,
	}, nil
}

// SFI returns the file of the record read while opening.
func (c *OpenSession) SFI() int { return c.sfi }

// RecordNumber returns the record read while opening.
func (c *OpenSession) RecordNumber() int { return c.recordNumber }

// Session returns the parsed response, nil until ParseResponse succeeded on
// non-empty data.
func (c *OpenSession) Session() *SecureSession { return c.session }

// ParseResponse decodes the answer according to the card revision.
func (c *OpenSession) ParseResponse(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var (
		s   *SecureSession
		err error
	)
	switch c.card.ProductType {
	case PrimeRevision1:
		s, err = parseLegacySession(data, 0)
	case PrimeRevision2:
		s, err = parseLegacySession(data, 1)
	default:
		s, err = parseSession3(data, c.card.ExtendedMode)
	}
	if err != nil {
		return err
	}
	s.Raw = bytes.Clone(data)
	c.session = s
	return nil
}

// parseSession3 decodes a revision 3 answer:
//
//	standard  Counter(3) Random(1) Ratif(1) KIF KVC Len Data
//	extended  Counter(3) Random(5) Flags(1) KIF KVC Len Data
func parseSession3(data []byte, extended bool) (*SecureSession, error) {
	off := 0
	if extended {
		off = 4
	}
	if len(data) < 8+off {
		return nil, fmt.Errorf("%w: Open Secure Session answer of %d bytes", ErrInvalidResponse, len(data))
	}
	end := 8 + off + int(data[7+off])
	if len(data) < end {
		return nil, fmt.Errorf("%w: record data needs %d bytes, got %d", ErrInvalidResponse, end, len(data))
	}

	s := &SecureSession{
		TransactionCounter: bytes.Clone(data[0:3]),
		Challenge:          bytes.Clone(data[3 : 4+off]),
		KIF:                data[5+off],
		HasKIF:             true,
		KVC:                data[6+off],
		HasKVC:             true,
		RecordData:         bytes.Clone(data[8+off : end]),
	}
	if extended {
		s.Ratified = data[8]&0x01 == 0
		s.ManageAuthorized = data[8]&0x02 != 0
	} else {
		s.Ratified = data[4] == 0x00
	}
	return s, nil
}

// parseLegacySession decodes a revision 1 (kvcLen 0) or 2.4 (kvcLen 1)
// answer, [KVC] Counter(3) Random(1) [Ratif(2)] [Data(29)], whose layout
// is only known from its length.
func parseLegacySession(data []byte, kvcLen int) (*SecureSession, error) {
	const recordSize = 29
	short := kvcLen + 4

	s := &SecureSession{}
	switch len(data) {
	case short:
		s.Ratified = true
	case short + recordSize:
		s.Ratified = true
		s.RecordData = bytes.Clone(data[short:])
	case short + 2:
		s.Ratified = false
	case short + 2 + recordSize:
		s.Ratified = false
		s.RecordData = bytes.Clone(data[short+2:])
	default:
		return nil, fmt.Errorf("%w: Open Secure Session answer of %d bytes", ErrInvalidResponse, len(data))
	}

	if kvcLen == 1 {
		s.KVC = data[0]
		s.HasKVC = true
	}
	s.TransactionCounter = bytes.Clone(data[kvcLen : kvcLen+3])
	s.Challenge = bytes.Clone(data[kvcLen+3 : kvcLen+4])
	if s.RecordData == nil {
		s.RecordData = []byte{}
	}
	return s, nil
}
