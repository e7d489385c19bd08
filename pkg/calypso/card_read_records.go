package calypso

import (
	"bytes"
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/bits"
	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

const maxSFI = 0x1F

// ReadMode selects between reading one record and every record from the
// first one on.
type ReadMode int

const (
	OneRecord ReadMode = iota
	MultipleRecords
)

func (m ReadMode) String() string {
	switch m {
	case OneRecord:
		return "ONE_RECORD"
	case MultipleRecords:
		return "MULTIPLE_RECORD"
	default:
		return "UNKNOWN"
	}
}

var readRecordsStatus = NewStatusTable(map[iso7816.StatusWord]StatusProperties{
	0x6981: {"Command forbidden on binary files", DataAccessError},
	0x6982: {"Security conditions not fulfilled (PIN code not presented, encryption required).", SecurityContextError},
	0x6985: {"Access forbidden (Never access mode, stored value log file and a stored value operation was done during the current session).", AccessForbidden},
	0x6986: {"Command not allowed (no current EF)", DataAccessError},
	0x6A82: {"File not found", DataAccessError},
	0x6A83: {"Record not found (record index is 0, or above NumRec", DataAccessError},
	0x6B00: {"P2 value not supported", IllegalParameter},
})

// ReadRecords reads records of a linear or cyclic file.
type ReadRecords struct {
	command
	sfi         int
	firstRecord int
	mode        ReadMode

	// Records maps record numbers to their content once parsed.
	Records map[int][]byte
}

// NewReadRecords builds the command. sfi 0 reads the current EF;
// expectedLength 0 asks for up to 256 bytes.
func NewReadRecords(card Card, sfi, firstRecord int, mode ReadMode, expectedLength int) (*ReadRecords, error) {
	if sfi < 0 || sfi > maxSFI {
		return nil, fmt.Errorf("%w: SFI %02Xh", ErrInvalidArgument, sfi)
	}
	if firstRecord < 0 || firstRecord > 0xFF {
		return nil, fmt.Errorf("%w: record number %d", ErrInvalidArgument, firstRecord)
	}
	if expectedLength < 0 || expectedLength > iso7816.MaxShortLc {
		return nil, fmt.Errorf("%w: expected length %d", ErrInvalidArgument, expectedLength)
	}

	// b8-b4 SFI, b3-b1 100 (one record) or 101 (from P1 on).
	p2 := bits.SetRange(0x05, 8, 4, byte(sfi))
	if mode == OneRecord {
		p2--
	}
	ne := expectedLength
	if ne == 0 {
		ne = iso7816.MaxShortLe
	}

	return &ReadRecords{
		command: command{
			name: fmt.Sprintf("Card Read Records (SFI:%02Xh, REC:%d, %s, EXPECTEDLENGTH:%d)", sfi, firstRecord, mode, expectedLength),
			apdu: iso7816.NewCommandAPDU(
				iso7816.MustClass(card.Class()),
				iso7816.MustInstruction(iso7816.INS_READ_RECORD),
				byte(firstRecord), p2, nil, ne),
			status: readRecordsStatus,
		},
		sfi:         sfi,
		firstRecord: firstRecord,
		mode:        mode,
		Records:     map[int][]byte{},
	}, nil
}

// ParseResponse fills Records. In MultipleRecords mode the data is a list of
// record number, length, content entries.
func (c *ReadRecords) ParseResponse(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if c.mode == OneRecord {
		c.Records[c.firstRecord] = bytes.Clone(data)
		return nil
	}

	for i := 0; i < len(data); {
		if i+2 > len(data) {
			return fmt.Errorf("%w: truncated record entry at offset %d", ErrInvalidResponse, i)
		}
		num, n := int(data[i]), int(data[i+1])
		i += 2
		if i+n > len(data) {
			return fmt.Errorf("%w: record %d needs %d bytes, %d left", ErrInvalidResponse, num, n, len(data)-i)
		}
		c.Records[num] = bytes.Clone(data[i : i+n])
		i += n
	}
	return nil
}
