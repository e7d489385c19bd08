package iso7816

import (
	"bytes"
	"errors"
	"fmt"
)

// C-APDU layout (ISO/IEC 7816-3 §12.1):
//
//	Case 1: CLA INS P1 P2
//	Case 2: CLA INS P1 P2 Le
//	Case 3: CLA INS P1 P2 Lc Data
//	Case 4: CLA INS P1 P2 Lc Data Le
//
// Short fields take one byte (Le 00 means 256). Extended fields are used as
// soon as Nc > 255 or Ne > 256: Lc becomes 00 HH LL, and Le takes two bytes,
// prefixed by 00 when no Lc is present (Le 0000 means 65536).

// Length limits for the Lc and Le fields.
const (
	MaxShortLc    = 255
	MaxShortLe    = 256
	MaxExtendedLc = 65535
	MaxExtendedLe = 65536

	// HeaderSize is the size of CLA INS P1 P2.
	HeaderSize = 4
)

var (
	// ErrDataTooLong is returned when Nc or Ne cannot be encoded.
	ErrDataTooLong = errors.New("apdu data too long")
	// ErrResponseTooShort is returned for an R-APDU without a full status word.
	ErrResponseTooShort = errors.New("response shorter than status word")
)

// CommandAPDU is a command sent to a card or SAM.
type CommandAPDU struct {
	Class       Class
	Instruction Instruction
	P1, P2      byte
	Data        []byte
	Ne          int // expected response length, 0 when none
}

// NewCommandAPDU creates a command. data is kept as is, not copied.
func NewCommandAPDU(cla Class, ins Instruction, p1, p2 byte, data []byte, ne int) *CommandAPDU {
	return &CommandAPDU{
		Class:       cla,
		Instruction: ins,
		P1:          p1,
		P2:          p2,
		Data:        data,
		Ne:          ne,
	}
}

// IsExtended reports whether the command needs extended length fields.
func (c *CommandAPDU) IsExtended() bool {
	return len(c.Data) > MaxShortLc || c.Ne > MaxShortLe
}

// Bytes encodes the command. Each call returns a newly allocated slice.
func (c *CommandAPDU) Bytes() ([]byte, error) {
	nc, ne := len(c.Data), c.Ne
	if nc > MaxExtendedLc || ne > MaxExtendedLe || ne < 0 {
		return nil, fmt.Errorf("%w: Nc=%d Ne=%d", ErrDataTooLong, nc, ne)
	}

	cla, err := c.Class.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode class: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(HeaderSize + 3 + nc + 3)
	buf.Write([]byte{cla, byte(c.Instruction.Raw), c.P1, c.P2})

	extended := c.IsExtended()

	if nc > 0 {
		if extended {
			buf.Write([]byte{0x00, byte(nc >> 8), byte(nc)})
		} else {
			buf.WriteByte(byte(nc))
		}
		buf.Write(c.Data)
	}

	if ne > 0 {
		if !extended {
			// 256 wraps to 00
			buf.WriteByte(byte(ne))
		} else {
			if nc == 0 {
				buf.WriteByte(0x00)
			}
			// 65536 wraps to 0000
			buf.Write([]byte{byte(ne >> 8), byte(ne)})
		}
	}

	return buf.Bytes(), nil
}

// String returns a one line summary of the command.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("%s | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Instruction.Verbose(), c.P1, c.P2, len(c.Data), c.Ne)
}

// ResponseAPDU is a card reply: data followed by SW1 SW2.
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU splits raw into data and status word.
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: %d byte(s)", ErrResponseTooShort, len(raw))
	}

	n := len(raw) - 2
	return &ResponseAPDU{
		Data:   raw[:n:n],
		Status: NewStatusWord(raw[n], raw[n+1]),
	}, nil
}

// String returns a one line summary of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}
