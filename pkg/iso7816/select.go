package iso7816

import "fmt"

// SELECT (INS A4): P1 is the selection method, P2 combines the response
// control (b4-b3) and the file occurrence (b2-b1).

// SelectionMethod is the P1 of SELECT.
type SelectionMethod byte

const (
	SelectByFileID SelectionMethod = 0x00
	SelectByDFName SelectionMethod = 0x04 // AID
)

func (s SelectionMethod) String() string {
	switch s {
	case SelectByFileID:
		return "Select by File ID"
	case SelectByDFName:
		return "Select by DF Name (AID)"
	default:
		return fmt.Sprintf("Unknown Method (0x%02X)", byte(s))
	}
}

// FileOccurrence is bits b2-b1 of the SELECT P2.
type FileOccurrence byte

const (
	FirstOrOnlyOccurrence FileOccurrence = 0b00
	LastOccurrence        FileOccurrence = 0b01
	NextOccurrence        FileOccurrence = 0b10
	PreviousOccurrence    FileOccurrence = 0b11
)

// SelectionControl is bits b4-b3 of the SELECT P2.
type SelectionControl byte

const (
	ReturnFCI    SelectionControl = 0b00_00
	ReturnFCP    SelectionControl = 0b01_00
	ReturnFMD    SelectionControl = 0b10_00
	ReturnNoData SelectionControl = 0b11_00
)

// NewSelectCommand builds a SELECT. A command carrying data gets no Le so
// that it stays a case 3 under T=0; the card then answers 61XX and Client
// fetches the FCI.
func NewSelectCommand(cla Class, method SelectionMethod, occ FileOccurrence, ctrl SelectionControl, data []byte) *CommandAPDU {
	ne := 0
	if len(data) == 0 && ctrl != ReturnNoData {
		ne = MaxShortLe
	}
	return NewCommandAPDU(cla, MustInstruction(INS_SELECT), byte(method), byte(ctrl)|byte(occ), data, ne)
}

// SelectByAID selects the first application matching aid and asks for its FCI.
func SelectByAID(cla Class, aid []byte) *CommandAPDU {
	return NewSelectCommand(cla, SelectByDFName, FirstOrOnlyOccurrence, ReturnFCI, aid)
}

// SelectNextByAID selects the next application matching a partial aid.
func SelectNextByAID(cla Class, aid []byte) *CommandAPDU {
	return NewSelectCommand(cla, SelectByDFName, NextOccurrence, ReturnFCI, aid)
}
