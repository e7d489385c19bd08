package iso7816

import (
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/bits"
)

// INS values with a high nibble of 6 or 9 collide with SW1 procedure bytes
// under T=0 and are never valid. For interindustry commands an odd INS asks
// for BER-TLV data fields (B0 READ BINARY vs B1).

// InsCode is an instruction byte.
type InsCode byte

// Interindustry instructions (ISO/IEC 7816-4).
const (
	INS_EXTERNAL_AUTHENTICATE InsCode = 0x82
	INS_GET_CHALLENGE         InsCode = 0x84
	INS_SELECT                InsCode = 0xA4
	INS_READ_RECORD           InsCode = 0xB2
	INS_GET_RESPONSE          InsCode = 0xC0
	INS_GET_DATA              InsCode = 0xCA
	INS_UPDATE_RECORD         InsCode = 0xDC
	INS_APPEND_RECORD         InsCode = 0xE2
)

// Calypso card instructions.
const (
	INS_CARD_SV_GET        InsCode = 0x7C
	INS_CARD_OPEN_SESSION  InsCode = 0x8A
	INS_CARD_CLOSE_SESSION InsCode = 0x8E
	INS_CARD_SV_RELOAD     InsCode = 0xB8
	INS_CARD_SV_DEBIT      InsCode = 0xBA
	INS_CARD_SV_UNDEBIT    InsCode = 0xBC
)

// Calypso SAM instructions. Some share a value with card instructions; the
// class byte tells them apart on the wire.
const (
	INS_SAM_SELECT_DIVERSIFIER InsCode = 0x14
	INS_SAM_SV_PREPARE_DEBIT   InsCode = 0x54
	INS_SAM_SV_PREPARE_LOAD    InsCode = 0x56
	INS_SAM_SV_CHECK           InsCode = 0x58
	INS_SAM_SV_PREPARE_UNDEBIT InsCode = 0x5C
	INS_SAM_DIGEST_INIT        InsCode = 0x8A
	INS_SAM_DIGEST_UPDATE      InsCode = 0x8C
	INS_SAM_DIGEST_CLOSE       InsCode = 0x8E
)

var insNames = map[InsCode]string{
	INS_EXTERNAL_AUTHENTICATE:  "EXTERNAL AUTHENTICATE",
	INS_GET_CHALLENGE:          "GET CHALLENGE",
	INS_SELECT:                 "SELECT",
	INS_READ_RECORD:            "READ RECORD",
	INS_GET_RESPONSE:           "GET RESPONSE",
	INS_GET_DATA:               "GET DATA",
	INS_UPDATE_RECORD:          "UPDATE RECORD",
	INS_APPEND_RECORD:          "APPEND RECORD",
	INS_CARD_SV_GET:            "SV GET",
	INS_CARD_OPEN_SESSION:      "OPEN SESSION / DIGEST INIT",
	INS_CARD_CLOSE_SESSION:     "CLOSE SESSION / DIGEST CLOSE",
	INS_CARD_SV_RELOAD:         "SV RELOAD",
	INS_CARD_SV_DEBIT:          "SV DEBIT",
	INS_CARD_SV_UNDEBIT:        "SV UNDEBIT",
	INS_SAM_SELECT_DIVERSIFIER: "SELECT DIVERSIFIER",
	INS_SAM_SV_PREPARE_DEBIT:   "SV PREPARE DEBIT",
	INS_SAM_SV_PREPARE_LOAD:    "SV PREPARE LOAD",
	INS_SAM_SV_CHECK:           "SV CHECK",
	INS_SAM_SV_PREPARE_UNDEBIT: "SV PREPARE UNDEBIT",
	INS_SAM_DIGEST_UPDATE:      "DIGEST UPDATE",
}

// String returns the command name, or the hex value when unknown.
func (i InsCode) String() string {
	if name, ok := insNames[i]; ok {
		return name
	}
	return fmt.Sprintf("InsCode(0x%02X)", byte(i))
}

// Instruction is a validated INS byte.
type Instruction struct {
	Raw      InsCode
	IsBERTLV bool
}

// NewInstruction validates ins, rejecting the 6X and 9X ranges.
func NewInstruction(ins InsCode) (Instruction, error) {
	switch byte(ins) & 0xF0 {
	case 0x60, 0x90:
		return Instruction{}, fmt.Errorf("invalid INS 0x%02X: 6X and 9X are reserved", byte(ins))
	}
	return Instruction{Raw: ins, IsBERTLV: bits.IsSet(byte(ins), 1)}, nil
}

// MustInstruction is NewInstruction for constants.
func MustInstruction(ins InsCode) Instruction {
	i, err := NewInstruction(ins)
	if err != nil {
		panic(err)
	}
	return i
}

// Verbose describes the instruction.
func (i Instruction) Verbose() string {
	format := "Standard"
	if i.IsBERTLV {
		format = "BER-TLV"
	}
	return fmt.Sprintf("INS: 0x%02X | Command: %s | Format: %s", byte(i.Raw), i.Raw, format)
}
