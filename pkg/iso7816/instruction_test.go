package iso7816

import (
	"strings"
	"testing"
)

func TestNewInstruction(t *testing.T) {
	tests := []struct {
		name    string
		ins     InsCode
		wantErr bool
		berTLV  bool
	}{
		{name: "SELECT", ins: INS_SELECT},
		{name: "SV PREPARE DEBIT", ins: INS_SAM_SV_PREPARE_DEBIT},
		{name: "SV GET", ins: INS_CARD_SV_GET},
		{name: "Odd INS", ins: 0xB3, berTLV: true},
		{name: "Reserved 6X", ins: 0x6A, wantErr: true},
		{name: "Reserved 9X", ins: 0x90, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewInstruction(tt.ins)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewInstruction(0x%02X) error = %v, wantErr %v", byte(tt.ins), err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Raw != tt.ins || got.IsBERTLV != tt.berTLV {
				t.Errorf("NewInstruction(0x%02X) = %+v", byte(tt.ins), got)
			}
		})
	}
}

func TestMustInstruction_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustInstruction(0x61) should panic")
		}
	}()
	MustInstruction(0x61)
}

func TestInstruction_Verbose(t *testing.T) {
	tests := []struct {
		ins      InsCode
		contains []string
	}{
		{INS_SAM_SV_PREPARE_DEBIT, []string{"INS: 0x54", "Command: SV PREPARE DEBIT", "Format: Standard"}},
		{INS_CARD_SV_GET, []string{"INS: 0x7C", "Command: SV GET"}},
		{0xB3, []string{"InsCode(0xB3)", "Format: BER-TLV"}},
	}

	for _, tt := range tests {
		desc := MustInstruction(tt.ins).Verbose()
		for _, part := range tt.contains {
			if !strings.Contains(desc, part) {
				t.Errorf("Verbose() = %q; want containing %q", desc, part)
			}
		}
	}
}
