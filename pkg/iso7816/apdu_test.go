package iso7816

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gregLibert/calypso-sv/pkg/tlv"
)

func TestCommandAPDU_Bytes(t *testing.T) {
	iso := MustClass(ClassISO)
	sam := MustClass(ClassSAM)
	selectIns := MustInstruction(INS_SELECT)
	readIns := MustInstruction(INS_READ_RECORD)

	tests := []struct {
		name string
		cmd  *CommandAPDU
		want []byte
	}{
		{
			name: "Case 1",
			cmd:  NewCommandAPDU(iso, selectIns, 0x01, 0x02, nil, 0),
			want: tlv.Hex("00 A4 01 02"),
		},
		{
			name: "Case 2 short, Le 256",
			cmd:  NewCommandAPDU(iso, readIns, 0x01, 0x0C, nil, MaxShortLe),
			want: tlv.Hex("00 B2 01 0C", "00"),
		},
		{
			name: "Case 3 short, proprietary class",
			cmd:  NewCommandAPDU(sam, MustInstruction(INS_SAM_SV_CHECK), 0x00, 0x00, tlv.Hex("AABBCC"), 0),
			want: tlv.Hex("80 58 00 00", "03", "AABBCC"),
		},
		{
			name: "Case 4 short",
			cmd:  NewCommandAPDU(iso, selectIns, 0x00, 0x00, []byte{0x01}, 10),
			want: tlv.Hex("00 A4 00 00", "01", "01", "0A"),
		},
		{
			name: "Case 3 extended",
			cmd:  NewCommandAPDU(iso, selectIns, 0x00, 0x00, make([]byte, 260), 0),
			want: append(tlv.Hex("00 A4 00 00", "00 01 04"), make([]byte, 260)...),
		},
		{
			name: "Case 2 extended, Le 65536",
			cmd:  NewCommandAPDU(iso, readIns, 0x00, 0x00, nil, MaxExtendedLe),
			want: tlv.Hex("00 B2 00 00", "00 00 00"),
		},
		{
			name: "Case 4 extended",
			cmd:  NewCommandAPDU(iso, selectIns, 0x00, 0x00, []byte{0x01}, 300),
			want: tlv.Hex("00 A4 00 00", "00 00 01", "01", "01 2C"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Bytes() failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("frame mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommandAPDU_BytesFreshSlice(t *testing.T) {
	cmd := NewCommandAPDU(MustClass(ClassSAM), MustInstruction(INS_SAM_SV_CHECK), 0, 0, []byte{1, 2, 3}, 0)
	a, _ := cmd.Bytes()
	b, _ := cmd.Bytes()
	a[0] = 0xFF
	if b[0] != 0x80 {
		t.Error("Bytes() must not share its buffer between calls")
	}
}

func TestCommandAPDU_BytesTooLong(t *testing.T) {
	cmd := NewCommandAPDU(MustClass(ClassISO), MustInstruction(INS_SELECT), 0, 0, make([]byte, MaxExtendedLc+1), 0)
	if _, err := cmd.Bytes(); !errors.Is(err, ErrDataTooLong) {
		t.Errorf("expected ErrDataTooLong, got %v", err)
	}

	cmd = NewCommandAPDU(MustClass(ClassISO), MustInstruction(INS_SELECT), 0, 0, nil, MaxExtendedLe+1)
	if _, err := cmd.Bytes(); !errors.Is(err, ErrDataTooLong) {
		t.Errorf("expected ErrDataTooLong, got %v", err)
	}
}

func TestCommandAPDU_String(t *testing.T) {
	cmd := NewCommandAPDU(MustClass(ClassSAM), MustInstruction(INS_SAM_SV_PREPARE_DEBIT), 0x01, 0xFF, make([]byte, 18), 0)
	want := "INS: 0x54 | Command: SV PREPARE DEBIT | Format: Standard | P1: 01, P2: FF | Lc: 18 | Le: 0"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseResponseAPDU(t *testing.T) {
	resp, err := ParseResponseAPDU(tlv.Hex("010203 9000"))
	if err != nil {
		t.Fatalf("ParseResponseAPDU: %v", err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3}, resp.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if resp.Status != SW_NO_ERROR {
		t.Errorf("status = %04X", uint16(resp.Status))
	}
	if !strings.Contains(resp.String(), "Data (3 bytes)") {
		t.Errorf("String() = %q", resp.String())
	}
}

func TestParseResponseAPDU_StatusOnly(t *testing.T) {
	resp, err := ParseResponseAPDU(tlv.Hex("6985"))
	if err != nil {
		t.Fatalf("ParseResponseAPDU: %v", err)
	}
	if len(resp.Data) != 0 || resp.Status != SW_ERR_COND_OF_USE_NOT_SAT {
		t.Errorf("got %+v", resp)
	}
}

func TestParseResponseAPDU_TooShort(t *testing.T) {
	if _, err := ParseResponseAPDU([]byte{0x90}); !errors.Is(err, ErrResponseTooShort) {
		t.Errorf("expected ErrResponseTooShort, got %v", err)
	}
}
