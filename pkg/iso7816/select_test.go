package iso7816

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gregLibert/calypso-sv/pkg/tlv"
)

func TestSelectCommands(t *testing.T) {
	iso := MustClass(ClassISO)

	tests := []struct {
		name string
		cmd  *CommandAPDU
		want []byte
	}{
		{
			name: "Select Calypso AID",
			cmd:  SelectByAID(iso, []byte("1TIC.ICA")),
			want: tlv.Hex("00 A4 04 00", "08", "315449432E494341"),
		},
		{
			name: "Select next occurrence",
			cmd:  SelectNextByAID(iso, tlv.Hex("315449432E")),
			want: tlv.Hex("00 A4 04 02", "05", "315449432E"),
		},
		{
			name: "Select MF, FCP",
			cmd:  NewSelectCommand(iso, SelectByFileID, FirstOrOnlyOccurrence, ReturnFCP, nil),
			want: tlv.Hex("00 A4 00 04", "00"),
		},
		{
			name: "No data expected",
			cmd:  NewSelectCommand(iso, SelectByFileID, FirstOrOnlyOccurrence, ReturnNoData, tlv.Hex("3F00")),
			want: tlv.Hex("00 A4 00 0C", "02", "3F00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Bytes(): %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("frame mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectionMethod_String(t *testing.T) {
	if got := SelectByDFName.String(); got != "Select by DF Name (AID)" {
		t.Errorf("String() = %q", got)
	}
	if got := SelectionMethod(0x08).String(); got != "Unknown Method (0x08)" {
		t.Errorf("String() = %q", got)
	}
}
