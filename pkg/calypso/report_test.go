package calypso

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
	"github.com/gregLibert/calypso-sv/pkg/tlv"
)

func TestDescribe_Rejected(t *testing.T) {
	cmd, err := NewSvPrepareDebit(SamC1, tlv.Hex("01020304"), tlv.Hex("AABB"), make([]byte, 12))
	require.NoError(t, err)

	trace := iso7816.Trace{
		{Command: cmd.APDU(), Response: &iso7816.ResponseAPDU{Status: 0x6985}},
	}

	want := []string{
		"=== SAM SV PREPARE DEBIT REPORT ===",
		"[1] Command: 80 54 01 FF (SV PREPARE DEBIT)",
		"    + Lc/Le:   18 / 0",
		"    + Result:  [69 85] [!!] AccessForbidden: Preconditions not satisfied.",
		"",
		"[=] DATA OUTCOME:",
		"    - No Data Received.",
	}

	if diff := cmp.Diff(want, strings.Split(Describe(cmd, trace), "\n")); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe_AutoHandled(t *testing.T) {
	cmd := NewSvGet(Card{ProductType: PrimeRevision3}, SvDebit)
	trace := iso7816.Trace{
		{Command: cmd.APDU(), Response: &iso7816.ResponseAPDU{Status: 0x6C03}},
		{Command: cmd.APDU(), Response: &iso7816.ResponseAPDU{Data: []byte("SV!"), Status: 0x9000}},
	}

	want := []string{
		"=== CARD SV GET REPORT ===",
		"[1] Command: 00 7C 00 09 (SV GET)",
		"    + Lc/Le:   0 / 256",
		"    + Result:  [90 00] [OK] Success: Success",
		"",
		"[2] Protocol: Auto-handling (2 steps)",
		"    + Final SW: [9000]",
		"[=] DATA OUTCOME:",
		"    + Length: 3 bytes",
		"    + Dump:   535621",
		`    + ASCII:  "SV!"`,
	}

	if diff := cmp.Diff(want, strings.Split(Describe(cmd, trace), "\n")); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe_NoExchange(t *testing.T) {
	cmd, err := NewSvCheck(SamC1, nil)
	require.NoError(t, err)

	want := "=== SAM SV CHECK REPORT ===\n    - No Exchange."
	if diff := cmp.Diff(want, Describe(cmd, nil)); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
}
