package calypso

import (
	"fmt"
	"strings"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
	"github.com/gregLibert/calypso-sv/pkg/tlv"
)

// Describe renders an executed command and its trace as a text report.
func Describe(cmd Command, trace iso7816.Trace) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("=== %s REPORT ===\n", strings.ToUpper(cmd.Name())))
	if len(trace) == 0 || trace[0].Command == nil {
		sb.WriteString("    - No Exchange.")
		return sb.String()
	}

	first := trace[0].Command
	cla, _ := first.Class.Encode()
	sb.WriteString(fmt.Sprintf("[1] Command: %02X %02X %02X %02X (%s)\n",
		cla, byte(first.Instruction.Raw), first.P1, first.P2, first.Instruction.Raw))
	sb.WriteString(fmt.Sprintf("    + Lc/Le:   %d / %d\n", len(first.Data), first.Ne))

	outcome := cmd.Interpret(trace.Status())
	sw := uint16(outcome.Status)
	mark := "[OK]"
	if !outcome.IsSuccess() {
		mark = "[!!]"
	}
	sb.WriteString(fmt.Sprintf("    + Result:  [%02X %02X] %s %s: %s\n",
		byte(sw>>8), byte(sw), mark, outcome.Category, outcome.Description))
	sb.WriteString("\n")

	if len(trace) > 1 {
		sb.WriteString(fmt.Sprintf("[2] Protocol: Auto-handling (%d steps)\n", len(trace)))
		sb.WriteString(fmt.Sprintf("    + Final SW: [%04X]\n", sw))
	}

	payload := trace.Data()
	sb.WriteString("[=] DATA OUTCOME:\n")
	if len(payload) > 0 {
		sb.WriteString(fmt.Sprintf("    + Length: %d bytes\n", len(payload)))
		sb.WriteString(fmt.Sprintf("    + Dump:   %X\n", payload))
		sb.WriteString(fmt.Sprintf("    + ASCII:  %q\n", tlv.MakeSafeASCII(payload)))
	} else {
		sb.WriteString("    - No Data Received.\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
