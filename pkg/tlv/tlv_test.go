package tlv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/moov-io/bertlv"
)

type hexValue struct {
	Val string
}

func (h *hexValue) UnmarshalTLV(data []byte) error {
	h.Val = FormatValue(data, "")
	return nil
}

type discretionary struct {
	Serial  []byte `tlv:"C7"`
	Startup []byte `tlv:"53"`
}

type proprietary struct {
	Discretionary *discretionary `tlv:"BF0C"`
}

type fciTemplate struct {
	DFName      []byte       `tlv:"84"`
	Proprietary proprietary  `tlv:"A5"`
	Custom      hexValue     `tlv:"9F02"`
	Other       []bertlv.TLV `tlv:",unknown"`
}

type fciEnvelope struct {
	FCI fciTemplate `tlv:"6F"`
}

var sampleFCI = Hex(
	"6F 28",
	"84 08 315449432E494341", // "1TIC.ICA"
	"A5 14",
	"BF0C 11",
	"C7 08 0000000012345678",
	"53 05 0A3C230510",
	"9F02 01 AA",
	"DF01 01 BB",
)

func TestUnmarshal_NestedTemplates(t *testing.T) {
	var env fciEnvelope
	if err := Unmarshal(sampleFCI, &env); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if string(env.FCI.DFName) != "1TIC.ICA" {
		t.Errorf("DFName = %q", env.FCI.DFName)
	}
	d := env.FCI.Proprietary.Discretionary
	if d == nil {
		t.Fatal("BF0C template not decoded")
	}
	if !bytes.Equal(d.Serial, Hex("0000000012345678")) {
		t.Errorf("Serial = %X", d.Serial)
	}
	if !bytes.Equal(d.Startup, Hex("0A3C230510")) {
		t.Errorf("Startup = %X", d.Startup)
	}
	if env.FCI.Custom.Val != "AA" {
		t.Errorf("Custom = %q, want AA", env.FCI.Custom.Val)
	}
	if len(env.FCI.Other) != 1 || !strings.EqualFold(env.FCI.Other[0].Tag, "DF01") {
		t.Errorf("unknown tags not captured: %+v", env.FCI.Other)
	}
}

func TestUnmarshal_InvalidTarget(t *testing.T) {
	if err := Unmarshal(Hex("84 00"), fciTemplate{}); err == nil || !strings.Contains(err.Error(), "pointer") {
		t.Errorf("expected pointer error, got %v", err)
	}
	if err := Unmarshal(Hex("84 00"), (*fciTemplate)(nil)); err == nil {
		t.Error("expected error for nil pointer")
	}
}
