package tlv

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/moov-io/bertlv"
)

type startupTemplate struct {
	Serial   []byte       `tlv:"C7"`
	Label    []byte       `tlv:"50" fmt:"ascii"`
	Counter  []byte       `tlv:"9F36" fmt:"int"`
	Raw      []byte
	Missing  []byte       `tlv:"99"`
	Leftover []bertlv.TLV `tlv:",unknown"`
}

func TestWriteStructFields(t *testing.T) {
	tmpl := startupTemplate{
		Serial:  []byte{0x00, 0x00, 0x00, 0x00, 0x12, 0x34, 0x56, 0x78},
		Label:   []byte{'S', 'V', 0x00},
		Counter: []byte{0x01, 0x00},
		Raw:     []byte{0xCA, 0xFE},
		Leftover: []bertlv.TLV{
			{Tag: "df01", Value: []byte{0x12, 0x34}},
		},
	}

	tests := []struct {
		name   string
		prefix string
		input  interface{}
		want   []string
	}{
		{
			name:   "Pointer",
			prefix: "FCI",
			input:  &tmpl,
			want: []string{
				"    - FCI.Serial (C7): 0000000012345678",
				`    - FCI.Label (50): 535600 ("SV.")`,
				"    - FCI.Counter (9F36): 0100 (Dec: 256)",
				"    - FCI.Raw: CAFE",
				"    - FCI.Unknown Tag DF01: 1234",
			},
		},
		{
			name:   "Value",
			prefix: "V",
			input:  startupTemplate{Raw: []byte{0x01}},
			want:   []string{"    - V.Raw: 01"},
		},
		{
			name:   "Nil pointer",
			prefix: "Nil",
			input:  (*startupTemplate)(nil),
			want:   []string{""},
		},
		{
			name:   "Not a struct",
			prefix: "X",
			input:  42,
			want:   []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			WriteStructFields(&sb, tt.prefix, tt.input)
			if diff := cmp.Diff(tt.want, strings.Split(sb.String(), "\n")); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteStructFields_Separator(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("header")
	WriteStructFields(&sb, "A", startupTemplate{Raw: []byte{0xAB}})

	want := "header\n    - A.Raw: AB"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestMakeSafeASCII(t *testing.T) {
	got := MakeSafeASCII([]byte{0x41, 0x42, 0x00, 0x1F, 0x7F, 0x43})
	if got != "AB...C" {
		t.Errorf("MakeSafeASCII() = %q, want %q", got, "AB...C")
	}
}
