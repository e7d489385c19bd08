package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// WriteStructFields appends one "    - prefix.Field (tag): value" line per
// non-empty byte-slice field of s, followed by any unknown packets. The
// `fmt` field tag selects the value rendering: "ascii", "int" or hex (default).
// Lines are newline separated with no trailing newline.
func WriteStructFields(sb *strings.Builder, prefix string, s interface{}) {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	var lines []string
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		field := v.Field(i)

		switch {
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Uint8:
			if field.Len() == 0 {
				continue
			}
			label := sf.Name
			if tag, _, _ := strings.Cut(sf.Tag.Get("tlv"), ","); tag != "" {
				label = fmt.Sprintf("%s (%s)", sf.Name, tag)
			}
			lines = append(lines, fmt.Sprintf("    - %s.%s: %s", prefix, label, FormatValue(field.Bytes(), sf.Tag.Get("fmt"))))

		case field.Type() == tlvSliceType:
			for _, p := range field.Interface().([]bertlv.TLV) {
				lines = append(lines, fmt.Sprintf("    - %s.Unknown Tag %s: %X", prefix, strings.ToUpper(p.Tag), p.Value))
			}
		}
	}

	if len(lines) == 0 {
		return
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Join(lines, "\n"))
}

// FormatValue renders data as hex, with a decimal ("int") or printable
// ("ascii") reading appended when requested.
func FormatValue(data []byte, format string) string {
	switch format {
	case "ascii":
		return fmt.Sprintf("%X (%q)", data, MakeSafeASCII(data))
	case "int":
		var n uint64
		for _, b := range data {
			n = n<<8 | uint64(b)
		}
		return fmt.Sprintf("%X (Dec: %d)", data, n)
	default:
		return fmt.Sprintf("%X", data)
	}
}

// MakeSafeASCII replaces every non-printable byte with '.'.
func MakeSafeASCII(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b < 0x20 || b > 0x7E {
			b = '.'
		}
		out[i] = b
	}
	return string(out)
}
