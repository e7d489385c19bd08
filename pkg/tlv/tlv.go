// Package tlv maps BER-TLV encoded data onto Go structs through `tlv` field
// tags. Constructed tags (templates) map onto nested structs, primitive tags
// onto byte slices, and anything unmatched can be kept in a []bertlv.TLV
// field tagged `tlv:",unknown"`.
package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// Unmarshaler lets a field type decode its own value bytes.
type Unmarshaler interface {
	UnmarshalTLV(data []byte) error
}

var tlvSliceType = reflect.TypeOf([]bertlv.TLV{})

// Unmarshal decodes raw BER-TLV data into target, which must be a non-nil
// pointer to a struct.
func Unmarshal(data []byte, target interface{}) error {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Errorf("bertlv decode: %w", err)
	}
	return UnmarshalPackets(packets, target)
}

// UnmarshalPackets maps already decoded packets into target.
func UnmarshalPackets(packets []bertlv.TLV, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target)
	}
	return decodeStruct(packets, v.Elem())
}

func decodeStruct(packets []bertlv.TLV, v reflect.Value) error {
	t := v.Type()
	used := make([]bool, len(packets))
	var unknown reflect.Value

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, opt, _ := strings.Cut(sf.Tag.Get("tlv"), ",")
		if opt == "unknown" && sf.Type == tlvSliceType {
			unknown = v.Field(i)
			continue
		}
		if name == "" {
			continue
		}

		for idx, p := range packets {
			if !strings.EqualFold(p.Tag, name) {
				continue
			}
			if err := decodeField(p, v.Field(i)); err != nil {
				return fmt.Errorf("field %s (tag %s): %w", sf.Name, name, err)
			}
			used[idx] = true
		}
	}

	if unknown.IsValid() {
		var rest []bertlv.TLV
		for idx, p := range packets {
			if !used[idx] {
				rest = append(rest, p)
			}
		}
		if len(rest) > 0 {
			unknown.Set(reflect.ValueOf(rest))
		}
	}
	return nil
}

func decodeField(p bertlv.TLV, field reflect.Value) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(Unmarshaler); ok {
			raw, err := rawValue(p)
			if err != nil {
				return err
			}
			return u.UnmarshalTLV(raw)
		}
	}

	switch {
	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Uint8:
		raw, err := rawValue(p)
		if err != nil {
			return err
		}
		field.SetBytes(raw)
		return nil

	case field.Kind() == reflect.Struct:
		return decodeTemplate(p, field)

	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return decodeTemplate(p, field.Elem())

	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Struct:
		elem := reflect.New(field.Type().Elem()).Elem()
		if err := decodeTemplate(p, elem); err != nil {
			return err
		}
		field.Set(reflect.Append(field, elem))
		return nil
	}

	return fmt.Errorf("unsupported field kind %s", field.Kind())
}

func decodeTemplate(p bertlv.TLV, v reflect.Value) error {
	if len(p.TLVs) > 0 {
		return decodeStruct(p.TLVs, v)
	}
	if len(p.Value) == 0 {
		return nil
	}
	packets, err := bertlv.Decode(p.Value)
	if err != nil {
		return fmt.Errorf("bertlv decode: %w", err)
	}
	return decodeStruct(packets, v)
}

// rawValue returns the value bytes of p, re-encoding the children of a
// constructed tag.
func rawValue(p bertlv.TLV) ([]byte, error) {
	if len(p.TLVs) > 0 {
		return bertlv.Encode(p.TLVs)
	}
	return p.Value, nil
}
