package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex joins hex fragments such as "80 54 01 FF" into bytes. It panics on
// malformed input and is meant for fixtures and constants.
func Hex(parts ...string) []byte {
	clean := strings.Join(strings.Fields(strings.Join(parts, " ")), "")

	data, err := hex.DecodeString(clean)
	if err != nil {
		panic(fmt.Sprintf("tlv.Hex: invalid input %q: %v", clean, err))
	}
	return data
}
