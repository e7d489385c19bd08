// Package bits addresses single bits and bit fields of a byte using the
// 1-based numbering of ISO/IEC 7816 tables (b8 is the most significant bit).
package bits

// Bit returns a mask with only bit n set. Out of range positions yield 0.
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet reports whether bit n of b is set.
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// Set returns b with bit n set.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// Clear returns b with bit n cleared.
func Clear(b byte, n uint) byte {
	return b &^ Bit(n)
}

func fieldMask(high, low uint) (byte, bool) {
	if high < low || high > 8 || low < 1 {
		return 0, false
	}
	width := high - low + 1
	return byte((uint(1) << width) - 1), true
}

// GetRange extracts the field spanning bits high..low, right aligned.
// GetRange(0b0000_1100, 4, 3) == 3.
func GetRange(b byte, high, low uint) byte {
	mask, ok := fieldMask(high, low)
	if !ok {
		return 0
	}
	return (b >> (low - 1)) & mask
}

// SetRange writes v into bits high..low of b. Bits of v that do not fit the
// field are dropped.
func SetRange(b byte, high, low uint, v byte) byte {
	mask, ok := fieldMask(high, low)
	if !ok {
		return b
	}
	shift := low - 1
	return (b &^ (mask << shift)) | ((v & mask) << shift)
}
