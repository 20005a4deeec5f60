package vm

import (
	"fmt"
	"math"
)

// SafeInt32ToUint32 converts int32 to uint32, rejecting negative values.
func SafeInt32ToUint32(v int32) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("cannot convert negative int32 %d to uint32", v)
	}
	return uint32(v), nil
}

// SafeUint32ToUint8 converts uint32 to uint8, rejecting out-of-range values.
func SafeUint32ToUint8(v uint32) (uint8, error) {
	if v > math.MaxUint8 {
		return 0, fmt.Errorf("uint32 value 0x%X exceeds uint8 maximum", v)
	}
	return uint8(v), nil
}

// SafeUint32ToUint16 converts uint32 to uint16, rejecting out-of-range values.
func SafeUint32ToUint16(v uint32) (uint16, error) {
	if v > math.MaxUint16 {
		return 0, fmt.Errorf("uint32 value 0x%X exceeds uint16 maximum", v)
	}
	return uint16(v), nil
}

// AsInt32 reinterprets the bit pattern of v as a signed value, for
// display and for signed arithmetic (slt, blt, bge).
func AsInt32(v uint32) int32 {
	//nolint:gosec // G115: intentional reinterpretation, not a narrowing conversion
	return int32(v)
}

// AsUint32 reinterprets the bit pattern of v as unsigned, the inverse
// of AsInt32.
func AsUint32(v int32) uint32 {
	//nolint:gosec // G115: intentional reinterpretation, not a narrowing conversion
	return uint32(v)
}
