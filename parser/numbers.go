package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseImmediate parses a decimal, 0x/0X hex, 0b/0B binary, or 0o/0O octal
// literal, with an optional leading '-', into a signed 32-bit value.
// Out-of-range values are an error.
func ParseImmediate(s string) (int32, error) {
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	var value uint64
	var err error

	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		value, err = strconv.ParseUint(s[2:], 16, 32)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		value, err = strconv.ParseUint(s[2:], 2, 32)
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		value, err = strconv.ParseUint(s[2:], 8, 32)
	default:
		value, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid numeric literal %q: %w", s, err)
	}

	if negative {
		if value > uint64(math.MaxInt32)+1 {
			return 0, fmt.Errorf("numeric literal -%s out of range for a signed 32-bit value", s)
		}
		return int32(-int64(value)), nil
	}
	if value > math.MaxUint32 {
		return 0, fmt.Errorf("numeric literal %s out of range for a 32-bit value", s)
	}
	// #nosec G115 -- value is bounds checked above against uint32's range
	return int32(uint32(value)), nil
}
