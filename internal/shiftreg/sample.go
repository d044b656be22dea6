package shiftreg

import (
	"fmt"
	"strconv"
	"strings"
)

// Sample is one parallel word. Bit i is the level read at shift position i,
// so bit 0 is the first bit out of the chain (input H of the last device).
type Sample uint64

// Bit reports whether bit i (0-indexed) is set.
func (s Sample) Bit(i int) bool {
	if i < 0 || i >= MaxBits {
		return false
	}
	return s>>uint(i)&1 == 1
}

// Bits expands the sample into width booleans, bit 0 first.
func (s Sample) Bits(width int) []bool {
	out := make([]bool, width)
	for i := range out {
		out[i] = s.Bit(i)
	}
	return out
}

// Format renders the sample as "dec", "hex" or "bin". Hex and binary are
// zero-padded to width bits.
func (s Sample) Format(width int, base string) (string, error) {
	switch strings.ToLower(base) {
	case "", "dec":
		return strconv.FormatUint(uint64(s), 10), nil
	case "hex":
		return fmt.Sprintf("0x%0*x", (width+3)/4, uint64(s)), nil
	case "bin":
		return fmt.Sprintf("0b%0*b", width, uint64(s)), nil
	default:
		return "", fmt.Errorf("unknown format %q (want dec, hex or bin)", base)
	}
}
