package bits

import (
	"math/bits"
)

// CeilPowOf2 is the exponent of the smallest power of two not less than n.
// CeilPowOf2(0) and CeilPowOf2(1) are 0.
func CeilPowOf2(n uint32) uint8 {
	if n <= 1 {
		return 0
	}
	return uint8(bits.Len32(n - 1))
}

// RoundupPowOf2 is the smallest power of two not less than n.
func RoundupPowOf2(n uint32) uint32 {
	return 1 << CeilPowOf2(n)
}

// RoundupPowOf2ByLoop is RoundupPowOf2 by shifting.
func RoundupPowOf2ByLoop(n uint32) uint32 {
	res := uint32(1)
	for res < n {
		res <<= 1
	}
	return res
}
