package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundupPowOf2(t *testing.T) {
	for _, n := range []uint32{1, 2, 7, 10, 16, 17, 127, 1 << 20} {
		assert.Equal(t, RoundupPowOf2ByLoop(n), RoundupPowOf2(n), "n %d", n)
	}
	assert.Equal(t, uint32(1), RoundupPowOf2(0))
}

func TestCeilPowOf2(t *testing.T) {
	n := CeilPowOf2(7)
	assert.Equal(t, uint8(3), n)

	n = CeilPowOf2(10)
	assert.Equal(t, uint8(4), n)

	n = CeilPowOf2(16)
	assert.Equal(t, uint8(4), n)

	n = CeilPowOf2(17)
	assert.Equal(t, uint8(5), n)

	assert.Equal(t, uint8(0), CeilPowOf2(1))
}
