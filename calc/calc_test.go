package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProportional(t *testing.T) {
	tests := []struct {
		name         string
		distributing uint64
		collected    uint64
		contribution uint64
		want         uint64
	}{
		{"even split", 1000, 400, 200, 500},
		{"full pool", 1000, 400, 400, 1000},
		{"truncates remainder", 100, 3, 1, 33},
		{"nothing collected", 1000, 0, 0, 0},
		{"zero contribution", 1000, 400, 0, 0},
		{"contribution above collected clamps", 1000, 400, 500, 1000},
		{"large values", math.MaxUint64 / 2, math.MaxUint64, math.MaxUint64 / 2, math.MaxUint64 / 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Proportional{}.CalculatePrizeAmount(tt.distributing, tt.collected, tt.contribution)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixedFraction(t *testing.T) {
	half := FixedFraction{PerMille: 500}
	assert.Equal(t, uint64(100), half.CalculatePrizeAmount(0, 0, 200))
	assert.Equal(t, uint64(0), half.CalculatePrizeAmount(0, 0, 1))

	full := FixedFraction{PerMille: 1000}
	assert.Equal(t, uint64(200), full.CalculatePrizeAmount(0, 0, 200))

	bonus := FixedFraction{PerMille: 1500}
	assert.Equal(t, uint64(300), bonus.CalculatePrizeAmount(0, 0, 200))
}

func TestMulDiv(t *testing.T) {
	assert.Equal(t, uint64(0), mulDiv(1, 1, 0))

	// 128-bit intermediate product does not overflow the calculation.
	assert.Equal(t, uint64(math.MaxUint64), mulDiv(math.MaxUint64, math.MaxUint64, math.MaxUint64))

	// A quotient wider than 64 bits yields 0.
	assert.Equal(t, uint64(0), mulDiv(math.MaxUint64, math.MaxUint64, 1))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("proportional")
	assert.False(t, ok)

	r.Register("proportional", Proportional{})
	c, ok := r.Lookup("proportional")
	require.True(t, ok)
	assert.Equal(t, uint64(500), c.CalculatePrizeAmount(1000, 400, 200))

	// Registering again replaces the binding.
	r.Register("proportional", FixedFraction{PerMille: 1000})
	c, ok = r.Lookup("proportional")
	require.True(t, ok)
	assert.Equal(t, uint64(200), c.CalculatePrizeAmount(1000, 400, 200))
}
