package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckDeviation(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	tests := []struct {
		name      string
		requested float64
		current   float64
		allowed   bool
		deviation string
	}{
		{"exactly at limit", 98, 100, true, "2.00"},
		{"above limit", 95, 100, false, "5.00"},
		{"no deviation", 100, 100, true, "0.00"},
		{"above current within limit", 101, 100, true, "1.00"},
		{"above current over limit", 103, 100, false, "3.00"},
		{"fractional", 100.5, 100, true, "0.50"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := CheckDeviation(p, tt.requested, tt.current)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.deviation, d.DeviationString())
			assert.Equal(t, DefaultMaxDeviationPct, d.MaxAllowed)
		})
	}
}

func TestCheckDeviationFullPrecisionCompare(t *testing.T) {
	t.Parallel()

	// 2.004% rounds to "2.00" for presentation but still fails the check.
	d := CheckDeviation(Policy{MaxDeviationPct: 2}, 102.004, 100)
	assert.False(t, d.Allowed)
	assert.Equal(t, "2.00", d.DeviationString())
}

func TestCheckDeviationCustomPolicy(t *testing.T) {
	t.Parallel()

	p := Policy{MaxDeviationPct: 10}

	assert.True(t, CheckDeviation(p, 95, 100).Allowed)
	assert.False(t, CheckDeviation(p, 80, 100).Allowed)
}
