// Package risk holds the pre-trade checks applied before an order reaches
// the vendor.
package risk

import (
	"fmt"
	"math"
)

// DefaultMaxDeviationPct is the default ceiling on how far a requested price
// may sit from the catalog price, in percent.
const DefaultMaxDeviationPct = 2.0

type Policy struct {
	// MaxDeviationPct is the largest acceptable absolute percentage
	// difference between requested and current price.
	MaxDeviationPct float64
}

func DefaultPolicy() Policy {
	return Policy{MaxDeviationPct: DefaultMaxDeviationPct}
}

// Decision is the outcome of a deviation check. Deviation carries the
// full-precision value; the comparison against the policy uses it directly,
// two-decimal rounding is presentation only.
type Decision struct {
	Allowed    bool
	Deviation  float64
	MaxAllowed float64
}

// DeviationString formats the deviation for presentation, two decimals.
func (d Decision) DeviationString() string {
	return fmt.Sprintf("%.2f", d.Deviation)
}

// CheckDeviation validates a requested price against the current catalog
// price: deviation = |requested - current| / current * 100, allowed iff
// deviation <= MaxDeviationPct.
func CheckDeviation(p Policy, requested, current float64) Decision {
	dev := math.Abs((requested-current)/current) * 100

	return Decision{
		Allowed:    dev <= p.MaxDeviationPct,
		Deviation:  dev,
		MaxAllowed: p.MaxDeviationPct,
	}
}
