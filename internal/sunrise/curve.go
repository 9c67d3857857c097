// Package sunrise implements the multi-channel brightness ramp: an
// exponential curve from off to full brightness, a hold at full, then off.
package sunrise

import "math"

// DefaultExponent is the curve shaping constant. Values above 1 bias the
// brightness increase toward the end of the ramp, which reads as a gradual,
// natural sunrise to the eye.
const DefaultExponent = 2.5

// Shape maps a normalized elapsed fraction to shaped progress. The input is
// clamped to [0,1] before the exponent is applied, so callers never see
// progress outside the output range.
func Shape(p, exponent float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	return math.Pow(p, exponent)
}

// DutyFor converts shaped progress into a duty cycle in 0..maxDuty.
func DutyFor(shaped float64, maxDuty uint32) uint32 {
	if shaped <= 0 {
		return 0
	}
	if shaped >= 1 {
		return maxDuty
	}
	return uint32(math.Round(shaped * float64(maxDuty)))
}
