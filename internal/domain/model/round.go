package model

import "math"

// maxExact is the largest magnitude at which every integer is a float64.
const maxExact = 1 << 53

// RoundTo rounds x to the given number of decimal places, half away from
// zero. Non-finite values, and values too large to carry a fraction at that
// precision, are returned unchanged.
func RoundTo(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow10(places)
	if math.Abs(x) >= maxExact/p {
		return x
	}
	return math.Round(x*p) / p
}
