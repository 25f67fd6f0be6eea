package dispatch

import (
	"math"
)

// EtaMinutes estimates whole minutes to cover distKm at speedKmh, never less than one.
// A non-positive speed is replaced by fallbackKmh.
func EtaMinutes(distKm, speedKmh, fallbackKmh float64) int {
	if speedKmh <= 0 || math.IsNaN(speedKmh) {
		speedKmh = fallbackKmh
	}

	m := int(math.Round(distKm / speedKmh * 60))

	return max(1, m)
}

// Progress is the share of the planned distance already covered, 0..100.
// It reports false when the planned distance is zero.
func Progress(totalKm, remainingKm float64) (int, bool) {
	if totalKm <= 0 {
		return 0, false
	}

	p := int(math.Round((totalKm - remainingKm) / totalKm * 100))

	return clampPercent(p), true
}

func clampPercent(p int) int {
	return min(100, max(0, p))
}
