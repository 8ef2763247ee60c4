package insight

import "math"

// PassiveYield is the default reward simulator: positive trait score adds a
// base and every reflection adds a small compounding bonus.
type PassiveYield struct{}

func (PassiveYield) SimulateYield(traitScore int, frequency int) float64 {
	base := float64(max(traitScore, 0)) * 0.1
	bonus := float64(frequency) * 0.05
	return Round2(base + bonus)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
