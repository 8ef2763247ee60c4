package engine

import "math"

// Rank is one band of the rank table. Max is inclusive.
type Rank struct {
	Label string `json:"label"`
	Badge string `json:"badge"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// UnknownRank is returned for XP outside every band.
var UnknownRank = Rank{Label: "Unknown", Badge: "?", Min: -1, Max: -1}

// Ranks partitions [0, MaxInt]; the last band is open-ended.
var Ranks = []Rank{
	{Label: "Spark", Badge: "✦", Min: 0, Max: 99},
	{Label: "Kindled", Badge: "🕯", Min: 100, Max: 299},
	{Label: "Ember", Badge: "🔸", Min: 300, Max: 699},
	{Label: "Flamekeeper", Badge: "🔥", Min: 700, Max: 1499},
	{Label: "Torchbearer", Badge: "🔦", Min: 1500, Max: 2999},
	{Label: "Beacon", Badge: "🗼", Min: 3000, Max: 5999},
	{Label: "Wildfire", Badge: "🌋", Min: 6000, Max: 9999},
	{Label: "Vaultbound", Badge: "👑", Min: 10000, Max: math.MaxInt},
}

func (r Rank) OpenEnded() bool { return r.Max == math.MaxInt }

func (r Rank) contains(xp int) bool { return xp >= r.Min && xp <= r.Max }

// RankOf returns the band containing xp.
func RankOf(xp int) Rank {
	for _, r := range Ranks {
		if r.contains(xp) {
			return r
		}
	}
	return UnknownRank
}

// RankInfo returns the current band and the next one, if any.
func RankInfo(xp int) (Rank, *Rank) {
	for i, r := range Ranks {
		if !r.contains(xp) {
			continue
		}
		if i+1 < len(Ranks) {
			next := Ranks[i+1]
			return r, &next
		}
		return r, nil
	}
	return UnknownRank, nil
}

// ProgressWithinRank is the fraction of the current band covered, in [0,1].
// Zero-span and open-ended bands report 1.
func ProgressWithinRank(xp int) float64 {
	r := RankOf(xp)
	if r == UnknownRank {
		return 0
	}
	if r.OpenEnded() || r.Max == r.Min {
		return 1.0
	}
	return float64(xp-r.Min) / float64(r.Max-r.Min)
}
