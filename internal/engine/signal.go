package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"vaultfire/internal/insight"
	"vaultfire/internal/storage"
)

// StreakMultiplierBonus is the reward multiplier bonus for a streak length.
func StreakMultiplierBonus(streak int) float64 {
	switch {
	case streak >= 7:
		return 0.2
	case streak >= 3:
		return 0.1
	default:
		return 0
	}
}

// EmitSignal derives a reward signal from the current analysis, the streak
// state after it, and the previous analysis (nil for a first reflection).
// Yield is left for the caller.
func EmitSignal(node insight.Analysis, state StreakState, prev *insight.Analysis, now time.Time) storage.RewardSignal {
	multiplier := insight.Round2(1 + float64(node.Score)*0.1 + StreakMultiplierBonus(state.Streak))
	traits := append([]string{}, node.Traits...)
	return storage.RewardSignal{
		Timestamp:        now.UTC(),
		TopTraits:        traits,
		RewardMultiplier: multiplier,
		Growth:           GrowthSummary(node, prev),
		Streak:           state.Streak,
		TraitStreaks:     copyCounters(state.TraitStreaks),
	}
}

// GrowthSummary describes trait and integrity movement, e.g.
// "+1 honesty, -1 fear, +2 integrity".
func GrowthSummary(cur insight.Analysis, prev *insight.Analysis) string {
	var parts []string
	if prev == nil {
		for _, t := range cur.Traits {
			parts = append(parts, "+1 "+t)
		}
		return strings.Join(parts, ", ")
	}

	added, dropped := diffTraits(cur.Traits, prev.Traits)
	for _, t := range added {
		parts = append(parts, "+1 "+t)
	}
	for _, t := range dropped {
		parts = append(parts, "-1 "+t)
	}
	if diff := cur.Score - prev.Score; diff > 0 {
		parts = append(parts, fmt.Sprintf("+%d integrity", diff))
	} else if diff < 0 {
		parts = append(parts, fmt.Sprintf("-%d integrity", -diff))
	}
	return strings.Join(parts, ", ")
}

func diffTraits(cur, prev []string) (added, dropped []string) {
	inCur := map[string]bool{}
	for _, t := range cur {
		inCur[t] = true
	}
	inPrev := map[string]bool{}
	for _, t := range prev {
		inPrev[t] = true
	}
	for t := range inCur {
		if !inPrev[t] {
			added = append(added, t)
		}
	}
	for t := range inPrev {
		if !inCur[t] {
			dropped = append(dropped, t)
		}
	}
	sort.Strings(added)
	sort.Strings(dropped)
	return added, dropped
}
