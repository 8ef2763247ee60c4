package insight

import (
	"fmt"
	"sort"
)

const DefaultAuditWindow = 5

// Audit scans the last window analyses and reports moral drift: integrity
// movement between the first and last entry, trait frequency changes between
// the two halves of the window, and a sentiment shift.
func Audit(nodes []Analysis, window int) []string {
	if window <= 0 {
		window = DefaultAuditWindow
	}
	recent := nodes
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	if len(recent) < 2 {
		return []string{"Not enough data for self-audit"}
	}

	var messages []string

	first, last := recent[0], recent[len(recent)-1]
	if diff := last.Score - first.Score; diff != 0 {
		direction := "falling"
		if diff > 0 {
			direction = "rising"
		}
		messages = append(messages, fmt.Sprintf("Integrity %s (%s)", direction, severity(diff)))
	}

	half := max(1, len(recent)/2)
	before := countTraits(recent[:half])
	after := countTraits(recent[half:])
	seen := map[string]bool{}
	var traits []string
	for t := range before {
		seen[t] = true
		traits = append(traits, t)
	}
	for t := range after {
		if !seen[t] {
			traits = append(traits, t)
		}
	}
	sort.Strings(traits)
	for _, t := range traits {
		diff := after[t] - before[t]
		if diff == 0 {
			continue
		}
		direction := "Drifting from"
		if diff > 0 {
			direction = "Leaning into"
		}
		messages = append(messages, fmt.Sprintf("%s %s (%s)", direction, t, severity(diff)))
	}

	if first.Sentiment != last.Sentiment {
		messages = append(messages, fmt.Sprintf("Sentiment shift: %s -> %s", first.Sentiment, last.Sentiment))
	}
	return messages
}

func severity(diff int) string {
	if diff >= 2 || diff <= -2 {
		return "severe"
	}
	return "light"
}

func countTraits(nodes []Analysis) map[string]int {
	out := map[string]int{}
	for _, n := range nodes {
		for _, t := range n.Traits {
			out[t]++
		}
	}
	return out
}
