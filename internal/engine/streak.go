package engine

import (
	"time"
)

// DateLayout is the persisted calendar-day format.
const DateLayout = "2006-01-02"

type StreakStep string

const (
	StepFirst     StreakStep = "first"
	StepSameDay   StreakStep = "same_day"
	StepContinued StreakStep = "continued"
	StepReset     StreakStep = "reset"
	// StepBackdated means the activity day is earlier than the last recorded
	// day. The state is returned unchanged.
	StepBackdated StreakStep = "backdated"
)

// StreakState is the per-user streak snapshot the tracker advances.
type StreakState struct {
	LastDate     string         `json:"last_date"`
	Streak       int            `json:"streak"`
	TraitStreaks map[string]int `json:"trait_streaks"`
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UpdateStreak advances prev for activity on the calendar day of at. Traits
// seen in activeTraits increment; previously tracked traits that are absent
// drop to zero but stay in the map.
func UpdateStreak(prev StreakState, at time.Time, activeTraits []string) (StreakState, StreakStep) {
	today := Day(at)
	next := StreakState{
		LastDate:     today.Format(DateLayout),
		Streak:       prev.Streak,
		TraitStreaks: copyCounters(prev.TraitStreaks),
	}

	var step StreakStep
	last, err := time.Parse(DateLayout, prev.LastDate)
	switch {
	case prev.LastDate == "" || err != nil:
		step = StepFirst
		next.Streak = 1
	default:
		delta := int(today.Sub(last).Hours() / 24)
		switch {
		case delta < 0:
			prev.TraitStreaks = copyCounters(prev.TraitStreaks)
			return prev, StepBackdated
		case delta == 0:
			step = StepSameDay
			if next.Streak < 1 {
				next.Streak = 1
			}
		case delta == 1:
			step = StepContinued
			next.Streak++
		default:
			step = StepReset
			next.Streak = 1
		}
	}

	active := make(map[string]bool, len(activeTraits))
	for _, t := range activeTraits {
		active[t] = true
	}
	for t := range next.TraitStreaks {
		if !active[t] {
			next.TraitStreaks[t] = 0
		}
	}
	for t := range active {
		next.TraitStreaks[t]++
	}
	return next, step
}

func copyCounters(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
