package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"vaultfire/internal/storage"
)

const (
	ChainWindow            = 30 * time.Minute
	ChainMinParticipants   = 3
	SignalArchitectWindow  = 7 * 24 * time.Hour
	SignalArchitectRituals = 3
	TitleSignalArchitect   = "Signal Architect"
)

// EvaluateChainRituals awards a group bonus when at least three distinct
// users posted public reflections in [now-30m, now]. An unchanged
// participant set already awarded inside the same window is skipped.
// Participants are returned in ascending id order.
func (s *Service) EvaluateChainRituals(ctx context.Context, now time.Time) ([]string, error) {
	if now.IsZero() {
		return nil, ValidationError{Field: "now", Message: "is required"}
	}
	now = now.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	from := now.Add(-ChainWindow)

	refs, err := s.reflections.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var participants []string
	for _, r := range refs {
		if !r.Public || !inWindow(r.Timestamp, from, now) || seen[r.User] {
			continue
		}
		seen[r.User] = true
		participants = append(participants, r.User)
	}
	if len(participants) < ChainMinParticipants {
		return []string{}, nil
	}
	sort.Strings(participants)

	ritualLog, err := s.rituals.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, ev := range ritualLog {
		if ev.IsChain() && inWindow(ev.Timestamp, from, now) && sameSet(ev.Participants, participants) {
			s.log.Debug("chain_ritual_skipped", "participants", participants)
			return []string{}, nil
		}
	}

	// Trailing 7-day chain count per participant, including the new event.
	recent := map[string]int{}
	archFrom := now.Add(-SignalArchitectWindow)
	for _, ev := range ritualLog {
		if !ev.IsChain() || !inWindow(ev.Timestamp, archFrom, now) {
			continue
		}
		for _, p := range ev.Participants {
			recent[p]++
		}
	}

	// Awards land in one users write before the event is logged, so a failed
	// write leaves nobody awarded and the next evaluation retries the set.
	_, err = s.users.UpdateMany(ctx, participants, func(id string, u *storage.UserRecord) error {
		u.XP += ChainRitualXP
		u.Rank = RankOf(u.XP).Label
		u.Timestamp = now
		u.ChainRituals++
		if recent[id]+1 >= SignalArchitectRituals {
			u.Title = TitleSignalArchitect
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chain ritual award: %w", err)
	}

	if err := s.rituals.Append(ctx, storage.RitualEvent{
		Type:         storage.RitualTypeChain,
		Participants: participants,
		Timestamp:    now,
	}); err != nil {
		return nil, fmt.Errorf("chain ritual: %w", err)
	}

	s.metrics.ChainRitualAwarded(len(participants))
	s.log.Info("chain_ritual_awarded", "participants", participants, "xp", ChainRitualXP)
	return participants, nil
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func sameSet(a, b []string) bool {
	as := map[string]bool{}
	for _, v := range a {
		as[v] = true
	}
	bs := map[string]bool{}
	for _, v := range b {
		bs[v] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if !bs[v] {
			return false
		}
	}
	return true
}
