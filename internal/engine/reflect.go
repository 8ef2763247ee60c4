package engine

import (
	"context"
	"fmt"
	"strings"

	"vaultfire/internal/insight"
	"vaultfire/internal/storage"
)

const (
	Badge7DayStreak  = "7-Day Streak"
	Badge30DayStreak = "30-Day Streak"
)

var streakBadges = []struct {
	name   string
	streak int
}{
	{Badge7DayStreak, 7},
	{Badge30DayStreak, 30},
}

// ProcessReflection scores one reflection and folds it into the user's
// progression: XP, streak, trait counters, badges and the reflection log.
// Writes go signal, reflection log, user record; a failed write aborts the
// call.
func (s *Service) ProcessReflection(ctx context.Context, in ReflectionInput) (*ReflectionResult, error) {
	user, err := normalizeUser(in.User)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, ValidationError{Field: "text", Message: "is required"}
	}
	if in.Now.IsZero() {
		return nil, ValidationError{Field: "now", Message: "is required"}
	}
	now := in.Now.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.users.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	var rec storage.UserRecord
	if existing != nil {
		rec = *existing
	}

	history, err := s.reflections.ByUser(ctx, user)
	if err != nil {
		return nil, err
	}

	analysis := s.analyzer.Analyze(in.Text)
	state, step := UpdateStreak(StreakState{
		LastDate:     rec.LastReflectionDate,
		Streak:       rec.Streak,
		TraitStreaks: rec.TraitStreaks,
	}, now, analysis.Traits)

	res := &ReflectionResult{
		BaseGain:    baseGain(in.Text),
		KeywordGain: keywordGain(in.Text),
		StreakBonus: streakBonus(step),
		Streak:      state.Streak,
		Step:        step,
		Backdated:   step == StepBackdated,
		RankBefore:  RankOf(rec.XP),
		Analysis:    analysis,
	}
	res.XPGained = res.BaseGain + res.KeywordGain + res.StreakBonus

	if res.Backdated {
		s.log.Warn("streak_backdated",
			"user", user,
			"activity_date", Day(now).Format(DateLayout),
			"last_reflection_date", rec.LastReflectionDate,
		)
	}

	// The signal is derived, so it is written first: a failure here aborts
	// before the reflection log or the user record change.
	var prev *insight.Analysis
	if n := len(history); n > 0 {
		a := s.analyzer.Analyze(history[n-1].Content)
		prev = &a
	}
	sig := EmitSignal(analysis, state, prev, now)
	sig.Yield = s.yield.SimulateYield(analysis.Score, len(history)+1)
	if err := s.signals.Put(ctx, user, sig); err != nil {
		return nil, fmt.Errorf("process reflection: %w", err)
	}
	res.Signal = sig

	if err := s.reflections.Append(ctx, storage.Reflection{
		User:      user,
		Timestamp: now,
		Content:   in.Text,
		Public:    in.Public,
		Color:     in.Color,
		XPGain:    res.XPGained,
		Streak:    state.Streak,
	}); err != nil {
		return nil, fmt.Errorf("process reflection: %w", err)
	}

	updated, err := s.users.Update(ctx, user, func(u *storage.UserRecord) error {
		u.XP += res.XPGained
		u.Rank = RankOf(u.XP).Label
		u.Timestamp = now
		if res.Backdated {
			return nil
		}
		u.Streak = state.Streak
		u.LastReflectionDate = state.LastDate
		u.TraitStreaks = state.TraitStreaks
		if !containsString(u.ReflectionDates, state.LastDate) {
			u.ReflectionDates = append(u.ReflectionDates, state.LastDate)
		}
		for _, b := range streakBadges {
			if u.Streak >= b.streak && !u.HasBadge(b.name) {
				u.Badges = append(u.Badges, b.name)
				res.NewBadges = append(res.NewBadges, b.name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("process reflection: %w", err)
	}

	res.TotalXP = updated.XP
	res.RankAfter = RankOf(updated.XP)
	res.RankUp = res.RankAfter.Label != res.RankBefore.Label

	s.metrics.ReflectionProcessed(res.XPGained, res.Backdated)
	s.log.Info("reflection_processed",
		"user", user,
		"xp_gained", res.XPGained,
		"total_xp", res.TotalXP,
		"streak", res.Streak,
		"step", string(res.Step),
		"rank", res.RankAfter.Label,
	)
	return res, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
