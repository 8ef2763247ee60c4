package engine

import (
	"context"
	"fmt"
	"time"

	"vaultfire/internal/storage"
)

const (
	RitualOfFire    = "Ritual of Fire"
	RitualEyes      = "Eyes Opened"
	RitualChain     = "Chainbreaker"
	VaultRevealNote = "Vault Revealed"

	RitualOfFireReflections = 7
	VaultRevealStreak       = 30
)

// Ritual describes a named milestone and whether a user holds it.
type Ritual struct {
	Name        string
	Description string
	Icon        string
	Unlocked    bool
}

// Rituals lists every named ritual with the user's unlock state. A nil
// record reports everything locked.
func Rituals(u *storage.UserRecord) []Ritual {
	has := func(name string) bool { return u != nil && u.HasRitual(name) }
	return []Ritual{
		{Name: RitualOfFire, Description: "Submit 7 reflections", Icon: "🔥", Unlocked: has(RitualOfFire)},
		{Name: RitualEyes, Description: "Share a reflection publicly", Icon: "👁", Unlocked: has(RitualEyes)},
		{Name: RitualChain, Description: "Reach the top 3 of the leaderboard", Icon: "⛓", Unlocked: has(RitualChain)},
	}
}

// CheckAndUnlock evaluates the named rituals and the vault reveal for user.
// Each unlock happens at most once per user; repeated calls are no-ops.
// Unlocks are written to the user record first; a held ritual or reveal
// missing from its log is appended on the next call.
func (s *Service) CheckAndUnlock(ctx context.Context, user string, in UnlockInput) (*UnlockResult, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return nil, err
	}
	if in.Now.IsZero() {
		return nil, ValidationError{Field: "now", Message: "is required"}
	}
	now := in.Now.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.users.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	refs, err := s.reflections.ByUser(ctx, user)
	if err != nil {
		return nil, err
	}

	var cur storage.UserRecord
	if rec != nil {
		cur = *rec
	}

	var candidates []string
	if len(refs) >= RitualOfFireReflections && !cur.HasRitual(RitualOfFire) {
		candidates = append(candidates, RitualOfFire)
	}
	if in.PublicSignal && !cur.HasRitual(RitualEyes) {
		candidates = append(candidates, RitualEyes)
	}
	if in.Top3 && !cur.HasRitual(RitualChain) {
		candidates = append(candidates, RitualChain)
	}
	reveal := cur.Streak > VaultRevealStreak && !cur.VaultRevealed

	res := &UnlockResult{Unlocked: []string{}}
	held := &cur
	if len(candidates) > 0 || reveal {
		held, err = s.users.Update(ctx, user, func(u *storage.UserRecord) error {
			for _, name := range candidates {
				if !u.HasRitual(name) {
					u.Rituals = append(u.Rituals, name)
					res.Unlocked = append(res.Unlocked, name)
				}
			}
			if reveal && !u.VaultRevealed {
				u.VaultRevealed = true
				res.VaultRevealed = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("check rituals: %w", err)
		}
		for _, name := range res.Unlocked {
			s.metrics.RitualUnlocked(name)
			s.log.Info("ritual_unlocked", "user", user, "ritual", name)
		}
		if res.VaultRevealed {
			s.metrics.VaultRevealed()
			s.log.Info("vault_revealed", "user", user, "streak", cur.Streak)
		}
	}

	if err := s.syncUnlockLogs(ctx, user, held, now); err != nil {
		return nil, fmt.Errorf("check rituals: %w", err)
	}
	return res, nil
}

// syncUnlockLogs appends ritual and vault log entries for unlocks the record
// holds but the logs do not.
func (s *Service) syncUnlockLogs(ctx context.Context, user string, u *storage.UserRecord, now time.Time) error {
	if len(u.Rituals) > 0 {
		ritualLog, err := s.rituals.All(ctx)
		if err != nil {
			return err
		}
		logged := map[string]bool{}
		for _, ev := range ritualLog {
			if !ev.IsChain() && ev.User == user {
				logged[ev.Ritual] = true
			}
		}
		for _, name := range u.Rituals {
			if logged[name] {
				continue
			}
			if err := s.rituals.Append(ctx, storage.RitualEvent{User: user, Ritual: name, Timestamp: now}); err != nil {
				return err
			}
		}
	}
	if u.VaultRevealed {
		vaultLog, err := s.vault.All(ctx)
		if err != nil {
			return err
		}
		for _, ev := range vaultLog {
			if ev.User == user && ev.Event == VaultRevealNote {
				return nil
			}
		}
		if err := s.vault.Append(ctx, storage.VaultEvent{User: user, Event: VaultRevealNote, Timestamp: now}); err != nil {
			return err
		}
	}
	return nil
}
