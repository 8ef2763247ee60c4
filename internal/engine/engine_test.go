package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vaultfire/internal/storage"
)

var day0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, func()) {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := NewService(store, Options{})
	cleanup := func() {
		_ = store.Close()
	}
	return svc, cleanup
}

func submit(t *testing.T, svc *Service, user, text string, public bool, now time.Time) *ReflectionResult {
	t.Helper()
	res, err := svc.ProcessReflection(context.Background(), ReflectionInput{
		User:   user,
		Text:   text,
		Public: public,
		Color:  "#fff",
		Now:    now,
	})
	if err != nil {
		t.Fatalf("ProcessReflection(%s): %v", user, err)
	}
	return res
}

func mustUser(t *testing.T, svc *Service, id string) *storage.UserRecord {
	t.Helper()
	u, err := svc.User(context.Background(), id)
	if err != nil {
		t.Fatalf("User(%s): %v", id, err)
	}
	if u == nil {
		t.Fatalf("user %s not found", id)
	}
	return u
}

func longText(word string) string {
	return strings.Repeat(word+" ", 31)
}

func TestRankTableTotalAndDisjoint(t *testing.T) {
	for xp := 0; xp <= 9999; xp++ {
		matches := 0
		for _, r := range Ranks {
			if r.contains(xp) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("xp=%d matched %d bands", xp, matches)
		}
	}
	if got := RankOf(-1); got != UnknownRank {
		t.Fatalf("RankOf(-1)=%v, want unknown", got)
	}

	cur, next := RankInfo(150)
	if cur.Label != "Kindled" || next == nil || next.Label != "Ember" {
		t.Fatalf("RankInfo(150)=%v,%v", cur, next)
	}
	if _, next := RankInfo(50_000); next != nil {
		t.Fatalf("top band should have no next rank")
	}

	if got := ProgressWithinRank(0); got != 0 {
		t.Fatalf("progress(0)=%v, want 0", got)
	}
	if got := ProgressWithinRank(99); got != 1 {
		t.Fatalf("progress(99)=%v, want 1", got)
	}
	if got := ProgressWithinRank(50_000); got != 1 {
		t.Fatalf("progress in open band=%v, want 1", got)
	}
}

func TestUpdateStreakTrailingRun(t *testing.T) {
	offsets := []int{0, 1, 2, 4, 5, 6, 7, 10}
	want := []int{1, 2, 3, 1, 2, 3, 4, 1}

	var st StreakState
	for i, off := range offsets {
		var step StreakStep
		st, step = UpdateStreak(st, day0.AddDate(0, 0, off), nil)
		if st.Streak != want[i] {
			t.Fatalf("day %d: streak=%d, want %d (step %s)", off, st.Streak, want[i], step)
		}
	}

	same, step := UpdateStreak(st, day0.AddDate(0, 0, 10).Add(3*time.Hour), nil)
	if step != StepSameDay || same.Streak != st.Streak {
		t.Fatalf("same day: step=%s streak=%d", step, same.Streak)
	}
}

func TestTraitStreaksResetWhenAbsent(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	submit(t, svc, "alice", "I was honest today", false, day0)
	submit(t, svc, "alice", "Still honest with myself", false, day0.AddDate(0, 0, 1))
	res := submit(t, svc, "alice", "I was kind to a neighbour", false, day0.AddDate(0, 0, 2))

	if res.Streak != 3 {
		t.Fatalf("streak=%d, want 3", res.Streak)
	}
	u := mustUser(t, svc, "alice")
	if u.TraitStreaks["honesty"] != 0 {
		t.Fatalf("honesty=%d, want 0", u.TraitStreaks["honesty"])
	}
	if _, ok := u.TraitStreaks["honesty"]; !ok {
		t.Fatalf("honesty counter should be kept at zero, not removed")
	}
	if u.TraitStreaks["compassion"] != 1 {
		t.Fatalf("compassion=%d, want 1", u.TraitStreaks["compassion"])
	}
}

func TestProcessReflectionAwardsXPAndStreak(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	res := submit(t, svc, "alice", longText("hope"), true, day0)
	if res.XPGained != 85 || res.TotalXP != 85 {
		t.Fatalf("first gain=%d total=%d, want 85/85", res.XPGained, res.TotalXP)
	}
	if res.Step != StepFirst || res.Streak != 1 {
		t.Fatalf("step=%s streak=%d", res.Step, res.Streak)
	}

	res = submit(t, svc, "alice", longText("truth"), false, day0.AddDate(0, 0, 1))
	if res.XPGained != 85 || res.TotalXP != 170 || res.Streak != 2 {
		t.Fatalf("second gain=%d total=%d streak=%d", res.XPGained, res.TotalXP, res.Streak)
	}

	refs, err := svc.Reflections(ctx)
	if err != nil {
		t.Fatalf("Reflections: %v", err)
	}
	if len(refs) != 2 || !refs[0].Public || refs[1].Public {
		t.Fatalf("reflections=%+v", refs)
	}
	if refs[1].XPGain != 85 || refs[1].Streak != 2 {
		t.Fatalf("reflection snapshot=%+v", refs[1])
	}

	u := mustUser(t, svc, "alice")
	if len(u.ReflectionDates) != 2 {
		t.Fatalf("reflection dates=%v", u.ReflectionDates)
	}
	if u.Rank != RankOf(170).Label {
		t.Fatalf("rank=%q", u.Rank)
	}
}

func TestSameDayResubmissionSkipsStreakBonus(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	first := submit(t, svc, "bob", longText("trust"), false, day0)
	second := submit(t, svc, "bob", longText("trust"), false, day0.Add(2*time.Hour))

	if second.XPGained != BaseXP+KeywordXP {
		t.Fatalf("same-day gain=%d, want %d", second.XPGained, BaseXP+KeywordXP)
	}
	if second.TotalXP < first.TotalXP {
		t.Fatalf("XP decreased: %d -> %d", first.TotalXP, second.TotalXP)
	}
	if second.Streak != 1 || second.Step != StepSameDay {
		t.Fatalf("streak=%d step=%s", second.Streak, second.Step)
	}
	u := mustUser(t, svc, "bob")
	if len(u.ReflectionDates) != 1 {
		t.Fatalf("dates should be deduplicated: %v", u.ReflectionDates)
	}
}

func TestBackdatedReflectionLeavesStreakAlone(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	submit(t, svc, "cara", "word", false, day0.AddDate(0, 0, 5))
	before := mustUser(t, svc, "cara")

	res := submit(t, svc, "cara", longText("hope"), false, day0.AddDate(0, 0, 2))
	if !res.Backdated || res.Step != StepBackdated {
		t.Fatalf("expected backdated result, got step=%s", res.Step)
	}
	if res.StreakBonus != 0 || res.XPGained != BaseXP+KeywordXP {
		t.Fatalf("gain=%d bonus=%d", res.XPGained, res.StreakBonus)
	}

	after := mustUser(t, svc, "cara")
	if after.Streak != before.Streak || after.LastReflectionDate != before.LastReflectionDate {
		t.Fatalf("streak state changed: %+v -> %+v", before, after)
	}
	if after.XP != before.XP+res.XPGained {
		t.Fatalf("xp=%d, want %d", after.XP, before.XP+res.XPGained)
	}
}

func TestXPMonotonicAcrossHistory(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	offsets := []int{3, 3, 4, 1, 9, 9, 2, 12}
	last := 0
	for _, off := range offsets {
		res := submit(t, svc, "dan", "a short one", false, day0.AddDate(0, 0, off))
		if res.TotalXP < last {
			t.Fatalf("XP went from %d to %d", last, res.TotalXP)
		}
		last = res.TotalXP
	}
}

func TestStreakBadgesAwardedOnce(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	var got []string
	for i := 0; i < 9; i++ {
		res := submit(t, svc, "erin", "word", false, day0.AddDate(0, 0, i))
		got = append(got, res.NewBadges...)
	}
	if len(got) != 1 || got[0] != Badge7DayStreak {
		t.Fatalf("new badges=%v", got)
	}

	submit(t, svc, "erin", "word", false, day0.AddDate(0, 0, 20))
	u := mustUser(t, svc, "erin")
	if u.Streak != 1 || !u.HasBadge(Badge7DayStreak) {
		t.Fatalf("badge should survive reset: streak=%d badges=%v", u.Streak, u.Badges)
	}
}

func TestRitualOfFireUnlocksOnce(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		now := day0.AddDate(0, 0, i)
		submit(t, svc, "alice", strings.Repeat("word ", 8), false, now)
		if _, err := svc.CheckAndUnlock(ctx, "alice", UnlockInput{Now: now}); err != nil {
			t.Fatalf("CheckAndUnlock: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		res, err := svc.CheckAndUnlock(ctx, "alice", UnlockInput{Now: day0.AddDate(0, 0, 7)})
		if err != nil {
			t.Fatalf("CheckAndUnlock: %v", err)
		}
		if len(res.Unlocked) != 0 {
			t.Fatalf("repeat check unlocked %v", res.Unlocked)
		}
	}

	log, err := svc.RitualLog(ctx)
	if err != nil {
		t.Fatalf("RitualLog: %v", err)
	}
	count := 0
	for _, ev := range log {
		if ev.User == "alice" && ev.Ritual == RitualOfFire {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("Ritual of Fire logged %d times, want 1", count)
	}
	if u := mustUser(t, svc, "alice"); !u.HasRitual(RitualOfFire) {
		t.Fatalf("rituals=%v", u.Rituals)
	}
}

func TestEyesOpenedAndChainbreaker(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	submit(t, svc, "bob", "test reflection", true, day0)
	res, err := svc.CheckAndUnlock(ctx, "bob", UnlockInput{PublicSignal: true, Now: day0})
	if err != nil {
		t.Fatalf("CheckAndUnlock: %v", err)
	}
	if len(res.Unlocked) != 1 || res.Unlocked[0] != RitualEyes {
		t.Fatalf("unlocked=%v", res.Unlocked)
	}

	for id, xp := range map[string]int{"alice": 500, "bob": 400, "carol": 300, "dave": 100} {
		if _, err := svc.AwardXP(ctx, id, xp, day0); err != nil {
			t.Fatalf("AwardXP(%s): %v", id, err)
		}
	}
	top3, err := svc.InTopN(ctx, "carol", 3)
	if err != nil || !top3 {
		t.Fatalf("carol top3=%v err=%v", top3, err)
	}
	if top3, _ := svc.InTopN(ctx, "dave", 3); top3 {
		t.Fatalf("dave should not be top 3")
	}
	res, err = svc.CheckAndUnlock(ctx, "carol", UnlockInput{Top3: true, Now: day0})
	if err != nil {
		t.Fatalf("CheckAndUnlock: %v", err)
	}
	if len(res.Unlocked) != 1 || res.Unlocked[0] != RitualChain {
		t.Fatalf("unlocked=%v", res.Unlocked)
	}

	// A later reflection must not wipe unlocked rituals.
	submit(t, svc, "bob", "another day", false, day0.AddDate(0, 0, 1))
	if u := mustUser(t, svc, "bob"); !u.HasRitual(RitualEyes) {
		t.Fatalf("rituals lost on merge: %v", u.Rituals)
	}
}

func TestVaultRevealAfterLongStreak(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 31; i++ {
		submit(t, svc, "vera", "word", false, day0.AddDate(0, 0, i))
	}
	u := mustUser(t, svc, "vera")
	if u.Streak != 31 || !u.HasBadge(Badge30DayStreak) {
		t.Fatalf("streak=%d badges=%v", u.Streak, u.Badges)
	}

	res, err := svc.CheckAndUnlock(ctx, "vera", UnlockInput{Now: day0.AddDate(0, 0, 31)})
	if err != nil {
		t.Fatalf("CheckAndUnlock: %v", err)
	}
	if !res.VaultRevealed {
		t.Fatalf("expected vault reveal")
	}
	res, err = svc.CheckAndUnlock(ctx, "vera", UnlockInput{Now: day0.AddDate(0, 0, 31)})
	if err != nil {
		t.Fatalf("CheckAndUnlock: %v", err)
	}
	if res.VaultRevealed {
		t.Fatalf("vault revealed twice")
	}
	vault, err := svc.VaultLog(ctx)
	if err != nil {
		t.Fatalf("VaultLog: %v", err)
	}
	if len(vault) != 1 || vault[0].User != "vera" {
		t.Fatalf("vault log=%+v", vault)
	}
}

func TestChainRitualAwardsXP(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	text := longText("hope")
	submit(t, svc, "u1", text, true, day0)
	submit(t, svc, "u2", text, true, day0.Add(10*time.Minute))
	submit(t, svc, "u3", text, true, day0.Add(20*time.Minute))

	now := day0.Add(20 * time.Minute)
	got, err := svc.EvaluateChainRituals(ctx, now)
	if err != nil {
		t.Fatalf("EvaluateChainRituals: %v", err)
	}
	if strings.Join(got, ",") != "u1,u2,u3" {
		t.Fatalf("participants=%v", got)
	}
	for _, id := range got {
		u := mustUser(t, svc, id)
		if u.XP != 235 || u.ChainRituals != 1 {
			t.Fatalf("%s xp=%d chain=%d, want 235/1", id, u.XP, u.ChainRituals)
		}
	}

	again, err := svc.EvaluateChainRituals(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("EvaluateChainRituals: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second evaluation awarded %v", again)
	}
	if u := mustUser(t, svc, "u1"); u.XP != 235 {
		t.Fatalf("xp after repeat=%d, want 235", u.XP)
	}

	log, err := svc.RitualLog(ctx)
	if err != nil {
		t.Fatalf("RitualLog: %v", err)
	}
	if len(log) != 1 || !log[0].IsChain() || len(log[0].Participants) != 3 {
		t.Fatalf("ritual log=%+v", log)
	}
}

func TestChainRitualRespectsWindow(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	text := longText("hope")
	submit(t, svc, "u1", text, true, day0)
	submit(t, svc, "u2", text, true, day0.Add(10*time.Minute))
	submit(t, svc, "u3", text, true, day0.Add(31*time.Minute))

	got, err := svc.EvaluateChainRituals(ctx, day0.Add(31*time.Minute))
	if err != nil {
		t.Fatalf("EvaluateChainRituals: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("participants=%v, want none", got)
	}
	for _, id := range []string{"u1", "u2", "u3"} {
		if u := mustUser(t, svc, id); u.XP != 85 {
			t.Fatalf("%s xp=%d, want 85", id, u.XP)
		}
	}
}

func TestChainRitualIgnoresPrivateReflections(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	submit(t, svc, "u1", "x", true, day0)
	submit(t, svc, "u2", "x", true, day0)
	submit(t, svc, "u3", "x", false, day0)

	got, err := svc.EvaluateChainRituals(context.Background(), day0)
	if err != nil {
		t.Fatalf("EvaluateChainRituals: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("participants=%v, want none", got)
	}
}

func TestSignalArchitectTitle(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	for d := 0; d < 3; d++ {
		base := day0.AddDate(0, 0, d)
		for i, id := range []string{"u1", "u2", "u3"} {
			submit(t, svc, id, "x", true, base.Add(time.Duration(i)*time.Minute))
		}
		got, err := svc.EvaluateChainRituals(ctx, base.Add(5*time.Minute))
		if err != nil {
			t.Fatalf("EvaluateChainRituals: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("day %d participants=%v", d, got)
		}
		u := mustUser(t, svc, "u1")
		if d < 2 && u.Title != "" {
			t.Fatalf("title set too early on day %d", d)
		}
	}
	u := mustUser(t, svc, "u2")
	if u.Title != TitleSignalArchitect || u.ChainRituals != 3 {
		t.Fatalf("title=%q chain=%d", u.Title, u.ChainRituals)
	}
}

func TestRewardSignalPersisted(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	res := submit(t, svc, "ivy", "I was honest and kind", false, day0)
	if res.Signal.RewardMultiplier != 1.2 {
		t.Fatalf("multiplier=%v, want 1.2", res.Signal.RewardMultiplier)
	}
	if res.Signal.Growth != "+1 honesty, +1 compassion" {
		t.Fatalf("growth=%q", res.Signal.Growth)
	}
	if res.Signal.Yield != 0.25 {
		t.Fatalf("yield=%v, want 0.25", res.Signal.Yield)
	}

	res = submit(t, svc, "ivy", "I felt fear", false, day0.AddDate(0, 0, 1))
	if res.Signal.Growth != "+1 fear, -1 compassion, -1 honesty, -3 integrity" {
		t.Fatalf("growth=%q", res.Signal.Growth)
	}

	sig, err := svc.LastSignal(ctx, "ivy")
	if err != nil || sig == nil {
		t.Fatalf("LastSignal: %v %v", sig, err)
	}
	if sig.Streak != 2 || sig.TraitStreaks["fear"] != 1 {
		t.Fatalf("signal=%+v", sig)
	}
}

func TestValidationErrors(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.ProcessReflection(ctx, ReflectionInput{User: "  ", Text: "x", Now: day0})
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "user" {
		t.Fatalf("expected user validation error, got %v", err)
	}
	if _, err := svc.ProcessReflection(ctx, ReflectionInput{User: "a", Text: "", Now: day0}); !errors.As(err, &ve) {
		t.Fatalf("expected text validation error, got %v", err)
	}
	if _, err := svc.AwardXP(ctx, "a", -5, day0); !errors.As(err, &ve) {
		t.Fatalf("expected negative award error, got %v", err)
	}
	if u, _ := svc.User(ctx, "a"); u != nil {
		t.Fatalf("rejected calls must not create users")
	}
}

func TestReactionsKeyedByReflectionTimestamp(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	submit(t, svc, "u1", longText("hope"), true, day0)
	refs, err := svc.Reflections(ctx)
	if err != nil {
		t.Fatalf("Reflections: %v", err)
	}
	ts := refs[0].Timestamp.Format(time.RFC3339Nano)

	for _, emoji := range []string{"👏", "🔥", "🔥"} {
		if _, err := svc.AddReaction(ctx, ts, emoji); err != nil {
			t.Fatalf("AddReaction: %v", err)
		}
	}
	reactions, err := svc.Reactions(ctx)
	if err != nil {
		t.Fatalf("Reactions: %v", err)
	}
	if reactions[ts]["👏"] != 1 || reactions[ts]["🔥"] != 2 {
		t.Fatalf("reactions=%v", reactions)
	}
}

func TestReactionToUnknownReflectionRejected(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	submit(t, svc, "u1", longText("hope"), true, day0)

	var ve ValidationError
	stray := day0.Add(time.Second).Format(time.RFC3339Nano)
	if _, err := svc.AddReaction(ctx, stray, "🔥"); !errors.As(err, &ve) || ve.Field != "timestamp" {
		t.Fatalf("expected timestamp validation error, got %v", err)
	}
	reactions, err := svc.Reactions(ctx)
	if err != nil {
		t.Fatalf("Reactions: %v", err)
	}
	if len(reactions) != 0 {
		t.Fatalf("rejected reaction was stored: %v", reactions)
	}
}

func TestRecallReportsXPAndTraitDrift(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	first := submit(t, svc, "mx", "I told the truth today", false, day0)
	second := submit(t, svc, "mx", longText("kind"), false, day0.AddDate(0, 0, 1))
	if _, err := svc.AwardXP(ctx, "mx", 40, day0.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("AwardXP: %v", err)
	}
	xpNow := mustUser(t, svc, "mx").XP
	if xpNow != first.XPGained+second.XPGained+40 {
		t.Fatalf("xp=%d", xpNow)
	}

	matches, err := svc.Recall(ctx, "mx", "truth", 1)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(matches) != 1 || matches[0].Index != 0 {
		t.Fatalf("matches=%+v", matches)
	}
	m := matches[0]
	if !m.Timestamp.Equal(day0) {
		t.Fatalf("timestamp=%v", m.Timestamp)
	}
	if m.XPThen != first.XPGained {
		t.Fatalf("xp then=%d, want %d", m.XPThen, first.XPGained)
	}
	if m.XPDiff != second.XPGained+40 {
		t.Fatalf("xp diff=%d, want %d", m.XPDiff, second.XPGained+40)
	}
	if len(m.TraitDrift) != 2 || m.TraitDrift["honesty"] != -1 || m.TraitDrift["compassion"] != 1 {
		t.Fatalf("drift=%v", m.TraitDrift)
	}
	if !strings.HasPrefix(m.Echo(), "Who you were on 2024-01-01T12:00:00Z would say: I told the truth") {
		t.Fatalf("echo=%q", m.Echo())
	}

	none, err := svc.Recall(ctx, "nobody", "truth", 3)
	if err != nil || none != nil {
		t.Fatalf("empty recall = %v, %v", none, err)
	}
}

func TestCertificateGenerateAndExport(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	submit(t, svc, "gk", "I was honest", false, day0)
	submit(t, svc, "gk", "Kind and transparent", false, day0.AddDate(0, 0, 1))
	submit(t, svc, "gk", "Showing compassion", false, day0.AddDate(0, 0, 2))
	submit(t, svc, "gk", "Truth and empathy", false, day0.AddDate(0, 0, 3))

	now := day0.AddDate(0, 0, 4)
	cert, err := svc.GenerateCertificate(ctx, "gk", Anchors{ENS: "gk.eth", CBID: "gk.cb.id"}, now)
	if err != nil {
		t.Fatalf("GenerateCertificate: %v", err)
	}
	if len(cert.RecentReflections) != 3 || cert.RecentReflections[0] != "Kind and transparent" {
		t.Fatalf("recent=%v", cert.RecentReflections)
	}
	if cert.IntegrityScore != 5 || cert.IntegrityLevel != "high" {
		t.Fatalf("integrity=%d level=%s", cert.IntegrityScore, cert.IntegrityLevel)
	}
	if strings.Join(cert.TraitsSummary, ",") != "compassion,honesty" {
		t.Fatalf("traits=%v", cert.TraitsSummary)
	}
	if !VerifyCertificate(cert) {
		t.Fatalf("signature does not verify")
	}
	tampered := *cert
	tampered.XP += 1
	if VerifyCertificate(&tampered) {
		t.Fatalf("tampered certificate verified")
	}

	dir := t.TempDir()
	path, err := ExportCertificate(dir, cert)
	if err != nil {
		t.Fatalf("ExportCertificate: %v", err)
	}
	if filepath.Base(path) != "belief_certificate_2024-01-05T12-00-00Z.json" {
		t.Fatalf("path=%s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat export: %v", err)
	}

	if _, err := svc.GenerateCertificate(ctx, "gk", Anchors{CBID: "x"}, now); err == nil {
		t.Fatalf("expected missing ens error")
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	for id, xp := range map[string]int{"b": 100, "a": 100, "c": 300} {
		if _, err := svc.AwardXP(ctx, id, xp, day0); err != nil {
			t.Fatalf("AwardXP: %v", err)
		}
	}
	board, err := svc.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	var ids []string
	for _, s := range board {
		ids = append(ids, s.User)
	}
	if strings.Join(ids, ",") != "c,a,b" || board[0].Position != 1 {
		t.Fatalf("board=%+v", board)
	}
}

func TestSubmitRunsUnlocksAndChain(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	text := longText("hope")
	var last *Submission
	for i, id := range []string{"u1", "u2", "u3"} {
		sub, err := svc.Submit(ctx, ReflectionInput{
			User: id, Text: text, Public: true, Now: day0.Add(time.Duration(i) * 5 * time.Minute),
		})
		if err != nil {
			t.Fatalf("Submit(%s): %v", id, err)
		}
		if sub.Reflection.XPGained != 85 {
			t.Fatalf("%s gained %d, want 85", id, sub.Reflection.XPGained)
		}
		if strings.Join(sub.Unlock.Unlocked, ",") != RitualEyes+","+RitualChain {
			t.Fatalf("%s unlocked=%v", id, sub.Unlock.Unlocked)
		}
		last = sub
	}
	if strings.Join(last.Chain, ",") != "u1,u2,u3" {
		t.Fatalf("chain=%v", last.Chain)
	}
	if u := mustUser(t, svc, "u2"); u.XP != 235 {
		t.Fatalf("u2 xp=%d, want 235", u.XP)
	}
}
