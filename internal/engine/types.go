package engine

import (
	"time"

	"vaultfire/internal/insight"
	"vaultfire/internal/storage"
)

// Analyzer maps raw text to traits, a sentiment and an integer score.
type Analyzer interface {
	Analyze(text string) insight.Analysis
}

// YieldSimulator turns a trait score and an event frequency into a yield.
type YieldSimulator interface {
	SimulateYield(traitScore int, frequency int) float64
}

// Recorder receives progression events. The metrics package implements it.
type Recorder interface {
	ReflectionProcessed(xpGained int, backdated bool)
	RitualUnlocked(ritual string)
	ChainRitualAwarded(participants int)
	VaultRevealed()
}

type nopRecorder struct{}

func (nopRecorder) ReflectionProcessed(int, bool) {}
func (nopRecorder) RitualUnlocked(string) {}
func (nopRecorder) ChainRitualAwarded(int) {}
func (nopRecorder) VaultRevealed() {}

type ReflectionInput struct {
	User   string
	Text   string
	Public bool
	Color  string
	Now    time.Time
}

type ReflectionResult struct {
	TotalXP     int
	XPGained    int
	BaseGain    int
	KeywordGain int
	StreakBonus int

	Streak    int
	Step      StreakStep
	Backdated bool

	RankBefore Rank
	RankAfter  Rank
	RankUp     bool
	NewBadges  []string

	Analysis insight.Analysis
	Signal   storage.RewardSignal
}

type UnlockInput struct {
	PublicSignal bool
	Top3         bool
	Now          time.Time
}

type UnlockResult struct {
	Unlocked      []string
	VaultRevealed bool
}

// Standing is one leaderboard row.
type Standing struct {
	Position int    `json:"position"`
	User     string `json:"user"`
	XP       int    `json:"xp"`
	Rank     string `json:"rank"`
	Badge    string `json:"badge"`
}
