package engine

import "strings"

const (
	// BaseXP is awarded for reflections longer than LongReflectionWords words.
	BaseXP              = 50
	LongReflectionWords = 30

	KeywordXP     = 10
	StreakBonusXP = 25
	ChainRitualXP = 150
)

var xpKeywords = []string{"hope", "sacrifice", "truth", "trust"}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func baseGain(text string) int {
	if WordCount(text) > LongReflectionWords {
		return BaseXP
	}
	return 0
}

func keywordGain(text string) int {
	lower := strings.ToLower(text)
	for _, k := range xpKeywords {
		if strings.Contains(lower, k) {
			return KeywordXP
		}
	}
	return 0
}

// streakBonus is paid for every step that lands on a new calendar day.
func streakBonus(step StreakStep) int {
	switch step {
	case StepFirst, StepContinued, StepReset:
		return StreakBonusXP
	default:
		return 0
	}
}
