// Package insight holds the text-level collaborators of the progression
// engine: keyword trait analysis, the passive yield simulator, self-audit
// drift feedback and mirror recall. None of them touch storage.
package insight

import "strings"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Analysis is the analyzer output for one piece of text.
type Analysis struct {
	Traits    []string  `json:"traits"`
	Sentiment Sentiment `json:"sentiment"`
	Score     int       `json:"score"`
}

type traitRule struct {
	trait    string
	keywords []string
	weight   int
}

// Ordered so trait output is stable.
var traitRules = []traitRule{
	{trait: "honesty", keywords: []string{"honest", "truth", "transparent"}, weight: 1},
	{trait: "compassion", keywords: []string{"compassion", "empathy", "kind"}, weight: 1},
	{trait: "fear", keywords: []string{"fear", "afraid", "scared", "anxious"}, weight: -1},
	{trait: "doubt", keywords: []string{"doubt", "uncertain", "unsure"}, weight: -1},
}

var (
	positiveWords = []string{"good", "great", "love"}
	negativeWords = []string{"bad", "terrible", "hate"}
)

// KeywordAnalyzer maps text to traits by case-insensitive substring match.
type KeywordAnalyzer struct{}

func (KeywordAnalyzer) Analyze(text string) Analysis {
	lower := strings.ToLower(text)

	traits := []string{}
	score := 0
	for _, rule := range traitRules {
		if containsAny(lower, rule.keywords) {
			traits = append(traits, rule.trait)
			score += rule.weight
		}
	}

	pos := containsAny(lower, positiveWords)
	neg := containsAny(lower, negativeWords)
	sentiment := SentimentNeutral
	switch {
	case pos && !neg:
		sentiment = SentimentPositive
	case neg && !pos:
		sentiment = SentimentNegative
	}

	return Analysis{Traits: traits, Sentiment: sentiment, Score: score}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
