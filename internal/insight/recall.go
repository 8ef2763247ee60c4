package insight

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

var wordRE = regexp.MustCompile(`\w+`)

// Match is one recalled entry and its similarity to the prompt. Timestamp,
// XPThen, XPDiff and TraitDrift are filled by callers that know the entry's
// history; Recall leaves them zero.
type Match struct {
	Index      int
	Text       string
	Similarity float64

	Timestamp time.Time
	// XPThen is the cumulative XP right after the entry was recorded.
	XPThen int
	// XPDiff is current XP minus XPThen.
	XPDiff int
	// TraitDrift maps a trait to its presence now minus its presence in the
	// entry (+1 gained, -1 lost). Unchanged traits are omitted.
	TraitDrift map[string]int
}

// Echo is the entry read back in the past tense.
func (m Match) Echo() string {
	return fmt.Sprintf("Who you were on %s would say: %s", m.Timestamp.UTC().Format(time.RFC3339), m.Text)
}

// TraitDrift compares the trait sets of a past and a current analysis.
func TraitDrift(past, current []string) map[string]int {
	out := map[string]int{}
	for _, t := range current {
		out[t]++
	}
	for _, t := range past {
		out[t]--
	}
	for t, d := range out {
		if d == 0 {
			delete(out, t)
		}
	}
	return out
}

// Recall ranks texts by cosine similarity of their word counts to prompt and
// returns the top n. Ties keep archive order.
func Recall(prompt string, texts []string, n int) []Match {
	if len(texts) == 0 || n <= 0 {
		return nil
	}
	pv := vectorize(prompt)
	matches := make([]Match, 0, len(texts))
	for i, text := range texts {
		matches = append(matches, Match{Index: i, Text: text, Similarity: cosine(pv, vectorize(text))})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

func vectorize(text string) map[string]int {
	out := map[string]int{}
	for _, tok := range wordRE.FindAllString(strings.ToLower(text), -1) {
		out[tok]++
	}
	return out
}

func cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dot := 0.0
	for k, v := range a {
		dot += float64(v * b[k])
	}
	return dot / (norm(a) * norm(b))
}

func norm(v map[string]int) float64 {
	sum := 0.0
	for _, n := range v {
		sum += float64(n * n)
	}
	return math.Sqrt(sum)
}
