package engine

import (
	"context"

	"vaultfire/internal/insight"
)

// Analyses re-runs the analyzer over the user's reflections in log order.
func (s *Service) Analyses(ctx context.Context, user string) ([]insight.Analysis, error) {
	refs, err := s.reflections.ByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]insight.Analysis, 0, len(refs))
	for _, r := range refs {
		out = append(out, s.analyzer.Analyze(r.Content))
	}
	return out, nil
}

// Audit returns self-audit drift messages over the user's last window
// reflections.
func (s *Service) Audit(ctx context.Context, user string, window int) ([]string, error) {
	nodes, err := s.Analyses(ctx, user)
	if err != nil {
		return nil, err
	}
	return insight.Audit(nodes, window), nil
}

// Recall returns the user's reflections closest to prompt, each annotated
// with the XP it was earned at, the XP gained since and how the traits of
// the latest reflection differ from it.
func (s *Service) Recall(ctx context.Context, user string, prompt string, n int) ([]insight.Match, error) {
	refs, err := s.reflections.ByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}
	texts := make([]string, 0, len(refs))
	cumulative := make([]int, 0, len(refs))
	total := 0
	for _, r := range refs {
		texts = append(texts, r.Content)
		total += r.XPGain
		cumulative = append(cumulative, total)
	}

	xpNow := total
	rec, err := s.users.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		xpNow = rec.XP
	}
	latest := s.analyzer.Analyze(refs[len(refs)-1].Content).Traits

	matches := insight.Recall(prompt, texts, n)
	for i := range matches {
		m := &matches[i]
		m.Timestamp = refs[m.Index].Timestamp
		m.XPThen = cumulative[m.Index]
		m.XPDiff = xpNow - m.XPThen
		m.TraitDrift = insight.TraitDrift(s.analyzer.Analyze(m.Text).Traits, latest)
	}
	return matches, nil
}
