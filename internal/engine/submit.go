package engine

import (
	"context"
	"strings"
)

// TopRanked is the leaderboard cut that unlocks Chainbreaker.
const TopRanked = 3

// Submission is the combined outcome of one reflection submission.
type Submission struct {
	Reflection *ReflectionResult
	Unlock     *UnlockResult
	Chain      []string
}

// Submit processes a reflection, then evaluates ritual unlocks for the
// author and chain rituals across all users at the same instant.
func (s *Service) Submit(ctx context.Context, in ReflectionInput) (*Submission, error) {
	res, err := s.ProcessReflection(ctx, in)
	if err != nil {
		return nil, err
	}
	user := strings.TrimSpace(in.User)
	top, err := s.InTopN(ctx, user, TopRanked)
	if err != nil {
		return nil, err
	}
	unlock, err := s.CheckAndUnlock(ctx, user, UnlockInput{
		PublicSignal: in.Public,
		Top3:         top,
		Now:          in.Now,
	})
	if err != nil {
		return nil, err
	}
	chain, err := s.EvaluateChainRituals(ctx, in.Now)
	if err != nil {
		return nil, err
	}
	return &Submission{Reflection: res, Unlock: unlock, Chain: chain}, nil
}
