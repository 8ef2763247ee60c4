package engine

import (
	"context"
	"sort"
)

// Leaderboard ranks users by XP descending, then id ascending. n <= 0
// returns everyone.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]Standing, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Standing, 0, len(users))
	for id, u := range users {
		if u == nil {
			continue
		}
		r := RankOf(u.XP)
		out = append(out, Standing{User: id, XP: u.XP, Rank: r.Label, Badge: r.Badge})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].User < out[j].User
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Position = i + 1
	}
	return out, nil
}

// InTopN reports whether user currently sits in the top n.
func (s *Service) InTopN(ctx context.Context, user string, n int) (bool, error) {
	board, err := s.Leaderboard(ctx, n)
	if err != nil {
		return false, err
	}
	for _, st := range board {
		if st.User == user {
			return true, nil
		}
	}
	return false, nil
}
