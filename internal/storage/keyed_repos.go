package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// ReactionRepo counts emoji reactions per reflection timestamp.
type ReactionRepo struct {
	store DocumentStore
	log   *slog.Logger
}

func NewReactionRepo(store DocumentStore, log *slog.Logger) *ReactionRepo {
	return &ReactionRepo{store: store, log: orDiscard(log)}
}

func (r *ReactionRepo) All(ctx context.Context) (map[string]map[string]int, error) {
	out, err := load[map[string]map[string]int](ctx, r.store, r.log, KeyReactions)
	if err != nil {
		return nil, fmt.Errorf("reactions load: %w", err)
	}
	if out == nil {
		out = map[string]map[string]int{}
	}
	return out, nil
}

// Add increments the emoji counter for the reflection and returns the new count.
func (r *ReactionRepo) Add(ctx context.Context, reflectionTS string, emoji string) (int, error) {
	all, err := r.All(ctx)
	if err != nil {
		return 0, err
	}
	counts := all[reflectionTS]
	if counts == nil {
		counts = map[string]int{}
		all[reflectionTS] = counts
	}
	counts[emoji]++
	if err := writeJSON(ctx, r.store, KeyReactions, all); err != nil {
		return 0, fmt.Errorf("reaction add: %w", err)
	}
	return counts[emoji], nil
}

// SignalRepo keeps the last reward signal per user.
type SignalRepo struct {
	store DocumentStore
	log   *slog.Logger
}

func NewSignalRepo(store DocumentStore, log *slog.Logger) *SignalRepo {
	return &SignalRepo{store: store, log: orDiscard(log)}
}

func (r *SignalRepo) Get(ctx context.Context, user string) (*RewardSignal, error) {
	all, err := load[map[string]RewardSignal](ctx, r.store, r.log, KeySignals)
	if err != nil {
		return nil, fmt.Errorf("signals load: %w", err)
	}
	sig, ok := all[user]
	if !ok {
		return nil, nil
	}
	return &sig, nil
}

func (r *SignalRepo) Put(ctx context.Context, user string, sig RewardSignal) error {
	all, err := load[map[string]RewardSignal](ctx, r.store, r.log, KeySignals)
	if err != nil {
		return fmt.Errorf("signals load: %w", err)
	}
	if all == nil {
		all = map[string]RewardSignal{}
	}
	all[user] = sig
	if err := writeJSON(ctx, r.store, KeySignals, all); err != nil {
		return fmt.Errorf("signal put: %w", err)
	}
	return nil
}
