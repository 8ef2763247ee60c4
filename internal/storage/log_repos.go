package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// ReflectionRepo is the append-only reflection log.
type ReflectionRepo struct {
	store DocumentStore
	log   *slog.Logger
}

func NewReflectionRepo(store DocumentStore, log *slog.Logger) *ReflectionRepo {
	return &ReflectionRepo{store: store, log: orDiscard(log)}
}

func (r *ReflectionRepo) All(ctx context.Context) ([]Reflection, error) {
	out, err := load[[]Reflection](ctx, r.store, r.log, KeyReflections)
	if err != nil {
		return nil, fmt.Errorf("reflections load: %w", err)
	}
	return out, nil
}

// ByUser returns the user's reflections in log order.
func (r *ReflectionRepo) ByUser(ctx context.Context, user string) ([]Reflection, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []Reflection
	for _, ref := range all {
		if ref.User == user {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (r *ReflectionRepo) Append(ctx context.Context, ref Reflection) error {
	all, err := r.All(ctx)
	if err != nil {
		return err
	}
	all = append(all, ref)
	if err := writeJSON(ctx, r.store, KeyReflections, all); err != nil {
		return fmt.Errorf("reflection append: %w", err)
	}
	return nil
}

// RitualRepo is the append-only ritual log.
type RitualRepo struct {
	store DocumentStore
	log   *slog.Logger
}

func NewRitualRepo(store DocumentStore, log *slog.Logger) *RitualRepo {
	return &RitualRepo{store: store, log: orDiscard(log)}
}

func (r *RitualRepo) All(ctx context.Context) ([]RitualEvent, error) {
	out, err := load[[]RitualEvent](ctx, r.store, r.log, KeyRituals)
	if err != nil {
		return nil, fmt.Errorf("rituals load: %w", err)
	}
	return out, nil
}

func (r *RitualRepo) Append(ctx context.Context, ev RitualEvent) error {
	all, err := r.All(ctx)
	if err != nil {
		return err
	}
	all = append(all, ev)
	if err := writeJSON(ctx, r.store, KeyRituals, all); err != nil {
		return fmt.Errorf("ritual append: %w", err)
	}
	return nil
}

// VaultLogRepo is the audit trail for vault reveals.
type VaultLogRepo struct {
	store DocumentStore
	log   *slog.Logger
}

func NewVaultLogRepo(store DocumentStore, log *slog.Logger) *VaultLogRepo {
	return &VaultLogRepo{store: store, log: orDiscard(log)}
}

func (r *VaultLogRepo) All(ctx context.Context) ([]VaultEvent, error) {
	out, err := load[[]VaultEvent](ctx, r.store, r.log, KeyVaultLog)
	if err != nil {
		return nil, fmt.Errorf("vault log load: %w", err)
	}
	return out, nil
}

func (r *VaultLogRepo) Append(ctx context.Context, ev VaultEvent) error {
	all, err := r.All(ctx)
	if err != nil {
		return err
	}
	all = append(all, ev)
	if err := writeJSON(ctx, r.store, KeyVaultLog, all); err != nil {
		return fmt.Errorf("vault log append: %w", err)
	}
	return nil
}
