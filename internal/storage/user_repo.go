package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

type UserRepo struct {
	store DocumentStore
	log   *slog.Logger
}

func NewUserRepo(store DocumentStore, log *slog.Logger) *UserRepo {
	return &UserRepo{store: store, log: orDiscard(log)}
}

func (r *UserRepo) load(ctx context.Context) (map[string]*UserRecord, error) {
	users, err := load[map[string]*UserRecord](ctx, r.store, r.log, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("users load: %w", err)
	}
	if users == nil {
		users = map[string]*UserRecord{}
	}
	return users, nil
}

// Get returns the user record or nil when the user has never been seen.
func (r *UserRepo) Get(ctx context.Context, id string) (*UserRecord, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := users[id]
	if !ok || u == nil {
		return nil, nil
	}
	return u, nil
}

func (r *UserRepo) All(ctx context.Context) (map[string]*UserRecord, error) {
	return r.load(ctx)
}

// IDs returns all user ids in ascending order.
func (r *UserRepo) IDs(ctx context.Context) ([]string, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Update is the single merge path for user records: it reads the whole users
// document, hands fn the existing (or a freshly created) record, and writes the
// whole document back. Fields fn does not touch are preserved. If fn returns an
// error nothing is written.
func (r *UserRepo) Update(ctx context.Context, id string, fn func(u *UserRecord) error) (*UserRecord, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	u := users[id]
	if u == nil {
		u = &UserRecord{}
		users[id] = u
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	normalize(u)
	if err := writeJSON(ctx, r.store, KeyUsers, users); err != nil {
		return nil, fmt.Errorf("user update: %w", err)
	}
	return u, nil
}

// UpdateMany applies fn to each listed record and writes the users document
// once, so either every record changes or none does. Records are created as
// needed and returned keyed by id.
func (r *UserRepo) UpdateMany(ctx context.Context, ids []string, fn func(id string, u *UserRecord) error) (map[string]*UserRecord, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*UserRecord, len(ids))
	for _, id := range ids {
		u := users[id]
		if u == nil {
			u = &UserRecord{}
			users[id] = u
		}
		if err := fn(id, u); err != nil {
			return nil, err
		}
		normalize(u)
		out[id] = u
	}
	if err := writeJSON(ctx, r.store, KeyUsers, users); err != nil {
		return nil, fmt.Errorf("user update: %w", err)
	}
	return out, nil
}

func normalize(u *UserRecord) {
	if u.ReflectionDates == nil {
		u.ReflectionDates = []string{}
	}
	if u.Badges == nil {
		u.Badges = []string{}
	}
	if u.Rituals == nil {
		u.Rituals = []string{}
	}
}
