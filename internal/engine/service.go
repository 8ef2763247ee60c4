package engine

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"vaultfire/internal/insight"
	"vaultfire/internal/storage"
)

type Options struct {
	Analyzer Analyzer
	Yield    YieldSimulator
	Logger   *slog.Logger
	Metrics  Recorder
}

// Service owns every mutating operation on progression state. Mutations are
// serialized within one Service; separate processes sharing a store are not
// coordinated.
type Service struct {
	mu sync.Mutex

	analyzer Analyzer
	yield    YieldSimulator
	log      *slog.Logger
	metrics  Recorder

	users       *storage.UserRepo
	reflections *storage.ReflectionRepo
	rituals     *storage.RitualRepo
	reactions   *storage.ReactionRepo
	signals     *storage.SignalRepo
	vault       *storage.VaultLogRepo
}

func NewService(store storage.DocumentStore, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		analyzer:    opts.Analyzer,
		yield:       opts.Yield,
		log:         log,
		metrics:     opts.Metrics,
		users:       storage.NewUserRepo(store, log),
		reflections: storage.NewReflectionRepo(store, log),
		rituals:     storage.NewRitualRepo(store, log),
		reactions:   storage.NewReactionRepo(store, log),
		signals:     storage.NewSignalRepo(store, log),
		vault:       storage.NewVaultLogRepo(store, log),
	}
	if s.analyzer == nil {
		s.analyzer = insight.KeywordAnalyzer{}
	}
	if s.yield == nil {
		s.yield = insight.PassiveYield{}
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	return s
}

func (s *Service) Analyzer() Analyzer { return s.analyzer }

// User returns the stored record or nil for an unknown user.
func (s *Service) User(ctx context.Context, id string) (*storage.UserRecord, error) {
	return s.users.Get(ctx, id)
}

func (s *Service) Users(ctx context.Context) (map[string]*storage.UserRecord, error) {
	return s.users.All(ctx)
}

func (s *Service) Reflections(ctx context.Context) ([]storage.Reflection, error) {
	return s.reflections.All(ctx)
}

func (s *Service) UserReflections(ctx context.Context, user string) ([]storage.Reflection, error) {
	return s.reflections.ByUser(ctx, user)
}

func (s *Service) RitualLog(ctx context.Context) ([]storage.RitualEvent, error) {
	return s.rituals.All(ctx)
}

func (s *Service) VaultLog(ctx context.Context) ([]storage.VaultEvent, error) {
	return s.vault.All(ctx)
}

func (s *Service) Reactions(ctx context.Context) (map[string]map[string]int, error) {
	return s.reactions.All(ctx)
}

// LastSignal returns the most recent reward signal for user, or nil.
func (s *Service) LastSignal(ctx context.Context, user string) (*storage.RewardSignal, error) {
	return s.signals.Get(ctx, user)
}

// AddReaction bumps the emoji counter of the reflection with the given
// RFC3339 timestamp and returns the new count. Timestamps that match no
// logged reflection are rejected.
func (s *Service) AddReaction(ctx context.Context, reflectionTS string, emoji string) (int, error) {
	reflectionTS = strings.TrimSpace(reflectionTS)
	emoji = strings.TrimSpace(emoji)
	if reflectionTS == "" {
		return 0, ValidationError{Field: "timestamp", Message: "is required"}
	}
	if emoji == "" {
		return 0, ValidationError{Field: "emoji", Message: "is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	refs, err := s.reflections.All(ctx)
	if err != nil {
		return 0, err
	}
	known := false
	for _, ref := range refs {
		if ref.Timestamp.Format(time.RFC3339Nano) == reflectionTS {
			known = true
			break
		}
	}
	if !known {
		return 0, ValidationError{Field: "timestamp", Message: "no reflection with this timestamp"}
	}
	return s.reactions.Add(ctx, reflectionTS, emoji)
}

// AwardXP adds amount to the user's XP through the shared merge path,
// creating the record if needed.
func (s *Service) AwardXP(ctx context.Context, user string, amount int, now time.Time) (*storage.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.award(ctx, user, amount, now, nil)
}

// award is AwardXP without locking; extra may adjust other fields in the
// same write.
func (s *Service) award(ctx context.Context, user string, amount int, now time.Time, extra func(u *storage.UserRecord)) (*storage.UserRecord, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, ValidationError{Field: "xp", Message: "award must not be negative"}
	}
	return s.users.Update(ctx, user, func(u *storage.UserRecord) error {
		u.XP += amount
		u.Rank = RankOf(u.XP).Label
		u.Timestamp = now.UTC()
		if extra != nil {
			extra(u)
		}
		return nil
	})
}

func normalizeUser(user string) (string, error) {
	u := strings.TrimSpace(user)
	if u == "" {
		return "", ValidationError{Field: "user", Message: "is required"}
	}
	return u, nil
}
