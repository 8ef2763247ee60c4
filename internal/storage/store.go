package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// DocumentStore is a whole-document key-value store.
//
// Every read returns the full document and every write replaces it. There is
// no atomicity across keys and no locking: a read-modify-write sequence is
// only safe with a single writer process. Read returns (nil, nil) when the
// key has never been written.
type DocumentStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

// Document keys.
const (
	KeyUsers       = "users"
	KeyReflections = "reflections"
	KeyRituals     = "rituals"
	KeyReactions   = "reactions"
	KeySignals     = "signals"
	KeyVaultLog    = "vault_log"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
)

var ErrClosed = errors.New("storage: store is closed")

// Open opens the document store for the given backend rooted at dir.
func Open(ctx context.Context, backend string, dir string) (DocumentStore, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(dir)
	case BackendSQLite:
		return OpenSQLite(ctx, SQLitePath(dir))
	case BackendPebble:
		return OpenPebble(PebblePath(dir))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// load decodes the document at key. A missing document yields the zero
// value. A malformed document is logged and also yields the zero value; the
// next write replaces the bad bytes.
func load[T any](ctx context.Context, s DocumentStore, log *slog.Logger, key string) (T, error) {
	var zero T
	data, err := s.Read(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", key, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Warn("document_malformed", "key", key, "error", err)
		return zero, nil
	}
	return v, nil
}

func writeJSON(ctx context.Context, s DocumentStore, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.Write(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log != nil {
		return log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
