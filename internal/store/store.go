// Package store provides the persistent client-state key-value store.
//
// The widget keeps a handful of opaque strings per visitor (session id,
// has-visited marker, video-seen marker). Drivers: sqlite for a single
// local visitor, redis when the engine runs server-side for many visitors,
// memory for tests.
package store

import (
	"context"
	"fmt"

	"github.com/bayshore/chatwidget/internal/config"
	"github.com/bayshore/chatwidget/internal/logging"
)

// KV is the opaque key-value collaborator for persisted client state.
// Lookups distinguish "absent" from errors so callers can treat both as
// absent when the policy calls for it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open creates the KV driver selected by cfg.
func Open(cfg config.StateConfig, paths config.Paths, log *logging.Logger) (KV, error) {
	switch cfg.Store {
	case "", "sqlite":
		db, err := OpenSQLite(paths.StateDBPath(cfg), log)
		if err != nil {
			return nil, err
		}
		return NewSQLiteKV(db, cfg.Namespace), nil
	case "redis":
		return NewRedisKV(cfg, log)
	case "memory":
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown state store %q", cfg.Store)
	}
}
