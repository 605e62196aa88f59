package flags

import (
	"context"
	"fmt"
	"sync"

	"github.com/denisAlshanov/ytplatform/internal/config"
	"github.com/denisAlshanov/ytplatform/internal/database"
)

// VideoDownload switches video requests from streaming to local download.
const VideoDownload = 1

// Store answers boolean feature flag lookups.
type Store interface {
	IsOn(ctx context.Context, flag int) (bool, error)
	SetFlag(ctx context.Context, flag int, on bool) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// StaticStore keeps flags in memory, seeded from configuration.
type StaticStore struct {
	mu      sync.RWMutex
	enabled map[int]bool
}

func NewStaticStore(enabled ...int) *StaticStore {
	s := &StaticStore{enabled: make(map[int]bool, len(enabled))}
	for _, flag := range enabled {
		s.enabled[flag] = true
	}
	return s
}

func (s *StaticStore) IsOn(ctx context.Context, flag int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled[flag], nil
}

func (s *StaticStore) SetFlag(ctx context.Context, flag int, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.enabled[flag] = true
	} else {
		delete(s.enabled, flag)
	}
	return nil
}

func (s *StaticStore) Ping(ctx context.Context) error  { return nil }
func (s *StaticStore) Close(ctx context.Context) error { return nil }

// NewStore builds the backend selected by cfg.Flags.Backend.
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Flags.Backend {
	case "", config.FlagBackendStatic:
		return NewStaticStore(cfg.Flags.Enabled...), nil
	case config.FlagBackendMongo:
		db, err := database.NewMongoDB(&cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create mongo flag store: %w", err)
		}
		return db, nil
	case config.FlagBackendPostgres:
		db, err := database.NewPostgresDB(&cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres flag store: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown flag backend %q", cfg.Flags.Backend)
	}
}
