package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/reactivities/backend/internal/domain"
)

// MemoryStore keeps activities in process memory. It honours the same
// contract as the SQL backends (storage order, atomic commit, ErrNotFound)
// and backs unit tests and DATABASE_URL=memory:.
type MemoryStore struct {
	mu    sync.RWMutex
	rows  map[uuid.UUID]domain.Activity
	order []uuid.UUID
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]domain.Activity)}
}

// Begin starts a unit of work. The memory backend has no connections to
// reserve, so this only fails when ctx is already done.
func (s *MemoryStore) Begin(ctx context.Context) (*UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemoryStore.Begin: %w", classify(ctx, err))
	}
	return newUnitOfWork(&memSession{store: s}), nil
}

// Migrate is a no-op for the memory backend.
func (s *MemoryStore) Migrate(context.Context) error { return nil }

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error { return nil }

type memSession struct {
	store *MemoryStore
}

func (m *memSession) list(ctx context.Context) ([]domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := m.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	activities := make([]domain.Activity, 0, len(s.order))
	for _, id := range s.order {
		activities = append(activities, s.rows[id])
	}
	return activities, nil
}

func (m *memSession) get(ctx context.Context, id uuid.UUID) (domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Activity{}, err
	}
	s := m.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.rows[id]
	if !ok {
		return domain.Activity{}, domain.ErrNotFound
	}
	return a, nil
}

// save validates the whole batch before applying any of it.
func (m *memSession) save(ctx context.Context, inserts, updates []domain.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(inserts))
	for _, a := range inserts {
		if _, exists := s.rows[a.ID]; exists || seen[a.ID] {
			return fmt.Errorf("memory insert %s: %w: duplicate id", a.ID, domain.ErrStorage)
		}
		seen[a.ID] = true
	}
	for _, a := range updates {
		if _, exists := s.rows[a.ID]; !exists {
			return fmt.Errorf("memory update %s: %w", a.ID, domain.ErrNotFound)
		}
	}

	for _, a := range inserts {
		s.rows[a.ID] = a
		s.order = append(s.order, a.ID)
	}
	for _, a := range updates {
		s.rows[a.ID] = a
	}
	return nil
}

func (m *memSession) release() {}
