// Package repo contains all database access logic for the Reactivities API.
// Store is the persistence gateway; every request works through one
// UnitOfWork, which tracks the records it hands out and writes their
// changes in a single transaction on Commit.
// It holds SQL, type mapping and change tracking, and no business logic.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/reactivities/backend/internal/domain"
)

// Store is implemented by every backend (Postgres, SQLite, memory).
// Callers hold a Store for the life of the process and a UnitOfWork for the
// life of one request.
type Store interface {
	// Begin acquires a session for one unit of work. The caller must call
	// Release on the returned UnitOfWork on every exit path.
	Begin(ctx context.Context) (*UnitOfWork, error)

	// Migrate brings the schema up to date. No-op for the memory backend.
	Migrate(ctx context.Context) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases every resource held by the store.
	Close() error
}

// session is the backend-specific connection held by one unit of work.
type session interface {
	list(ctx context.Context) ([]domain.Activity, error)
	get(ctx context.Context, id uuid.UUID) (domain.Activity, error)
	// save writes inserts and updates atomically. An update whose row no
	// longer exists fails the whole save with domain.ErrNotFound.
	save(ctx context.Context, inserts, updates []domain.Activity) error
	release()
}

// tracked pairs a record handed out by FindByID with the state it had when
// it was loaded, so Commit can tell whether it changed.
type tracked struct {
	current  *domain.Activity
	original domain.Activity
}

// UnitOfWork is the scope of pending changes committed by one Commit call.
// It is not safe for concurrent use; each request gets its own.
type UnitOfWork struct {
	s        session
	identity map[uuid.UUID]*tracked
	order    []uuid.UUID
	added    []domain.Activity
	released bool
}

func newUnitOfWork(s session) *UnitOfWork {
	return &UnitOfWork{s: s, identity: make(map[uuid.UUID]*tracked)}
}

// All returns every stored activity in storage order.
// The returned values are detached: changing them does not affect Commit.
// Always returns a non-nil slice so callers can safely range over it.
func (u *UnitOfWork) All(ctx context.Context) ([]domain.Activity, error) {
	if err := u.check(); err != nil {
		return nil, fmt.Errorf("repo.UnitOfWork.All: %w", err)
	}
	activities, err := u.s.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.UnitOfWork.All: %w", classify(ctx, err))
	}
	if activities == nil {
		return []domain.Activity{}, nil
	}
	return activities, nil
}

// FindByID returns the stored activity with the given id.
// Returns domain.ErrNotFound if it does not exist. The returned pointer is
// tracked: changes made through it are written by the next Commit. Looking
// up the same id twice returns the same pointer.
func (u *UnitOfWork) FindByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	if err := u.check(); err != nil {
		return nil, fmt.Errorf("repo.UnitOfWork.FindByID: %w", err)
	}
	if t, ok := u.identity[id]; ok {
		return t.current, nil
	}
	a, err := u.s.get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("repo.UnitOfWork.FindByID: %w", classify(ctx, err))
	}
	current := a
	u.identity[id] = &tracked{current: &current, original: a}
	u.order = append(u.order, id)
	return &current, nil
}

// Add queues a new activity for insertion on the next Commit.
// It fails once the unit of work has been released.
func (u *UnitOfWork) Add(a domain.Activity) error {
	if err := u.check(); err != nil {
		return fmt.Errorf("repo.UnitOfWork.Add: %w", err)
	}
	u.added = append(u.added, a)
	return nil
}

// Commit persists every queued insert and every tracked activity that has
// changed since it was loaded, in one transaction. Either all of them are
// written or none is. With nothing pending it returns nil without touching
// the database.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if err := u.check(); err != nil {
		return fmt.Errorf("repo.UnitOfWork.Commit: %w", err)
	}

	var updates []domain.Activity
	for _, id := range u.order {
		t := u.identity[id]
		// ID is immutable; a caller that overwrote it still updates the
		// row it loaded.
		t.current.ID = t.original.ID
		if *t.current != t.original {
			updates = append(updates, *t.current)
		}
	}
	if len(u.added) == 0 && len(updates) == 0 {
		return nil
	}

	if err := u.s.save(ctx, u.added, updates); err != nil {
		return fmt.Errorf("repo.UnitOfWork.Commit: %w", classify(ctx, err))
	}

	for _, id := range u.order {
		t := u.identity[id]
		t.original = *t.current
	}
	u.added = nil
	return nil
}

// Release returns the session to its backend and discards anything not yet
// committed. It is safe to call more than once.
func (u *UnitOfWork) Release() {
	if u.released {
		return
	}
	u.released = true
	u.s.release()
}

func (u *UnitOfWork) check() error {
	if u.released {
		return fmt.Errorf("%w: unit of work already released", domain.ErrStorage)
	}
	return nil
}

// classify maps a backend error onto the domain taxonomy.
// Sentinels already in the chain are kept; context errors become
// ErrCancelled; everything else is a storage failure.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrCancelled),
		errors.Is(err, domain.ErrStorage):
		return err
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		ctx.Err() != nil:
		return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
}

// Open connects to the backend named by dsn:
//
//	postgres://… or postgresql://…  Postgres through pgxpool
//	sqlite:<path> or file:<path>     SQLite through modernc.org/sqlite
//	memory:                          process-local map
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite:"):
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "file:"):
		return OpenSQLite(ctx, dsn)
	case dsn == "memory:" || dsn == "memory://":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("repo.Open: unsupported database URL scheme in %q", redact(dsn))
	}
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(dsn string) string {
	if i := strings.Index(dsn, ":"); i >= 0 {
		return dsn[:i+1] + "…"
	}
	return "…"
}
