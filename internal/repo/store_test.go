package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/reactivities/backend/internal/domain"
	"github.com/pkordes/reactivities/backend/internal/repo"
	"github.com/pkordes/reactivities/backend/testutil"
)

// backends lists every Store implementation. Each test in this file runs
// against all of them; Postgres skips itself when no database is configured.
var backends = []struct {
	name string
	open func(t *testing.T) repo.Store
}{
	{"memory", func(t *testing.T) repo.Store { return repo.NewMemoryStore() }},
	{"sqlite", func(t *testing.T) repo.Store { return testutil.NewSQLiteStore(t) }},
	{"postgres", func(t *testing.T) repo.Store { return testutil.NewPostgresStore(t) }},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, store repo.Store)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b.open(t))
		})
	}
}

// activityFixture returns a domain.Activity with sensible defaults for use
// in tests. Callers can override individual fields after calling it.
func activityFixture() domain.Activity {
	return domain.Activity{
		ID:          uuid.New(),
		Title:       "Run",
		Date:        time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Description: "Morning run by the river",
		Category:    "sport",
		City:        "London",
		Venue:       "Thames Path",
		Latitude:    51.5081,
		Longitude:   -0.0759,
	}
}

// add inserts activities through a unit of work and commits.
func add(t *testing.T, store repo.Store, activities ...domain.Activity) {
	t.Helper()
	ctx := context.Background()
	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	defer uow.Release()

	for _, a := range activities {
		require.NoError(t, uow.Add(a))
	}
	require.NoError(t, uow.Commit(ctx))
}

func all(t *testing.T, store repo.Store) []domain.Activity {
	t.Helper()
	ctx := context.Background()
	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	defer uow.Release()

	got, err := uow.All(ctx)
	require.NoError(t, err)
	return got
}

func TestStore_All_Empty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store repo.Store) {
		got := all(t, store)

		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestStore_All_ReturnsCommittedInInsertionOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store repo.Store) {
		first := activityFixture()
		second := activityFixture()
		second.Title = "Swim"
		third := activityFixture()
		third.Title = "Climb"
		third.IsCancelled = true

		add(t, store, first, second)
		add(t, store, third)

		got := all(t, store)

		assert.Equal(t, []domain.Activity{first, second, third}, got)
	})
}

func TestStore_FindByID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store repo.Store) {
		want := activityFixture()
		add(t, store, want)

		ctx := context.Background()
		uow, err := store.Begin(ctx)
		require.NoError(t, err)
		defer uow.Release()

		got, err := uow.FindByID(ctx, want.ID)

		require.NoError(t, err)
		assert.Equal(t, want, *got)
	})
}

func TestStore_FindByID_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store repo.Store) {
		ctx := context.Background()
		uow, err := store.Begin(ctx)
		require.NoError(t, err)
		defer uow.Release()

		_, err = uow.FindByID(ctx, uuid.New())

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestStore_Commit_WritesTrackedChanges(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store repo.Store) {
		original := activityFixture()
		other := activityFixture()
		other.Title = "Untouched"
		add(t, store, original, other)

		ctx := context.Background()
		uow, err := store.Begin(ctx)
		require.NoError(t, err)

		tracked, err := uow.FindByID(ctx, original.ID)
		require.NoError(t, err)
		tracked.Title = "Run (cancelled)"
		tracked.IsCancelled = true
		require.NoError(t, uow.Commit(ctx))
		uow.Release()

		want := original
		want.Title = "Run (cancelled)"
		want.IsCancelled = true
		assert.Equal(t, []domain.Activity{want, other}, all(t, store))
	})
}

func TestStore_Release_DiscardsUncommitted(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store repo.Store) {
		original := activityFixture()
		add(t, store, original)

		ctx := context.Background()
		uow, err := store.Begin(ctx)
		require.NoError(t, err)
		tracked, err := uow.FindByID(ctx, original.ID)
		require.NoError(t, err)
		tracked.Title = "never saved"
		require.NoError(t, uow.Add(activityFixture()))
		uow.Release()

		assert.Equal(t, []domain.Activity{original}, all(t, store))
	})
}

func TestStore_Commit_DuplicateInsertWritesNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store repo.Store) {
		existing := activityFixture()
		add(t, store, existing)

		ctx := context.Background()
		uow, err := store.Begin(ctx)
		require.NoError(t, err)
		defer uow.Release()

		fresh := activityFixture()
		require.NoError(t, uow.Add(fresh))
		require.NoError(t, uow.Add(existing))
		err = uow.Commit(ctx)

		assert.ErrorIs(t, err, domain.ErrStorage)
		assert.Equal(t, []domain.Activity{existing}, all(t, store), "commit must be atomic")
	})
}
