// Package seed loads sample activities into an empty store so a fresh
// development database has something to list.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/reactivities/backend/internal/domain"
	"github.com/pkordes/reactivities/backend/internal/repo"
)

// Activities inserts the sample activities when the store holds none and
// returns how many were inserted. A store that already has data is left
// untouched. Dates are relative to now: some past, some upcoming.
func Activities(ctx context.Context, store repo.Store, now time.Time) (int, error) {
	uow, err := store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed.Activities: %w", err)
	}
	defer uow.Release()

	existing, err := uow.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed.Activities: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	samples := Samples(now)
	for _, a := range samples {
		if err := uow.Add(a); err != nil {
			return 0, fmt.Errorf("seed.Activities: %w", err)
		}
	}
	if err := uow.Commit(ctx); err != nil {
		return 0, fmt.Errorf("seed.Activities: %w", err)
	}
	return len(samples), nil
}

// Samples returns the sample activities with fresh IDs.
func Samples(now time.Time) []domain.Activity {
	now = now.UTC().Truncate(time.Second)
	type sample struct {
		monthOffset int
		title       string
		category    string
		city        string
		venue       string
		lat, lng    float64
	}
	samples := []sample{
		{-2, "Past Activity 1", "drinks", "London", "Pub", 51.5072, -0.1276},
		{-1, "Past Activity 2", "culture", "Paris", "Louvre", 48.8606, 2.3376},
		{1, "Future Activity 1", "culture", "London", "Natural History Museum", 51.4967, -0.1764},
		{2, "Future Activity 2", "music", "London", "O2 Arena", 51.5030, 0.0032},
		{3, "Future Activity 3", "drinks", "London", "Another pub", 51.5136, -0.1365},
		{4, "Future Activity 4", "drinks", "London", "Yet another pub", 51.5155, -0.0922},
		{5, "Future Activity 5", "drinks", "London", "Just another pub", 51.5111, -0.1198},
		{6, "Future Activity 6", "music", "London", "Roundhouse Camden", 51.5432, -0.1519},
		{7, "Future Activity 7", "travel", "London", "Somewhere on the Thames", 51.5081, -0.0759},
		{8, "Future Activity 8", "film", "London", "Cinema", 51.5107, -0.1300},
	}

	out := make([]domain.Activity, 0, len(samples))
	for i, s := range samples {
		out = append(out, domain.Activity{
			ID:          uuid.New(),
			Title:       s.title,
			Date:        now.AddDate(0, s.monthOffset, 0),
			Description: fmt.Sprintf("Activity %d month(s) from now", s.monthOffset),
			Category:    s.category,
			City:        s.city,
			Venue:       s.venue,
			Latitude:    s.lat,
			Longitude:   s.lng,
			IsCancelled: i == 0,
		})
	}
	return out
}
