// Package service contains the query and command handlers for activities.
// Each handler serves one mediator request and works only through the unit
// of work it is given; none of them holds on to a record after returning.
// Handlers depend on repo.UnitOfWork, never on a backend.
package service

import (
	"context"
	"fmt"

	"github.com/pkordes/reactivities/backend/internal/domain"
	"github.com/pkordes/reactivities/backend/internal/mapper"
	"github.com/pkordes/reactivities/backend/internal/mediator"
	"github.com/pkordes/reactivities/backend/internal/repo"
)

// ActivityProfile registers the Activity -> Activity mapping used by edits.
// Every mutable field is copied; ID is left alone.
func ActivityProfile(b *mapper.Builder) {
	mapper.Register(b, func(src domain.Activity, dst *domain.Activity) {
		dst.Title = src.Title
		dst.Description = src.Description
		dst.Date = src.Date
		dst.Category = src.Category
		dst.City = src.City
		dst.Venue = src.Venue
		dst.Latitude = src.Latitude
		dst.Longitude = src.Longitude
		dst.IsCancelled = src.IsCancelled
	})
}

// ListHandler returns every stored activity.
type ListHandler struct{}

// NewListHandler constructs a ListHandler.
func NewListHandler() *ListHandler {
	return &ListHandler{}
}

// Handle returns all activities in storage order.
// Always returns a non-nil slice so callers can safely range over it.
func (h *ListHandler) Handle(ctx context.Context, uow *repo.UnitOfWork, _ mediator.ListActivities) ([]domain.Activity, error) {
	activities, err := uow.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ListHandler.Handle: %w", err)
	}
	return activities, nil
}

// DetailsHandler returns one activity by ID.
type DetailsHandler struct{}

// NewDetailsHandler constructs a DetailsHandler.
func NewDetailsHandler() *DetailsHandler {
	return &DetailsHandler{}
}

// Handle returns the activity with q.ID.
// Returns domain.ErrNotFound if it does not exist.
func (h *DetailsHandler) Handle(ctx context.Context, uow *repo.UnitOfWork, q mediator.ActivityDetails) (domain.Activity, error) {
	a, err := uow.FindByID(ctx, q.ID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.DetailsHandler.Handle: %w", err)
	}
	return *a, nil
}

// EditHandler overwrites an existing activity with a full payload.
type EditHandler struct {
	mapper *mapper.Mapper
}

// NewEditHandler constructs an EditHandler. It fails if m cannot map an
// Activity onto an Activity.
func NewEditHandler(m *mapper.Mapper) (*EditHandler, error) {
	if err := mapper.Supports[domain.Activity, domain.Activity](m); err != nil {
		return nil, fmt.Errorf("service.NewEditHandler: %w", err)
	}
	return &EditHandler{mapper: m}, nil
}

// Handle loads the stored activity with c.Activity.ID, copies the payload
// onto it and commits. There is no upsert: an unknown ID returns
// domain.ErrNotFound and nothing is written.
func (h *EditHandler) Handle(ctx context.Context, uow *repo.UnitOfWork, c mediator.EditActivity) error {
	stored, err := uow.FindByID(ctx, c.Activity.ID)
	if err != nil {
		return fmt.Errorf("service.EditHandler.Handle: %w", err)
	}
	if err := mapper.Map(h.mapper, c.Activity, stored); err != nil {
		return fmt.Errorf("service.EditHandler.Handle: %w", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("service.EditHandler.Handle: %w", err)
	}
	return nil
}

// compile-time checks: each handler satisfies its mediator interface.
var (
	_ mediator.ListHandler    = (*ListHandler)(nil)
	_ mediator.DetailsHandler = (*DetailsHandler)(nil)
	_ mediator.EditHandler    = (*EditHandler)(nil)
)

// NewHandlers builds the full handler registry for the dispatcher.
func NewHandlers(m *mapper.Mapper) (mediator.Handlers, error) {
	edit, err := NewEditHandler(m)
	if err != nil {
		return mediator.Handlers{}, err
	}
	return mediator.Handlers{
		List:    NewListHandler(),
		Details: NewDetailsHandler(),
		Edit:    edit,
	}, nil
}
