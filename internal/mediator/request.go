// Package mediator routes typed queries and commands to their handlers.
// The set of requests is closed: only the types in this file implement
// Request, and Dispatcher.Send matches on them exhaustively.
package mediator

import (
	"github.com/google/uuid"

	"github.com/pkordes/reactivities/backend/internal/domain"
)

// Kind names a request type in logs and metrics.
type Kind string

const (
	KindListActivities  Kind = "list_activities"
	KindActivityDetails Kind = "activity_details"
	KindEditActivity    Kind = "edit_activity"
)

// Request is a query or command accepted by Dispatcher.Send.
type Request interface {
	Kind() Kind
	sealed()
}

// ListActivities queries every stored activity. The result is []domain.Activity.
type ListActivities struct{}

// ActivityDetails queries one activity by ID. The result is domain.Activity.
type ActivityDetails struct {
	ID uuid.UUID
}

// EditActivity replaces the mutable fields of the stored activity with
// Activity.ID using the values in Activity. It has no result.
type EditActivity struct {
	Activity domain.Activity
}

func (ListActivities) Kind() Kind  { return KindListActivities }
func (ActivityDetails) Kind() Kind { return KindActivityDetails }
func (EditActivity) Kind() Kind    { return KindEditActivity }

func (ListActivities) sealed()  {}
func (ActivityDetails) sealed() {}
func (EditActivity) sealed()    {}
